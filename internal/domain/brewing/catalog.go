// Package brewing holds the ingredient catalog, the substitution advisor
// and the stage recipe builder. Everything here is pure and safe for
// concurrent use; the catalog is built once at init and never mutated.
package brewing

import (
	"strings"

	"github.com/ak/sba/internal/domain/models"
)

// Ingredient ids referenced by the advisor and the recipe builder
const (
	Yucca       = "yucca"
	Quillaja    = "quillaja"
	Soapwort    = "soapwort"
	Aloe        = "aloe"
	Seaweed     = "seaweed"
	Humic       = "humic"
	Fulvic      = "fulvic"
	Comfrey     = "comfrey"
	Molasses    = "molasses"
	OatFlour    = "oatFlour"
	PearlMillet = "pearlMillet"
)

type catalogTable struct {
	order []string
	byID  map[string]*models.Ingredient
}

var catalog = newCatalogTable(catalogData())

func newCatalogTable(items []models.Ingredient) *catalogTable {
	t := &catalogTable{
		order: make([]string, 0, len(items)),
		byID:  make(map[string]*models.Ingredient, len(items)),
	}
	for i := range items {
		ing := items[i]
		t.order = append(t.order, ing.ID)
		t.byID[ing.ID] = &ing
	}
	return t
}

func dose(unit string, lo, hi float64, def ...float64) models.DosageRange {
	d := models.DosageRange{Unit: unit, Min: lo, Max: hi}
	if len(def) > 0 {
		d.Default = models.Float64(def[0])
	}
	return d
}

func roles(r ...models.FunctionalRole) []models.FunctionalRole { return r }

var everywhere = models.Availability{Regions: []string{models.RegionGlobal}, Status: models.AvailabilityCommon}

func catalogData() []models.Ingredient {
	return []models.Ingredient{
		{
			ID:              Yucca,
			Name:            "Yucca schidigera extract",
			FunctionalRoles: roles(models.RoleSurfactant),
			PotencyScore:    0.9,
			DosageRange:     dose("ml/L", 0.05, 0.5, 0.1),
			Notes:           "Saponins reduce surface tension; supports microbes; mitigates salts.",
			Citations:       []string{"22", "25"},
			Availability:    models.Availability{Regions: []string{"US", "CA", "EU"}, Status: models.AvailabilityLimited},
			Substitutes:     []string{Quillaja, Soapwort},
		},
		{
			ID:              Quillaja,
			Name:            "Quillaja saponaria (soapbark) extract",
			FunctionalRoles: roles(models.RoleSurfactant),
			PotencyScore:    0.85,
			DosageRange:     dose("ml/L", 0.05, 0.4, 0.1),
			Notes:           "High saponin content; effective wetting agent; widely available. Caution with foliar at high dose.",
			Citations:       []string{"garden-wetting-agents"},
			Availability:    everywhere,
			Substitutes:     []string{Soapwort},
		},
		{
			ID:              Soapwort,
			Name:            "Saponaria officinalis (soapwort)",
			FunctionalRoles: roles(models.RoleSurfactant),
			PotencyScore:    0.6,
			DosageRange:     dose("g/L", 0.5, 3, 1),
			Notes:           "Traditional saponin source; steeped decoction. Lower potency, but globally accessible.",
			Citations:       []string{"traditional-saponins"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              Aloe,
			Name:            "Aloe vera juice",
			FunctionalRoles: roles(models.RoleBiostimulant, models.RoleSurfactant),
			PotencyScore:    0.5,
			DosageRange:     dose("% v/v", 0.5, 25, 5),
			Notes:           "At ~5% promotes Lactobacillus; >25% may inhibit microbes.",
			Citations:       []string{"31"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              Seaweed,
			Name:            "Seaweed extract (e.g., Ascophyllum nodosum)",
			FunctionalRoles: roles(models.RoleBiostimulant),
			PotencyScore:    0.7,
			DosageRange:     dose("ml/L", 1, 5, 2),
			Notes:           "Hormones (auxins/cytokinins), alginates improve structure/water holding; broad biostimulant.",
			Citations:       []string{"16", "20", "23"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              Humic,
			Name:            "Humic acids",
			FunctionalRoles: roles(models.RoleBiostimulant),
			PotencyScore:    0.6,
			DosageRange:     dose("ml/L", 1, 4, 2),
			Notes:           "Improves CEC, chelation, root growth; complements fulvic.",
			Citations:       []string{"18"},
			Availability:    everywhere,
			Substitutes:     []string{Fulvic},
		},
		{
			ID:              Fulvic,
			Name:            "Fulvic acids",
			FunctionalRoles: roles(models.RoleBiostimulant),
			PotencyScore:    0.6,
			DosageRange:     dose("ml/L", 0.5, 2, 1),
			Notes:           "Small molecules; enhances nutrient uptake; often paired with humic.",
			Citations:       []string{"18"},
			Availability:    everywhere,
			Substitutes:     []string{Humic},
		},
		{
			ID:              Comfrey,
			Name:            "Comfrey leaf tea (Symphytum spp.)",
			FunctionalRoles: roles(models.RoleBiostimulant),
			PotencyScore:    0.5,
			DosageRange:     dose("g/L", 5, 20, 10),
			Notes:           "Growable input; potassium-rich leafy tea used as tonic. Compost safely; avoid ingestion claims.",
			Citations:       []string{"traditional-comfrey"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              Molasses,
			Name:            "Unsulfured molasses",
			FunctionalRoles: roles(models.RolePrebiotic),
			PotencyScore:    0.5,
			DosageRange:     dose("ml/L", 1, 5, 2),
			Notes:           "Carbohydrate source to feed microbes; avoid excessive spikes.",
			Citations:       []string{"traditional-molasses"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              OatFlour,
			Name:            "Oat flour (finely milled)",
			FunctionalRoles: roles(models.RolePrebiotic),
			PotencyScore:    0.6,
			DosageRange:     dose("g/L", 2, 10, 5),
			Notes:           "Dry carbohydrate with beta-glucans; supports microbial growth when hydrated/aerated.",
			Citations:       []string{"oat-prebiotic-tradition"},
			Availability:    everywhere,
			Substitutes:     []string{},
		},
		{
			ID:              PearlMillet,
			Name:            "Pearl millet flour (finely milled)",
			FunctionalRoles: roles(models.RolePrebiotic),
			PotencyScore:    0.7,
			DosageRange:     dose("g/L", 2, 10, 5),
			Notes:           "High-energy dry carbohydrate; superior performance in trials for microbial activity.",
			Citations:       []string{"millet-prebiotic-tradition"},
			Availability:    everywhere,
			Substitutes:     []string{OatFlour},
		},
	}
}

// lookup returns the shared record; callers in this package must not mutate it
func lookup(id string) (*models.Ingredient, bool) {
	ing, ok := catalog.byID[id]
	return ing, ok
}

// GetIngredient returns a copy of the catalog record for id
func GetIngredient(id string) (models.Ingredient, bool) {
	ing, ok := lookup(id)
	if !ok {
		return models.Ingredient{}, false
	}
	return cloneIngredient(ing), true
}

// ListCatalog returns every ingredient in catalog order
func ListCatalog() []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(catalog.order))
	for _, id := range catalog.order {
		ing := catalog.byID[id]
		out = append(out, models.CatalogEntry{
			ID:    ing.ID,
			Name:  ing.Name,
			Roles: append([]models.FunctionalRole(nil), ing.FunctionalRoles...),
		})
	}
	return out
}

// KnownIngredient reports whether id is in the catalog
func KnownIngredient(id string) bool {
	_, ok := lookup(id)
	return ok
}

// SearchCatalog returns entries whose id or name contains query, ignoring
// case. A blank query matches everything.
func SearchCatalog(query string) []models.CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	all := ListCatalog()
	if q == "" {
		return all
	}
	out := make([]models.CatalogEntry, 0, len(all))
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.ID), q) || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}

// GroupByRole buckets the catalog by functional role. Roles appear in the
// order they are first seen and an ingredient is listed under each of its
// roles.
func GroupByRole() []models.RoleGroup {
	var groups []models.RoleGroup
	index := make(map[models.FunctionalRole]int)
	for _, e := range ListCatalog() {
		for _, role := range e.Roles {
			i, ok := index[role]
			if !ok {
				i = len(groups)
				index[role] = i
				groups = append(groups, models.RoleGroup{Role: role})
			}
			groups[i].Entries = append(groups[i].Entries, e)
		}
	}
	return groups
}

// CatalogOrder filters ids down to known ingredients, drops duplicates
// and sorts the rest into catalog order
func CatalogOrder(ids []string) []string {
	want := newIDSet(ids)
	out := make([]string, 0, len(want))
	for _, id := range catalog.order {
		if want.has(id) {
			out = append(out, id)
		}
	}
	return out
}

func cloneIngredient(ing *models.Ingredient) models.Ingredient {
	c := *ing
	c.FunctionalRoles = append([]models.FunctionalRole(nil), ing.FunctionalRoles...)
	c.Citations = append([]string{}, ing.Citations...)
	c.Substitutes = append([]string{}, ing.Substitutes...)
	c.Availability.Regions = append([]string{}, ing.Availability.Regions...)
	if ing.DosageRange.Default != nil {
		c.DosageRange.Default = models.Float64(*ing.DosageRange.Default)
	}
	return c
}

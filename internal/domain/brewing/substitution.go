package brewing

import (
	"fmt"
	"strconv"

	"github.com/ak/sba/internal/domain/models"
)

// Reasons attached to suggestions outside the rule table
const (
	ReasonOnHand            = "On hand"
	ReasonCatalogSubstitute = "Catalog substitute"
)

// candidate is one ranked suggestion; keepSelf keeps it even when it is
// the target itself
type candidate struct {
	id       string
	reason   string
	keepSelf bool
}

// substitutionRule pairs a guard with the fixed ranking it produces
type substitutionRule struct {
	name       string
	applies    func(target *models.Ingredient, sc models.SubstitutionContext) bool
	candidates []candidate
}

func targetHasRole(role models.FunctionalRole) func(*models.Ingredient, models.SubstitutionContext) bool {
	return func(target *models.Ingredient, _ models.SubstitutionContext) bool {
		return target.HasRole(role)
	}
}

// substitutionRules is evaluated in order and the first match wins. A
// prebiotic request therefore never reaches its rule for a target that
// already carries the surfactant or biostimulant role.
var substitutionRules = []substitutionRule{
	{
		name:    "surfactant",
		applies: targetHasRole(models.RoleSurfactant),
		candidates: []candidate{
			{id: Quillaja, reason: "Functional saponin surfactant; globally more available"},
			{id: Soapwort, reason: "Traditional saponin source; lower potency but accessible"},
			{id: Aloe, reason: "Adjunct surfactant/biostimulant; keep at ~5% v/v to avoid inhibition", keepSelf: true},
		},
	},
	{
		name:    "biostimulant",
		applies: targetHasRole(models.RoleBiostimulant),
		candidates: []candidate{
			{id: Seaweed, reason: "Hormonal & alginate-rich biostimulant; widely available"},
			{id: Humic, reason: "Soil CEC & chelation; pairs well with fulvic"},
			{id: Fulvic, reason: "Small-molecule chelation; improves uptake"},
		},
	},
	{
		name: "prebiotic",
		applies: func(_ *models.Ingredient, sc models.SubstitutionContext) bool {
			return sc.DesiredRole == models.RolePrebiotic
		},
		candidates: []candidate{
			{id: PearlMillet, reason: "Superior dry carbohydrate source for sustained feed", keepSelf: true},
			{id: OatFlour, reason: "Dry carbohydrate with beta-glucans; widely available", keepSelf: true},
			{id: Molasses, reason: "Accessible liquid carbohydrate; avoid spikes", keepSelf: true},
		},
	},
}

// SuggestSubstitutes ranks alternatives for targetID. An unknown target
// yields an empty slice, never an error.
func SuggestSubstitutes(targetID string, sc models.SubstitutionContext) []models.Suggestion {
	target, ok := lookup(targetID)
	if !ok {
		return []models.Suggestion{}
	}

	onHand := newIDSet(sc.OnHand)
	if onHand.has(targetID) {
		return []models.Suggestion{{ID: targetID, Reason: ReasonOnHand, Dosage: dosageText(target)}}
	}

	for _, rule := range substitutionRules {
		if !rule.applies(target, sc) {
			continue
		}
		out := make([]models.Suggestion, 0, len(rule.candidates))
		for _, c := range rule.candidates {
			if c.id == targetID && !c.keepSelf {
				continue
			}
			out = append(out, annotate(c.id, c.reason, sc.Region, onHand))
		}
		return out
	}

	out := make([]models.Suggestion, 0, len(target.Substitutes))
	for _, id := range target.Substitutes {
		ing, _ := lookup(id)
		out = append(out, models.Suggestion{ID: id, Reason: ReasonCatalogSubstitute, Dosage: dosageText(ing)})
	}
	return out
}

// DosageText renders the dosing envelope of id, or "" when unknown
func DosageText(id string) string {
	ing, _ := lookup(id)
	return dosageText(ing)
}

func dosageText(ing *models.Ingredient) string {
	if ing == nil {
		return ""
	}
	d := ing.DosageRange
	text := fmt.Sprintf("%s-%s %s", formatNumber(d.Min), formatNumber(d.Max), d.Unit)
	if d.Default != nil && *d.Default != 0 {
		text += fmt.Sprintf(" (typical %s %s)", formatNumber(*d.Default), d.Unit)
	}
	return text
}

func annotate(id, reason, region string, onHand idSet) models.Suggestion {
	ing, _ := lookup(id)
	if onHand.has(id) {
		reason += " (on hand)"
	}
	if region != "" && region != models.RegionGlobal && ing != nil {
		if !ing.ListedIn(region) && ing.Availability.Status != models.AvailabilityCommon {
			reason += fmt.Sprintf(" (availability may be limited in %s)", region)
		}
	}
	return models.Suggestion{ID: id, Reason: reason, Dosage: dosageText(ing)}
}

// formatNumber prints the shortest decimal that round-trips, so 2 is "2"
// and 0.05 is "0.05"
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

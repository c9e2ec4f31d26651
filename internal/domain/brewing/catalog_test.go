package brewing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ak/sba/internal/domain/models"
)

func TestListCatalog_OrderAndUniqueness(t *testing.T) {
	entries := ListCatalog()

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{
		Yucca, Quillaja, Soapwort, Aloe, Seaweed, Humic, Fulvic,
		Comfrey, Molasses, OatFlour, PearlMillet,
	}, ids)

	seen := map[string]int{}
	for _, id := range ids {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "catalog lists %s more than once", id)
		_, ok := GetIngredient(id)
		assert.True(t, ok, "listed id %s not resolvable", id)
	}
}

func TestGetIngredient_Unknown(t *testing.T) {
	ing, ok := GetIngredient("unknown-id")

	assert.False(t, ok)
	assert.Empty(t, ing.ID)
	assert.False(t, KnownIngredient("unknown-id"))
}

func TestGetIngredient_ReturnsCopy(t *testing.T) {
	ing, ok := GetIngredient(Yucca)
	require.True(t, ok)

	ing.Substitutes[0] = "tampered"
	ing.Availability.Regions[0] = "XX"
	*ing.DosageRange.Default = 99

	again, _ := GetIngredient(Yucca)
	assert.Equal(t, []string{Quillaja, Soapwort}, again.Substitutes)
	assert.Equal(t, "US", again.Availability.Regions[0])
	assert.Equal(t, 0.1, *again.DosageRange.Default)
}

func TestCatalog_DataContract(t *testing.T) {
	for _, entry := range ListCatalog() {
		ing, ok := GetIngredient(entry.ID)
		require.True(t, ok)

		t.Run(entry.ID, func(t *testing.T) {
			assert.NotEmpty(t, ing.FunctionalRoles)
			for _, r := range ing.FunctionalRoles {
				assert.True(t, r.Valid(), "unknown role %q", r)
			}
			assert.GreaterOrEqual(t, ing.PotencyScore, 0.0)
			assert.LessOrEqual(t, ing.PotencyScore, 1.0)

			d := ing.DosageRange
			assert.LessOrEqual(t, d.Min, d.Max)
			if d.Default != nil {
				assert.LessOrEqual(t, d.Min, *d.Default)
				assert.LessOrEqual(t, *d.Default, d.Max)
			}
			for _, sub := range ing.Substitutes {
				assert.True(t, KnownIngredient(sub), "substitute %s missing from catalog", sub)
			}
		})
	}
}

func TestCatalog_AdvisorReferencesResolve(t *testing.T) {
	for _, rule := range substitutionRules {
		for _, c := range rule.candidates {
			assert.True(t, KnownIngredient(c.id), "rule %s references unknown %s", rule.name, c.id)
		}
	}
	for stage, adds := range stageBiostimulants {
		for _, a := range adds {
			assert.True(t, KnownIngredient(a.id), "stage %s references unknown %s", stage, a.id)
		}
	}
	for _, key := range []models.CarbSourceKey{models.CarbSourceMolasses, models.CarbSourceMillet, models.CarbSourceOat} {
		id, ok := SourceKeyIngredient(key)
		require.True(t, ok)
		assert.True(t, KnownIngredient(id))
	}
}

func TestDosageRange_Clamp(t *testing.T) {
	d := models.DosageRange{Unit: "ml/L", Min: 1, Max: 5}

	assert.Equal(t, 5.0, d.Clamp(7))
	assert.Equal(t, 1.0, d.Clamp(0.2))
	assert.Equal(t, 3.0, d.Clamp(3))
	assert.Equal(t, 1.0, d.DefaultOrMin())
}

func TestGroupByRole(t *testing.T) {
	groups := GroupByRole()

	require.Len(t, groups, 3)
	assert.Equal(t, models.RoleSurfactant, groups[0].Role)
	assert.Equal(t, models.RoleBiostimulant, groups[1].Role)
	assert.Equal(t, models.RolePrebiotic, groups[2].Role)

	var surfactants, biostimulants []string
	for _, e := range groups[0].Entries {
		surfactants = append(surfactants, e.ID)
	}
	for _, e := range groups[1].Entries {
		biostimulants = append(biostimulants, e.ID)
	}
	assert.Equal(t, []string{Yucca, Quillaja, Soapwort, Aloe}, surfactants)
	assert.Equal(t, []string{Aloe, Seaweed, Humic, Fulvic, Comfrey}, biostimulants)
}

func TestSearchCatalog(t *testing.T) {
	cases := []struct {
		query string
		want  []string
	}{
		{"MILLET", []string{PearlMillet}},
		{"flour", []string{OatFlour, PearlMillet}},
		{"  acids ", []string{Humic, Fulvic}},
		{"nothing-matches", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got := []string{}
			for _, e := range SearchCatalog(tc.query) {
				got = append(got, e.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Len(t, SearchCatalog(""), len(ListCatalog()))
}

func TestCatalogOrder(t *testing.T) {
	got := CatalogOrder([]string{PearlMillet, "bogus", Yucca, PearlMillet, Aloe})

	assert.Equal(t, []string{Yucca, Aloe, PearlMillet}, got)
	assert.Empty(t, CatalogOrder(nil))
}

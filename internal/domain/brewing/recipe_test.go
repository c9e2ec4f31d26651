package brewing

import (
	"math"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ak/sba/internal/domain/models"
)

func lateFlowerContext() models.RecipeContext {
	return models.RecipeContext{
		Stage:          models.StageLateFlower,
		VolumeLiters:   20,
		AloePercent:    5,
		YuccaAvailable: false,
		AloeAvailable:  true,
		OnHand:         []string{},
		IncludeCarbs:   models.Bool(true),
	}
}

func findItem(t *testing.T, items []models.RecipeItem, id string) models.RecipeItem {
	t.Helper()
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	require.Failf(t, "missing recipe line", "no %s line in %+v", id, items)
	return models.RecipeItem{}
}

func itemIDs(items []models.RecipeItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestBuildStageRecipe_LateFlowerDefaults(t *testing.T) {
	items := BuildStageRecipe(lateFlowerContext())

	assert.Equal(t, []string{Aloe, Quillaja, Fulvic, Molasses}, itemIDs(items))
	assert.Equal(t, models.RecipeItem{
		ID: Aloe, Name: "Aloe vera juice", Amount: "50 ml per L (1000 ml total)",
	}, items[0])
	assert.Equal(t, models.RecipeItem{
		ID: Quillaja, Name: "Quillaja saponaria (soapbark) extract",
		Amount: "0.1 ml per L (2 ml total)", Note: "Surfactant alternative",
	}, items[1])
	assert.Equal(t, "Supports uptake with carbohydrate strategy", items[2].Note)

	molasses := items[3]
	assert.Equal(t, "Molasses", molasses.Name)
	assert.Regexp(t, `per L`, molasses.Amount)
	assert.Equal(t, "5 ml per L (100 ml total)", molasses.Amount)
	assert.Equal(t, "Carb support - avoid spikes; steady feed; Late flower default: maintain energy (~5 ml/L).", molasses.Note)
}

func TestBuildStageRecipe_CarbDoseOverride(t *testing.T) {
	rc := lateFlowerContext()
	rc.CarbsPerL = models.Float64(3)

	molasses := findItem(t, BuildStageRecipe(rc), Molasses)

	assert.Contains(t, molasses.Amount, "3 ml per L")
	assert.Contains(t, molasses.Amount, "(60 ml total)")
}

func TestBuildStageRecipe_CarbDoseClamped(t *testing.T) {
	t.Run("above max", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsPerL = models.Float64(7)
		rc.VolumeLiters = 10

		molasses := findItem(t, BuildStageRecipe(rc), Molasses)

		assert.Contains(t, molasses.Amount, "5 ml per L")
		assert.Contains(t, molasses.Amount, "(50 ml total)")
		assert.NotContains(t, molasses.Amount, "7 ml")
		assert.NotContains(t, molasses.Amount, "ml/L")
	})

	t.Run("below min", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsPerL = models.Float64(0.2)

		molasses := findItem(t, BuildStageRecipe(rc), Molasses)
		assert.Equal(t, "1 ml per L (20 ml total)", molasses.Amount)
	})
}

func TestBuildStageRecipe_OnHandPass(t *testing.T) {
	rc := lateFlowerContext()
	rc.OnHand = []string{Fulvic, Aloe}

	items := BuildStageRecipe(rc)

	assert.Contains(t, findItem(t, items, Fulvic).Note, "; on hand")
	assert.Equal(t, "On hand", findItem(t, items, Aloe).Note)
	assert.NotContains(t, findItem(t, items, Quillaja).Note, "on hand")
}

func TestBuildStageRecipe_Stages(t *testing.T) {
	cases := []struct {
		stage models.Stage
		ids   []string
	}{
		{models.StageSeedling, []string{Yucca, Seaweed, Molasses}},
		{models.StageVeg, []string{Yucca, Seaweed, Humic, Molasses}},
		{models.StageEarlyFlower, []string{Yucca, Seaweed, Fulvic, Molasses}},
		{models.StageLateFlower, []string{Yucca, Fulvic, Molasses}},
	}
	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			items := BuildStageRecipe(models.RecipeContext{
				Stage:          tc.stage,
				VolumeLiters:   10,
				YuccaAvailable: true,
			})
			assert.Equal(t, tc.ids, itemIDs(items))
			assert.Equal(t, "Wetting agent", items[0].Note)
			assert.Equal(t, "0.1 ml per L (1 ml total)", items[0].Amount)
		})
	}
}

func TestBuildStageRecipe_SeedlingHalfDose(t *testing.T) {
	items := BuildStageRecipe(models.RecipeContext{Stage: models.StageSeedling, VolumeLiters: 10})

	seaweed := findItem(t, items, Seaweed)
	assert.Equal(t, "1 ml per L (10 ml total)", seaweed.Amount)
	assert.Equal(t, "Gentle tonic", seaweed.Note)

	molasses := findItem(t, items, Molasses)
	assert.Equal(t, "1 ml per L (10 ml total)", molasses.Amount)
}

func TestBuildStageRecipe_Aloe(t *testing.T) {
	rc := lateFlowerContext()
	rc.AloePercent = 12.5
	rc.VolumeLiters = 3

	aloe := BuildStageRecipe(rc)[0]

	assert.Equal(t, "125 ml per L (375 ml total)", aloe.Amount)
	assert.Equal(t, "Consider ~5% v/v for microbe-friendly brews", aloe.Note)

	rc.AloeAvailable = false
	assert.NotContains(t, itemIDs(BuildStageRecipe(rc)), Aloe)
}

func TestBuildStageRecipe_CarbsDisabled(t *testing.T) {
	rc := lateFlowerContext()
	rc.IncludeCarbs = models.Bool(false)

	assert.NotContains(t, itemIDs(BuildStageRecipe(rc)), Molasses)

	rc.IncludeCarbs = nil
	assert.Contains(t, itemIDs(BuildStageRecipe(rc)), Molasses)
}

func TestBuildStageRecipe_DryCarbs(t *testing.T) {
	t.Run("millet source", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsUnit = models.CarbUnitG
		rc.CarbsSourceKey = models.CarbSourceMillet
		rc.CarbsSource = "  Pearl millet flour  "

		item := findItem(t, BuildStageRecipe(rc), PearlMillet)

		assert.Equal(t, "Pearl millet flour", item.Name)
		// stage default dose 5 is inside the 2-10 g envelope
		assert.Equal(t, "5 g per L (100 g total)", item.Amount)
		assert.Equal(t, "Dry carbohydrate - aim for steady feed; Late flower default: maintain energy (~5 ml/L).", item.Note)
	})

	t.Run("oat source with dose override", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsUnit = models.CarbUnitG
		rc.CarbsSourceKey = models.CarbSourceOat
		rc.CarbsPerL = models.Float64(12)

		item := findItem(t, BuildStageRecipe(rc), OatFlour)
		assert.Equal(t, "10 g per L (200 g total)", item.Amount)
		assert.Equal(t, "Molasses", item.Name, "stage label wins over catalog name")
	})

	t.Run("dry unit with liquid default source keeps the source", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsUnit = models.CarbUnitG

		item := findItem(t, BuildStageRecipe(rc), Molasses)
		assert.Equal(t, "5 ml per L (100 ml total)", item.Amount)
		assert.Contains(t, item.Note, "Dry carbohydrate")
	})

	t.Run("other source falls back to millet", func(t *testing.T) {
		rc := lateFlowerContext()
		rc.CarbsUnit = models.CarbUnitG
		rc.CarbsSourceKey = models.CarbSourceOther
		rc.CarbsSource = "Rice flour"

		item := findItem(t, BuildStageRecipe(rc), PearlMillet)
		assert.Equal(t, "Rice flour", item.Name)
	})
}

func TestBuildStageRecipe_UnknownStage(t *testing.T) {
	items := BuildStageRecipe(models.RecipeContext{Stage: "fruiting", VolumeLiters: 10})

	assert.Equal(t, []string{Quillaja, Molasses}, itemIDs(items))
	molasses := items[1]
	assert.Equal(t, "Unsulfured molasses", molasses.Name)
	assert.Equal(t, "2 ml per L (20 ml total)", molasses.Amount)
	assert.Equal(t, liquidCarbNote, molasses.Note)
}

func TestBuildStageRecipe_Idempotent(t *testing.T) {
	rc := lateFlowerContext()
	rc.OnHand = []string{Fulvic, Molasses}
	rc.CarbsPerL = models.Float64(4.5)

	first := BuildStageRecipe(rc)
	second := BuildStageRecipe(rc)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{Fulvic, Molasses}, rc.OnHand)
}

var amountPattern = regexp.MustCompile(`^([0-9.]+) (\S+) per L \(([0-9.]+) (\S+) total\)$`)

func TestBuildStageRecipe_TotalsMatchPerLiter(t *testing.T) {
	for _, stage := range models.Stages {
		for _, liters := range []float64{1, 7.5, 20, 33.3} {
			rc := models.RecipeContext{
				Stage:          stage,
				VolumeLiters:   liters,
				YuccaAvailable: stage == models.StageVeg,
				CarbsPerL:      models.Float64(2.37),
			}
			for _, item := range BuildStageRecipe(rc) {
				m := amountPattern.FindStringSubmatch(item.Amount)
				require.NotNil(t, m, "unexpected amount %q", item.Amount)
				assert.Equal(t, m[2], m[4])
				assert.NotContains(t, m[2], "/L")

				perL, err := strconv.ParseFloat(m[1], 64)
				require.NoError(t, err)
				total, err := strconv.ParseFloat(m[3], 64)
				require.NoError(t, err)
				assert.LessOrEqual(t, math.Abs(total-perL*liters), 0.01+0.005*liters,
					"%s: %s", item.ID, item.Amount)
			}
		}
	}
}

func TestStageCarbDefaultsTable(t *testing.T) {
	table := StageCarbDefaultsTable()
	require.Len(t, table, 4)

	doses := map[models.Stage]float64{
		models.StageSeedling: 1, models.StageVeg: 2, models.StageEarlyFlower: 3, models.StageLateFlower: 5,
	}
	for stage, want := range doses {
		d, ok := StageCarbDefaults(stage)
		require.True(t, ok)
		assert.Equal(t, want, d.Dose)
		assert.Equal(t, models.CarbUnitMl, d.Unit)
		assert.Equal(t, models.CarbSourceMolasses, d.SourceKey)
		assert.Equal(t, "Molasses", d.SourceLabel)
	}

	table[models.StageVeg] = models.StageCarbDefault{}
	d, _ := StageCarbDefaults(models.StageVeg)
	assert.Equal(t, 2.0, d.Dose)
}

func TestParseStage(t *testing.T) {
	stage, err := ParseStage(" veg ")
	require.NoError(t, err)
	assert.Equal(t, models.StageVeg, stage)

	_, err = ParseStage("fruiting")
	assert.ErrorIs(t, err, ErrUnknownStage)
}

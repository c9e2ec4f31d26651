package brewing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ak/sba/internal/domain/models"
)

const (
	dryCarbNote    = "Dry carbohydrate - aim for steady feed"
	liquidCarbNote = "Carb support - avoid spikes; steady feed"
)

// ErrUnknownStage is returned by ParseStage for anything outside Stages
var ErrUnknownStage = errors.New("unknown growth stage")

// ParseStage validates a stage name
func ParseStage(s string) (models.Stage, error) {
	stage := models.Stage(strings.TrimSpace(s))
	if !stage.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return stage, nil
}

var stageCarbDefaults = map[models.Stage]models.StageCarbDefault{
	models.StageSeedling: {
		Unit:        models.CarbUnitMl,
		Dose:        1,
		SourceKey:   models.CarbSourceMolasses,
		SourceLabel: "Molasses",
		Note:        "Seedling default: keep carbs gentle (~1 ml/L).",
	},
	models.StageVeg: {
		Unit:        models.CarbUnitMl,
		Dose:        2,
		SourceKey:   models.CarbSourceMolasses,
		SourceLabel: "Molasses",
		Note:        "Vegetative default: sustain root building carbs (~2 ml/L).",
	},
	models.StageEarlyFlower: {
		Unit:        models.CarbUnitMl,
		Dose:        3,
		SourceKey:   models.CarbSourceMolasses,
		SourceLabel: "Molasses",
		Note:        "Early flower default: ramp carbs for transition (~3 ml/L).",
	},
	models.StageLateFlower: {
		Unit:        models.CarbUnitMl,
		Dose:        5,
		SourceKey:   models.CarbSourceMolasses,
		SourceLabel: "Molasses",
		Note:        "Late flower default: maintain energy (~5 ml/L).",
	},
}

// StageCarbDefaults returns the carbohydrate seed for stage
func StageCarbDefaults(stage models.Stage) (models.StageCarbDefault, bool) {
	d, ok := stageCarbDefaults[stage]
	return d, ok
}

// StageCarbDefaultsTable returns a copy of the whole stage table
func StageCarbDefaultsTable() map[models.Stage]models.StageCarbDefault {
	out := make(map[models.Stage]models.StageCarbDefault, len(stageCarbDefaults))
	for k, v := range stageCarbDefaults {
		out[k] = v
	}
	return out
}

// SourceKeyIngredient maps a carbohydrate source key to its ingredient id
func SourceKeyIngredient(key models.CarbSourceKey) (string, bool) {
	switch key {
	case models.CarbSourceMillet:
		return PearlMillet, true
	case models.CarbSourceOat:
		return OatFlour, true
	case models.CarbSourceMolasses:
		return Molasses, true
	}
	return "", false
}

type stageAddition struct {
	id   string
	half bool
	note string
}

var stageBiostimulants = map[models.Stage][]stageAddition{
	models.StageSeedling:    {{id: Seaweed, half: true, note: "Gentle tonic"}},
	models.StageVeg:         {{id: Seaweed}, {id: Humic}},
	models.StageEarlyFlower: {{id: Seaweed}, {id: Fulvic}},
	models.StageLateFlower:  {{id: Fulvic, note: "Supports uptake with carbohydrate strategy"}},
}

// BuildStageRecipe assembles the ordered recipe for rc. Steps only append:
// aloe, surfactant, stage biostimulants, carbohydrate, then the on-hand
// pass over everything already added.
func BuildStageRecipe(rc models.RecipeContext) []models.RecipeItem {
	liters := rc.VolumeLiters
	items := make([]models.RecipeItem, 0, 6)

	if rc.AloeAvailable {
		items = append(items, aloeLine(rc.AloePercent, liters))
	}

	if rc.YuccaAvailable {
		if yucca, ok := lookup(Yucca); ok {
			items = append(items, models.RecipeItem{
				ID:     yucca.ID,
				Name:   yucca.Name,
				Amount: perLiterAmount(yucca.DosageRange.Unit, yucca.DosageRange.DefaultOrMin(), liters),
				Note:   "Wetting agent",
			})
		}
	} else if q, ok := lookup(Quillaja); ok {
		items = append(items, models.RecipeItem{
			ID:     q.ID,
			Name:   q.Name,
			Amount: perLiterAmount(q.DosageRange.Unit, q.DosageRange.DefaultOrMin(), liters),
			Note:   "Surfactant alternative",
		})
	}

	for _, add := range stageBiostimulants[rc.Stage] {
		ing, ok := lookup(add.id)
		if !ok {
			continue
		}
		perL := ing.DosageRange.DefaultOrMin()
		if add.half {
			perL = math.Max(ing.DosageRange.Min, perL/2)
		}
		items = append(items, models.RecipeItem{
			ID:     ing.ID,
			Name:   ing.Name,
			Amount: perLiterAmount(ing.DosageRange.Unit, perL, liters),
			Note:   add.note,
		})
	}

	if rc.CarbsIncluded() {
		if item, ok := carbLine(rc); ok {
			items = append(items, item)
		}
	}

	onHand := newIDSet(rc.OnHand)
	for i := range items {
		if !onHand.has(items[i].ID) {
			continue
		}
		if items[i].Note != "" {
			items[i].Note += "; on hand"
		} else {
			items[i].Note = "On hand"
		}
	}

	return items
}

func aloeLine(percent, liters float64) models.RecipeItem {
	perL := math.Round(10*(percent*10)) / 10
	total := math.Round(liters * 1000 * (percent / 100))
	item := models.RecipeItem{
		ID:     Aloe,
		Name:   "Aloe vera juice",
		Amount: fmt.Sprintf("%s ml per L (%s ml total)", formatNumber(perL), formatNumber(total)),
	}
	if percent > 10 {
		item.Note = "Consider ~5% v/v for microbe-friendly brews"
	}
	return item
}

func carbLine(rc models.RecipeContext) (models.RecipeItem, bool) {
	def, hasDefault := stageCarbDefaults[rc.Stage]

	unit := rc.CarbsUnit
	if unit == "" {
		unit = models.CarbUnitMl
		if hasDefault {
			unit = def.Unit
		}
	}
	key := rc.CarbsSourceKey
	if key == "" {
		key = def.SourceKey
	}
	sourceID, _ := SourceKeyIngredient(key)

	var ing *models.Ingredient
	base := liquidCarbNote
	if unit == models.CarbUnitG {
		ing = firstKnown(sourceID, PearlMillet, OatFlour)
		base = dryCarbNote
	} else {
		ing = firstKnown(sourceID, Molasses)
	}
	if ing == nil {
		return models.RecipeItem{}, false
	}

	desired := ing.DosageRange.DefaultOrMin()
	switch {
	case rc.CarbsPerL != nil:
		desired = *rc.CarbsPerL
	case hasDefault:
		desired = def.Dose
	}
	perL := ing.DosageRange.Clamp(desired)

	label := strings.TrimSpace(rc.CarbsSource)
	if label == "" {
		label = def.SourceLabel
	}
	if label == "" {
		label = ing.Name
	}

	note := base
	if def.Note != "" {
		note += "; " + def.Note
	}

	return models.RecipeItem{
		ID:     ing.ID,
		Name:   label,
		Amount: perLiterAmount(ing.DosageRange.Unit, perL, rc.VolumeLiters),
		Note:   note,
	}, true
}

func firstKnown(ids ...string) *models.Ingredient {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if ing, ok := lookup(id); ok {
			return ing
		}
	}
	return nil
}

// perLiterAmount formats "<perL> <unit> per L (<total> <unit> total)".
// Catalog units are per liter already ("ml/L"), so the suffix is dropped.
func perLiterAmount(unit string, perL, liters float64) string {
	unit = strings.TrimSuffix(unit, "/L")
	return fmt.Sprintf("%s %s per L (%s %s total)",
		formatNumber(round2(perL)), unit, formatNumber(round2(perL*liters)), unit)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

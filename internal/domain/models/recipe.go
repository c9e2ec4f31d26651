package models

// Stage is a growth-cycle phase
type Stage string

const (
	StageSeedling    Stage = "seedling"
	StageVeg         Stage = "veg"
	StageEarlyFlower Stage = "early-flower"
	StageLateFlower  Stage = "late-flower"
)

// Stages lists every stage in growth order
var Stages = []Stage{StageSeedling, StageVeg, StageEarlyFlower, StageLateFlower}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

type CarbUnit string

const (
	CarbUnitMl CarbUnit = "ml"
	CarbUnitG  CarbUnit = "g"
)

func (u CarbUnit) Valid() bool {
	return u == CarbUnitMl || u == CarbUnitG
}

type CarbSourceKey string

const (
	CarbSourceMolasses CarbSourceKey = "molasses"
	CarbSourceMillet   CarbSourceKey = "millet"
	CarbSourceOat      CarbSourceKey = "oat"
	CarbSourceOther    CarbSourceKey = "other"
)

func (k CarbSourceKey) Valid() bool {
	switch k {
	case CarbSourceMolasses, CarbSourceMillet, CarbSourceOat, CarbSourceOther:
		return true
	}
	return false
}

// RecipeContext is the input of a stage recipe build. Nil pointers mean
// "not overridden"; IncludeCarbs defaults to true.
type RecipeContext struct {
	Stage          Stage         `json:"stage"`
	VolumeLiters   float64       `json:"volume_liters"`
	AloePercent    float64       `json:"aloe_percent"`
	YuccaAvailable bool          `json:"yucca_available"`
	AloeAvailable  bool          `json:"aloe_available"`
	OnHand         []string      `json:"on_hand"`
	IncludeCarbs   *bool         `json:"include_carbs,omitempty"`
	CarbsPerL      *float64      `json:"carbs_per_l,omitempty"`
	CarbsSource    string        `json:"carbs_source,omitempty"`
	CarbsUnit      CarbUnit      `json:"carbs_unit,omitempty"`
	CarbsSourceKey CarbSourceKey `json:"carbs_source_key,omitempty"`
}

// CarbsIncluded is false only when carbs were explicitly disabled
func (c RecipeContext) CarbsIncluded() bool {
	return c.IncludeCarbs == nil || *c.IncludeCarbs
}

// RecipeItem is one line of a built recipe
type RecipeItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// StageCarbDefault seeds the carbohydrate line for a stage
type StageCarbDefault struct {
	Unit        CarbUnit      `json:"unit"`
	Dose        float64       `json:"dose"`
	SourceKey   CarbSourceKey `json:"source_key"`
	SourceLabel string        `json:"source_label"`
	Note        string        `json:"note"`
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }

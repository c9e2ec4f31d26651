package models

import "time"

// BrewInputs is the persisted brew form. CarbTouched records a manual
// carbohydrate edit so stage switches stop re-deriving carb defaults.
// The carb label and dose are always written, blank and null included, so
// a reload does not fill them back in from the defaults.
type BrewInputs struct {
	Stage          Stage         `json:"stage"`
	VolumeLiters   float64       `json:"volume_liters"`
	AloePercent    float64       `json:"aloe_percent"`
	YuccaAvailable bool          `json:"yucca_available"`
	AloeAvailable  bool          `json:"aloe_available"`
	Region         string        `json:"region,omitempty"`
	IncludeCarbs   *bool         `json:"include_carbs,omitempty"`
	CarbsDosePerL  *float64      `json:"carbs_dose_per_l"`
	CarbsSource    string        `json:"carbs_source"`
	CarbsUnit      CarbUnit      `json:"carbs_unit,omitempty"`
	CarbsSourceKey CarbSourceKey `json:"carbs_source_key,omitempty"`
	CarbTouched    bool          `json:"carb_touched,omitempty"`
}

// CarbsIncluded is false only when carbs were explicitly disabled
func (in BrewInputs) CarbsIncluded() bool {
	return in.IncludeCarbs == nil || *in.IncludeCarbs
}

// BrewPreset is a named snapshot of brew inputs
type BrewPreset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Inputs    BrewInputs `json:"inputs"`
	CreatedAt time.Time  `json:"created_at"`
}

// BrewPresets is stored as one document, newest first
type BrewPresets struct {
	Items []BrewPreset `json:"items"`
}

// BrewTimer holds the start of the running 24h brew, nil when idle
type BrewTimer struct {
	StartedAt *time.Time `json:"ts"`
}

// TimerStatus is a point-in-time reading of the brew timer
type TimerStatus struct {
	Running          bool       `json:"running"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	Elapsed          string     `json:"elapsed"`
	Remaining        string     `json:"remaining"`
	ElapsedSeconds   int64      `json:"elapsed_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

// CarbsPatch carries partial carbohydrate edits
type CarbsPatch struct {
	IncludeCarbs *bool          `json:"include_carbs,omitempty"`
	DosePerL     *float64       `json:"dose_per_l,omitempty"`
	Unit         *CarbUnit      `json:"unit,omitempty"`
	SourceKey    *CarbSourceKey `json:"source_key,omitempty"`
	Source       *string        `json:"source,omitempty"`
}

type Advice struct {
	Primary string   `json:"primary"`
	Options []string `json:"options"`
}

type WarningLevel string

const (
	WarningOK      WarningLevel = "ok"
	WarningCaution WarningLevel = "caution"
	WarningHigh    WarningLevel = "high"
)

type AloeWarning struct {
	Level   WarningLevel `json:"level"`
	Message string       `json:"message"`
}

// BrewAdvice bundles the advice panels for the current inputs
type BrewAdvice struct {
	Surfactant   Advice      `json:"surfactant"`
	Biostimulant Advice      `json:"biostimulant"`
	AloeWarning  AloeWarning `json:"aloe_warning"`
}

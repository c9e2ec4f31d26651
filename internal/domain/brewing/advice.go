package brewing

import (
	"fmt"
	"strings"

	"github.com/ak/sba/internal/domain/models"
)

// Aloe concentration thresholds, in % v/v
const (
	AloeCautionPercent = 10
	AloeHighPercent    = 25
)

var aloeAlternatives = []struct{ id, reason string }{
	{Seaweed, "Widely available hormonal/alginate biostimulant"},
	{Humic, "Soil CEC/chelation; pairs with fulvic"},
	{Fulvic, "Small-molecule chelation; improves nutrient uptake"},
	{Comfrey, "Grow-your-own leafy tonic; potassium-rich"},
}

// NormalizeRegion upper-cases region and falls back to GLOBAL when blank
func NormalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return models.RegionGlobal
	}
	return region
}

// SurfactantAdvice explains the wetting-agent choice. Without yucca it
// lists the advisor's alternatives to yucca for the given region.
func SurfactantAdvice(yuccaAvailable bool, region string, onHand []string) models.Advice {
	if yuccaAvailable {
		return models.Advice{
			Primary: "Yucca is available. Typical dose: 0.05-0.1 ml/L as a wetting agent.",
			Options: []string{},
		}
	}
	suggestions := SuggestSubstitutes(Yucca, models.SubstitutionContext{
		Region:      NormalizeRegion(region),
		OnHand:      onHand,
		DesiredRole: models.RoleSurfactant,
	})
	options := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		line := fmt.Sprintf("%s: %s", s.ID, s.Reason)
		if s.Dosage != "" {
			line += " - " + s.Dosage
		}
		options = append(options, line)
	}
	return models.Advice{
		Primary: "Yucca not available. Suggesting functional alternatives:",
		Options: options,
	}
}

// BiostimulantAdvice lists accessible biostimulants when aloe is missing
func BiostimulantAdvice(aloeAvailable bool) models.Advice {
	if aloeAvailable {
		return models.Advice{
			Primary: "Aloe selected by default for microbe-friendly brews (~5% v/v).",
			Options: []string{},
		}
	}
	options := make([]string, 0, len(aloeAlternatives))
	for _, alt := range aloeAlternatives {
		options = append(options, fmt.Sprintf("%s: %s", alt.id, alt.reason))
	}
	return models.Advice{
		Primary: "Aloe not available. Consider these accessible biostimulants:",
		Options: options,
	}
}

// AloeWarningFor grades an aloe concentration
func AloeWarningFor(percent float64) models.AloeWarning {
	switch {
	case percent > AloeHighPercent:
		return models.AloeWarning{
			Level:   models.WarningHigh,
			Message: "Warning: >25% v/v may inhibit microbes. Reduce to ~5% for Lactobacillus-friendly brews.",
		}
	case percent > AloeCautionPercent:
		return models.AloeWarning{
			Level:   models.WarningCaution,
			Message: "Caution: Consider reducing aloe to around 5% v/v for microbe-friendly conditions.",
		}
	}
	return models.AloeWarning{
		Level:   models.WarningOK,
		Message: "Aloe at ~5% v/v supports Lactobacillus and adds hormones/saponins.",
	}
}

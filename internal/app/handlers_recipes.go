package app

import (
	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/gin-gonic/gin"
)

// BuildRecipeRequest is a full recipe context. Omitted carb fields fall
// back to the stage defaults.
type BuildRecipeRequest struct {
	Stage          string   `json:"stage" binding:"required,brewstage"`
	VolumeLiters   float64  `json:"volume_liters" binding:"gt=0"`
	AloePercent    float64  `json:"aloe_percent" binding:"gte=0,lte=100"`
	YuccaAvailable bool     `json:"yucca_available"`
	AloeAvailable  bool     `json:"aloe_available"`
	OnHand         []string `json:"on_hand"`
	IncludeCarbs   *bool    `json:"include_carbs"`
	CarbsPerL      *float64 `json:"carbs_per_l" binding:"omitempty,gte=0"`
	CarbsSource    string   `json:"carbs_source" binding:"max=200"`
	CarbsUnit      string   `json:"carbs_unit" binding:"omitempty,carbunit"`
	CarbsSourceKey string   `json:"carbs_source_key" binding:"omitempty,oneof=molasses millet oat other"`
}

func (r BuildRecipeRequest) context() models.RecipeContext {
	return models.RecipeContext{
		Stage:          models.Stage(r.Stage),
		VolumeLiters:   r.VolumeLiters,
		AloePercent:    r.AloePercent,
		YuccaAvailable: r.YuccaAvailable,
		AloeAvailable:  r.AloeAvailable,
		OnHand:         r.OnHand,
		IncludeCarbs:   r.IncludeCarbs,
		CarbsPerL:      r.CarbsPerL,
		CarbsSource:    r.CarbsSource,
		CarbsUnit:      models.CarbUnit(r.CarbsUnit),
		CarbsSourceKey: models.CarbSourceKey(r.CarbsSourceKey),
	}
}

// Recipe handlers

func (a *Application) buildRecipe(c *gin.Context) {
	var req BuildRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}

	rc := req.context()
	items := brewing.BuildStageRecipe(rc)
	a.metrics.RecipeBuilt(req.Stage)

	successResponse(c, gin.H{
		"items": items,
		"text": export.RecipeText(export.RecipeHeader{
			Stage:        rc.Stage,
			VolumeLiters: rc.VolumeLiters,
			AloePercent:  rc.AloePercent,
		}, items),
	})
}

func (a *Application) stageDefaults(c *gin.Context) {
	successResponse(c, brewing.StageCarbDefaultsTable())
}

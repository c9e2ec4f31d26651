package app

import (
	"net/http"
	"strconv"

	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/services"
	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/gin-gonic/gin"
)

// QR code edge bounds in pixels
const (
	minQRSize = 64
	maxQRSize = 1024
)

type ChangeStageRequest struct {
	Stage string `json:"stage" binding:"required,brewstage"`
}

type SavePresetRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Brew session handlers

func (a *Application) getBrewInputs(c *gin.Context) {
	in, err := a.brew.Inputs(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, in)
}

func (a *Application) saveBrewInputs(c *gin.Context) {
	var req models.BrewInputs
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}

	in, err := a.brew.SaveInputs(c.Request.Context(), req)
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, in)
}

func (a *Application) changeStage(c *gin.Context) {
	var req ChangeStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}
	stage, err := brewing.ParseStage(req.Stage)
	if err != nil {
		a.handleError(c, err)
		return
	}

	in, err := a.brew.ChangeStage(c.Request.Context(), stage)
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, in)
}

func (a *Application) updateCarbs(c *gin.Context) {
	var patch models.CarbsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		a.bindError(c, err)
		return
	}
	if patch.Unit != nil && !patch.Unit.Valid() {
		errorResponse(c, apperrors.Validation("carbs unit must be ml or g"))
		return
	}
	if patch.SourceKey != nil && !patch.SourceKey.Valid() {
		errorResponse(c, apperrors.Validation("unknown carbs source key"))
		return
	}

	in, err := a.brew.UpdateCarbs(c.Request.Context(), patch)
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, in)
}

func (a *Application) brewRecipe(c *gin.Context) {
	recipe, err := a.brew.Recipe(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	a.metrics.RecipeBuilt(string(recipe.Inputs.Stage))
	successResponse(c, recipe)
}

func (a *Application) exportBrewRecipe(c *gin.Context) {
	format := c.DefaultQuery("format", services.FormatText)

	body, contentType, err := a.brew.ExportRecipe(c.Request.Context(), format)
	if err != nil {
		a.handleError(c, err)
		return
	}

	filename := "recipe.txt"
	if contentType == export.ContentTypeCSV {
		filename = "recipe.csv"
	}
	downloadResponse(c, filename, contentType, body)
}

func (a *Application) brewRecipeQRCode(c *gin.Context) {
	size := export.DefaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			errorResponse(c, apperrors.InvalidInput("size must be an integer between 64 and 1024"))
			return
		}
		size = n
	}

	png, err := a.brew.RecipeQRCode(c.Request.Context(), size)
	if err != nil {
		a.handleError(c, err)
		return
	}
	c.Data(http.StatusOK, export.ContentTypePNG, png)
}

func (a *Application) brewAdvice(c *gin.Context) {
	advice, err := a.brew.Advice(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, advice)
}

func (a *Application) saveDraftLog(c *gin.Context) {
	draft, err := a.brew.SaveDraftLog(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	createdResponse(c, draft)
}

// Presets

func (a *Application) listPresets(c *gin.Context) {
	presets, err := a.brew.ListPresets(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	listResponse(c, presets, len(presets))
}

func (a *Application) savePreset(c *gin.Context) {
	var req SavePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}

	preset, err := a.brew.SavePreset(c.Request.Context(), req.Name)
	if err != nil {
		a.handleError(c, err)
		return
	}
	createdResponse(c, preset)
}

func (a *Application) applyPreset(c *gin.Context) {
	in, err := a.brew.ApplyPreset(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, in)
}

func (a *Application) deletePreset(c *gin.Context) {
	id := c.Param("id")
	if err := a.brew.DeletePreset(c.Request.Context(), id); err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, gin.H{
		"id":      id,
		"deleted": true,
	})
}

// Timer

func (a *Application) getTimer(c *gin.Context) {
	status, err := a.brew.Timer(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, status)
}

func (a *Application) startTimer(c *gin.Context) {
	status, err := a.brew.StartTimer(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, status)
}

func (a *Application) resetTimer(c *gin.Context) {
	status, err := a.brew.ResetTimer(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, status)
}

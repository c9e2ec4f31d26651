package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/ak/sba/internal/app/middleware"
	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/services"
	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is stamped at build time
var Version = "0.1.0"

// APIResponse is the standard API response format
type APIResponse struct {
	Success   bool                `json:"success"`
	Data      interface{}         `json:"data,omitempty"`
	Error     *apperrors.APIError `json:"error,omitempty"`
	Meta      *APIMeta            `json:"meta,omitempty"`
	Timestamp string              `json:"timestamp"`
}

type APIMeta struct {
	Total     int    `json:"total"`
	RequestID string `json:"request_id,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func listResponse(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Meta:      &APIMeta{Total: total},
		Timestamp: timestamp(),
	})
}

func errorResponse(c *gin.Context, err *apperrors.APIError) {
	c.JSON(err.HTTPStatus, APIResponse{
		Success:   false,
		Error:     err,
		Meta:      &APIMeta{RequestID: middleware.GetRequestID(c)},
		Timestamp: timestamp(),
	})
}

// downloadResponse serves an attachment such as a CSV export
func downloadResponse(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// bindError reports a request body that failed to decode or validate
func (a *Application) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		errorResponse(c, apperrors.PayloadTooLarge(tooLarge.Limit))
		return
	}
	errorResponse(c, apperrors.Validation(err.Error()))
}

// handleError maps service errors onto API errors. Anything unrecognised
// is treated as a storage failure.
func (a *Application) handleError(c *gin.Context, err error) {
	if apiErr, ok := apperrors.As(err); ok {
		errorResponse(c, apiErr)
		return
	}

	switch {
	case errors.Is(err, services.ErrLogNotFound):
		errorResponse(c, apperrors.NotFound("Log entry"))
	case errors.Is(err, services.ErrPresetNotFound):
		errorResponse(c, apperrors.NotFound("Preset"))
	case errors.Is(err, services.ErrUnknownIngredient):
		errorResponse(c, apperrors.NotFound("Ingredient"))
	case errors.Is(err, services.ErrPresetNameRequired),
		errors.Is(err, services.ErrInvalidInputs),
		errors.Is(err, brewing.ErrUnknownStage):
		errorResponse(c, apperrors.Validation(err.Error()))
	case errors.Is(err, services.ErrUnsupportedFormat):
		errorResponse(c, apperrors.InvalidInput(err.Error()))
	case errors.Is(err, services.ErrInvalidBackup):
		errorResponse(c, apperrors.InvalidBackup(err.Error()))
	default:
		a.metrics.StoreError(c.FullPath())
		a.logger.WithRequestID(middleware.GetRequestID(c)).WithError(err).Error("Request failed",
			zap.String("path", c.FullPath()),
		)
		_ = c.Error(err)
		errorResponse(c, apperrors.DatabaseError(err))
	}
}

// Health and info endpoints

func (a *Application) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": timestamp(),
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	if err := a.repos.Health(c.Request.Context()); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed", zap.String("driver", a.repos.Driver))
		errorResponse(c, apperrors.StorageUnavailable(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"driver":    a.repos.Driver,
		"timestamp": timestamp(),
	})
}

func (a *Application) apiInfo(c *gin.Context) {
	successResponse(c, gin.H{
		"name":        "SBA - Soil Biostimulant Assistant",
		"version":     Version,
		"description": "Brew planning for aerated biostimulant teas: catalog, substitutions, stage recipes and logs",
		"storage":     a.repos.Driver,
	})
}

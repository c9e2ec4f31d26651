package app

import (
	"strings"
	"time"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/services"
	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/gin-gonic/gin"
)

// logFilter reads plot, from and to from the query string. Dates must be
// ISO calendar dates.
func logFilter(c *gin.Context) (models.LogFilter, bool) {
	filter := models.LogFilter{
		Plot: strings.TrimSpace(c.Query("plot")),
		From: strings.TrimSpace(c.Query("from")),
		To:   strings.TrimSpace(c.Query("to")),
	}
	for name, v := range map[string]string{"from": filter.From, "to": filter.To} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(services.DateLayout, v); err != nil {
			errorResponse(c, apperrors.InvalidInput("invalid "+name+" date, expected YYYY-MM-DD"))
			return filter, false
		}
	}
	return filter, true
}

// Log handlers

func (a *Application) listLogs(c *gin.Context) {
	filter, ok := logFilter(c)
	if !ok {
		return
	}

	entries, err := a.logs.List(c.Request.Context(), filter)
	if err != nil {
		a.handleError(c, err)
		return
	}
	listResponse(c, entries, len(entries))
}

func (a *Application) createLog(c *gin.Context) {
	var req services.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}

	entry, err := a.logs.Add(c.Request.Context(), req)
	if err != nil {
		a.handleError(c, err)
		return
	}
	createdResponse(c, entry)
}

func (a *Application) exportLogs(c *gin.Context) {
	filter, ok := logFilter(c)
	if !ok {
		return
	}

	body, err := a.logs.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		a.handleError(c, err)
		return
	}
	downloadResponse(c, "logs.csv", export.ContentTypeCSV, body)
}

// takeDraftLog hands out the pending draft once; a second call finds nothing
func (a *Application) takeDraftLog(c *gin.Context) {
	draft, err := a.logs.TakeDraft(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	if draft == nil {
		errorResponse(c, apperrors.NotFound("Draft log"))
		return
	}
	successResponse(c, draft)
}

func (a *Application) deleteLog(c *gin.Context) {
	id := c.Param("id")
	if err := a.logs.Remove(c.Request.Context(), id); err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, gin.H{
		"id":      id,
		"deleted": true,
	})
}

func (a *Application) duplicateLog(c *gin.Context) {
	entry, err := a.logs.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.handleError(c, err)
		return
	}
	createdResponse(c, entry)
}

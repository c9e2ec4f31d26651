package app

import (
	"net/http"

	"github.com/ak/sba/internal/domain/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Backup handlers

// exportBackup returns the raw backup document so it can be posted back
// unchanged to importBackup
func (a *Application) exportBackup(c *gin.Context) {
	backup, err := a.backup.Export(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sba-backup.json"`)
	c.JSON(http.StatusOK, backup)
}

func (a *Application) importBackup(c *gin.Context) {
	var backup models.Backup
	if err := c.ShouldBindJSON(&backup); err != nil {
		a.bindError(c, err)
		return
	}

	result, err := a.backup.Import(c.Request.Context(), &backup)
	if err != nil {
		a.handleError(c, err)
		return
	}
	a.logger.Info("Backup imported",
		zap.Int("settings", result.Settings),
		zap.Int("logs", result.Logs),
		zap.Int("skipped", result.Skipped),
	)
	successResponse(c, result)
}

func (a *Application) clearAll(c *gin.Context) {
	if err := a.backup.Clear(c.Request.Context()); err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, gin.H{"cleared": true})
}

package app

import (
	"github.com/ak/sba/internal/pkg/export"
	"github.com/gin-gonic/gin"
)

type SetInventoryRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Inventory handlers

func (a *Application) getInventory(c *gin.Context) {
	inv, err := a.inventory.Get(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, inv)
}

func (a *Application) setInventory(c *gin.Context) {
	var req SetInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.bindError(c, err)
		return
	}

	inv, err := a.inventory.SetOnHand(c.Request.Context(), req.IDs)
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, inv)
}

func (a *Application) groupedInventory(c *gin.Context) {
	groups := a.inventory.Grouped()
	listResponse(c, groups, len(groups))
}

func (a *Application) exportInventory(c *gin.Context) {
	body, err := a.inventory.ExportCSV(c.Request.Context())
	if err != nil {
		a.handleError(c, err)
		return
	}
	downloadResponse(c, "inventory.csv", export.ContentTypeCSV, body)
}

func (a *Application) toggleInventory(c *gin.Context) {
	inv, err := a.inventory.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, inv)
}

func (a *Application) toggleFavorite(c *gin.Context) {
	inv, err := a.inventory.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.handleError(c, err)
		return
	}
	successResponse(c, inv)
}

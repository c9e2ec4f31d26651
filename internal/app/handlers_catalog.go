package app

import (
	"strings"

	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	apperrors "github.com/ak/sba/internal/pkg/errors"
	"github.com/gin-gonic/gin"
)

// unknownTarget labels substitution metrics for ids outside the catalog
const unknownTarget = "unknown"

// Catalog handlers

func (a *Application) listCatalog(c *gin.Context) {
	entries := brewing.ListCatalog()

	if role := models.FunctionalRole(c.Query("role")); role != "" {
		if !role.Valid() {
			errorResponse(c, apperrors.InvalidInput("unknown role: "+string(role)))
			return
		}
		filtered := make([]models.CatalogEntry, 0, len(entries))
		for _, e := range entries {
			for _, r := range e.Roles {
				if r == role {
					filtered = append(filtered, e)
					break
				}
			}
		}
		entries = filtered
	}

	listResponse(c, entries, len(entries))
}

func (a *Application) searchCatalog(c *gin.Context) {
	entries := a.inventory.Search(c.Query("q"))
	listResponse(c, entries, len(entries))
}

func (a *Application) getIngredient(c *gin.Context) {
	ing, ok := brewing.GetIngredient(c.Param("id"))
	if !ok {
		errorResponse(c, apperrors.NotFound("Ingredient"))
		return
	}
	successResponse(c, ing)
}

// suggestSubstitutes ranks alternatives for an ingredient. When on_hand is
// not given the saved inventory is used. An unknown id gives an empty list.
func (a *Application) suggestSubstitutes(c *gin.Context) {
	id := c.Param("id")

	role := models.FunctionalRole(c.Query("role"))
	if role != "" && !role.Valid() {
		errorResponse(c, apperrors.InvalidInput("unknown role: "+string(role)))
		return
	}

	region := c.Query("region")
	if strings.TrimSpace(region) == "" {
		region = a.config.Brew.DefaultRegion
	}

	var onHand []string
	if raw, ok := c.GetQuery("on_hand"); ok {
		onHand = splitList(raw)
	} else {
		ids, err := a.inventory.OnHand(c.Request.Context())
		if err != nil {
			a.handleError(c, err)
			return
		}
		onHand = ids
	}

	target := id
	if !brewing.KnownIngredient(target) {
		target = unknownTarget
	}
	a.metrics.SubstitutionRequested(target)

	suggestions := brewing.SuggestSubstitutes(id, models.SubstitutionContext{
		Region:      brewing.NormalizeRegion(region),
		OnHand:      onHand,
		DesiredRole: role,
	})
	listResponse(c, suggestions, len(suggestions))
}

// splitList parses a comma separated query value, dropping blanks
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package services

import (
	"context"
	"fmt"

	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/ak/sba/internal/pkg/logger"
	"go.uber.org/zap"
)

// InventoryService manages the on-hand ingredient set and favorites
type InventoryService interface {
	Get(ctx context.Context) (*models.Inventory, error)
	OnHand(ctx context.Context) ([]string, error)
	SetOnHand(ctx context.Context, ids []string) (*models.Inventory, error)
	Toggle(ctx context.Context, id string) (*models.Inventory, error)
	ToggleFavorite(ctx context.Context, id string) (*models.Inventory, error)
	Grouped() []models.RoleGroup
	Search(query string) []models.CatalogEntry
	ExportCSV(ctx context.Context) ([]byte, error)
}

type inventoryService struct {
	settings repositories.DocumentStore
	logger   *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(settings repositories.DocumentStore, log *logger.Logger) InventoryService {
	return &inventoryService{
		settings: settings,
		logger:   log.WithComponent("inventory"),
	}
}

func (s *inventoryService) Get(ctx context.Context) (*models.Inventory, error) {
	inv, err := repositories.GetDoc[models.Inventory](ctx, s.settings, models.DocInventory)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		inv = &models.Inventory{}
	}
	if inv.IDs == nil {
		inv.IDs = []string{}
	}
	if inv.Favorites == nil {
		inv.Favorites = []string{}
	}
	return inv, nil
}

func (s *inventoryService) OnHand(ctx context.Context) ([]string, error) {
	inv, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return inv.IDs, nil
}

func (s *inventoryService) SetOnHand(ctx context.Context, ids []string) (*models.Inventory, error) {
	inv, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	inv.IDs = brewing.CatalogOrder(ids)
	if err := s.save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("On-hand inventory replaced", zap.Int("count", len(inv.IDs)))
	return inv, nil
}

func (s *inventoryService) Toggle(ctx context.Context, id string) (*models.Inventory, error) {
	if !brewing.KnownIngredient(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, id)
	}
	inv, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	inv.IDs = brewing.CatalogOrder(toggle(inv.IDs, id))
	if err := s.save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *inventoryService) ToggleFavorite(ctx context.Context, id string) (*models.Inventory, error) {
	if !brewing.KnownIngredient(id) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, id)
	}
	inv, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	inv.Favorites = brewing.CatalogOrder(toggle(inv.Favorites, id))
	if err := s.save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *inventoryService) Grouped() []models.RoleGroup {
	return brewing.GroupByRole()
}

func (s *inventoryService) Search(query string) []models.CatalogEntry {
	return brewing.SearchCatalog(query)
}

func (s *inventoryService) ExportCSV(ctx context.Context) ([]byte, error) {
	inv, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.CatalogEntry, 0, len(inv.IDs))
	for _, e := range brewing.ListCatalog() {
		if inv.Has(e.ID) {
			entries = append(entries, e)
		}
	}
	return export.InventoryCSV(entries)
}

func (s *inventoryService) save(ctx context.Context, inv *models.Inventory) error {
	if err := repositories.UpsertDoc(ctx, s.settings, models.DocInventory, inv); err != nil {
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}

func toggle(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

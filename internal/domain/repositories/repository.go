package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ak/sba/internal/domain/models"
)

// DocumentStore is a keyed JSON document database. Get returns (nil, nil)
// for a missing id and Remove of a missing id is not an error.
type DocumentStore interface {
	Name() string
	Get(ctx context.Context, id string) (*models.Document, error)
	Put(ctx context.Context, doc *models.Document) error
	Remove(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*models.Document, error)
	Clear(ctx context.Context) error
}

// GetDoc loads and decodes document id into a T. It returns (nil, nil)
// when the document does not exist.
func GetDoc[T any](ctx context.Context, store DocumentStore, id string) (*T, error) {
	doc, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	if doc == nil {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(doc.Body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return &out, nil
}

// UpsertDoc encodes v and stores it under id, replacing any previous body
func UpsertDoc[T any](ctx context.Context, store DocumentStore, id string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", id, err)
	}
	if err := store.Put(ctx, &models.Document{ID: id, Body: body}); err != nil {
		return fmt.Errorf("failed to put document %s: %w", id, err)
	}
	return nil
}

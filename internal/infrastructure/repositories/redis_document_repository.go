package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/infrastructure/database"
	"github.com/redis/go-redis/v9"
)

// redisMaxRetries bounds optimistic transaction retries on contended keys
const redisMaxRetries = 5

// redisDocument is the hash field value; the hash key is the store name
type redisDocument struct {
	Rev       int64           `json:"rev"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type redisDocumentRepository struct {
	name   string
	key    string
	client *redis.Client
}

// NewRedisDocumentRepository stores one logical database in one hash
func NewRedisDocumentRepository(rdb *database.Redis, name string) repositories.DocumentStore {
	return &redisDocumentRepository{
		name:   name,
		key:    rdb.Key(name),
		client: rdb.Client(),
	}
}

func (r *redisDocumentRepository) Name() string {
	return r.name
}

func (r *redisDocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	raw, err := r.client.HGet(ctx, r.key, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRedisDocument(id, raw)
}

func (r *redisDocumentRepository) Put(ctx context.Context, doc *models.Document) error {
	var stored redisDocument

	txf := func(tx *redis.Tx) error {
		stored = redisDocument{Rev: 1, Body: doc.Body, UpdatedAt: time.Now().UTC()}
		prev, err := tx.HGet(ctx, r.key, doc.ID).Bytes()
		switch {
		case err == nil:
			var old redisDocument
			if err := json.Unmarshal(prev, &old); err == nil {
				stored.Rev = old.Rev + 1
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		value, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, doc.ID, value)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		doc.Rev = stored.Rev
		doc.UpdatedAt = stored.UpdatedAt
		return nil
	}
	return fmt.Errorf("put %s/%s: too many concurrent writers", r.name, doc.ID)
}

func (r *redisDocumentRepository) Remove(ctx context.Context, id string) error {
	return r.client.HDel(ctx, r.key, id).Err()
}

func (r *redisDocumentRepository) ListAll(ctx context.Context) ([]*models.Document, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(all))
	for id, raw := range all {
		doc, err := decodeRedisDocument(id, []byte(raw))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sortDocuments(docs)
	return docs, nil
}

func (r *redisDocumentRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func decodeRedisDocument(id string, raw []byte) (*models.Document, error) {
	var stored redisDocument
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return &models.Document{
		ID:        id,
		Rev:       stored.Rev,
		Body:      stored.Body,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDocument is the stored shape: the JSON body is kept as an embedded
// BSON document so it stays queryable from the mongo shell
type mongoDocument struct {
	ID        string    `bson:"_id"`
	Rev       int64     `bson:"rev"`
	Body      bson.Raw  `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type documentRepository struct {
	name       string
	collection *mongo.Collection
}

// NewDocumentRepository stores one logical database in one collection
func NewDocumentRepository(db *database.MongoDB, name string) repositories.DocumentStore {
	return &documentRepository{
		name:       name,
		collection: db.Collection(name),
	}
}

func (r *documentRepository) Name() string {
	return r.name
}

func (r *documentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	var stored mongoDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return stored.toModel()
}

func (r *documentRepository) Put(ctx context.Context, doc *models.Document) error {
	var body bson.D
	if err := bson.UnmarshalExtJSON(doc.Body, false, &body); err != nil {
		return fmt.Errorf("document body must be a JSON object: %w", err)
	}

	update := bson.M{
		"$set": bson.M{"body": body, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"rev": 1},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored mongoDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&stored); err != nil {
		return err
	}
	doc.Rev = stored.Rev
	doc.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *documentRepository) Remove(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *documentRepository) ListAll(ctx context.Context) ([]*models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stored []mongoDocument
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	docs := make([]*models.Document, 0, len(stored))
	for i := range stored {
		doc, err := stored[i].toModel()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *documentRepository) Clear(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (d *mongoDocument) toModel() (*models.Document, error) {
	body, err := bson.MarshalExtJSON(d.Body, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document %s: %w", d.ID, err)
	}
	return &models.Document{
		ID:        d.ID,
		Rev:       d.Rev,
		Body:      json.RawMessage(body),
		UpdatedAt: d.UpdatedAt,
	}, nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   config.MongoDBConfig
	logger   *logger.Logger
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(cfg config.MongoDBConfig, log *logger.Logger) (*MongoDB, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	return &MongoDB{
		config: cfg,
		logger: log.WithComponent("mongodb"),
	}, nil
}

// Connect establishes connection to MongoDB and prepares the given
// document collections
func (m *MongoDB) Connect(ctx context.Context, collections ...string) error {
	clientOpts := options.Client().
		ApplyURI(m.config.URI).
		SetMaxPoolSize(m.config.MaxPoolSize).
		SetMinPoolSize(m.config.MinPoolSize).
		SetConnectTimeout(m.config.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)
	m.logger.Info("Connected to MongoDB", zap.String("database", m.config.Database))

	if err := m.createIndexes(ctx, collections); err != nil {
		m.logger.Warn("Failed to create some indexes", zap.Error(err))
	}

	return nil
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Database returns the database instance
func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// Collection returns a collection by name
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// createIndexes adds the updated_at index used by backups and audits.
// Document ids are the collection _id, so no unique index is needed.
func (m *MongoDB) createIndexes(ctx context.Context, collections []string) error {
	var firstErr error
	for _, collection := range collections {
		idx := mongo.IndexModel{Keys: bson.D{{Key: "updated_at", Value: -1}}}
		if _, err := m.database.Collection(collection).Indexes().CreateOne(ctx, idx); err != nil {
			m.logger.Warn("Failed to create index",
				zap.String("collection", collection),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Health checks if MongoDB is healthy
func (m *MongoDB) Health(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("mongodb not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

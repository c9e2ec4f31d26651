package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	store      TEXT    NOT NULL,
	id         TEXT    NOT NULL,
	rev        INTEGER NOT NULL DEFAULT 1,
	body       TEXT    NOT NULL,
	updated_at TEXT    NOT NULL,
	PRIMARY KEY (store, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents (store, updated_at);
`

// SQLite wraps a single-writer sqlx handle on a local database file
type SQLite struct {
	db     *sqlx.DB
	path   string
	logger *logger.Logger
}

// NewSQLite opens (or creates) the database file and applies the schema
func NewSQLite(cfg config.SQLiteConfig, log *logger.Logger) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sqlx.Open("sqlite", cfg.Path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{db: db, path: cfg.Path, logger: log.WithComponent("sqlite")}
	s.logger.Info("Opened SQLite database", zap.String("path", cfg.Path))
	return s, nil
}

// DB returns the underlying handle
func (s *SQLite) DB() *sqlx.DB {
	return s.db
}

// Close closes the database
func (s *SQLite) Close(_ context.Context) error {
	return s.db.Close()
}

// Health pings the database
func (s *SQLite) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

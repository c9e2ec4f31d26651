package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/infrastructure/database"
	"github.com/jmoiron/sqlx"
)

type sqliteDocument struct {
	ID        string `db:"id"`
	Rev       int64  `db:"rev"`
	Body      string `db:"body"`
	UpdatedAt string `db:"updated_at"`
}

type sqliteDocumentRepository struct {
	name string
	db   *sqlx.DB
}

// NewSQLiteDocumentRepository stores one logical database as the rows of
// the shared documents table whose store column equals name
func NewSQLiteDocumentRepository(db *database.SQLite, name string) repositories.DocumentStore {
	return &sqliteDocumentRepository{name: name, db: db.DB()}
}

func (r *sqliteDocumentRepository) Name() string {
	return r.name
}

func (r *sqliteDocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	var row sqliteDocument
	err := r.db.GetContext(ctx, &row,
		`SELECT id, rev, body, updated_at FROM documents WHERE store = ? AND id = ?`, r.name, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r *sqliteDocumentRepository) Put(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	var rev int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO documents (store, id, rev, body, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (store, id) DO UPDATE SET
			rev = documents.rev + 1,
			body = excluded.body,
			updated_at = excluded.updated_at
		RETURNING rev`,
		r.name, doc.ID, string(doc.Body), now.Format(time.RFC3339Nano)).Scan(&rev)
	if err != nil {
		return err
	}
	doc.Rev = rev
	doc.UpdatedAt = now
	return nil
}

func (r *sqliteDocumentRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE store = ? AND id = ?`, r.name, id)
	return err
}

func (r *sqliteDocumentRepository) ListAll(ctx context.Context) ([]*models.Document, error) {
	var rows []sqliteDocument
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, rev, body, updated_at FROM documents WHERE store = ? ORDER BY id`, r.name)
	if err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].toModel())
	}
	return docs, nil
}

func (r *sqliteDocumentRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE store = ?`, r.name)
	return err
}

func (d *sqliteDocument) toModel() *models.Document {
	updated, _ := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return &models.Document{
		ID:        d.ID,
		Rev:       d.Rev,
		Body:      json.RawMessage(d.Body),
		UpdatedAt: updated,
	}
}

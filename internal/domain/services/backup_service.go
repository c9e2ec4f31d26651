package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/pkg/logger"
	"go.uber.org/zap"
)

// BackupService exports, restores and wipes both document databases
type BackupService interface {
	Export(ctx context.Context) (*models.Backup, error)
	Import(ctx context.Context, backup *models.Backup) (*ImportResult, error)
	Clear(ctx context.Context) error
}

// ImportResult counts restored documents per database
type ImportResult struct {
	Settings int `json:"settings"`
	Logs     int `json:"logs"`
	Skipped  int `json:"skipped"`
}

type backupService struct {
	settings repositories.DocumentStore
	logs     repositories.DocumentStore
	logger   *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(settings, logs repositories.DocumentStore, log *logger.Logger) BackupService {
	return &backupService{
		settings: settings,
		logs:     logs,
		logger:   log.WithComponent("backup"),
	}
}

func (s *backupService) Export(ctx context.Context) (*models.Backup, error) {
	settings, err := exportStore(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	logs, err := exportStore(ctx, s.logs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Backup exported", zap.Int("settings", len(settings)), zap.Int("logs", len(logs)))
	return &models.Backup{Settings: settings, Logs: logs}, nil
}

// exportStore returns each document body with its "_id" merged in
func exportStore(ctx context.Context, store repositories.DocumentStore) ([]json.RawMessage, error) {
	docs, err := store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", store.Name(), err)
	}
	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(doc.Body, &fields); err != nil {
			return nil, fmt.Errorf("document %s/%s is not an object: %w", store.Name(), doc.ID, err)
		}
		id, _ := json.Marshal(doc.ID)
		fields["_id"] = id
		item, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Import replaces both databases with the backup contents. Items without
// a non-empty string "_id" are skipped. The payload is validated before
// anything is wiped, but a write failing after the wipe leaves a partial
// restore; the error names the document and how many were written.
func (s *backupService) Import(ctx context.Context, backup *models.Backup) (*ImportResult, error) {
	if backup == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidBackup)
	}

	settings, skippedSettings, err := parseBackupItems(backup.Settings)
	if err != nil {
		return nil, err
	}
	logs, skippedLogs, err := parseBackupItems(backup.Logs)
	if err != nil {
		return nil, err
	}

	if err := s.Clear(ctx); err != nil {
		return nil, err
	}
	if err := s.restore(ctx, s.settings, settings); err != nil {
		return nil, err
	}
	if err := s.restore(ctx, s.logs, logs); err != nil {
		return nil, err
	}

	result := &ImportResult{Settings: len(settings), Logs: len(logs), Skipped: skippedSettings + skippedLogs}
	s.logger.Info("Backup imported",
		zap.Int("settings", result.Settings),
		zap.Int("logs", result.Logs),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// restore writes docs in order and stops at the first failed write. The
// documents already written stay in place.
func (s *backupService) restore(ctx context.Context, store repositories.DocumentStore, docs []*models.Document) error {
	for i, doc := range docs {
		if err := store.Put(ctx, doc); err != nil {
			s.logger.WithStore(store.Name()).WithError(err).Error("Backup restore stopped",
				zap.String("id", doc.ID),
				zap.Int("restored", i),
				zap.Int("total", len(docs)))
			return fmt.Errorf("failed to restore %s/%s after %d of %d documents: %w", store.Name(), doc.ID, i, len(docs), err)
		}
	}
	return nil
}

// parseBackupItems validates every item before anything is wiped
func parseBackupItems(items []json.RawMessage) ([]*models.Document, int, error) {
	docs := make([]*models.Document, 0, len(items))
	skipped := 0
	for i, item := range items {
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, 0, fmt.Errorf("%w: item %d is not an object", ErrInvalidBackup, i)
		}
		var id string
		if raw, ok := fields["_id"]; ok {
			_ = json.Unmarshal(raw, &id)
		}
		if id == "" {
			skipped++
			continue
		}
		delete(fields, "_id")
		delete(fields, "_rev")
		body, err := json.Marshal(fields)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, &models.Document{ID: id, Body: body})
	}
	return docs, skipped, nil
}

func (s *backupService) Clear(ctx context.Context) error {
	if err := s.settings.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.settings.Name(), err)
	}
	if err := s.logs.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.logs.Name(), err)
	}
	s.logger.Info("All documents cleared")
	return nil
}

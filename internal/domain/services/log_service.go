package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DateLayout is the ISO calendar date used for log entries
const DateLayout = "2006-01-02"

// LogService handles brew log entries and the one-shot draft
type LogService interface {
	Add(ctx context.Context, req CreateLogRequest) (*models.LogEntry, error)
	Get(ctx context.Context, id string) (*models.LogEntry, error)
	Remove(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (*models.LogEntry, error)
	List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, error)
	ExportCSV(ctx context.Context, filter models.LogFilter) ([]byte, error)
	SaveDraft(ctx context.Context, entry models.LogEntry) error
	TakeDraft(ctx context.Context) (*models.LogEntry, error)
}

type CreateLogRequest struct {
	Date            string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Plot            string `json:"plot" binding:"max=200"`
	BatchNote       string `json:"batch_note" binding:"max=2000"`
	ApplicationRate string `json:"application_rate" binding:"max=200"`
	Outcomes        string `json:"outcomes" binding:"max=10000"`
}

type logService struct {
	logs   repositories.DocumentStore
	logger *logger.Logger
	now    func() time.Time
}

// NewLogService creates a new log service
func NewLogService(logs repositories.DocumentStore, log *logger.Logger) LogService {
	return &logService{
		logs:   logs,
		logger: log.WithComponent("logs"),
		now:    time.Now,
	}
}

func (s *logService) today() string {
	return s.now().Format(DateLayout)
}

func (s *logService) Add(ctx context.Context, req CreateLogRequest) (*models.LogEntry, error) {
	entry := &models.LogEntry{
		ID:              uuid.NewString(),
		Date:            strings.TrimSpace(req.Date),
		Plot:            strings.TrimSpace(req.Plot),
		BatchNote:       req.BatchNote,
		ApplicationRate: req.ApplicationRate,
		Outcomes:        req.Outcomes,
	}
	if entry.Date == "" {
		entry.Date = s.today()
	}

	if err := repositories.UpsertDoc(ctx, s.logs, entry.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to add log entry: %w", err)
	}
	s.logger.Info("Log entry added", zap.String("id", entry.ID), zap.String("date", entry.Date))
	return entry, nil
}

func (s *logService) Get(ctx context.Context, id string) (*models.LogEntry, error) {
	if id == models.DocDraftLog {
		return nil, ErrLogNotFound
	}
	entry, err := repositories.GetDoc[models.LogEntry](ctx, s.logs, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrLogNotFound
	}
	entry.ID = id
	return entry, nil
}

func (s *logService) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.logs.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove log entry: %w", err)
	}
	s.logger.Info("Log entry removed", zap.String("id", id))
	return nil
}

func (s *logService) Duplicate(ctx context.Context, id string) (*models.LogEntry, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := *src
	dup.ID = uuid.NewString()
	dup.Date = s.today()

	if err := repositories.UpsertDoc(ctx, s.logs, dup.ID, &dup); err != nil {
		return nil, fmt.Errorf("failed to duplicate log entry: %w", err)
	}
	return &dup, nil
}

func (s *logService) List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, error) {
	docs, err := s.logs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}

	entries := make([]*models.LogEntry, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == models.DocDraftLog {
			continue
		}
		var entry models.LogEntry
		if err := decodeBody(doc, &entry); err != nil {
			s.logger.Warn("Skipping unreadable log entry", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		entry.ID = doc.ID
		if filter.Matches(&entry) {
			entries = append(entries, &entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *logService) ExportCSV(ctx context.Context, filter models.LogFilter) ([]byte, error) {
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return export.LogsCSV(entries)
}

func (s *logService) SaveDraft(ctx context.Context, entry models.LogEntry) error {
	entry.ID = models.DocDraftLog
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if err := repositories.UpsertDoc(ctx, s.logs, models.DocDraftLog, entry); err != nil {
		return fmt.Errorf("failed to save draft log: %w", err)
	}
	return nil
}

// TakeDraft returns the pending draft and removes it, or (nil, nil) when
// there is none
func (s *logService) TakeDraft(ctx context.Context) (*models.LogEntry, error) {
	draft, err := repositories.GetDoc[models.LogEntry](ctx, s.logs, models.DocDraftLog)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, nil
	}
	if err := s.logs.Remove(ctx, models.DocDraftLog); err != nil {
		return nil, fmt.Errorf("failed to consume draft log: %w", err)
	}
	draft.ID = ""
	return draft, nil
}

var errEmptyBody = errors.New("empty document body")

func decodeBody(doc *models.Document, v any) error {
	if len(doc.Body) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(doc.Body, v)
}

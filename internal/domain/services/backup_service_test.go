package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/pkg/logger"
)

type BackupServiceSuite struct {
	suite.Suite
	svc *testServices
}

func (s *BackupServiceSuite) SetupTest() {
	s.svc = newTestServices()
}

func (s *BackupServiceSuite) TestExportImportRoundTrip() {
	// Arrange
	_, err := s.svc.inventory.SetOnHand(bg, []string{"yucca", "seaweed"})
	s.Require().NoError(err)
	entry, err := s.svc.logs.Add(bg, CreateLogRequest{Date: "2024-05-05", Plot: "East"})
	s.Require().NoError(err)

	exported, err := s.svc.backup.Export(bg)
	s.Require().NoError(err)
	s.Require().Len(exported.Settings, 1)
	s.Require().Len(exported.Logs, 1)

	var inv map[string]any
	s.Require().NoError(json.Unmarshal(exported.Settings[0], &inv))
	s.Equal("inventory", inv["_id"])

	// Act: wipe, then restore from the export
	s.Require().NoError(s.svc.backup.Clear(bg))
	empty, err := s.svc.logs.List(bg, models.LogFilter{})
	s.Require().NoError(err)
	s.Empty(empty)

	result, err := s.svc.backup.Import(bg, exported)

	// Assert
	s.Require().NoError(err)
	s.Equal(&ImportResult{Settings: 1, Logs: 1}, result)

	onHand, err := s.svc.inventory.OnHand(bg)
	s.Require().NoError(err)
	s.Equal([]string{"yucca", "seaweed"}, onHand)

	restored, err := s.svc.logs.Get(bg, entry.ID)
	s.Require().NoError(err)
	s.Equal("East", restored.Plot)

	doc, err := s.svc.stores.settings.Get(bg, models.DocInventory)
	s.Require().NoError(err)
	s.NotContains(string(doc.Body), "_id")
}

func (s *BackupServiceSuite) TestImport_ReplacesAndSkipsItemsWithoutID() {
	_, err := s.svc.inventory.SetOnHand(bg, []string{"aloe"})
	s.Require().NoError(err)

	backup := &models.Backup{
		Settings: []json.RawMessage{
			json.RawMessage(`{"_id":"brew-timer","_rev":"3-abc","ts":null}`),
			json.RawMessage(`{"ids":["humic"]}`),
			json.RawMessage(`{"_id":"","ids":["fulvic"]}`),
		},
	}

	result, err := s.svc.backup.Import(bg, backup)

	s.Require().NoError(err)
	s.Equal(1, result.Settings)
	s.Equal(2, result.Skipped)

	inv, err := s.svc.stores.settings.Get(bg, models.DocInventory)
	s.Require().NoError(err)
	s.Nil(inv, "import wipes documents absent from the backup")

	timer, err := s.svc.stores.settings.Get(bg, models.DocBrewTimer)
	s.Require().NoError(err)
	s.JSONEq(`{"ts":null}`, string(timer.Body))
}

func (s *BackupServiceSuite) TestImport_InvalidItemLeavesDataUntouched() {
	_, err := s.svc.inventory.SetOnHand(bg, []string{"aloe"})
	s.Require().NoError(err)

	_, err = s.svc.backup.Import(bg, &models.Backup{Logs: []json.RawMessage{json.RawMessage(`[1,2]`)}})

	s.ErrorIs(err, ErrInvalidBackup)
	onHand, err := s.svc.inventory.OnHand(bg)
	s.Require().NoError(err)
	s.Equal([]string{"aloe"}, onHand)
}

func (s *BackupServiceSuite) TestImport_NilBackup() {
	_, err := s.svc.backup.Import(bg, nil)

	s.ErrorIs(err, ErrInvalidBackup)
}

// failingStore rejects writes of one document id
type failingStore struct {
	repositories.DocumentStore
	failID string
}

func (f failingStore) Put(ctx context.Context, doc *models.Document) error {
	if doc.ID == f.failID {
		return errors.New("disk full")
	}
	return f.DocumentStore.Put(ctx, doc)
}

func (s *BackupServiceSuite) TestImport_WriteFailureReportsProgress() {
	// Arrange
	core, logs := observer.New(zap.ErrorLevel)
	settings := failingStore{DocumentStore: s.svc.stores.settings, failID: models.DocBrewInputs}
	backup := NewBackupService(settings, s.svc.stores.logs, &logger.Logger{Logger: zap.New(core)})
	payload := &models.Backup{
		Settings: []json.RawMessage{
			json.RawMessage(`{"_id":"inventory","ids":["aloe"]}`),
			json.RawMessage(`{"_id":"` + models.DocBrewInputs + `","stage":"veg"}`),
			json.RawMessage(`{"_id":"` + models.DocBrewTimer + `","running":false}`),
		},
	}

	// Act
	_, err := backup.Import(bg, payload)

	// Assert
	s.Require().Error(err)
	s.Contains(err.Error(), "after 1 of 3 documents")
	s.Contains(err.Error(), "disk full")

	stopped := logs.FilterMessage("Backup restore stopped").All()
	s.Require().Len(stopped, 1)
	fields := stopped[0].ContextMap()
	s.Equal(models.DocBrewInputs, fields["id"])
	s.Equal(int64(1), fields["restored"])
	s.Equal("sba-settings", fields["store"])

	kept, err := s.svc.stores.settings.Get(bg, models.DocInventory)
	s.Require().NoError(err)
	s.NotNil(kept)
	missing, err := s.svc.stores.settings.Get(bg, models.DocBrewTimer)
	s.Require().NoError(err)
	s.Nil(missing)
}

func TestBackupService(t *testing.T) {
	suite.Run(t, new(BackupServiceSuite))
}

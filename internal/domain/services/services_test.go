package services

import (
	"context"
	"time"

	"github.com/ak/sba/internal/domain/repositories"
	infra "github.com/ak/sba/internal/infrastructure/repositories"
	"github.com/ak/sba/internal/pkg/logger"
)

// fixedClock is 2024-06-01 10:00 UTC, a Saturday mid-season
var fixedClock = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type testStores struct {
	settings repositories.DocumentStore
	logs     repositories.DocumentStore
}

func newTestStores() testStores {
	return testStores{
		settings: infra.NewMemoryDocumentRepository("sba-settings"),
		logs:     infra.NewMemoryDocumentRepository("sba-logs"),
	}
}

type testServices struct {
	stores    testStores
	inventory InventoryService
	logs      LogService
	brew      BrewService
	backup    BackupService
	clock     *time.Time
}

func newTestServices() *testServices {
	stores := newTestStores()
	log := logger.Nop()
	clock := fixedClock

	inv := NewInventoryService(stores.settings, log)
	logs := NewLogService(stores.logs, log)
	brew := NewBrewService(stores.settings, inv, logs, "GLOBAL", log)

	ts := &testServices{
		stores:    stores,
		inventory: inv,
		logs:      logs,
		brew:      brew,
		backup:    NewBackupService(stores.settings, stores.logs, log),
		clock:     &clock,
	}
	brew.(*brewService).now = func() time.Time { return *ts.clock }
	logs.(*logService).now = func() time.Time { return *ts.clock }
	return ts
}

func (ts *testServices) advance(d time.Duration) {
	*ts.clock = ts.clock.Add(d)
}

var bg = context.Background()

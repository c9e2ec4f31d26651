package models

import (
	"encoding/json"
	"time"
)

// Document is a keyed JSON body held by a document store
type Document struct {
	ID        string          `json:"_id"`
	Rev       int64           `json:"_rev"`
	Body      json.RawMessage `json:"body"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Well-known document ids
const (
	DocInventory   = "inventory"
	DocBrewInputs  = "brew"
	DocBrewPresets = "brew-presets"
	DocBrewTimer   = "brew-timer"
	DocDraftLog    = "draft-log"
)

// Backup is the export/import payload of both databases. Each item is a
// document body carrying its "_id".
type Backup struct {
	Settings []json.RawMessage `json:"settings"`
	Logs     []json.RawMessage `json:"logs"`
}

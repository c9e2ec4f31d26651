package models

import "strings"

// LogEntry records one applied brew batch
type LogEntry struct {
	ID              string `json:"id"`
	Date            string `json:"date"` // YYYY-MM-DD
	Plot            string `json:"plot"`
	BatchNote       string `json:"batch_note"`
	ApplicationRate string `json:"application_rate"`
	Outcomes        string `json:"outcomes"`
}

// LogFilter narrows a log listing. From and To are inclusive ISO dates.
type LogFilter struct {
	Plot string
	From string
	To   string
}

// Matches reports whether e passes the filter
func (f LogFilter) Matches(e *LogEntry) bool {
	if f.Plot != "" && !strings.Contains(strings.ToLower(e.Plot), strings.ToLower(f.Plot)) {
		return false
	}
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	return true
}

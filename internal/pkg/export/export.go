// Package export renders recipes, logs and inventory as CSV, plain text
// and QR codes
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/ak/sba/internal/domain/models"
	"github.com/skip2/go-qrcode"
)

// Content types served for each format
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypePNG  = "image/png"
)

// DefaultQRSize is the PNG edge length in pixels
const DefaultQRSize = 256

// RecipeHeader is printed above the recipe lines in text form
type RecipeHeader struct {
	Stage        models.Stage
	VolumeLiters float64
	AloePercent  float64
}

// RecipeLine renders "name: amount" plus " - note" when a note is set
func RecipeLine(item models.RecipeItem) string {
	line := item.Name + ": " + item.Amount
	if item.Note != "" {
		line += " - " + item.Note
	}
	return line
}

// RecipeLines renders every item with RecipeLine
func RecipeLines(items []models.RecipeItem) []string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, RecipeLine(it))
	}
	return lines
}

// RecipeText renders the shareable plain-text recipe
func RecipeText(h RecipeHeader, items []models.RecipeItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", h.Stage)
	fmt.Fprintf(&b, "Volume: %s L\n", Number(h.VolumeLiters))
	fmt.Fprintf(&b, "Aloe: %s%% v/v\n\n", Number(h.AloePercent))
	b.WriteString(strings.Join(RecipeLines(items), "\n"))
	return b.String()
}

// RecipeCSV renders id,name,amount,note rows
func RecipeCSV(items []models.RecipeItem) ([]byte, error) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.ID, it.Name, it.Amount, it.Note})
	}
	return writeCSV([]string{"id", "name", "amount", "note"}, rows)
}

// LogsCSV renders one row per log entry
func LogsCSV(entries []*models.LogEntry) ([]byte, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Date, e.Plot, e.BatchNote, e.ApplicationRate, e.Outcomes})
	}
	return writeCSV([]string{"id", "date", "plot", "batchNote", "applicationRate", "outcomes"}, rows)
}

// InventoryCSV renders id,name,roles with roles joined by "|"
func InventoryCSV(entries []models.CatalogEntry) ([]byte, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		roles := make([]string, 0, len(e.Roles))
		for _, r := range e.Roles {
			roles = append(roles, string(r))
		}
		rows = append(rows, []string{e.ID, e.Name, strings.Join(roles, "|")})
	}
	return writeCSV([]string{"id", "name", "roles"}, rows)
}

// QRCode encodes text as a PNG of size x size pixels
func QRCode(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// Number prints the shortest decimal form of v
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

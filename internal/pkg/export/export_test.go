package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ak/sba/internal/domain/models"
)

var sampleItems = []models.RecipeItem{
	{ID: "aloe", Name: "Aloe vera juice", Amount: "50 ml per L (1000 ml total)"},
	{ID: "molasses", Name: "Molasses", Amount: "5 ml per L (100 ml total)", Note: "Carb support, with \"quotes\""},
}

func TestRecipeLine(t *testing.T) {
	assert.Equal(t, "Aloe vera juice: 50 ml per L (1000 ml total)", RecipeLine(sampleItems[0]))
	assert.Equal(t, `Molasses: 5 ml per L (100 ml total) - Carb support, with "quotes"`, RecipeLine(sampleItems[1]))
}

func TestRecipeText(t *testing.T) {
	text := RecipeText(RecipeHeader{Stage: models.StageVeg, VolumeLiters: 12.5, AloePercent: 5}, sampleItems)

	want := "Stage: veg\nVolume: 12.5 L\nAloe: 5% v/v\n\n" +
		"Aloe vera juice: 50 ml per L (1000 ml total)\n" +
		`Molasses: 5 ml per L (100 ml total) - Carb support, with "quotes"`
	assert.Equal(t, want, text)
}

func TestRecipeCSV_QuotesFields(t *testing.T) {
	out, err := RecipeCSV(sampleItems)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "name", "amount", "note"}, records[0])
	assert.Equal(t, []string{"aloe", "Aloe vera juice", "50 ml per L (1000 ml total)", ""}, records[1])
	assert.Equal(t, `Carb support, with "quotes"`, records[2][3])
}

func TestLogsCSV(t *testing.T) {
	out, err := LogsCSV([]*models.LogEntry{{
		ID: "x1", Date: "2024-05-01", Plot: "North bed", BatchNote: "Brew veg, 20 L",
		ApplicationRate: "1:10", Outcomes: "line one\nline two",
	}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "date", "plot", "batchNote", "applicationRate", "outcomes"}, records[0])
	assert.Equal(t, "line one\nline two", records[1][5])
}

func TestInventoryCSV_JoinsRoles(t *testing.T) {
	out, err := InventoryCSV([]models.CatalogEntry{{
		ID: "aloe", Name: "Aloe vera juice",
		Roles: []models.FunctionalRole{models.RoleBiostimulant, models.RoleSurfactant},
	}})
	require.NoError(t, err)

	assert.Equal(t, "id,name,roles\naloe,Aloe vera juice,biostimulant|surfactant\n", string(out))
}

func TestQRCode_PNG(t *testing.T) {
	png, err := QRCode("Stage: veg", 0)

	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "20", Number(20))
	assert.Equal(t, "0.05", Number(0.05))
	assert.Equal(t, "12.5", Number(12.5))
}

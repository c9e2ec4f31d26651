package brewing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ak/sba/internal/domain/models"
)

func TestNormalizeRegion(t *testing.T) {
	assert.Equal(t, models.RegionGlobal, NormalizeRegion(""))
	assert.Equal(t, models.RegionGlobal, NormalizeRegion("   "))
	assert.Equal(t, "AU", NormalizeRegion(" au "))
}

func TestSurfactantAdvice(t *testing.T) {
	t.Run("yucca available", func(t *testing.T) {
		advice := SurfactantAdvice(true, "AU", nil)

		assert.Contains(t, advice.Primary, "Yucca is available")
		assert.Empty(t, advice.Options)
	})

	t.Run("alternatives with on-hand marker", func(t *testing.T) {
		advice := SurfactantAdvice(false, "", []string{Quillaja})

		require.Len(t, advice.Options, 3)
		assert.Equal(t,
			"quillaja: Functional saponin surfactant; globally more available (on hand) - 0.05-0.4 ml/L (typical 0.1 ml/L)",
			advice.Options[0])
		assert.Contains(t, advice.Options[2], "aloe: ")
	})

	t.Run("yucca on hand confirms it", func(t *testing.T) {
		advice := SurfactantAdvice(false, "us", []string{Yucca})

		require.Len(t, advice.Options, 1)
		assert.Contains(t, advice.Options[0], "yucca: On hand")
	})
}

func TestBiostimulantAdvice(t *testing.T) {
	assert.Empty(t, BiostimulantAdvice(true).Options)

	advice := BiostimulantAdvice(false)
	require.Len(t, advice.Options, 4)
	assert.Equal(t, "comfrey: Grow-your-own leafy tonic; potassium-rich", advice.Options[3])
}

func TestAloeWarningFor(t *testing.T) {
	cases := []struct {
		percent float64
		want    models.WarningLevel
	}{
		{5, models.WarningOK},
		{10, models.WarningOK},
		{10.5, models.WarningCaution},
		{25, models.WarningCaution},
		{30, models.WarningHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AloeWarningFor(tc.percent).Level, "percent %v", tc.percent)
	}
}

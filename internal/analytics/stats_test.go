package analytics

import (
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIncidents(t *testing.T) []models.IncidentRecord {
	t.Helper()
	data, err := os.ReadFile("testdata/incidents.json")
	require.NoError(t, err)
	var body struct {
		Incidents []models.IncidentRecord `json:"incidents"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Incidents
}

func TestComputeStats_Fixture(t *testing.T) {
	incidents := loadIncidents(t)

	stats := ComputeStats(incidents)

	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 10, stats.Casualties)
	assert.Equal(t, 3, stats.HighSeverity)
	assert.Equal(t, []models.TypeCount{
		{Type: "roof fall", Count: 2},
		{Type: "machinery", Count: 3},
		{Type: "gas", Count: 2},
		{Type: "explosion", Count: 1},
	}, stats.TypeCounts)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Casualties)
	assert.Equal(t, 0, stats.HighSeverity)
	assert.NotNil(t, stats.TypeCounts)
	assert.Empty(t, stats.TypeCounts)
	assert.Empty(t, Distribution(stats))
}

func TestComputeStats_CasualtiesNeverNegative(t *testing.T) {
	incidents := []models.IncidentRecord{
		{Casualties: models.Casualties(5)},
		{Casualties: nil},
		{Casualties: models.Casualties(-7)},
		{Casualties: models.Casualties(0)},
	}

	stats := ComputeStats(incidents)

	assert.Equal(t, 5, stats.Casualties)
}

func TestComputeStats_HistogramSumMatchesTypedRecords(t *testing.T) {
	incidents := loadIncidents(t)

	stats := ComputeStats(incidents)

	typed := 0
	for _, inc := range incidents {
		if inc.Type != "" {
			typed++
		}
	}
	sum := 0
	for _, tc := range stats.TypeCounts {
		sum += tc.Count
	}
	assert.Equal(t, typed, sum)
	assert.LessOrEqual(t, sum, stats.Total)
}

func TestPercent(t *testing.T) {
	cases := []struct {
		count, total int
		want         float64
	}{
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{3, 9, 33.3},
		{5, 5, 100},
		{0, 4, 0},
	}
	for _, tc := range cases {
		got, ok := Percent(tc.count, tc.total)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got, "%d/%d", tc.count, tc.total)
	}
}

func TestPercent_ZeroTotal(t *testing.T) {
	got, ok := Percent(3, 0)
	assert.False(t, ok)
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
}

func TestDistribution_Labels(t *testing.T) {
	stats := ComputeStats(loadIncidents(t))

	shares := Distribution(stats)

	require.Len(t, shares, 4)
	assert.Equal(t, "roof fall", shares[0].Type)
	assert.Equal(t, "22.2", shares[0].Label)
	assert.Equal(t, "33.3", shares[1].Label)
	assert.Equal(t, "11.1", shares[3].Label)
}

func TestRecent(t *testing.T) {
	incidents := loadIncidents(t)

	assert.Len(t, Recent(incidents, 8), 8)
	assert.Len(t, Recent(incidents, 50), 9)
	assert.Empty(t, Recent(incidents, 0))
	assert.Empty(t, Recent(nil, 8))
	assert.Equal(t, incidents[0].ID, Recent(incidents, 1)[0].ID)
}

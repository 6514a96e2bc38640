package forecast_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppler-bar/barpos/internal/forecast"
)

func writeWeights(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWeightsModel_Predict(t *testing.T) {
	path := writeWeights(t, `{"0": 12.5, "5": 40, "6": 55.5}`)
	model := forecast.NewWeightsModel(path)

	friday, err := model.Predict(time.Friday)
	require.NoError(t, err)
	assert.Equal(t, 40.0, friday)

	// Days absent from the weights file predict zero.
	monday, err := model.Predict(time.Monday)
	require.NoError(t, err)
	assert.Equal(t, 0.0, monday)
}

func TestWeightsModel_Predict_Errors(t *testing.T) {
	model := forecast.NewWeightsModel(filepath.Join(t.TempDir(), "missing.json"))
	_, err := model.Predict(time.Monday)
	assert.Error(t, err)

	model = forecast.NewWeightsModel(writeWeights(t, "not json"))
	_, err = model.Predict(time.Monday)
	assert.Error(t, err)
}

type fixedModel map[time.Weekday]float64

func (m fixedModel) Predict(day time.Weekday) (float64, error) { return m[day], nil }

func TestService_WeeklyOccupancy(t *testing.T) {
	model := fixedModel{time.Friday: 40, time.Saturday: 100}
	svc := forecast.NewService(model, "", 50)

	occupancy, err := svc.WeeklyOccupancy()
	require.NoError(t, err)
	require.Len(t, occupancy, 7)

	byDay := map[string]forecast.Occupancy{}
	for _, o := range occupancy {
		byDay[o.Day] = o
	}

	// 40 orders * 2.5 people = 100 people, twice the 50-seat capacity,
	// reported capped at 100%.
	assert.Equal(t, 100.0, byDay["Friday"].ExpectedPeople)
	assert.Equal(t, 100.0, byDay["Friday"].OccupancyPct)
	assert.Equal(t, 0.0, byDay["Monday"].ExpectedPeople)
	assert.Equal(t, 0.0, byDay["Monday"].OccupancyPct)
}

func TestService_DemandFor(t *testing.T) {
	model := fixedModel{time.Friday: 38.4, time.Saturday: 55.6}
	svc := forecast.NewService(model, "", 50)

	// 2026-09-04 is a Friday.
	friday := time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)
	prediction, err := svc.DemandFor(friday)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-04", prediction.Date)
	assert.Equal(t, 38, prediction.PredictedOrders)

	saturday, err := svc.DemandFor(friday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 56, saturday.PredictedOrders)
}

func TestService_OccupancyFor(t *testing.T) {
	model := fixedModel{time.Friday: 40, time.Monday: 4}
	svc := forecast.NewService(model, "", 50)

	friday := time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)
	prediction, err := svc.OccupancyFor(friday)
	require.NoError(t, err)
	// 40 orders * 2.5 = 100 people against 50 seats, capped at 100%.
	assert.Equal(t, 100, prediction.PredictedCustomers)
	assert.Equal(t, 100, prediction.OccupancyPct)

	monday, err := svc.OccupancyFor(friday.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 10, monday.PredictedCustomers)
	assert.Equal(t, 20, monday.OccupancyPct)
}

func TestService_Retrain_NoCommand(t *testing.T) {
	svc := forecast.NewService(fixedModel{}, "", 50)
	assert.Error(t, svc.Retrain())
}

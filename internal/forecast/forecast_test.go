package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"energy-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(values []float64) []models.HistoricalRecord {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.HistoricalRecord, len(values))
	for i, v := range values {
		records[i] = models.HistoricalRecord{
			Timestamp:      start.Add(time.Duration(i) * time.Hour),
			ConsumptionKWh: v,
		}
	}
	return records
}

func TestForecast_EmptyInput(t *testing.T) {
	_, err := Forecast(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Fit([]models.HistoricalRecord{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestForecast_FlatConsumption(t *testing.T) {
	values := make([]float64, 48)
	for i := range values {
		values[i] = 10
	}

	points, err := Forecast(hourly(values))
	require.NoError(t, err)
	require.Len(t, points, HoursPerDay)

	for h, p := range points {
		assert.Equal(t, h, p.Hour)
		assert.InDelta(t, 10.0, p.ForecastKWh, 1e-9)
	}
}

func TestFit_RecoversLine(t *testing.T) {
	values := make([]float64, 72)
	for i := range values {
		values[i] = 3 + 0.5*float64(i%24)
	}

	m, err := Fit(hourly(values))
	require.NoError(t, err)

	assert.InDelta(t, 3.0, m.Intercept, 1e-9)
	assert.InDelta(t, 0.5, m.Slope, 1e-9)
	assert.InDelta(t, 14.5, m.Predict(23), 1e-9)
}

func TestForecast_ClipsNegative(t *testing.T) {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 5 - float64(i)
	}

	points, err := Forecast(hourly(values))
	require.NoError(t, err)

	assert.InDelta(t, 5.0, points[0].ForecastKWh, 1e-9)
	assert.Equal(t, 0.0, points[6].ForecastKWh)
	assert.Equal(t, 0.0, points[23].ForecastKWh)
}

func TestForecast_SingleHour(t *testing.T) {
	records := []models.HistoricalRecord{
		{Timestamp: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), ConsumptionKWh: 4},
		{Timestamp: time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC), ConsumptionKWh: 8},
	}

	points, err := Forecast(records)
	require.NoError(t, err)
	require.Len(t, points, HoursPerDay)
	for _, p := range points {
		assert.InDelta(t, 6.0, p.ForecastKWh, 1e-9)
	}
}

func TestForecast_AlwaysTwentyFourNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(200)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64() * 20
		}

		points, err := Forecast(hourly(values))
		require.NoError(t, err)
		require.Len(t, points, HoursPerDay)
		for h, p := range points {
			assert.Equal(t, h, p.Hour)
			assert.GreaterOrEqual(t, p.ForecastKWh, 0.0)
		}
	}
}

func TestFit_RejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Forecast(hourly([]float64{1, bad, 3}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNonFinite)
		assert.Contains(t, err.Error(), "record 1")
	}
}

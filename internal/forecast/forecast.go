// Package forecast fits the hour-of-day demand curve.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"energy-agent/internal/models"

	"gonum.org/v1/gonum/stat"
)

const HoursPerDay = 24

var (
	ErrEmptyInput = errors.New("historical data is empty, cannot run forecast")
	ErrNonFinite  = errors.New("historical consumption is not finite")
)

// Model is an ordinary least-squares line consumption = Intercept + Slope*hour.
type Model struct {
	Intercept float64
	Slope     float64
}

// Fit regresses consumption on hour-of-day, the only feature used.
func Fit(records []models.HistoricalRecord) (Model, error) {
	if len(records) == 0 {
		return Model{}, ErrEmptyInput
	}

	hours := make([]float64, len(records))
	consumption := make([]float64, len(records))
	for i, r := range records {
		if math.IsNaN(r.ConsumptionKWh) || math.IsInf(r.ConsumptionKWh, 0) {
			return Model{}, fmt.Errorf("%w: record %d (%s) is %v", ErrNonFinite, i, r.Timestamp.Format(time.RFC3339), r.ConsumptionKWh)
		}
		hours[i] = float64(r.Timestamp.Hour())
		consumption[i] = r.ConsumptionKWh
	}

	// A single distinct hour leaves the slope undefined; the minimum-norm
	// solution is the flat mean.
	if !varies(hours) {
		return Model{Intercept: stat.Mean(consumption, nil)}, nil
	}

	alpha, beta := stat.LinearRegression(hours, consumption, nil, false)
	return Model{Intercept: alpha, Slope: beta}, nil
}

// Predict evaluates the line at hour, clipped at zero.
func (m Model) Predict(hour int) float64 {
	v := m.Intercept + m.Slope*float64(hour)
	if v < 0 {
		return 0
	}
	return v
}

// Curve returns one point per hour 0..23.
func (m Model) Curve() []models.ForecastPoint {
	points := make([]models.ForecastPoint, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		points[h] = models.ForecastPoint{Hour: h, ForecastKWh: m.Predict(h)}
	}
	return points
}

// Forecast fits the records and returns the 24-point demand curve.
func Forecast(records []models.HistoricalRecord) ([]models.ForecastPoint, error) {
	m, err := Fit(records)
	if err != nil {
		return nil, err
	}
	return m.Curve(), nil
}

func varies(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return true
		}
	}
	return false
}

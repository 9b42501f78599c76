package decision

import (
	"fmt"
	"math"
	"strconv"

	"energy-agent/internal/models"
)

// DefaultDemoSavingsKWh is the demonstration savings figure reported whenever
// an adjustment is recommended. It is not derived from the forecast.
const DefaultDemoSavingsKWh = 20.0

const adjustmentTemplate = "Reduce HVAC usage in high-demand zones by 15%% between peak hours. Suggested target temperature: %sC"

type Engine struct {
	DemoSavingsKWh float64
}

func NewEngine(demoSavingsKWh float64) *Engine {
	if demoSavingsKWh < 0 {
		demoSavingsKWh = 0
	}
	return &Engine{DemoSavingsKWh: demoSavingsKWh}
}

// Decide compares only the first forecast temperature (0.0 when the forecast
// is empty) against limits.MaxTemp. The demand forecast is accepted but does
// not influence the outcome.
func (e *Engine) Decide(forecast []models.ForecastPoint, tempForecast []float64, limits models.Limits) models.ActionDecision {
	first := 0.0
	if len(tempForecast) > 0 {
		first = tempForecast[0]
	}

	if first > limits.MaxTemp {
		return models.ActionDecision{
			Type:                models.ActionHVACAdjustment,
			Details:             fmt.Sprintf(adjustmentTemplate, formatTemp(limits.MinComfortTemp)),
			EstimatedSavingsKWh: e.DemoSavingsKWh,
		}
	}

	return models.ActionDecision{Type: models.ActionNone}
}

// formatTemp keeps one decimal for whole numbers ("21.0") and the shortest
// exact form otherwise.
func formatTemp(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

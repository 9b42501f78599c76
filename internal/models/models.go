package models

import (
	"encoding/json"
	"time"
)

type ActionType string

const (
	ActionNone           ActionType = "None"
	ActionHVACAdjustment ActionType = "HVAC_Adjustment"
)

// HistoricalRecord is one hourly row of the consumption dataset.
type HistoricalRecord struct {
	Timestamp      time.Time
	ConsumptionKWh float64
	TemperatureC   float64
}

type ForecastPoint struct {
	Hour        int     `json:"hour"`
	ForecastKWh float64 `json:"forecast_kwh"`
}

// Limits is caller-supplied; values are not range checked.
type Limits struct {
	MaxTemp        float64 `json:"maxTemp"`
	MinComfortTemp float64 `json:"minComfortTemp"`
}

type ActionDecision struct {
	Type                ActionType
	Details             string
	EstimatedSavingsKWh float64
}

// IsAction reports whether anything other than "no action" was decided. The
// zero value counts as no action.
func (d ActionDecision) IsAction() bool {
	return d.Type != ActionNone && d.Type != ""
}

type OptimizationRequest struct {
	HistoricalConsumptionKWh []float64 `json:"historicalConsumptionKwH"`
	WeatherForecastDegreesC  []float64 `json:"weatherForecastDegreesC"`
	Limits                   Limits    `json:"limits"`
	SelectedLanguage         string    `json:"selectedLanguage"`
}

type wireLimits struct {
	MaxTemp             *float64 `json:"maxTemp"`
	MaxTempSnake        *float64 `json:"max_temp"`
	MinComfortTemp      *float64 `json:"minComfortTemp"`
	MinComfortTempSnake *float64 `json:"min_comfort_temp"`
}

type wireRequest struct {
	Historical      []float64   `json:"historicalConsumptionKwH"`
	HistoricalSnake []float64   `json:"historical_consumption_kwh"`
	Forecast        []float64   `json:"weatherForecastDegreesC"`
	ForecastSnake   []float64   `json:"weather_forecast_degrees_c"`
	Limits          *wireLimits `json:"limits"`
	Language        *string     `json:"selectedLanguage"`
	LanguageSnake   *string     `json:"selected_language"`
}

// UnmarshalJSON accepts both the camelCase names used by the gateway and the
// snake_case names used by the agent.
func (r *OptimizationRequest) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.HistoricalConsumptionKWh = firstSlice(w.Historical, w.HistoricalSnake)
	r.WeatherForecastDegreesC = firstSlice(w.Forecast, w.ForecastSnake)
	if w.Limits != nil {
		r.Limits.MaxTemp = firstFloat(w.Limits.MaxTemp, w.Limits.MaxTempSnake)
		r.Limits.MinComfortTemp = firstFloat(w.Limits.MinComfortTemp, w.Limits.MinComfortTempSnake)
	}
	switch {
	case w.Language != nil:
		r.SelectedLanguage = *w.Language
	case w.LanguageSnake != nil:
		r.SelectedLanguage = *w.LanguageSnake
	}
	return nil
}

func firstSlice(a, b []float64) []float64 {
	if a != nil {
		return a
	}
	return b
}

func firstFloat(a, b *float64) float64 {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return 0
}

type Recommendation struct {
	ActionableScript                       string  `json:"actionableScript"`
	NaturalLanguageJustification           string  `json:"naturalLanguageJustification"`
	EstimatedCostSavingsEUR                float64 `json:"estimatedCostSavingsEur"`
	EstimatedCarbonFootprintReductionKgCO2 float64 `json:"estimatedCarbonFootprintReductionKgCO2"`
	RecommendationID                       string  `json:"recommendationId"`

	ActionType ActionType `json:"-"`
	Language   string     `json:"-"`
}

// APIResponse is the envelope returned by the gateway-style endpoint.
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Status  int         `json:"status"`
}

// Package agent runs the recommendation pipeline: history, demand forecast,
// threshold decision, justification and the savings conversion.
package agent

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"energy-agent/internal/decision"
	"energy-agent/internal/forecast"
	"energy-agent/internal/history"
	"energy-agent/internal/justify"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	EURPerKWh   = 0.25
	KgCO2PerKWh = 0.233
)

const (
	minRecommendationID = 10000
	maxRecommendationID = 99999 // exclusive
)

type Agent struct {
	history   history.Loader
	engine    *decision.Engine
	justifier justify.Justifier
	logger    *logrus.Logger

	preferRequestHistory bool

	newID func() string
	now   func() time.Time
}

type Option func(*Agent)

// WithRequestHistory makes Run fit the consumption carried by the request
// when it is non-empty instead of the configured dataset.
func WithRequestHistory(enabled bool) Option {
	return func(a *Agent) { a.preferRequestHistory = enabled }
}

func WithIDGenerator(fn func() string) Option {
	return func(a *Agent) { a.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(a *Agent) { a.now = fn }
}

func New(loader history.Loader, engine *decision.Engine, justifier justify.Justifier, logger *logrus.Logger, opts ...Option) *Agent {
	a := &Agent{
		history:   loader,
		engine:    engine,
		justifier: justifier,
		logger:    logger,
		newID:     RandomID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run produces one recommendation. Errors from the history source and the
// forecaster are returned unchanged.
func (a *Agent) Run(ctx context.Context, req models.OptimizationRequest) (*models.Recommendation, error) {
	records, err := a.records(ctx, req)
	if err != nil {
		return nil, err
	}

	curve, err := forecast.Forecast(records)
	if err != nil {
		return nil, err
	}

	action := a.engine.Decide(curve, req.WeatherForecastDegreesC, req.Limits)

	justification, err := a.justifier.Justify(ctx, justify.Input{
		Decision:     action,
		TempForecast: req.WeatherForecastDegreesC,
		Limits:       req.Limits,
		Language:     req.SelectedLanguage,
	})
	if err != nil {
		return nil, err
	}

	rec := &models.Recommendation{
		ActionableScript:                       action.Details,
		NaturalLanguageJustification:           justification,
		EstimatedCostSavingsEUR:                action.EstimatedSavingsKWh * EURPerKWh,
		EstimatedCarbonFootprintReductionKgCO2: action.EstimatedSavingsKWh * KgCO2PerKWh,
		RecommendationID:                       a.newID(),
		ActionType:                             action.Type,
		Language:                               req.SelectedLanguage,
	}

	a.logger.WithFields(logrus.Fields{
		"recommendation_id": rec.RecommendationID,
		"action":            action.Type,
		"records":           len(records),
		"justifier":         a.justifier.Name(),
	}).Info("Agent: recommendation generated")

	return rec, nil
}

func (a *Agent) records(ctx context.Context, req models.OptimizationRequest) ([]models.HistoricalRecord, error) {
	if a.preferRequestHistory && len(req.HistoricalConsumptionKWh) > 0 {
		return history.FromConsumption(req.HistoricalConsumptionKWh, a.now()), nil
	}
	return a.history.Load(ctx)
}

// RandomID draws a numeric identifier in [10000, 99999). Uniqueness is not
// guaranteed.
func RandomID() string {
	return strconv.Itoa(minRecommendationID + rand.IntN(maxRecommendationID-minRecommendationID))
}

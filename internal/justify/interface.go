package justify

import (
	"context"

	"energy-agent/internal/models"
)

// Input carries what a justifier may explain.
type Input struct {
	Decision     models.ActionDecision
	TempForecast []float64
	Limits       models.Limits
	Language     string
}

// Justifier turns a decision into a natural-language explanation.
type Justifier interface {
	// Justify returns the explanation for in.Decision in in.Language.
	Justify(ctx context.Context, in Input) (string, error)

	// Name identifies the implementation in logs.
	Name() string
}

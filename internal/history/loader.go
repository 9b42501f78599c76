package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrHistoryUnavailable is returned when the historical dataset cannot be read.
var ErrHistoryUnavailable = errors.New("historical data unavailable")

type Driver string

const (
	CSVDriver    Driver = "csv"
	DuckDBDriver Driver = "duckdb"
)

// Loader reads the hourly consumption dataset.
type Loader interface {
	Load(ctx context.Context) ([]models.HistoricalRecord, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context) ([]models.HistoricalRecord, error)

func (f LoaderFunc) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	return f(ctx)
}

// NewLoader builds the loader selected by cfg.Driver.
func NewLoader(cfg config.HistoryConfig, logger *logrus.Logger) (Loader, error) {
	switch Driver(cfg.Driver) {
	case CSVDriver, "":
		return NewCSVLoader(cfg.Path, logger), nil
	case DuckDBDriver:
		return NewDuckDBLoader(cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown history driver: %s", cfg.Driver)
	}
}

// FromConsumption turns a bare list of hourly readings into records whose
// last entry falls on the hour containing end.
func FromConsumption(values []float64, end time.Time) []models.HistoricalRecord {
	last := end.Truncate(time.Hour)
	records := make([]models.HistoricalRecord, len(values))
	for i, v := range values {
		records[i] = models.HistoricalRecord{
			Timestamp:      last.Add(-time.Duration(len(values)-1-i) * time.Hour),
			ConsumptionKWh: v,
		}
	}
	return records
}

func checkOrdered(records []models.HistoricalRecord) error {
	for i := 1; i < len(records); i++ {
		if !records[i].Timestamp.After(records[i-1].Timestamp) {
			return fmt.Errorf("timestamps not strictly increasing at row %d (%s after %s)",
				i+1, records[i].Timestamp.Format(time.RFC3339), records[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

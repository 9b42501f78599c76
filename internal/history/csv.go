package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	ColumnTimestamp   = "timestamp"
	ColumnConsumption = "consumption_kwh"
	ColumnTemperature = "temperature_c"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

type CSVLoader struct {
	path   string
	logger *logrus.Logger
}

func NewCSVLoader(path string, logger *logrus.Logger) *CSVLoader {
	return &CSVLoader{path: path, logger: logger}
}

func (l *CSVLoader) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	defer f.Close()

	records, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	l.logger.Debugf("History: loaded %d records from %s", len(records), l.path)
	return records, nil
}

// ReadCSV parses a timestamp,consumption_kwh,temperature_c table. Column order
// is taken from the header row.
func ReadCSV(ctx context.Context, r io.Reader) ([]models.HistoricalRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.HistoricalRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	if err := checkOrdered(records); err != nil {
		return nil, err
	}
	return records, nil
}

type columns struct {
	timestamp, consumption, temperature int
}

func columnIndex(header []string) (columns, error) {
	c := columns{timestamp: -1, consumption: -1, temperature: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColumnTimestamp:
			c.timestamp = i
		case ColumnConsumption:
			c.consumption = i
		case ColumnTemperature:
			c.temperature = i
		}
	}
	if c.timestamp < 0 || c.consumption < 0 {
		return c, fmt.Errorf("header must contain %s and %s columns", ColumnTimestamp, ColumnConsumption)
	}
	return c, nil
}

func parseRow(row []string, idx columns) (models.HistoricalRecord, error) {
	var rec models.HistoricalRecord

	ts, err := parseTimestamp(row[idx.timestamp])
	if err != nil {
		return rec, err
	}
	rec.Timestamp = ts

	rec.ConsumptionKWh, err = parseFinite(row[idx.consumption])
	if err != nil {
		return rec, fmt.Errorf("invalid %s: %w", ColumnConsumption, err)
	}

	if idx.temperature >= 0 && strings.TrimSpace(row[idx.temperature]) != "" {
		rec.TemperatureC, err = parseFinite(row[idx.temperature])
		if err != nil {
			return rec, fmt.Errorf("invalid %s: %w", ColumnTemperature, err)
		}
	}
	return rec, nil
}

// parseFinite rejects the NaN and Inf spellings strconv accepts.
func parseFinite(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", strings.TrimSpace(value))
	}
	return v, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", ColumnTimestamp, value)
}

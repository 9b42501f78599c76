// Package simulate generates synthetic hourly consumption and temperature
// data shaped like a commercial building.
package simulate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"energy-agent/internal/history"
	"energy-agent/internal/models"
)

const TimestampLayout = "2006-01-02 15:04:05"

type Params struct {
	BaseConsumption  float64
	ConsumptionNoise float64
	WeekendFactor    float64
	NightKWh         float64
	EveningKWh       float64
	BaseTemp         float64
	TempNoise        float64
}

func DefaultParams() Params {
	return Params{
		BaseConsumption:  10,
		ConsumptionNoise: 1.5,
		WeekendFactor:    0.5,
		NightKWh:         2,
		EveningKWh:       4,
		BaseTemp:         15,
		TempNoise:        1,
	}
}

// Generate returns days*24 hourly records starting at start.
func Generate(days int, start time.Time, params Params, rng *rand.Rand) []models.HistoricalRecord {
	if days <= 0 {
		return nil
	}

	records := make([]models.HistoricalRecord, days*24)
	for i := range records {
		ts := start.Add(time.Duration(i) * time.Hour)
		h := float64(ts.Hour())

		cycle := math.Sin((h-6)/24*2*math.Pi)*8 + 5
		switch {
		case ts.Hour() < 6:
			cycle = params.NightKWh
		case ts.Hour() > 18:
			cycle = params.EveningKWh
		}

		factor := 1.0
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			factor = params.WeekendFactor
		}

		consumption := (params.BaseConsumption+cycle)*factor + rng.NormFloat64()*params.ConsumptionNoise
		if consumption < 0 {
			consumption = 0
		}

		tempCycle := math.Sin((h-8)/24*2*math.Pi)*8 + 5
		temperature := params.BaseTemp + tempCycle + rng.NormFloat64()*params.TempNoise

		records[i] = models.HistoricalRecord{
			Timestamp:      ts,
			ConsumptionKWh: consumption,
			TemperatureC:   temperature,
		}
	}
	return records
}

// WriteCSV writes records in the layout the history loaders read.
func WriteCSV(w io.Writer, records []models.HistoricalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{history.ColumnTimestamp, history.ColumnConsumption, history.ColumnTemperature}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(TimestampLayout),
			strconv.FormatFloat(r.ConsumptionKWh, 'f', -1, 64),
			strconv.FormatFloat(r.TemperatureC, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

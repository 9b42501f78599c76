package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"energy-agent/internal/models"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/sirupsen/logrus"
)

// DuckDBLoader reads the dataset through DuckDB's CSV sniffer, which copes
// with exports whose timestamp formatting varies.
type DuckDBLoader struct {
	path   string
	logger *logrus.Logger
}

func NewDuckDBLoader(path string, logger *logrus.Logger) *DuckDBLoader {
	return &DuckDBLoader{path: path, logger: logger}
}

func (l *DuckDBLoader) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	if _, err := os.Stat(l.path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	rows, err := db.QueryContext(ctx, l.query())
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", l.path, err)
	}
	defer rows.Close()

	var records []models.HistoricalRecord
	for rows.Next() {
		var rec models.HistoricalRecord
		var temperature sql.NullFloat64
		if err := rows.Scan(&rec.Timestamp, &rec.ConsumptionKWh, &temperature); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", l.path, err)
		}
		rec.TemperatureC = temperature.Float64
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	if err := checkOrdered(records); err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	l.logger.Debugf("History: loaded %d records from %s via DuckDB", len(records), l.path)
	return records, nil
}

func (l *DuckDBLoader) query() string {
	quoted := "'" + strings.ReplaceAll(l.path, "'", "''") + "'"
	return fmt.Sprintf(`SELECT
	CAST("%s" AS TIMESTAMP),
	CAST("%s" AS DOUBLE),
	TRY_CAST("%s" AS DOUBLE)
FROM read_csv_auto(%s, header = true)`, ColumnTimestamp, ColumnConsumption, ColumnTemperature, quoted)
}

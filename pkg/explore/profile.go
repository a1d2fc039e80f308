package explore

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"go.uber.org/zap"
)

// DefaultSampleSize is how many rows distinct counts sample on large tables.
const DefaultSampleSize = 1000

// distinctSampleThreshold is the row count above which distinct counts
// run over a sample instead of the full table.
const distinctSampleThreshold = 10000

// ValueFrequency is one frequent value of a string column.
type ValueFrequency struct {
	Value     string `json:"value"`
	Frequency int64  `json:"frequency"`
}

// NumericStats holds min/max/avg for a numeric column.
type NumericStats struct {
	Min any      `json:"min"`
	Max any      `json:"max"`
	Avg *float64 `json:"avg"`
}

// ColumnProfile is the per-column portion of a table profile.
type ColumnProfile struct {
	Name           string           `json:"name"`
	DataType       string           `json:"data_type"`
	IsNullable     bool             `json:"is_nullable"`
	NullPercentage float64          `json:"null_percentage"`
	DistinctCount  *int64           `json:"distinct_count,omitempty"`
	SampleValues   []ValueFrequency `json:"sample_values,omitempty"`
	Statistics     *NumericStats    `json:"statistics,omitempty"`
}

// TableProfile summarizes a table's shape and content quality.
type TableProfile struct {
	Schema      string          `json:"schema"`
	Table       string          `json:"table"`
	RowCount    int64           `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnProfile `json:"columns"`
}

// ProfileTable profiles every column of a table: null percentage,
// distinct count (sampled above 10k rows), frequent values for string
// columns, and min/max/avg for numeric columns. Optional per-column
// queries that fail are logged and skipped rather than failing the
// whole profile.
func (s *Service) ProfileTable(ctx context.Context, schema, table string, sampleSize int) (*TableProfile, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	columns, err := s.catalog.DescribeTable(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	fullName := lakehouse.FullyQualifiedName(schema, table)
	db := s.conn.DB()

	var rowCount int64
	countQuery := fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", fullName)
	countCtx, cancel := s.conn.WithQueryTimeout(ctx)
	err = db.QueryRowContext(countCtx, countQuery).Scan(&rowCount)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	profiles := make([]ColumnProfile, 0, len(columns))
	for _, col := range columns {
		profile := ColumnProfile{
			Name:       col.Name,
			DataType:   col.DataType,
			IsNullable: col.IsNullable,
		}
		quoted := lakehouse.QuoteName(col.Name)

		var total, nullCount int64
		nullQuery := fmt.Sprintf(
			"SELECT COUNT_BIG(*), SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) FROM %s",
			quoted, fullName)
		nullCtx, cancel := s.conn.WithQueryTimeout(ctx)
		err = db.QueryRowContext(nullCtx, nullQuery).Scan(&total, &nullCount)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("null analysis for %s: %w", col.Name, err)
		}
		if total > 0 {
			profile.NullPercentage = math.Round(float64(nullCount)/float64(total)*100*100) / 100
		}

		if distinct, err := s.distinctCount(ctx, fullName, quoted, rowCount, sampleSize); err != nil {
			s.logger.Warn("distinct count failed",
				zap.String("table", fullName), zap.String("column", col.Name), zap.Error(err))
		} else {
			profile.DistinctCount = &distinct
		}

		if lakehouse.IsStringType(col.DataType) {
			values, err := s.frequentValues(ctx, fullName, quoted)
			if err != nil {
				s.logger.Warn("frequent values failed",
					zap.String("table", fullName), zap.String("column", col.Name), zap.Error(err))
			} else {
				profile.SampleValues = values
			}
		}

		if lakehouse.IsNumericType(col.DataType) {
			stats, err := s.numericStats(ctx, fullName, quoted)
			if err != nil {
				s.logger.Warn("numeric stats failed",
					zap.String("table", fullName), zap.String("column", col.Name), zap.Error(err))
			} else {
				profile.Statistics = stats
			}
		}

		profiles = append(profiles, profile)
	}

	return &TableProfile{
		Schema:      schema,
		Table:       table,
		RowCount:    rowCount,
		ColumnCount: len(profiles),
		Columns:     profiles,
	}, nil
}

func (s *Service) distinctCount(ctx context.Context, fullName, quotedCol string, rowCount int64, sampleSize int) (int64, error) {
	var query string
	if rowCount <= distinctSampleThreshold {
		query = fmt.Sprintf("SELECT COUNT_BIG(DISTINCT %s) FROM %s", quotedCol, fullName)
	} else {
		query = fmt.Sprintf(
			"SELECT COUNT_BIG(DISTINCT %[1]s) FROM (SELECT TOP (%[3]d) %[1]s FROM %[2]s) AS sample",
			quotedCol, fullName, sampleSize)
	}

	ctx, cancel := s.conn.WithQueryTimeout(ctx)
	defer cancel()

	var distinct int64
	if err := s.conn.DB().QueryRowContext(ctx, query).Scan(&distinct); err != nil {
		return 0, err
	}
	return distinct, nil
}

func (s *Service) frequentValues(ctx context.Context, fullName, quotedCol string) ([]ValueFrequency, error) {
	query := fmt.Sprintf(`SELECT TOP 5 %[1]s, COUNT_BIG(*) AS freq
FROM %[2]s
WHERE %[1]s IS NOT NULL
GROUP BY %[1]s
ORDER BY COUNT_BIG(*) DESC`, quotedCol, fullName)

	ctx, cancel := s.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := s.conn.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []ValueFrequency
	for rows.Next() {
		var vf ValueFrequency
		if err := rows.Scan(&vf.Value, &vf.Frequency); err != nil {
			return nil, err
		}
		values = append(values, vf)
	}
	return values, rows.Err()
}

func (s *Service) numericStats(ctx context.Context, fullName, quotedCol string) (*NumericStats, error) {
	query := fmt.Sprintf(`SELECT MIN(%[1]s), MAX(%[1]s), AVG(CAST(%[1]s AS FLOAT))
FROM %[2]s
WHERE %[1]s IS NOT NULL`, quotedCol, fullName)

	ctx, cancel := s.conn.WithQueryTimeout(ctx)
	defer cancel()

	var minVal, maxVal any
	var avg *float64
	if err := s.conn.DB().QueryRowContext(ctx, query).Scan(&minVal, &maxVal, &avg); err != nil {
		return nil, err
	}

	if avg != nil {
		rounded := math.Round(*avg*100) / 100
		avg = &rounded
	}

	return &NumericStats{
		Min: normalizeScanned(minVal),
		Max: normalizeScanned(maxVal),
		Avg: avg,
	}, nil
}

// normalizeScanned turns []byte values from the driver into strings so
// JSON output stays readable.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return strings.TrimSpace(string(b))
	}
	return v
}

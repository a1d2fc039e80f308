package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
)

// StatsSource fetches the current query statistics snapshot. The
// capture loop stamps CapturedAt; sources leave it zero.
type StatsSource interface {
	Fetch(ctx context.Context, top int) ([]QueryExecutionRecord, error)
}

// PlanCacheSource reads sys.dm_exec_query_stats on the lakehouse SQL
// endpoint. Worker and elapsed times come back in microseconds and are
// converted to milliseconds here.
type PlanCacheSource struct {
	conn *lakehouse.Conn
}

// NewPlanCacheSource creates a source over an open lakehouse connection.
func NewPlanCacheSource(conn *lakehouse.Conn) *PlanCacheSource {
	return &PlanCacheSource{conn: conn}
}

// Fetch returns up to top records ordered by last execution time,
// newest first.
func (s *PlanCacheSource) Fetch(ctx context.Context, top int) ([]QueryExecutionRecord, error) {
	const query = `
SELECT TOP (@p1)
    qs.execution_count,
    qs.creation_time,
    qs.last_execution_time,
    qs.total_worker_time / 1000 AS cpu_time_ms,
    qs.total_elapsed_time / 1000 AS elapsed_time_ms,
    qs.total_logical_reads AS logical_reads,
    qs.total_logical_writes AS logical_writes,
    st.text AS query_text
FROM sys.dm_exec_query_stats qs
CROSS APPLY sys.dm_exec_sql_text(qs.sql_handle) st
ORDER BY qs.last_execution_time DESC`

	ctx, cancel := s.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := s.conn.DB().QueryContext(ctx, query, sql.Named("p1", top))
	if err != nil {
		return nil, fmt.Errorf("query plan cache stats: %w", err)
	}
	defer rows.Close()

	var records []QueryExecutionRecord
	for rows.Next() {
		var rec QueryExecutionRecord
		var queryText sql.NullString
		if err := rows.Scan(
			&rec.ExecutionCount,
			&rec.CreationTime,
			&rec.LastExecutionTime,
			&rec.CPUTimeMs,
			&rec.ElapsedTimeMs,
			&rec.LogicalReads,
			&rec.LogicalWrites,
			&queryText,
		); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		rec.QueryText = truncateQueryText(queryText.String)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}

	return records, nil
}

package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHoursBack is the default read window.
const DefaultHoursBack = 24

// maxLineSize bounds a single log line; query text is capped at 500
// chars so this leaves generous headroom for the rest of the record.
const maxLineSize = 64 * 1024

// Filter selects records from the log.
type Filter struct {
	// HoursBack is the trailing window from now. Zero means an empty
	// window, not the default; callers apply defaults themselves.
	HoursBack int

	// SearchText, when non-empty, keeps only records whose query text
	// contains it (case-insensitive).
	SearchText string

	// MinCPUMs, when positive, keeps only records at or above the
	// threshold.
	MinCPUMs int64
}

// Reader reads and filters the JSONL log.
type Reader struct {
	logPath string
	logger  *zap.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewReader creates a reader over the given log file.
func NewReader(logPath string, logger *zap.Logger) *Reader {
	return &Reader{
		logPath: logPath,
		logger:  logger,
		now:     time.Now,
	}
}

// Read returns the records matching the filter, in file order. A
// missing log file is not an error: capture may simply not have run
// yet, so the result is empty and a notice is logged. Malformed lines
// are skipped with a warning; this also tolerates a partially written
// final line from a concurrent capture.
func (r *Reader) Read(filter Filter) ([]QueryExecutionRecord, error) {
	cutoff := r.now().UTC().Add(-time.Duration(filter.HoursBack) * time.Hour)

	f, err := os.Open(r.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Info("query history log not found; capture has not run yet",
				zap.String("path", r.logPath))
			return []QueryExecutionRecord{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	searchLower := strings.ToLower(filter.SearchText)

	records := []QueryExecutionRecord{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec QueryExecutionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			r.logger.Warn("skipping malformed query history line",
				zap.Int("line", lineNo), zap.Error(err))
			continue
		}

		if rec.CapturedAt.Before(cutoff) {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(rec.QueryText), searchLower) {
			continue
		}
		if filter.MinCPUMs > 0 && rec.CPUTimeMs < filter.MinCPUMs {
			continue
		}

		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return records, nil
}

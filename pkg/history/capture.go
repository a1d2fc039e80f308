package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Default capture settings, matching the original 5-minute cadence.
const (
	DefaultCaptureInterval = 300 * time.Second
	DefaultTopQueries      = 100
)

// Capture periodically snapshots query statistics into the JSONL log.
type Capture struct {
	source   StatsSource
	logPath  string
	interval time.Duration
	top      int
	logger   *zap.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewCapture creates a capture loop. Zero interval and top fall back to
// the defaults.
func NewCapture(source StatsSource, logPath string, interval time.Duration, top int, logger *zap.Logger) *Capture {
	if interval <= 0 {
		interval = DefaultCaptureInterval
	}
	if top <= 0 {
		top = DefaultTopQueries
	}
	return &Capture{
		source:   source,
		logPath:  logPath,
		interval: interval,
		top:      top,
		logger:   logger,
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled. The interval is measured from the
// end of one tick to the start of the next, so a slow fetch stretches
// the cycle instead of stacking ticks. A failed tick is logged and the
// loop keeps going.
func (c *Capture) Run(ctx context.Context) {
	for {
		count, err := c.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("query history capture tick failed", zap.Error(err))
		} else {
			c.logger.Info("captured query history snapshot", zap.Int("records", count))
		}

		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce performs a single capture tick: fetch up to top records,
// stamp them all with one UTC capture time, and append one JSON line
// per record. The fetch happens before the file is touched, so a
// failing source leaves the log unchanged.
func (c *Capture) RunOnce(ctx context.Context) (int, error) {
	records, err := c.source.Fetch(ctx, c.top)
	if err != nil {
		return 0, fmt.Errorf("fetch query stats: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	capturedAt := c.now().UTC()

	var buf bytes.Buffer
	for _, rec := range records {
		rec.CapturedAt = capturedAt
		rec.QueryText = truncateQueryText(rec.QueryText)

		line, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	// One O_APPEND write per tick keeps lines complete for concurrent
	// readers.
	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("append records: %w", err)
	}

	return len(records), nil
}

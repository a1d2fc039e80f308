package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeLog(t *testing.T, records []QueryExecutionRecord, extraLines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, rec := range records {
		line, err := json.Marshal(rec)
		require.NoError(t, err)
		f.Write(line)
		f.Write([]byte("\n"))
	}
	for _, line := range extraLines {
		f.Write([]byte(line))
	}
	return path
}

func recordAt(capturedAt time.Time, queryText string, cpuMs int64) QueryExecutionRecord {
	return QueryExecutionRecord{
		CapturedAt:        capturedAt,
		ExecutionCount:    1,
		CreationTime:      capturedAt.Add(-time.Hour),
		LastExecutionTime: capturedAt,
		CPUTimeMs:         cpuMs,
		QueryText:         queryText,
	}
}

func newTestReader(t *testing.T, path string, now time.Time) *Reader {
	t.Helper()
	reader := NewReader(path, zap.NewNop())
	reader.now = func() time.Time { return now }
	return reader
}

func TestReadWindowFiltering(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t, []QueryExecutionRecord{
		recordAt(now.Add(-1*time.Hour), "recent", 10),
		recordAt(now.Add(-25*time.Hour), "yesterday", 10),
		recordAt(now.Add(-48*time.Hour), "old", 10),
	})

	records, err := newTestReader(t, path, now).Read(Filter{HoursBack: 24})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].QueryText)
}

func TestReadZeroHoursBackIsEmpty(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t, []QueryExecutionRecord{
		recordAt(now.Add(-time.Minute), "anything", 10),
	})

	records, err := newTestReader(t, path, now).Read(Filter{HoursBack: 0})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadMissingFileIsEmptyNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-written.jsonl")

	records, err := NewReader(path, zap.NewNop()).Read(Filter{HoursBack: 24})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadSearchTextCaseInsensitive(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t, []QueryExecutionRecord{
		recordAt(now.Add(-time.Hour), "SELECT * FROM dbo.Orders", 10),
		recordAt(now.Add(-time.Hour), "SELECT * FROM dbo.Customers", 10),
	})

	records, err := newTestReader(t, path, now).Read(Filter{HoursBack: 24, SearchText: "orders"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].QueryText, "Orders")
}

func TestReadMinCPUThreshold(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t, []QueryExecutionRecord{
		recordAt(now.Add(-time.Hour), "cheap", 50),
		recordAt(now.Add(-time.Hour), "mid", 150),
		recordAt(now.Add(-time.Hour), "expensive", 200),
	})

	records, err := newTestReader(t, path, now).Read(Filter{HoursBack: 24, MinCPUMs: 100})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "mid", records[0].QueryText)
	assert.Equal(t, "expensive", records[1].QueryText)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t,
		[]QueryExecutionRecord{recordAt(now.Add(-time.Hour), "good", 10)},
		"{not json at all\n",
		`{"captured_at":"2026-08-29T11:30:00Z","query_text":"also good","cpu_time_ms":5}`+"\n",
		`{"captured_at":"2026-08-29T11:45`, // partially written final line
	)

	records, err := newTestReader(t, path, now).Read(Filter{HoursBack: 24})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "good", records[0].QueryText)
	assert.Equal(t, "also good", records[1].QueryText)
}

func TestReadIdempotentOverUnchangedFile(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	path := writeLog(t, []QueryExecutionRecord{
		recordAt(now.Add(-time.Hour), "a", 10),
		recordAt(now.Add(-2*time.Hour), "b", 20),
	})

	reader := newTestReader(t, path, now)
	first, err := reader.Read(Filter{HoursBack: 24})
	require.NoError(t, err)
	second, err := reader.Read(Filter{HoursBack: 24})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/stretchr/testify/require"
)

const baseTs int64 = 1700000000000

var testLevels = []string{"INFO", "ERROR", "DEBUG", "WARN", "FATAL"}

func makeRecords(n int) []domain.LogRecord {
	records := make([]domain.LogRecord, n)
	for i := range records {
		records[i] = domain.LogRecord{
			ID:               i,
			TimestampRaw:     baseTs + int64(i)*1000,
			TimestampDisplay: fmt.Sprintf("2023-11-14 22:%02d:%02d.000", (13+i/60)%60, i%60),
			Level:            testLevels[i%len(testLevels)],
			Logger:           "com.example.Root",
			Thread:           fmt.Sprintf("worker-%d", i%3),
			ClassName:        fmt.Sprintf("com.example.Service%d", i%4),
			Method:           fmt.Sprintf("void handle%d(java.lang.String)", i%2),
			Message:          fmt.Sprintf("processed item %d", i),
		}
	}
	return records
}

func ids(records []domain.LogRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// wait receives the published view of a recompute cycle
func wait(t *testing.T, ch <-chan View) View {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "recompute was superseded")
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("recompute did not publish")
		return View{}
	}
}

func newTestEngine(t *testing.T, records []domain.LogRecord) *Engine {
	t.Helper()
	e := NewEngine(Config{PageSize: 100, SearchDebounce: 20 * time.Millisecond})
	t.Cleanup(e.Close)
	wait(t, e.SetRecords(records))
	return e
}

package logreader

import (
	"context"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// ProgressFunc receives parse progress in percent (0..100)
// Successive values within one parse never decrease
type ProgressFunc func(percent int)

// LogParser parses the full text of a log4j XML log into records
type LogParser interface {
	// Parse returns records ordered by their position in raw, with ids 0..n-1
	// On a malformed chunk it returns the records of the preceding chunks
	// together with a *ChunkError
	Parse(ctx context.Context, raw string, onProgress ProgressFunc) (*Result, error)
}

// Result is the output of one parse
type Result struct {
	Records []domain.LogRecord
	Stats   domain.ParseStats
}

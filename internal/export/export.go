// Package export writes records as the JSON array users download.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/rs/zerolog/log"
)

// Kind selects the export file name prefix
type Kind string

const (
	KindFindings Kind = "findings_export"
	KindLogs     Kind = "logs_export"
)

// WriteJSON writes records as a two-space indented JSON array.
// An empty or nil slice is written as [].
func WriteJSON(w io.Writer, records []domain.LogRecord) error {
	if records == nil {
		records = []domain.LogRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

// StampLayout is the UTC timestamp layout of export file names. It has no
// colons, which Windows file systems reject.
const StampLayout = "20060102T150405Z"

// FileName returns the download name for an export taken at now
func FileName(kind Kind, now time.Time) string {
	return fmt.Sprintf("%s_%s.json", kind, now.UTC().Format(StampLayout))
}

// WriteFile writes records to a new file named by FileName in dir and
// returns its path
func WriteFile(dir string, kind Kind, records []domain.LogRecord, now time.Time) (path string, err error) {
	path = filepath.Join(dir, FileName(kind, now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()

	if err := WriteJSON(f, records); err != nil {
		return "", err
	}

	log.Info().
		Str("path", path).
		Int("records", len(records)).
		Msg("Records exported")
	return path, nil
}

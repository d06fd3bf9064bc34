package container

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Layout describes where the source system puts its logs inside an export.
// Paths are matched byte for byte, separators included.
type Layout struct {
	PrimaryPath    string // Exact path of the primary log
	PrimaryPrefix  string // Directory of the primary log, used when PrimaryPath is empty
	ArchivesPrefix string // Directory of nested archived-log containers
	XMLExt         string
	ZipExt         string
}

// DefaultLayout returns the export layout of the source system
func DefaultLayout() Layout {
	return Layout{
		PrimaryPath:    `log\BVC.xml`,
		PrimaryPrefix:  `log\`,
		ArchivesPrefix: `log\Archives\`,
		XMLExt:         ".xml",
		ZipExt:         ".zip",
	}
}

// ArchivedLog references the log inside one nested archive. Its bytes are
// read only when Data is called.
type ArchivedLog struct {
	DisplayName string // Base name of the nested archive, e.g. "foo.zip"
	Path        string // Path of the nested archive in the outer container
	entry       Entry
}

// EntryName returns the path of the log inside the nested archive
func (a ArchivedLog) EntryName() string {
	if a.entry == nil {
		return ""
	}
	return a.entry.Name()
}

// Size returns the uncompressed size of the archived log
func (a ArchivedLog) Size() uint64 {
	if a.entry == nil {
		return 0
	}
	return a.entry.Size()
}

// Data reads the archived log bytes
func (a ArchivedLog) Data(ctx context.Context) ([]byte, error) {
	if a.entry == nil {
		return nil, fmt.Errorf("%w: archived log %s has no entry", domain.ErrRead, a.DisplayName)
	}
	return a.entry.Data(ctx)
}

// NewArchivedLog builds a reference over an arbitrary entry
func NewArchivedLog(displayName, path string, entry Entry) ArchivedLog {
	return ArchivedLog{DisplayName: displayName, Path: path, entry: entry}
}

// Extraction is the result of opening a container
type Extraction struct {
	MainLog      []byte
	MainLogPath  string
	ArchivedLogs []ArchivedLog
}

// Extract opens blob as a zip container, reads its primary log and
// collects references to the archived logs. It fails when the container
// cannot be read or has no primary log.
func Extract(ctx context.Context, blob []byte, layout Layout) (ext *Extraction, err error) {
	ctx, span := observability.StartSpan(ctx, "container.Extract",
		attribute.Int("container.bytes", len(blob)),
	)
	defer func() { observability.EndSpan(span, err, "container extracted") }()

	entries, err := Entries(blob)
	if err != nil {
		return nil, err
	}
	return ExtractEntries(ctx, entries, layout)
}

// ExtractEntries applies the selection of Extract to an entry list
func ExtractEntries(ctx context.Context, entries []Entry, layout Layout) (*Extraction, error) {
	primary := findPrimary(entries, layout)
	if primary == nil {
		return nil, fmt.Errorf("%w: expected %s", domain.ErrPrimaryLogMissing, primaryDescription(layout))
	}

	mainLog, err := primary.Data(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrContainerUnreadable, err)
	}

	ext := &Extraction{
		MainLog:     mainLog,
		MainLogPath: primary.Name(),
	}

	for _, e := range entries {
		if !isArchive(e.Name(), layout) {
			continue
		}
		ref, err := openArchived(ctx, e)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Warn().
				Err(err).
				Str("archive", e.Name()).
				Msg("Skipping unreadable archived log")
			continue
		}
		ext.ArchivedLogs = append(ext.ArchivedLogs, ref)
	}

	log.Info().
		Str("primary", ext.MainLogPath).
		Str("size", humanize.Bytes(uint64(len(ext.MainLog)))).
		Int("archived_logs", len(ext.ArchivedLogs)).
		Msg("Container extracted")

	return ext, nil
}

// openArchived opens a nested archive and takes its first entry as the log
func openArchived(ctx context.Context, e Entry) (ArchivedLog, error) {
	blob, err := e.Data(ctx)
	if err != nil {
		return ArchivedLog{}, err
	}
	nested, err := Entries(blob)
	if err != nil {
		return ArchivedLog{}, err
	}
	if len(nested) == 0 {
		return ArchivedLog{}, fmt.Errorf("%w: nested archive %s is empty", domain.ErrContainerUnreadable, e.Name())
	}
	return NewArchivedLog(baseName(e.Name()), e.Name(), nested[0]), nil
}

func findPrimary(entries []Entry, layout Layout) Entry {
	if layout.PrimaryPath != "" {
		for _, e := range entries {
			if e.Name() == layout.PrimaryPath {
				return e
			}
		}
		return nil
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, layout.PrimaryPrefix) && strings.HasSuffix(name, layout.XMLExt) &&
			!strings.HasPrefix(name, layout.ArchivesPrefix) {
			return e
		}
	}
	return nil
}

func isArchive(name string, layout Layout) bool {
	return strings.HasPrefix(name, layout.ArchivesPrefix) && strings.HasSuffix(name, layout.ZipExt)
}

func primaryDescription(layout Layout) string {
	if layout.PrimaryPath != "" {
		return layout.PrimaryPath
	}
	return layout.PrimaryPrefix + "*" + layout.XMLExt
}

// baseName strips directories using either separator
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}

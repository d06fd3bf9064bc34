package logreader

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultChunkSize is the chunk size used for primary logs
	DefaultChunkSize = 1_000_000

	// ArchivedChunkSize is the chunk size used for logs inside nested archives
	ArchivedChunkSize = 100_000

	// DefaultPrefix is the namespace prefix of log4j XMLLayout elements
	DefaultPrefix = "log4j"

	// DefaultNamespace is bound to the prefix when a fragment is wrapped
	DefaultNamespace = "http://jakarta.apache.org/log4j/"

	// DefaultSenderTimestampKey names the property carrying the sender's own timestamp text
	DefaultSenderTimestampKey = "senderTimestamp"

	// DisplayTimeLayout formats TimestampRaw when no sender timestamp is present
	DisplayTimeLayout = "2006-01-02 15:04:05.000"

	// Inputs up to this many chunks are parsed in a single pass
	smallInputFactor = 5

	// Progress stays below 100 until the caller has the records
	maxChunkProgress = 95
)

// Options configures a ChunkedParser
type Options struct {
	ChunkSize          int            // Bytes per chunk (default: DefaultChunkSize)
	Prefix             string         // Element prefix (default: "log4j")
	Namespace          string         // Namespace URI bound to Prefix
	SenderTimestampKey string         // Property used as display timestamp when present
	Location           *time.Location // Zone for formatted timestamps (default: time.Local)
}

// DefaultOptions returns options for primary logs
func DefaultOptions() Options {
	return Options{
		ChunkSize:          DefaultChunkSize,
		Prefix:             DefaultPrefix,
		Namespace:          DefaultNamespace,
		SenderTimestampKey: DefaultSenderTimestampKey,
		Location:           time.Local,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.Prefix == "" {
		o.Prefix = d.Prefix
	}
	if o.Namespace == "" {
		o.Namespace = d.Namespace
	}
	if o.SenderTimestampKey == "" {
		o.SenderTimestampKey = d.SenderTimestampKey
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

// ChunkError reports a chunk (or the final fragment) that was not well-formed XML
type ChunkError struct {
	Chunk  int // Chunk index; equals the chunk count for the final fragment
	Offset int // Byte offset of the chunk in the input
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d at offset %d: %v", e.Chunk, e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// ChunkedParser parses log4j XML text chunk by chunk
type ChunkedParser struct {
	opts Options
}

// NewChunkedParser creates a parser; zero option fields take defaults
func NewChunkedParser(opts Options) *ChunkedParser {
	return &ChunkedParser{opts: opts.withDefaults()}
}

// Parse is a convenience wrapper returning only the records
func Parse(ctx context.Context, raw string, opts Options, onProgress ProgressFunc) ([]domain.LogRecord, error) {
	res, err := NewChunkedParser(opts).Parse(ctx, raw, onProgress)
	if res == nil {
		return nil, err
	}
	return res.Records, err
}

// Parse implements LogParser
func (p *ChunkedParser) Parse(ctx context.Context, raw string, onProgress ProgressFunc) (res *Result, err error) {
	chunks := splitChunks(raw, p.opts.ChunkSize)

	ctx, span := observability.StartSpan(ctx, "logreader.Parse",
		attribute.Int("input_bytes", len(raw)),
		attribute.Int("chunk_size", p.opts.ChunkSize),
		attribute.Int("chunks", len(chunks)),
	)
	defer func() { observability.EndSpan(span, err, "parse") }()

	res = &Result{
		Stats: domain.ParseStats{
			InputBytes: len(raw),
			Chunks:     len(chunks),
			StartTime:  time.Now(),
		},
	}
	frag := newFragmenter(p.opts.Prefix)
	lastPercent := 0
	offset := 0

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return p.finish(res), fmt.Errorf("parse cancelled: %w", err)
		}

		if body := frag.next(chunk); body != "" {
			if err := p.appendFragment(res, body); err != nil {
				log.Error().
					Err(err).
					Int("chunk", i).
					Int("records_kept", len(res.Records)).
					Msg("Dropping malformed chunk")
				return p.finish(res), &ChunkError{Chunk: i, Offset: offset, Err: err}
			}
		}
		offset += len(chunk)

		percent := chunkProgress(i+1, len(chunks))
		if percent > lastPercent {
			lastPercent = percent
		}
		if onProgress != nil {
			onProgress(lastPercent)
		}

		log.Debug().
			Int("chunk", i+1).
			Int("of", len(chunks)).
			Int("records", len(res.Records)).
			Msg("Chunk parsed")

		// Let other goroutines (UI, newer loads) run between chunks
		runtime.Gosched()
	}

	if rest := frag.rest(); rest != "" {
		if err := p.appendFragment(res, rest); err != nil {
			log.Error().
				Err(err).
				Int("records_kept", len(res.Records)).
				Msg("Dropping malformed trailing fragment")
			return p.finish(res), &ChunkError{Chunk: len(chunks), Offset: len(raw) - len(rest), Err: err}
		}
	}

	p.finish(res)
	log.Info().
		Str("input", humanize.Bytes(uint64(len(raw)))).
		Int("chunks", len(chunks)).
		Int("records", len(res.Records)).
		Dur("took", res.Stats.Duration()).
		Msg("Log parsed")

	return res, nil
}

func (p *ChunkedParser) finish(res *Result) *Result {
	res.Stats.RecordsParsed = len(res.Records)
	res.Stats.EndTime = time.Now()
	return res
}

// appendFragment parses a span of complete records and appends them with
// ids continuing from the records already parsed
func (p *ChunkedParser) appendFragment(res *Result, body string) error {
	events, err := parseFragment(body, p.opts.Prefix, p.opts.Namespace)
	if err != nil {
		return err
	}
	for _, ev := range events {
		res.Records = append(res.Records, p.extractRecord(ev, len(res.Records)))
	}
	return nil
}

// chunkProgress returns min(95, round(done/total*100))
func chunkProgress(done, total int) int {
	if total <= 0 {
		return maxChunkProgress
	}
	percent := int(math.Round(float64(done) / float64(total) * 100))
	if percent > maxChunkProgress {
		return maxChunkProgress
	}
	return percent
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SteelMorgan/log4j-inspector/internal/container"
	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/filter"
	"github.com/SteelMorgan/log4j-inspector/internal/logreader"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/SteelMorgan/log4j-inspector/internal/sysdetails"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// ErrSuperseded is reported by a load whose result was discarded because
// a newer load started
var ErrSuperseded = errors.New("load superseded by a newer load")

// Options configures an Inspector
type Options struct {
	Parser            logreader.Options
	ArchivedChunkSize int
	Layout            container.Layout
	Engine            filter.Config
	Extractor         *sysdetails.Extractor // Nil uses the built-in rules
}

// DefaultOptions returns the options of a default session
func DefaultOptions() Options {
	return Options{
		Parser:            logreader.DefaultOptions(),
		ArchivedChunkSize: logreader.ArchivedChunkSize,
		Layout:            container.DefaultLayout(),
		Engine:            filter.DefaultConfig(),
	}
}

// ProgressFunc receives load progress; Percent never decreases within a load
type ProgressFunc func(domain.LoadProgress)

// LoadResult is delivered once per load
type LoadResult struct {
	LoadID       string
	Source       string // File name, or archived log display name
	Records      []domain.LogRecord
	Details      domain.SystemDetails
	ArchivedLogs []container.ArchivedLog
	TimeRange    domain.TimeRange
	Stats        domain.ParseStats
	Err          error // Records hold the ones parsed before the failure
}

// Inspector runs file loads for one session and feeds the filter engine.
// Only the most recently started load may replace the session state.
type Inspector struct {
	opts      Options
	extractor *sysdetails.Extractor
	engine    *filter.Engine

	applyMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	source   string
	details  domain.SystemDetails
	archived []container.ArchivedLog
}

// NewInspector creates an inspector with an empty session
func NewInspector(opts Options) *Inspector {
	if opts.ArchivedChunkSize <= 0 {
		opts.ArchivedChunkSize = logreader.ArchivedChunkSize
	}
	if opts.Layout == (container.Layout{}) {
		opts.Layout = container.DefaultLayout()
	}
	ex := opts.Extractor
	if ex == nil {
		ex = sysdetails.MustDefault()
	}
	return &Inspector{
		opts:      opts,
		extractor: ex,
		engine:    filter.NewEngine(opts.Engine),
	}
}

// Engine returns the filter engine of the session
func (s *Inspector) Engine() *filter.Engine {
	return s.engine
}

// Details returns the system details of the current log
func (s *Inspector) Details() domain.SystemDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.details
}

// ArchivedLogs returns the archived logs of the current container
func (s *Inspector) ArchivedLogs() []container.ArchivedLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archived
}

// Source returns the name of the loaded log
func (s *Inspector) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Close cancels a running load and stops the engine
func (s *Inspector) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.engine.Close()
}

// LoadFile validates and reads a file, then loads it like Load
func (s *Inspector) LoadFile(ctx context.Context, path string, onProgress ProgressFunc) (<-chan LoadResult, error) {
	if _, err := ValidateFileName(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRead, err)
	}
	return s.Load(ctx, filepath.Base(path), data, onProgress)
}

// Load starts loading data named name on a worker goroutine. Unsupported
// names are rejected before anything changes. The result is delivered on
// the returned channel, after which progress reaches 100.
func (s *Inspector) Load(ctx context.Context, name string, data []byte, onProgress ProgressFunc) (<-chan LoadResult, error) {
	kind, err := ValidateFileName(name)
	if err != nil {
		return nil, err
	}

	ctx, gen := s.begin(ctx)
	out := make(chan LoadResult)
	go func() {
		defer close(out)
		res := s.runLoad(ctx, gen, name, kind, data, onProgress)
		s.deliver(ctx, gen, out, res, onProgress)
	}()
	return out, nil
}

// LoadArchived reads and parses an archived log of the current container.
// The container's archived log list is kept; records and details are replaced.
func (s *Inspector) LoadArchived(ctx context.Context, ref container.ArchivedLog, onProgress ProgressFunc) <-chan LoadResult {
	ctx, gen := s.begin(ctx)
	out := make(chan LoadResult)
	go func() {
		defer close(out)
		res := s.runArchived(ctx, gen, ref, onProgress)
		s.deliver(ctx, gen, out, res, onProgress)
	}()
	return out
}

// begin supersedes the running load and returns the new load's generation
func (s *Inspector) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.gen++
	return ctx, s.gen
}

func (s *Inspector) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

func (s *Inspector) runLoad(ctx context.Context, gen uint64, name string, kind InputKind, data []byte, onProgress ProgressFunc) (res LoadResult) {
	res = LoadResult{LoadID: uuid.NewString(), Source: name}
	report := s.progress(gen, res.LoadID, onProgress)

	ctx, span := observability.StartSpan(ctx, "service.Load",
		attribute.String("load.id", res.LoadID),
		attribute.String("load.source", name),
		attribute.Int("load.bytes", len(data)),
	)
	defer func() { observability.EndSpan(span, res.Err, "load") }()

	log.Info().
		Str("load_id", res.LoadID).
		Str("source", name).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Msg("Load started")

	report(domain.StageReading, 0)

	raw := data
	if kind == InputContainer {
		report(domain.StageExtracting, 0)
		ext, err := container.Extract(ctx, data, s.opts.Layout)
		if err != nil {
			res.Err = err
			return res
		}
		raw = ext.MainLog
		res.ArchivedLogs = ext.ArchivedLogs
	}

	s.parse(ctx, &res, raw, s.opts.Parser, report)
	return res
}

func (s *Inspector) runArchived(ctx context.Context, gen uint64, ref container.ArchivedLog, onProgress ProgressFunc) (res LoadResult) {
	res = LoadResult{LoadID: uuid.NewString(), Source: ref.DisplayName, ArchivedLogs: s.ArchivedLogs()}
	report := s.progress(gen, res.LoadID, onProgress)

	ctx, span := observability.StartSpan(ctx, "service.LoadArchived",
		attribute.String("load.id", res.LoadID),
		attribute.String("load.source", ref.DisplayName),
	)
	defer func() { observability.EndSpan(span, res.Err, "archived load") }()

	report(domain.StageExtracting, 0)
	data, err := ref.Data(ctx)
	if err != nil {
		res.Err = err
		return res
	}

	opts := s.opts.Parser
	opts.ChunkSize = s.opts.ArchivedChunkSize
	s.parse(ctx, &res, data, opts, report)
	return res
}

func (s *Inspector) parse(ctx context.Context, res *LoadResult, raw []byte, opts logreader.Options, report func(domain.LoadStage, int)) {
	report(domain.StageParsing, 0)
	parsed, err := logreader.NewChunkedParser(opts).Parse(ctx, string(raw), func(percent int) {
		report(domain.StageParsing, percent)
	})
	if parsed != nil {
		res.Records = parsed.Records
		res.Stats = parsed.Stats
	}
	if err != nil {
		res.Err = err
		return
	}

	res.Details = s.extractor.Extract(ctx, res.Records)
	if tr, ok := domain.RecordsTimeRange(res.Records); ok {
		res.TimeRange = tr
	}
}

// deliver publishes a current load's result to the session and the caller
func (s *Inspector) deliver(ctx context.Context, gen uint64, out chan<- LoadResult, res LoadResult, onProgress ProgressFunc) {
	if !s.current(gen) {
		log.Info().
			Str("load_id", res.LoadID).
			Msg("Discarding superseded load")
		res = LoadResult{LoadID: res.LoadID, Source: res.Source, Err: ErrSuperseded}
		select {
		case out <- res:
		case <-ctx.Done():
		}
		return
	}

	if res.Err != nil {
		log.Error().
			Err(res.Err).
			Str("load_id", res.LoadID).
			Int("records_parsed", len(res.Records)).
			Msg("Load failed")
	} else {
		s.apply(gen, res)
	}

	select {
	case out <- res:
	case <-ctx.Done():
		return
	}

	if res.Err == nil && onProgress != nil && s.current(gen) {
		onProgress(domain.LoadProgress{LoadID: res.LoadID, Stage: domain.StageDone, Percent: 100})
	}
}

// apply replaces the session state with a successful load
func (s *Inspector) apply(gen uint64, res LoadResult) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.source = res.Source
	s.details = res.Details
	s.archived = res.ArchivedLogs
	s.mu.Unlock()

	<-s.engine.SetRecords(res.Records)

	log.Info().
		Str("load_id", res.LoadID).
		Str("source", res.Source).
		Int("records", len(res.Records)).
		Int("archived_logs", len(res.ArchivedLogs)).
		Time("from", res.TimeRange.Start).
		Time("to", res.TimeRange.End).
		Float64("records_per_sec", res.Stats.RecordsPerSecond()).
		Msg("Load completed")
}

// progress returns a reporter that keeps percent non-decreasing and stays
// silent once the load is superseded
func (s *Inspector) progress(gen uint64, loadID string, onProgress ProgressFunc) func(domain.LoadStage, int) {
	last := 0
	return func(stage domain.LoadStage, percent int) {
		if onProgress == nil || !s.current(gen) {
			return
		}
		if percent < last {
			percent = last
		}
		last = percent
		onProgress(domain.LoadProgress{LoadID: loadID, Stage: stage, Percent: percent})
	}
}

// Wait blocks until a load's result arrives or ctx ends
func Wait(ctx context.Context, results <-chan LoadResult) (LoadResult, error) {
	select {
	case res, ok := <-results:
		if !ok {
			return LoadResult{}, ErrSuperseded
		}
		return res, res.Err
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	}
}

package filter

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/SteelMorgan/log4j-inspector/internal/findings"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultPageSize is the size of the first window and of each extension
	DefaultPageSize = 100

	// DefaultSearchDebounce is how long search input must be idle before it applies
	DefaultSearchDebounce = 300 * time.Millisecond

	// DefaultScrollThreshold loads more once the remaining scroll height
	// is within this many viewport heights
	DefaultScrollThreshold = 1.5

	// FocusWindow is the half-width of the range set by FocusAround
	FocusWindow = 2500 * time.Millisecond
)

// Config configures an Engine
type Config struct {
	PageSize        int
	SearchDebounce  time.Duration
	ScrollThreshold float64
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		PageSize:        DefaultPageSize,
		SearchDebounce:  DefaultSearchDebounce,
		ScrollThreshold: DefaultScrollThreshold,
	}
}

// View is what a consumer renders: the visible window of the filtered and
// sorted records plus the state of the current recompute cycle
type View struct {
	Generation  uint64
	Records     []domain.LogRecord // Visible window; do not modify
	Total       int                // Filtered count
	Searching   bool               // A recompute is pending
	ScrollReset bool               // The window was reset to the start by this cycle
	Source      Source
}

// NoMatches reports a settled view with nothing to show
func (v View) NoMatches() bool {
	return !v.Searching && v.Total == 0
}

// HasMore reports whether LoadMore would extend the window
func (v View) HasMore() bool {
	return len(v.Records) < v.Total
}

// Engine owns the records, findings and predicates of one inspection
// session and keeps the filtered, sorted view up to date. Every change
// starts a recompute cycle on its own goroutine; only the most recently
// started cycle may publish its result.
type Engine struct {
	cfg       Config
	findings  *findings.Set
	debouncer *Debouncer

	mu        sync.Mutex
	records   []domain.LogRecord
	bounds    domain.TimeRange
	preds     Predicates
	result    []domain.LogRecord
	visible   int
	searching bool
	reset     bool
	gen       uint64
	listeners []func(View)

	notifyMu sync.Mutex
	notified uint64
}

// NewEngine creates an engine over an empty record set
func NewEngine(cfg Config) *Engine {
	d := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = d.PageSize
	}
	if cfg.SearchDebounce < 0 {
		cfg.SearchDebounce = 0
	}
	if cfg.ScrollThreshold <= 0 {
		cfg.ScrollThreshold = d.ScrollThreshold
	}
	return &Engine{
		cfg:       cfg,
		findings:  findings.NewSet(),
		debouncer: NewDebouncer(cfg.SearchDebounce),
		preds:     DefaultPredicates(),
	}
}

// OnChange registers fn to receive every published view
func (e *Engine) OnChange(fn func(View)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Findings returns the findings set of the session
func (e *Engine) Findings() *findings.Set {
	return e.findings
}

// Records returns the full record set
func (e *Engine) Records() []domain.LogRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records
}

// Predicates returns a copy of the current predicates
func (e *Engine) Predicates() Predicates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preds.clone()
}

// Bounds returns the time range of the loaded records
func (e *Engine) Bounds() domain.TimeRange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds
}

// Facets returns the predicate choices over all loaded records
func (e *Engine) Facets() Facets {
	return BuildFacets(e.Records())
}

// View returns the current view
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// All returns every filtered and sorted record, ignoring the window
func (e *Engine) All() []domain.LogRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// SetRecords replaces the record set. The date range bounds move to the
// new records' time span; the findings of the previous set are dropped.
func (e *Engine) SetRecords(records []domain.LogRecord) <-chan View {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = records
	e.findings.Clear()
	if tr, ok := domain.RecordsTimeRange(records); ok {
		e.bounds = tr
		e.preds.DateRange.Start = tr.Start
		e.preds.DateRange.End = tr.End
	} else {
		e.bounds = domain.TimeRange{}
		e.preds.DateRange = DateRange{}
	}
	return e.recomputeLocked()
}

// Recompute starts a new cycle with the current predicates
func (e *Engine) Recompute() <-chan View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked()
}

// SetLevels selects the levels to show; none shows every level
func (e *Engine) SetLevels(levels ...string) <-chan View {
	return e.update(func(p *Predicates) { p.Levels = slices.Clone(levels) })
}

// SetClass selects a class; "" or All shows every class
func (e *Engine) SetClass(class string) <-chan View {
	return e.update(func(p *Predicates) { p.Class = orAll(class) })
}

// SetMethod selects a method; "" or All shows every method
func (e *Engine) SetMethod(method string) <-chan View {
	return e.update(func(p *Predicates) { p.Method = orAll(method) })
}

// SetSearch records search input; it applies once input has been idle
// for the configured debounce delay
func (e *Engine) SetSearch(text string) {
	e.debouncer.Trigger(func() {
		e.SetSearchNow(text)
	})
}

// SetSearchNow applies search text without debouncing
func (e *Engine) SetSearchNow(text string) <-chan View {
	return e.update(func(p *Predicates) { p.Search = text })
}

// SetSort sets the sort key and direction
func (e *Engine) SetSort(field SortField, dir Direction) (<-chan View, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown sort field %q", field)
	}
	return e.update(func(p *Predicates) {
		p.SortField = field
		p.Direction = dir
	}), nil
}

// ToggleSort flips the direction when field is the current key, otherwise
// sorts by field descending
func (e *Engine) ToggleSort(field SortField) (<-chan View, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("unknown sort field %q", field)
	}
	return e.update(func(p *Predicates) {
		if p.SortField == field {
			p.Direction = p.Direction.Flip()
			return
		}
		p.SortField = field
		p.Direction = Descending
	}), nil
}

// SetSource switches between all records and the findings
func (e *Engine) SetSource(src Source) <-chan View {
	return e.update(func(p *Predicates) { p.Source = src })
}

// EnableDateRange turns the date range predicate on or off
func (e *Engine) EnableDateRange(active bool) <-chan View {
	return e.update(func(p *Predicates) { p.DateRange.Active = active })
}

// SetDateRange sets the date range bounds. The range must lie within the
// loaded records' time span and start must not be after end.
func (e *Engine) SetDateRange(start, end time.Time) (<-chan View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateRange(start, end, e.bounds); err != nil {
		return nil, err
	}
	e.preds.DateRange.Start = start
	e.preds.DateRange.End = end
	return e.recomputeLocked(), nil
}

// FocusAround activates the date range over FocusWindow either side of ts
func (e *Engine) FocusAround(ts int64) <-chan View {
	center := time.UnixMilli(ts)
	return e.update(func(p *Predicates) {
		p.DateRange = DateRange{
			Active: true,
			Start:  center.Add(-FocusWindow),
			End:    center.Add(FocusWindow),
		}
	})
}

// ResetFilters clears every filter predicate; sort and source are kept
// and the date range returns to the records' bounds
func (e *Engine) ResetFilters() <-chan View {
	e.debouncer.Stop()
	return e.update(func(p *Predicates) {
		p.Levels = nil
		p.Class = All
		p.Method = All
		p.Search = ""
		p.DateRange = DateRange{Start: e.bounds.Start, End: e.bounds.End}
	})
}

// FullReset resets the filters and discards the findings
func (e *Engine) FullReset() <-chan View {
	e.findings.Clear()
	return e.ResetFilters()
}

// AddFinding marks r as a finding
func (e *Engine) AddFinding(r domain.LogRecord) <-chan View {
	return e.findingsChanged(e.findings.Add(r))
}

// RemoveFinding unmarks the record with id
func (e *Engine) RemoveFinding(id int) <-chan View {
	return e.findingsChanged(e.findings.Remove(id))
}

// IsFinding reports whether the record with id is a finding
func (e *Engine) IsFinding(id int) bool {
	return e.findings.Contains(id)
}

// findingsChanged recomputes when the findings view is showing
func (e *Engine) findingsChanged(changed bool) <-chan View {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !changed || e.preds.Source != SourceFindings {
		return settled(e.viewLocked())
	}
	return e.recomputeLocked()
}

// LoadMore grows the visible window by one page, without filtering or
// sorting again. It does nothing while a cycle is pending.
func (e *Engine) LoadMore() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.searching || e.visible >= len(e.result) {
		return e.viewLocked()
	}
	e.visible += e.cfg.PageSize
	if e.visible > len(e.result) {
		e.visible = len(e.result)
	}
	e.reset = false

	log.Debug().
		Int("visible", e.visible).
		Int("total", len(e.result)).
		Msg("Visible window extended")

	return e.viewLocked()
}

// NearBottom reports whether a scroll position is close enough to the end
// of the rendered window to load more
func (e *Engine) NearBottom(scrollTop, scrollHeight, clientHeight float64) bool {
	return scrollHeight-scrollTop <= clientHeight*e.cfg.ScrollThreshold
}

// HandleScroll loads more when the scroll position is near the bottom
func (e *Engine) HandleScroll(scrollTop, scrollHeight, clientHeight float64) View {
	if e.NearBottom(scrollTop, scrollHeight, clientHeight) {
		return e.LoadMore()
	}
	return e.View()
}

// Close stops a pending debounced search
func (e *Engine) Close() {
	e.debouncer.Stop()
}

func (e *Engine) update(mutate func(p *Predicates)) <-chan View {
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.preds)
	return e.recomputeLocked()
}

// recomputeLocked starts a cycle. The returned channel yields the view
// if this cycle publishes and is closed empty if a newer cycle supersedes it.
func (e *Engine) recomputeLocked() <-chan View {
	e.gen++
	gen := e.gen
	e.searching = true

	preds := e.preds.clone()
	source := e.records
	if preds.Source == SourceFindings {
		source = e.findings.All()
	}

	out := make(chan View, 1)
	go func() {
		defer close(out)

		// Yield first so a burst of changes only runs the last pass
		runtime.Gosched()
		if e.superseded(gen) {
			return
		}

		_, span := observability.StartSpan(context.Background(), "filter.Recompute",
			attribute.Int("records", len(source)),
			attribute.String("source", preds.Source.String()),
		)
		started := time.Now()
		result := Apply(source, preds)
		observability.EndSpan(span, nil, "recomputed")

		v, listeners, ok := e.publish(gen, result)
		if !ok {
			return
		}

		log.Debug().
			Uint64("generation", gen).
			Int("matched", len(result)).
			Int("of", len(source)).
			Dur("took", time.Since(started)).
			Msg("View recomputed")

		e.notify(gen, v, listeners)
		out <- v
	}()
	return out
}

func (e *Engine) superseded(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.gen
}

func (e *Engine) publish(gen uint64, result []domain.LogRecord) (View, []func(View), bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return View{}, nil, false
	}
	e.result = result
	e.visible = min(e.cfg.PageSize, len(result))
	e.searching = false
	e.reset = true
	return e.viewLocked(), slices.Clone(e.listeners), true
}

// notify delivers v to listeners unless a newer view was delivered already
func (e *Engine) notify(gen uint64, v View, listeners []func(View)) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	if gen <= e.notified {
		return
	}
	e.notified = gen
	for _, fn := range listeners {
		fn(v)
	}
}

func (e *Engine) viewLocked() View {
	return View{
		Generation:  e.gen,
		Records:     e.result[:e.visible:e.visible],
		Total:       len(e.result),
		Searching:   e.searching,
		ScrollReset: e.reset,
		Source:      e.preds.Source,
	}
}

// RangeGranularity is the precision at which a date range is checked
// against the record bounds. Range inputs are entered to the minute.
const RangeGranularity = time.Minute

func validateRange(start, end time.Time, bounds domain.TimeRange) error {
	lo, hi := widenBounds(bounds)
	switch {
	case start.After(end):
		return fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	case !lo.IsZero() && start.Before(lo):
		return fmt.Errorf("%w: start cannot be earlier than %s", domain.ErrInvalidRange, lo.Format(time.RFC3339))
	case !hi.IsZero() && end.After(hi):
		return fmt.Errorf("%w: end cannot be later than %s", domain.ErrInvalidRange, hi.Format(time.RFC3339))
	}
	return nil
}

// widenBounds floors the first and ceils the last timestamp to
// RangeGranularity
func widenBounds(b domain.TimeRange) (lo, hi time.Time) {
	if !b.Start.IsZero() {
		lo = b.Start.Truncate(RangeGranularity)
	}
	if !b.End.IsZero() {
		hi = b.End.Truncate(RangeGranularity)
		if hi.Before(b.End) {
			hi = hi.Add(RangeGranularity)
		}
	}
	return lo, hi
}

func orAll(v string) string {
	if v == "" {
		return All
	}
	return v
}

func settled(v View) <-chan View {
	out := make(chan View, 1)
	out <- v
	close(out)
	return out
}

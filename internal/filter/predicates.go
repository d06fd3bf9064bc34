// Package filter implements the filter, sort and paginate pipeline over
// parsed records.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// All is the wildcard value for the class and method predicates
const All = "all"

// SortField names a record field usable as sort key
type SortField string

const (
	SortID               SortField = "id"
	SortTimestamp        SortField = "timestamp"
	SortTimestampDisplay SortField = "timestampDisplay"
	SortLevel            SortField = "level"
	SortLogger           SortField = "logger"
	SortThread           SortField = "thread"
	SortClassName        SortField = "className"
	SortMethod           SortField = "method"
	SortMessage          SortField = "message"
)

// SortFields lists every valid sort field
var SortFields = []SortField{
	SortID, SortTimestamp, SortTimestampDisplay, SortLevel, SortLogger,
	SortThread, SortClassName, SortMethod, SortMessage,
}

// Valid reports whether f is a known sort field
func (f SortField) Valid() bool {
	return slices.Contains(SortFields, f)
}

// Direction is the sort direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Source selects the records the pipeline runs over
type Source int

const (
	SourceAll Source = iota
	SourceFindings
)

func (s Source) String() string {
	if s == SourceFindings {
		return "findings"
	}
	return "all"
}

// DateRange restricts records to an inclusive time window when Active
type DateRange struct {
	Active bool
	Start  time.Time
	End    time.Time
}

// Predicates is the full filter and sort state of a view
type Predicates struct {
	Levels    []string // Empty matches every level
	Class     string   // "" or All matches every class
	Method    string   // "" or All matches every method
	Search    string   // Case-insensitive substring; empty matches everything
	DateRange DateRange
	SortField SortField
	Direction Direction
	Source    Source
}

// DefaultPredicates matches everything, newest first
func DefaultPredicates() Predicates {
	return Predicates{
		Class:     All,
		Method:    All,
		SortField: SortTimestamp,
		Direction: Descending,
		Source:    SourceAll,
	}
}

func (p Predicates) clone() Predicates {
	p.Levels = slices.Clone(p.Levels)
	return p
}

// Matcher evaluates the filter part of Predicates against records
type Matcher struct {
	levels    map[string]struct{}
	class     string
	method    string
	search    string
	dateRange *domain.TimeRange
}

// NewMatcher prepares p for repeated matching
func NewMatcher(p Predicates) *Matcher {
	m := &Matcher{
		search: strings.ToLower(p.Search),
	}
	if len(p.Levels) > 0 {
		m.levels = make(map[string]struct{}, len(p.Levels))
		for _, l := range p.Levels {
			m.levels[l] = struct{}{}
		}
	}
	if p.Class != All {
		m.class = p.Class
	}
	if p.Method != All {
		m.method = p.Method
	}
	if dr := p.DateRange; dr.Active && !dr.Start.IsZero() && !dr.End.IsZero() {
		m.dateRange = &domain.TimeRange{Start: dr.Start, End: dr.End}
	}
	return m
}

// Match reports whether r passes every predicate
func (m *Matcher) Match(r *domain.LogRecord) bool {
	if m.levels != nil {
		if _, ok := m.levels[r.Level]; !ok {
			return false
		}
	}
	if m.class != "" && r.ClassName != m.class {
		return false
	}
	if m.method != "" && r.Method != m.method {
		return false
	}
	if m.search != "" && !m.matchSearch(r) {
		return false
	}
	if m.dateRange != nil && !m.dateRange.Contains(r.Time()) {
		return false
	}
	return true
}

func (m *Matcher) matchSearch(r *domain.LogRecord) bool {
	return strings.Contains(strings.ToLower(r.Message), m.search) ||
		strings.Contains(strings.ToLower(r.ClassName), m.search) ||
		strings.Contains(strings.ToLower(r.Method), m.search) ||
		strings.Contains(strings.ToLower(r.TimestampDisplay), m.search)
}

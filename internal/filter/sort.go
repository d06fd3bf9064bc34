package filter

import (
	"bytes"
	"cmp"
	"slices"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders records in place by field and direction. Numeric fields
// compare numerically, text fields by the collation order of their
// lower-cased value. Records with equal keys keep their relative order.
func Sort(records []domain.LogRecord, field SortField, dir Direction) {
	sign := 1
	if dir == Descending {
		sign = -1
	}

	switch field {
	case SortID:
		slices.SortStableFunc(records, func(a, b domain.LogRecord) int { return sign * cmp.Compare(a.ID, b.ID) })
		return
	case SortTimestamp:
		slices.SortStableFunc(records, func(a, b domain.LogRecord) int {
			return sign * cmp.Compare(a.TimestampRaw, b.TimestampRaw)
		})
		return
	}

	text := textField(field)
	coll := collate.New(language.Und)
	var buf collate.Buffer
	keys := make([][]byte, len(records))
	for i := range records {
		keys[i] = coll.KeyFromString(&buf, strings.ToLower(text(&records[i])))
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return sign * bytes.Compare(keys[a], keys[b]) })

	sorted := make([]domain.LogRecord, len(records))
	for i, j := range order {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}

func textField(field SortField) func(r *domain.LogRecord) string {
	switch field {
	case SortTimestampDisplay:
		return func(r *domain.LogRecord) string { return r.TimestampDisplay }
	case SortLevel:
		return func(r *domain.LogRecord) string { return r.Level }
	case SortLogger:
		return func(r *domain.LogRecord) string { return r.Logger }
	case SortThread:
		return func(r *domain.LogRecord) string { return r.Thread }
	case SortClassName:
		return func(r *domain.LogRecord) string { return r.ClassName }
	case SortMethod:
		return func(r *domain.LogRecord) string { return r.Method }
	default:
		return func(r *domain.LogRecord) string { return r.Message }
	}
}

// Apply filters records by p and sorts the result. records is not modified.
func Apply(records []domain.LogRecord, p Predicates) []domain.LogRecord {
	m := NewMatcher(p)
	out := make([]domain.LogRecord, 0, len(records)/4)
	for i := range records {
		if m.Match(&records[i]) {
			out = append(out, records[i])
		}
	}

	field := p.SortField
	if !field.Valid() {
		field = SortTimestamp
	}
	Sort(out, field, p.Direction)
	return out
}

package normalizer

import (
	"cmp"
	"slices"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// MessageGroup aggregates the records sharing a level and message pattern
type MessageGroup struct {
	Level     string
	Pattern   string
	Count     int
	FirstID   int // Id of the earliest record in the group
	FirstSeen time.Time
	LastSeen  time.Time
}

// Group aggregates records by level and normalized message, most frequent
// first. Groups with the same count keep first-appearance order.
func (n *MessageNormalizer) Group(records []domain.LogRecord) []MessageGroup {
	type key struct{ level, pattern string }
	index := make(map[key]int)
	var groups []MessageGroup

	for i := range records {
		r := &records[i]
		k := key{r.Level, n.Normalize(r.Message)}
		ts := r.Time()

		gi, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, MessageGroup{
				Level:     k.level,
				Pattern:   k.pattern,
				Count:     1,
				FirstID:   r.ID,
				FirstSeen: ts,
				LastSeen:  ts,
			})
			continue
		}

		g := &groups[gi]
		g.Count++
		if ts.Before(g.FirstSeen) {
			g.FirstSeen = ts
			g.FirstID = r.ID
		}
		if ts.After(g.LastSeen) {
			g.LastSeen = ts
		}
	}

	slices.SortStableFunc(groups, func(a, b MessageGroup) int { return cmp.Compare(b.Count, a.Count) })
	return groups
}

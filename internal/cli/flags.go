package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/filter"
	"github.com/spf13/cobra"
)

// viewFlags are the predicate flags shared by view and export
type viewFlags struct {
	levels   []string
	class    string
	method   string
	search   string
	from     string
	to       string
	focus    int64
	sort     string
	order    string
	archive  string
	findings bool
	marked   []int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.levels, "level", "l", nil, "show only these levels (repeatable)")
	fs.StringVar(&f.class, "class", filter.All, "show only this class")
	fs.StringVar(&f.method, "method", filter.All, "show only this method")
	fs.StringVarP(&f.search, "search", "s", "", "case-insensitive text search")
	fs.StringVar(&f.from, "from", "", "start of the date range (RFC3339 or \"2006-01-02 15:04:05\")")
	fs.StringVar(&f.to, "to", "", "end of the date range")
	fs.Int64Var(&f.focus, "focus", 0, "show records within 2.5s of this epoch-ms timestamp")
	fs.StringVar(&f.sort, "sort", string(filter.SortTimestamp), "sort field")
	fs.StringVar(&f.order, "order", string(filter.Descending), "sort order: asc or desc")
	fs.StringVar(&f.archive, "archive", "", "load this archived log of a container instead of the primary log")
	fs.IntSliceVar(&f.marked, "mark", nil, "record ids to mark as findings (repeatable)")
	fs.BoolVar(&f.findings, "findings", false, "show only the marked records")
}

// apply sets the flags on the engine and waits for the resulting view
func (f *viewFlags) apply(ctx context.Context, e *filter.Engine, loc *time.Location) (filter.View, error) {
	for _, id := range f.marked {
		found := false
		for _, r := range e.Records() {
			if r.ID == id {
				<-e.AddFinding(r)
				found = true
				break
			}
		}
		if !found {
			return filter.View{}, fmt.Errorf("no record with id %d", id)
		}
	}

	<-e.SetLevels(f.levels...)
	<-e.SetClass(f.class)
	<-e.SetMethod(f.method)
	<-e.SetSearchNow(f.search)

	if f.order != string(filter.Ascending) && f.order != string(filter.Descending) {
		return filter.View{}, fmt.Errorf("unknown sort order %q", f.order)
	}
	ch, err := e.SetSort(filter.SortField(f.sort), filter.Direction(f.order))
	if err != nil {
		return filter.View{}, err
	}
	<-ch

	if f.from != "" || f.to != "" {
		bounds := e.Bounds()
		start, end := bounds.Start, bounds.End
		if f.from != "" {
			if start, err = parseTime(f.from, loc); err != nil {
				return filter.View{}, err
			}
		}
		if f.to != "" {
			if end, err = parseTime(f.to, loc); err != nil {
				return filter.View{}, err
			}
		}
		ch, err := e.SetDateRange(start, end)
		if err != nil {
			return filter.View{}, err
		}
		<-ch
		<-e.EnableDateRange(true)
	}
	if f.focus != 0 {
		<-e.FocusAround(f.focus)
	}

	source := filter.SourceAll
	if f.findings {
		source = filter.SourceFindings
	}
	return waitView(ctx, e.SetSource(source))
}

func waitView(ctx context.Context, ch <-chan filter.View) (filter.View, error) {
	select {
	case v, ok := <-ch:
		if !ok {
			return filter.View{}, fmt.Errorf("view was recomputed concurrently")
		}
		return v, nil
	case <-ctx.Done():
		return filter.View{}, ctx.Err()
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05.000", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

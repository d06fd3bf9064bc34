package filter

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_FirstPageAndLoadMore(t *testing.T) {
	e := newTestEngine(t, makeRecords(250))

	v := e.View()
	assert.Equal(t, 250, v.Total)
	assert.Len(t, v.Records, 100)
	assert.False(t, v.Searching)
	assert.True(t, v.ScrollReset)
	assert.True(t, v.HasMore())
	assert.Equal(t, 249, v.Records[0].ID, "newest first by default")

	v = e.LoadMore()
	assert.Len(t, v.Records, 200)
	assert.False(t, v.ScrollReset)

	v = e.LoadMore()
	assert.Len(t, v.Records, 250)
	assert.False(t, v.HasMore())

	v = e.LoadMore()
	assert.Len(t, v.Records, 250)
}

func TestEngine_WindowNeverExceedsTotal(t *testing.T) {
	e := newTestEngine(t, makeRecords(30))

	v := e.View()
	assert.Equal(t, 30, v.Total)
	assert.Len(t, v.Records, 30)
	assert.False(t, v.HasMore())
}

func TestEngine_FilterResetsWindow(t *testing.T) {
	e := newTestEngine(t, makeRecords(1000))
	e.LoadMore()
	require.Len(t, e.View().Records, 200)

	v := wait(t, e.SetLevels("ERROR"))
	assert.Equal(t, 200, v.Total)
	assert.Len(t, v.Records, 100)
	assert.True(t, v.ScrollReset)
	for _, r := range v.Records {
		assert.Equal(t, "ERROR", r.Level)
	}
}

func TestEngine_HandleScroll(t *testing.T) {
	e := newTestEngine(t, makeRecords(250))

	assert.False(t, e.NearBottom(800, 1000, 100))
	assert.True(t, e.NearBottom(850, 1000, 100))

	v := e.HandleScroll(100, 1000, 100)
	assert.Len(t, v.Records, 100)

	v = e.HandleScroll(900, 1000, 100)
	assert.Len(t, v.Records, 200)
}

func TestEngine_EmptyRecordsShowNoMatches(t *testing.T) {
	e := newTestEngine(t, nil)

	v := e.View()
	assert.True(t, v.NoMatches())
	assert.Empty(t, v.Records)
	assert.True(t, e.Bounds().Start.IsZero())
}

func TestEngine_NoMatchesAfterFilter(t *testing.T) {
	e := newTestEngine(t, makeRecords(10))

	v := wait(t, e.SetSearchNow("no such text"))
	assert.True(t, v.NoMatches())
}

func TestEngine_SupersededCycleDoesNotPublish(t *testing.T) {
	e := newTestEngine(t, makeRecords(50))

	e.mu.Lock()
	e.preds.Levels = []string{"ERROR"}
	older := e.recomputeLocked()
	e.preds.Levels = []string{"INFO"}
	newer := e.recomputeLocked()
	e.mu.Unlock()

	v := wait(t, newer)
	_, published := <-older
	assert.False(t, published)

	assert.Equal(t, 10, v.Total)
	for _, r := range e.All() {
		assert.Equal(t, "INFO", r.Level)
	}
	assert.Equal(t, v.Generation, e.View().Generation)
}

func TestEngine_OnlyLatestOfBurstPublishes(t *testing.T) {
	e := newTestEngine(t, makeRecords(500))

	var mu sync.Mutex
	var published []uint64
	e.OnChange(func(v View) {
		mu.Lock()
		published = append(published, v.Generation)
		mu.Unlock()
	})

	var last <-chan View
	for _, lvl := range testLevels {
		last = e.SetLevels(lvl)
	}
	v := wait(t, last)
	assert.Equal(t, 100, v.Total)
	assert.Equal(t, "FATAL", v.Records[0].Level)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, published)
	assert.Equal(t, v.Generation, published[len(published)-1])
	for i := 1; i < len(published); i++ {
		assert.Less(t, published[i-1], published[i])
	}
}

func TestEngine_DebouncedSearch(t *testing.T) {
	e := newTestEngine(t, makeRecords(200))

	e.SetSearch("item 1")
	e.SetSearch("item 12")
	e.SetSearch("item 123")

	require.Eventually(t, func() bool {
		v := e.View()
		return !v.Searching && e.Predicates().Search == "item 123"
	}, 2*time.Second, 10*time.Millisecond)

	v := e.View()
	require.Equal(t, 1, v.Total)
	assert.Equal(t, 123, v.Records[0].ID)
}

func TestEngine_ZeroDebounceKeepsLatestSearch(t *testing.T) {
	for run := 0; run < 200; run++ {
		e := NewEngine(Config{PageSize: 100})
		wait(t, e.SetRecords(makeRecords(10)))

		for i := 0; i < 5; i++ {
			e.SetSearch(fmt.Sprintf("item %d", i))
		}

		require.Equal(t, "item 4", e.Predicates().Search, "run %d", run)
		require.Eventually(t, func() bool {
			v := e.View()
			return !v.Searching && v.Total == 1
		}, 2*time.Second, time.Millisecond)
		assert.Equal(t, 4, e.View().Records[0].ID)
		e.Close()
	}
}

func TestEngine_ToggleSort(t *testing.T) {
	e := newTestEngine(t, makeRecords(5))

	ch, err := e.ToggleSort(SortTimestamp)
	require.NoError(t, err)
	v := wait(t, ch)
	assert.Equal(t, Ascending, e.Predicates().Direction)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids(v.Records))

	ch, err = e.ToggleSort(SortLevel)
	require.NoError(t, err)
	wait(t, ch)
	p := e.Predicates()
	assert.Equal(t, SortLevel, p.SortField)
	assert.Equal(t, Descending, p.Direction)

	_, err = e.ToggleSort("nope")
	assert.Error(t, err)
}

func TestEngine_SetSort(t *testing.T) {
	e := newTestEngine(t, makeRecords(5))

	ch, err := e.SetSort(SortID, Ascending)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids(wait(t, ch).Records))

	_, err = e.SetSort("bogus", Ascending)
	assert.Error(t, err)
}

func TestEngine_DateRange(t *testing.T) {
	records := makeRecords(20)
	e := newTestEngine(t, records)

	bounds := e.Bounds()
	assert.Equal(t, baseTs, bounds.Start.UnixMilli())
	assert.Equal(t, baseTs+19000, bounds.End.UnixMilli())

	p := e.Predicates()
	assert.False(t, p.DateRange.Active)
	assert.Equal(t, bounds.Start, p.DateRange.Start)
	assert.Equal(t, bounds.End, p.DateRange.End)

	ch, err := e.SetDateRange(time.UnixMilli(baseTs+5000), time.UnixMilli(baseTs+9000))
	require.NoError(t, err)
	v := wait(t, ch)
	assert.Equal(t, 20, v.Total, "range is inactive until enabled")

	v = wait(t, e.EnableDateRange(true))
	assert.Equal(t, 5, v.Total)

	// bounds are 22:13:20 and 22:13:39, checked at minute precision
	_, err = e.SetDateRange(time.UnixMilli(baseTs-20001), time.UnixMilli(baseTs+9000))
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))

	_, err = e.SetDateRange(time.UnixMilli(baseTs+5000), time.UnixMilli(baseTs+40001))
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))

	_, err = e.SetDateRange(time.UnixMilli(baseTs+9000), time.UnixMilli(baseTs+5000))
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))
}

func TestEngine_DateRangeMinutePrecision(t *testing.T) {
	e := newTestEngine(t, makeRecords(20))

	start := time.UnixMilli(baseTs).UTC().Truncate(time.Minute)
	end := start.Add(time.Minute)

	ch, err := e.SetDateRange(start, end)
	require.NoError(t, err)
	wait(t, ch)

	v := wait(t, e.EnableDateRange(true))
	assert.Equal(t, 20, v.Total)
}

func TestEngine_FocusAround(t *testing.T) {
	e := newTestEngine(t, makeRecords(20))

	v := wait(t, e.FocusAround(baseTs+10000))
	assert.ElementsMatch(t, []int{8, 9, 10, 11, 12}, ids(v.Records))
	assert.True(t, e.Predicates().DateRange.Active)
}

func TestEngine_FindingsSource(t *testing.T) {
	records := makeRecords(50)
	e := newTestEngine(t, records)

	wait(t, e.AddFinding(records[3]))
	wait(t, e.AddFinding(records[40]))
	wait(t, e.AddFinding(records[1]))
	assert.True(t, e.IsFinding(40))
	assert.Equal(t, 50, e.View().Total, "findings changes do not touch the all view")

	v := wait(t, e.SetSource(SourceFindings))
	assert.Equal(t, SourceFindings, v.Source)
	assert.True(t, v.ScrollReset)
	assert.Equal(t, []int{40, 3, 1}, ids(v.Records))

	v = wait(t, e.RemoveFinding(3))
	assert.Equal(t, []int{40, 1}, ids(v.Records))

	v = wait(t, e.SetLevels("ERROR"))
	assert.Equal(t, []int{1}, ids(v.Records), "predicates also apply to findings")

	v = wait(t, e.SetSource(SourceAll))
	assert.Equal(t, 10, v.Total)
}

func TestEngine_ResetFilters(t *testing.T) {
	records := makeRecords(50)
	e := newTestEngine(t, records)
	wait(t, e.AddFinding(records[0]))
	wait(t, e.SetLevels("WARN"))
	wait(t, e.SetClass("com.example.Service1"))
	wait(t, e.SetSearchNow("item"))
	wait(t, e.FocusAround(baseTs))

	v := wait(t, e.ResetFilters())
	assert.Equal(t, 50, v.Total)
	p := e.Predicates()
	assert.Empty(t, p.Levels)
	assert.Equal(t, All, p.Class)
	assert.Equal(t, All, p.Method)
	assert.Empty(t, p.Search)
	assert.False(t, p.DateRange.Active)
	assert.Equal(t, 1, e.Findings().Len())

	wait(t, e.FullReset())
	assert.Zero(t, e.Findings().Len())
}

func TestEngine_SetRecordsDropsFindings(t *testing.T) {
	records := makeRecords(10)
	e := newTestEngine(t, records)
	wait(t, e.AddFinding(records[2]))

	v := wait(t, e.SetRecords(makeRecords(3)))
	assert.Equal(t, 3, v.Total)
	assert.Zero(t, e.Findings().Len())
}

func TestEngine_EmptyClassMeansAll(t *testing.T) {
	e := newTestEngine(t, makeRecords(8))

	wait(t, e.SetClass("com.example.Service2"))
	v := wait(t, e.SetClass(""))
	assert.Equal(t, 8, v.Total)
	assert.Equal(t, All, e.Predicates().Class)
}

func TestEngine_Facets(t *testing.T) {
	e := newTestEngine(t, makeRecords(10))

	f := e.Facets()
	assert.Equal(t, testLevels, f.Levels)
	assert.Len(t, f.Classes, 4)
	assert.Len(t, f.Methods, 2)
}

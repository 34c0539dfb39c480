package feed_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TomZ28/matcha/internal/feed"
)

type rec struct {
	ID string
}

func recKey(r rec) string { return r.ID }

// stubFetcher is a scripted collaborator that tracks call counts and
// concurrent use so tests can assert the single-in-flight guarantee.
type stubFetcher struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	fn          func(call int, p feed.Params) ([]rec, error)
}

func (s *stubFetcher) Fetch(ctx context.Context, p feed.Params) ([]rec, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	fn := s.fn
	s.mu.Unlock()

	items, err := fn(call, p)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return items, err
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// seqPage returns n records with globally unique ids starting at start.
func seqPage(start, n int) []rec {
	out := make([]rec, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rec{ID: fmt.Sprintf("rec-%04d", start+i)})
	}
	return out
}

func newFeed(t *testing.T, s *stubFetcher, pageSize int) *feed.Feed[rec] {
	t.Helper()
	f, err := feed.New(s.Fetch, recKey, pageSize, feed.SortPostedDate)
	if err != nil {
		t.Fatalf("feed.New: %v", err)
	}
	return f
}

// ── Initial load ───────────────────────────────────────────────────────────

func TestLoadInitial_OverFetchesTwoPages(t *testing.T) {
	const pageSize = 6
	s := &stubFetcher{fn: func(call int, p feed.Params) ([]rec, error) {
		if p.Page != 1 {
			t.Errorf("initial load requested page %d, want 1", p.Page)
		}
		if p.PageSize != 2*pageSize {
			t.Errorf("initial load requested %d items, want %d", p.PageSize, 2*pageSize)
		}
		return seqPage(0, p.PageSize), nil
	}}
	f := newFeed(t, s, pageSize)

	f.LoadInitial(context.Background())

	if got := len(f.Items()); got != 2*pageSize {
		t.Errorf("items after initial load = %d, want %d", got, 2*pageSize)
	}
	if !f.HasMore() {
		t.Error("hasMore should be true after a full initial page")
	}
	if f.Err() != "" {
		t.Errorf("unexpected error: %q", f.Err())
	}
}

func TestLoadInitial_ShortPageExhaustsFeed(t *testing.T) {
	s := &stubFetcher{fn: func(call int, p feed.Params) ([]rec, error) {
		return seqPage(0, 4), nil // fewer than 2×pageSize
	}}
	f := newFeed(t, s, 6)

	f.LoadInitial(context.Background())

	if f.HasMore() {
		t.Error("hasMore should be false when the initial page is short")
	}
	f.TriggerLoad(context.Background())
	if s.callCount() != 1 {
		t.Errorf("exhausted feed fetched again: %d calls", s.callCount())
	}
}

func TestLoadInitial_NilResultIsEmptyPage(t *testing.T) {
	s := &stubFetcher{fn: func(call int, p feed.Params) ([]rec, error) {
		return nil, nil
	}}
	f := newFeed(t, s, 6)

	f.LoadInitial(context.Background())

	if got := len(f.Items()); got != 0 {
		t.Errorf("items = %d, want 0", got)
	}
	if f.Err() != "" {
		t.Errorf("nil result should not be an error, got %q", f.Err())
	}
	if f.HasMore() {
		t.Error("hasMore should be false after an empty initial page")
	}
}

func TestLoadInitial_FailureIsRecoverable(t *testing.T) {
	s := &stubFetcher{fn: func(call int, p feed.Params) ([]rec, error) {
		if call == 1 {
			return nil, errors.New("connection refused")
		}
		return seqPage(0, p.PageSize), nil
	}}
	f := newFeed(t, s, 6)

	f.LoadInitial(context.Background())

	if f.Err() == "" {
		t.Fatal("expected an error after a failed fetch")
	}
	if f.HasMore() {
		t.Error("hasMore should be false after a failed fetch")
	}

	// A parameter change still triggers a fresh attempt.
	f.SetQuery(context.Background(), "engineer")
	if f.Err() != "" {
		t.Errorf("error should clear after a successful reload, got %q", f.Err())
	}
	if got := len(f.Items()); got != 12 {
		t.Errorf("items after reload = %d, want 12", got)
	}
}

// ── Scroll triggers ────────────────────────────────────────────────────────

func TestTriggerLoad_AppendsOnePagePerTrigger(t *testing.T) {
	const pageSize = 6
	next := 0
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		page := seqPage(next, p.PageSize)
		next += p.PageSize
		return page, nil
	}
	f := newFeed(t, s, pageSize)
	f.LoadInitial(context.Background())

	const triggers = 4
	for k := 1; k <= triggers; k++ {
		f.TriggerLoad(context.Background())
		want := 2*pageSize + k*pageSize
		if got := len(f.Items()); got != want {
			t.Errorf("items after %d trigger(s) = %d, want %d", k, got, want)
		}
		if !f.HasMore() {
			t.Errorf("hasMore should stay true after trigger %d", k)
		}
	}
	if s.maxInFlight > 1 {
		t.Errorf("collaborator saw %d concurrent calls, want at most 1", s.maxInFlight)
	}
}

func TestTriggerLoad_RequestsSequentialPages(t *testing.T) {
	var pages []int
	next := 0
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		pages = append(pages, p.Page)
		page := seqPage(next, p.PageSize)
		next += p.PageSize
		return page, nil
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())
	f.TriggerLoad(context.Background())

	// Page 1 consumes two pages worth, so the cursor jumps to 3.
	want := []int{1, 3, 4}
	for i, p := range want {
		if i >= len(pages) || pages[i] != p {
			t.Fatalf("requested pages %v, want %v", pages, want)
		}
	}
}

func TestTriggerLoad_ShortThirdCallStopsFeed(t *testing.T) {
	next := 0
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		n := p.PageSize
		if call == 3 {
			n = p.PageSize - 2
		}
		page := seqPage(next, n)
		next += n
		return page, nil
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())
	f.TriggerLoad(context.Background()) // short page → exhausted

	if f.HasMore() {
		t.Error("hasMore should be false after a short page")
	}
	before := s.callCount()
	f.TriggerLoad(context.Background())
	f.TriggerLoad(context.Background())
	if s.callCount() != before {
		t.Errorf("exhausted feed fetched again: %d extra calls", s.callCount()-before)
	}
}

func TestTriggerLoad_EmptyPageStopsFeed(t *testing.T) {
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		if call == 1 {
			return seqPage(0, p.PageSize), nil
		}
		return []rec{}, nil
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())

	if f.HasMore() {
		t.Error("hasMore should be false after an empty page")
	}
	if got := len(f.Items()); got != 12 {
		t.Errorf("items = %d, want 12", got)
	}
}

func TestTriggerLoad_IgnoredWhileInFlight(t *testing.T) {
	const pageSize = 6
	release := make(chan struct{})
	started := make(chan struct{})
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		if call == 2 {
			close(started)
			<-release
		}
		return seqPage(call*100, p.PageSize), nil
	}
	f := newFeed(t, s, pageSize)
	f.LoadInitial(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.TriggerLoad(context.Background())
	}()
	<-started

	// These arrive while call 2 is still blocked; they must be dropped.
	for i := 0; i < 5; i++ {
		f.TriggerLoad(context.Background())
	}
	close(release)
	wg.Wait()

	if got := s.callCount(); got != 2 {
		t.Errorf("collaborator called %d times, want 2", got)
	}
	if s.maxInFlight > 1 {
		t.Errorf("collaborator saw %d concurrent calls, want at most 1", s.maxInFlight)
	}
}

// ── Deduplication ──────────────────────────────────────────────────────────

func TestDedupe_OverlappingPages(t *testing.T) {
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		switch call {
		case 1:
			return seqPage(0, p.PageSize), nil
		default:
			// Second page overlaps the tail of the first by three records.
			return seqPage(9, p.PageSize), nil
		}
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())

	items := f.Items()
	seen := make(map[string]int)
	for _, r := range items {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s appears %d times, want exactly once", id, n)
		}
	}
	if len(items) != 15 { // 12 initial + 6 overlapping of which 3 new
		t.Errorf("items = %d, want 15", len(items))
	}
}

func TestDedupe_AllDuplicatesMeansExhausted(t *testing.T) {
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		return seqPage(0, p.PageSize), nil // same window every time
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())

	if f.HasMore() {
		t.Error("hasMore should be false when a page adds nothing new")
	}
	if got := len(f.Items()); got != 12 {
		t.Errorf("items = %d, want 12", got)
	}
}

// ── Parameter changes ──────────────────────────────────────────────────────

func TestSetQuery_DiscardsStaleInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	oldStarted := make(chan struct{})
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		if p.Query == "" {
			close(oldStarted)
			<-release // old request resolves late
			return []rec{{ID: "stale-1"}, {ID: "stale-2"}}, nil
		}
		return []rec{{ID: "fresh-1"}}, nil
	}
	f := newFeed(t, s, 6)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.LoadInitial(context.Background())
	}()
	<-oldStarted

	// New query's fetch completes while the old one is still pending.
	f.SetQuery(context.Background(), "designer")

	close(release)
	wg.Wait()

	items := f.Items()
	if len(items) != 1 || items[0].ID != "fresh-1" {
		t.Errorf("items = %v, want only the new query's results", items)
	}
}

func TestSetQuery_ResetsFeedState(t *testing.T) {
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		return seqPage(call*100, p.PageSize), nil
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())
	f.TriggerLoad(context.Background())

	f.SetQuery(context.Background(), "remote")

	if got := len(f.Items()); got != 12 {
		t.Errorf("items after query change = %d, want a fresh initial page of 12", got)
	}
	if f.Query() != "remote" {
		t.Errorf("query = %q, want %q", f.Query(), "remote")
	}
}

func TestSetQuery_SameValueIsNoOp(t *testing.T) {
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		return seqPage(0, p.PageSize), nil
	}
	f := newFeed(t, s, 6)
	f.LoadInitial(context.Background())

	before := s.callCount()
	f.SetQuery(context.Background(), "")
	if s.callCount() != before {
		t.Error("setting the same query should not refetch")
	}
}

func TestSetSort_MapsOntoSortKeys(t *testing.T) {
	var got []feed.Params
	s := &stubFetcher{}
	s.fn = func(call int, p feed.Params) ([]rec, error) {
		got = append(got, p)
		return nil, nil
	}
	f := newFeed(t, s, 6)

	f.LoadInitial(context.Background())
	f.SetSort(context.Background(), feed.OptionOldest)
	f.SetSort(context.Background(), feed.OptionMatch)

	want := []struct {
		by    feed.SortField
		order feed.Order
	}{
		{feed.SortPostedDate, feed.Desc},
		{feed.SortPostedDate, feed.Asc},
		{feed.SortMatchPercent, feed.Desc},
	}
	if len(got) != len(want) {
		t.Fatalf("collaborator called %d times, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].SortBy != w.by || got[i].SortOrder != w.order {
			t.Errorf("call %d: sort = (%s, %s), want (%s, %s)",
				i+1, got[i].SortBy, got[i].SortOrder, w.by, w.order)
		}
	}
}

// ── Sort option parsing ────────────────────────────────────────────────────

func TestParseOption(t *testing.T) {
	cases := []struct {
		in      string
		want    feed.Option
		wantErr bool
	}{
		{"newest", feed.OptionNewest, false},
		{"oldest", feed.OptionOldest, false},
		{"match", feed.OptionMatch, false},
		{"", feed.OptionNewest, false},
		{"best", "", true},
	}
	for _, c := range cases {
		got, err := feed.ParseOption(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseOption(%q) expected error, got nil", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOption(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseOption(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestOptionKeys_ApplicationDateField(t *testing.T) {
	by, order := feed.OptionNewest.Keys(feed.SortApplicationDate)
	if by != feed.SortApplicationDate || order != feed.Desc {
		t.Errorf("newest on applications = (%s, %s), want (application_date, desc)", by, order)
	}
}

// ── Debouncer ──────────────────────────────────────────────────────────────

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := feed.NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	fired := 0
	for i := 0; i < 10; i++ {
		d.Call(func() {
			mu.Lock()
			fired++
			mu.Unlock()
		})
	}

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("debounced fn fired %d times, want 1", fired)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := feed.NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	fired := 0
	d.Call(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Errorf("stopped debouncer still fired %d times", fired)
	}
}

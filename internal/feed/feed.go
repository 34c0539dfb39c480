// Package feed drives incremental ("infinite scroll") loading for list
// views: jobs, companies, users and applications. A Feed owns the list
// state — items, next page, exhaustion, current search and sort — and is
// driven by an injected page-fetch collaborator that talks to the store.
//
// The first load deliberately over-fetches two pages worth of items to cut
// perceived latency on first paint; the next page cursor therefore jumps
// straight to 3. Responses that arrive after the query or sort changed are
// discarded: each request carries the generation it was issued under and is
// ignored when the generation no longer matches.
package feed

import (
	"context"
	"fmt"
	"sync"
)

// Params is the page request handed to the fetch collaborator. The
// collaborator applies server-side filtering, sorting and access control;
// the feed only drives it.
type Params struct {
	Query     string
	Page      int // 1-based
	PageSize  int
	SortBy    SortField
	SortOrder Order
}

// FetchFunc returns one page of records for the given params. A nil slice
// is treated as an empty page, not a failure.
type FetchFunc[T any] func(ctx context.Context, p Params) ([]T, error)

// KeyFunc extracts the identity key a record is deduplicated by.
type KeyFunc[T any] func(T) string

// Feed is the list-view controller. All methods are safe for concurrent
// use; at most one fetch is in flight per feed at any time, and a scroll
// trigger received while a fetch is in flight is ignored, not queued.
type Feed[T any] struct {
	fetch     FetchFunc[T]
	key       KeyFunc[T]
	pageSize  int
	dateField SortField

	mu      sync.Mutex
	items   []T
	seen    map[string]struct{}
	page    int
	hasMore bool
	loading bool
	query   string
	sort    Option
	errMsg  string
	gen     uint64
}

// New builds an empty feed in its initial state: no items, page 1, more
// data assumed available. dateField is the column the newest/oldest sort
// options map onto (posted_date for jobs, application_date for
// applications).
func New[T any](fetch FetchFunc[T], key KeyFunc[T], pageSize int, dateField SortField) (*Feed[T], error) {
	if fetch == nil {
		return nil, fmt.Errorf("feed: fetch collaborator is required")
	}
	if key == nil {
		return nil, fmt.Errorf("feed: key function is required")
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("feed: page size must be positive, got %d", pageSize)
	}
	return &Feed[T]{
		fetch:     fetch,
		key:       key,
		pageSize:  pageSize,
		dateField: dateField,
		seen:      make(map[string]struct{}),
		page:      1,
		hasMore:   true,
		sort:      OptionNewest,
	}, nil
}

// Init sets the starting query and sort without fetching. Meant for a
// freshly built feed, before the first load; use SetQuery/SetSort for
// changes after that.
func (f *Feed[T]) Init(query string, sort Option) {
	f.mu.Lock()
	f.query = query
	f.sort = sort
	f.mu.Unlock()
}

// LoadInitial runs the first fetch: page 1, requesting 2×pageSize items.
// On success the next page cursor becomes 3 (the first call consumed the
// equivalent of pages 1–2). A failure is recorded and stops further
// loading until the query or sort changes. No-op while a fetch is already
// in flight.
func (f *Feed[T]) LoadInitial(ctx context.Context) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return
	}
	f.loading = true
	f.errMsg = ""
	gen := f.gen
	p := f.params(1, 2*f.pageSize)
	f.mu.Unlock()

	results, err := f.fetch(ctx, p)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		// Superseded by a query/sort change while in flight.
		return
	}
	f.loading = false
	if err != nil {
		f.errMsg = err.Error()
		f.hasMore = false
		return
	}

	f.items = f.items[:0]
	f.seen = make(map[string]struct{}, len(results))
	for _, r := range results {
		k := f.key(r)
		if _, dup := f.seen[k]; dup {
			continue
		}
		f.seen[k] = struct{}{}
		f.items = append(f.items, r)
	}
	f.hasMore = len(results) >= 2*f.pageSize
	f.page = 3
}

// TriggerLoad is the scroll-sentinel hook: it fetches the next page when
// the feed is idle and not exhausted. Triggers received while a fetch is
// in flight are dropped; the caller re-evaluates after the current fetch
// resolves.
func (f *Feed[T]) TriggerLoad(ctx context.Context) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return
	}
	f.loading = true
	f.errMsg = ""
	gen := f.gen
	p := f.params(f.page, f.pageSize)
	f.mu.Unlock()

	results, err := f.fetch(ctx, p)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.loading = false
	if err != nil {
		f.errMsg = err.Error()
		f.hasMore = false
		return
	}
	if len(results) == 0 {
		f.hasMore = false
		return
	}

	added := 0
	for _, r := range results {
		k := f.key(r)
		if _, dup := f.seen[k]; dup {
			continue
		}
		f.seen[k] = struct{}{}
		f.items = append(f.items, r)
		added++
	}
	switch {
	case added == 0:
		// Every item was already present: the window stopped moving.
		f.hasMore = false
	case len(results) < f.pageSize:
		f.hasMore = false
	default:
		f.page++
	}
}

// SetQuery commits a new search term. A change is a hard reset: items are
// cleared, the page cursor rewinds, and any in-flight fetch for the old
// term is invalidated before the initial load reruns. The surrounding UI
// is expected to debounce keystrokes by DebounceInterval before calling
// this.
func (f *Feed[T]) SetQuery(ctx context.Context, query string) {
	f.mu.Lock()
	if query == f.query {
		f.mu.Unlock()
		return
	}
	f.query = query
	f.resetLocked()
	f.mu.Unlock()

	f.LoadInitial(ctx)
}

// SetSort commits a new sort option, with the same hard-reset semantics
// as SetQuery.
func (f *Feed[T]) SetSort(ctx context.Context, sort Option) {
	f.mu.Lock()
	if sort == f.sort {
		f.mu.Unlock()
		return
	}
	f.sort = sort
	f.resetLocked()
	f.mu.Unlock()

	f.LoadInitial(ctx)
}

// resetLocked rewinds the feed to its initial state and bumps the request
// generation so late responses from the previous parameters are dropped.
// Callers must hold f.mu.
func (f *Feed[T]) resetLocked() {
	f.items = nil
	f.seen = make(map[string]struct{})
	f.page = 1
	f.hasMore = true
	f.loading = false
	f.errMsg = ""
	f.gen++
}

// params builds the fetch params for the current query/sort. Callers must
// hold f.mu.
func (f *Feed[T]) params(page, pageSize int) Params {
	sortBy, sortOrder := f.sort.Keys(f.dateField)
	return Params{
		Query:     f.query,
		Page:      page,
		PageSize:  pageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

// Items returns a copy of the loaded records in arrival order.
func (f *Feed[T]) Items() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}

// HasMore reports whether another scroll trigger could load more records.
func (f *Feed[T]) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Loading reports whether a fetch is currently in flight.
func (f *Feed[T]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Err returns the message recorded by the most recent failed fetch, or ""
// when the last fetch succeeded. Already-loaded items stay available after
// a failure.
func (f *Feed[T]) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Query returns the committed search term.
func (f *Feed[T]) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Sort returns the committed sort option.
func (f *Feed[T]) Sort() Option {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sort
}

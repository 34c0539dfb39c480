package feed

import (
	"sync"
	"time"
)

// DebounceInterval is how long search input must settle before the term is
// committed to a feed. Kept at the value every list view in the app uses;
// callers that commit queries from keystrokes must respect it.
const DebounceInterval = 300 * time.Millisecond

// Debouncer coalesces bursts of calls into one, firing fn only after the
// interval elapses with no further calls. A later call replaces the
// pending one entirely.
type Debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given interval. Pass
// DebounceInterval for search input.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Call schedules fn, cancelling any previously scheduled call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package places

import (
	"sync"
	"time"
)

// DefaultDebounce is how long the query must stay unchanged before a search fires.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs the most recently triggered callback once its key has been
// stable for the configured delay. Triggering again replaces the pending call.
type Debouncer struct {
	delay time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	pendingKey string
	pending    bool
	stopped    bool
}

// NewDebouncer returns a Debouncer. A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn(key) after the delay, cancelling any pending call.
func (d *Debouncer) Trigger(key string, fn func(key string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.resetLocked()
	gen := d.generation
	d.pendingKey = key
	d.pending = true

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that already fired cannot be stopped; the generation check
		// turns a superseded callback into a no-op.
		if d.stopped || d.generation != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = false
		d.pendingKey = ""
		d.mu.Unlock()

		fn(key)
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

// Stop cancels the pending call and makes later Trigger calls no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.stopped = true
}

// Pending reports the key of the scheduled call.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingKey, d.pending
}

func (d *Debouncer) resetLocked() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.pendingKey = ""
}

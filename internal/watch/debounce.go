// Package watch rebuilds the site when post or asset files change on disk.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into single fires. A fire happens
// once triggers have been quiet for the quiet window, but is never postponed
// past maxDelay after the first trigger of a burst.
type Debouncer struct {
	quiet    time.Duration
	maxDelay time.Duration
	fire     func()

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
}

// NewDebouncer creates a debouncer calling fire on the expiry of each burst.
func NewDebouncer(quiet, maxDelay time.Duration, fire func()) *Debouncer {
	if quiet <= 0 {
		quiet = 300 * time.Millisecond
	}
	if maxDelay < quiet {
		maxDelay = quiet
	}
	return &Debouncer{quiet: quiet, maxDelay: maxDelay, fire: fire}
}

// Trigger registers an event. Safe for concurrent use.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if d.timer == nil {
		d.deadline = now.Add(d.maxDelay)
	} else {
		d.timer.Stop()
	}

	delay := d.quiet
	if remaining := d.deadline.Sub(now); remaining < delay {
		delay = remaining
	}
	if delay < 0 {
		delay = 0
	}

	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.fire()
	})
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

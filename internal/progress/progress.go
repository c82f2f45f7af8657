// Package progress tracks aggregate asset-load progress across a load cycle.
package progress

import (
	"math"
	"sync"
)

// Tracker counts expected vs. completed asset loads and exposes a percentage.
// A tick is recorded per asset attempt, whether it succeeded or failed, so the
// percentage keeps advancing even when individual loads go wrong.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
}

// NewTracker returns a tracker with no expected assets.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset starts a new load cycle expecting total assets.
func (t *Tracker) Reset(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total < 0 {
		total = 0
	}
	t.total = total
	t.completed = 0
}

// Tick records one completed (or failed) asset attempt and returns the new
// percentage. The completed counter never decrements.
func (t *Tracker) Tick() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	return t.percentLocked()
}

// Percent returns the current progress as an integer 0-100.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percentLocked()
}

// Finished reports whether every expected asset has been accounted for.
func (t *Tracker) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total > 0 && t.completed >= t.total
}

func (t *Tracker) percentLocked() int {
	if t.total == 0 {
		// Degenerate cycle with nothing to load; report 0 rather than
		// dividing by zero.
		return 0
	}
	pct := int(math.Round(100 * float64(t.completed) / float64(t.total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

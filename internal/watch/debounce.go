package watch

import "time"

// DefaultDebounce matches the usual push-button contact bounce.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer ignores edges that arrive within Window of the last accepted
// one. The zero value accepts everything.
type Debouncer struct {
	Window time.Duration

	last time.Time
	seen bool
}

// Accept reports whether an edge at t is outside the window, and if so makes
// t the new reference point.
func (d *Debouncer) Accept(t time.Time) bool {
	if d.seen && t.Sub(d.last) < d.Window {
		return false
	}
	d.last = t
	d.seen = true
	return true
}

// Reset forgets the last accepted edge.
func (d *Debouncer) Reset() {
	d.seen = false
}

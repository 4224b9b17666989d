// Package confirm implements the double-tap gate in front of the win
// transition: the first tap arms a short window, only a second tap inside
// that window lets the win through.
package confirm

import (
	"sync"
	"time"
)

// DefaultWindow is how long a pending confirmation stays valid.
const DefaultWindow = 3 * time.Second

// Gate guards the win path of the currently displayed ladder. At most one
// confirmation is pending at a time; arming for another ladder, resetting,
// or expiry all drop the previous one.
type Gate struct {
	mu        sync.Mutex
	window    time.Duration
	pendingID string
	timer     *time.Timer
	gen       uint64
	onExpire  func(ladderID string)
}

// New creates a gate with the given window. onExpire is called (off the
// caller's goroutine) when a pending confirmation times out; it may be nil.
func New(window time.Duration, onExpire func(ladderID string)) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{window: window, onExpire: onExpire}
}

// Tap registers a win tap for the given ladder. The first tap arms the gate
// and returns false; a second tap for the same ladder inside the window
// disarms it and returns true, meaning the win may be applied. A tap for a
// different ladder re-arms the gate for that ladder.
func (g *Gate) Tap(ladderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pendingID == ladderID && g.pendingID != "" {
		g.disarmLocked()
		return true
	}

	g.disarmLocked()
	g.pendingID = ladderID
	gen := g.gen
	g.timer = time.AfterFunc(g.window, func() { g.expire(gen, ladderID) })

	return false
}

// Pending returns the ladder awaiting its second tap, if any.
func (g *Gate) Pending() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingID, g.pendingID != ""
}

// Reset silently drops any pending confirmation. Must be called on selection
// change, on a delete confirmation becoming pending, and on teardown, so an
// abandoned confirmation never leaks into a different ladder's win.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmLocked()
}

// disarmLocked stops the timer and bumps the generation so an expiry already
// in flight becomes a no-op.
func (g *Gate) disarmLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.pendingID = ""
	g.gen++
}

func (g *Gate) expire(gen uint64, ladderID string) {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	g.disarmLocked()
	g.mu.Unlock()

	if g.onExpire != nil {
		g.onExpire(ladderID)
	}
}

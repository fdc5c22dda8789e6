package session

import (
	"sync"
	"time"
)

// Notice is a cancellable one-shot timer. Arm replaces any pending timer, so
// at most one expiry callback is outstanding per Notice.
type Notice struct {
	mu    sync.Mutex
	ttl   time.Duration
	timer *time.Timer
	gen   uint64
}

func NewNotice(ttl time.Duration) *Notice {
	return &Notice{ttl: ttl}
}

// Arm schedules fn after the TTL, cancelling a previously armed timer. fn
// receives the generation it was armed under; callers that act on the expiry
// under their own lock confirm it with Current first.
func (n *Notice) Arm(fn func(gen uint64)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		current := n.gen == gen && n.timer != nil
		if current {
			n.timer = nil
		}
		n.mu.Unlock()
		if current {
			fn(gen)
		}
	})
}

// Current reports whether gen is still the latest arm, i.e. nothing re-armed
// or cancelled the notice since.
func (n *Notice) Current(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen == gen
}

// Generation returns the generation of the latest Arm or Cancel.
func (n *Notice) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen
}

// Cancel releases a pending timer. It reports whether one was pending.
func (n *Notice) Cancel() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopLocked()
}

func (n *Notice) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.timer != nil
}

func (n *Notice) stopLocked() bool {
	if n.timer == nil {
		return false
	}
	n.timer.Stop()
	n.timer = nil
	n.gen++
	return true
}

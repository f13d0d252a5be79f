// Package presence tracks ephemeral "X is typing to Y" signals. A signal is
// a timestamped fact that goes stale in place after the freshness window;
// the window check on read is the correctness mechanism and the deferred
// removal below is only there to keep the map from growing.
package presence

import (
	"sync"
	"time"
)

const Window = 3000 * time.Millisecond

type pair struct {
	from int64
	to   int64
}

type Tracker struct {
	mu      sync.Mutex
	signals map[pair]time.Time
	now     func() time.Time
	// afterFunc is swappable so tests can run without real timers.
	afterFunc func(d time.Duration, fn func()) *time.Timer
}

func NewTracker() *Tracker {
	return &Tracker{
		signals:   make(map[pair]time.Time),
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Notify upserts the signal for (from, to) at now. Calling it repeatedly is
// fine; each call overwrites the previous timestamp and supersedes any
// pending removal.
func (t *Tracker) Notify(from, to int64) {
	key := pair{from: from, to: to}
	stamp := t.now()
	t.mu.Lock()
	t.signals[key] = stamp
	t.mu.Unlock()

	// Deferred GC: only delete if the entry was not refreshed since this
	// notify, so a renewed signal is never dropped early.
	t.afterFunc(Window, func() {
		t.mu.Lock()
		if current, ok := t.signals[key]; ok && !current.After(stamp) {
			delete(t.signals, key)
		}
		t.mu.Unlock()
	})
}

func (t *Tracker) IsTyping(from, to int64) bool {
	t.mu.Lock()
	stamp, ok := t.signals[pair{from: from, to: to}]
	t.mu.Unlock()
	return ok && t.now().Sub(stamp) < Window
}

// Package ratelimit provides the per-user message limiter consulted by the
// bot adapter before it archives anything. Each user gets a fixed number of
// messages per one-minute window. The limiter holds no persistent state; a
// process restart simply resets all windows.
package ratelimit

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

const window = time.Minute

// Result reports a limiter decision.
type Result struct {
	Allowed   bool
	Remaining int       // messages left in the current window
	ResetAt   time.Time // when the current window ends
}

// A Limiter counts messages per user in fixed windows. It is safe for
// concurrent use.
type Limiter struct {
	perWindow int
	clock     clock.Clock

	m     sync.Mutex
	users map[int64]*userWindow
}

type userWindow struct {
	start time.Time
	count int
}

// New returns a Limiter allowing perWindow messages per user per minute.
func New(perWindow int) *Limiter {
	return NewWithClock(perWindow, clock.New())
}

// NewWithClock is New with an injectable clock, so tests can advance time
// deterministically.
func NewWithClock(perWindow int, c clock.Clock) *Limiter {
	return &Limiter{
		perWindow: perWindow,
		clock:     c,
		users:     make(map[int64]*userWindow),
	}
}

// Allow records an attempt by the given user and reports whether it fits in
// the user's current window.
func (l *Limiter) Allow(userID int64) Result {
	l.m.Lock()
	defer l.m.Unlock()

	now := l.clock.Now()
	w := l.users[userID]
	if w == nil || now.Sub(w.start) >= window {
		l.prune(now)
		w = &userWindow{start: now}
		l.users[userID] = w
	}
	reset := w.start.Add(window)
	if w.count >= l.perWindow {
		return Result{Allowed: false, Remaining: 0, ResetAt: reset}
	}
	w.count++
	return Result{Allowed: true, Remaining: l.perWindow - w.count, ResetAt: reset}
}

// prune drops windows that have already expired. Called with the lock held,
// and only when a window rolls over, so steady-state traffic from a few
// users does not rescan the map on every message.
func (l *Limiter) prune(now time.Time) {
	for id, w := range l.users {
		if now.Sub(w.start) >= window {
			delete(l.users, id)
		}
	}
}

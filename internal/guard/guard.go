// Package guard implements a per-process unlock-attempt throttle. Not
// present in the teacher or the original Rust app — a new component,
// built in the teacher's plain-struct-plus-mutex style since nothing in
// the example pack implements this exact backoff formula.
package guard

import (
	"sync"
	"time"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

const (
	Base       = 5 * time.Second
	Max        = 300 * time.Second
	HardLockAt = 10
)

// Guard is a sliding failure counter with exponential backoff.
type Guard struct {
	mu           sync.Mutex
	failed       int
	lockoutUntil time.Time
}

// New returns a Guard with no recorded failures.
func New() *Guard {
	return &Guard{}
}

// Check fails immediately with LockedOut while a prior failure's
// backoff window has not elapsed. It touches no KDF or AEAD code path.
func (g *Guard) Check() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if time.Now().Before(g.lockoutUntil) {
		return vaulterr.New(vaulterr.LockedOut, "too many failed attempts")
	}
	return nil
}

// RecordFailure increments the failure count and sets a new lockout
// window: min(BASE*2^(failed-1), MAX), or exactly MAX once failed
// reaches HardLockAt.
func (g *Guard) RecordFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.failed++
	if g.failed >= HardLockAt {
		g.lockoutUntil = time.Now().Add(Max)
		return
	}

	backoff := Base * time.Duration(1<<uint(g.failed-1))
	if backoff > Max {
		backoff = Max
	}
	g.lockoutUntil = time.Now().Add(backoff)
}

// RecordSuccess resets the failure counter and lockout window.
func (g *Guard) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = 0
	g.lockoutUntil = time.Time{}
}

// Failed returns the current consecutive-failure count.
func (g *Guard) Failed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed
}

// Package session holds the in-memory unlocked state of a vault: the
// session key, the sliding-window expiry, and the decrypted entry set.
// The sliding-window check/refresh pair is ported from
// original_source/vault.rs's check_session/refresh_session; the key
// zeroization on lock matches the teacher's wipe/zeroize helpers
// (internal/service/service.go, internal/vault/entry_crypto.go).
package session

import (
	"sync"
	"time"

	"github.com/latchvault/vaultengine/internal/crypto"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// Timeout is the sliding session expiry window.
const Timeout = 30 * time.Minute

// State holds the unlocked session. Zero value is locked. Callers must
// hold their own lock around mutations; State itself is not safe for
// concurrent use (the owning Engine is expected to serialize access).
type State struct {
	mu    sync.Mutex
	key   []byte
	start time.Time
}

// Unlock installs a freshly derived session key and starts the clock.
func (s *State) Unlock(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = make([]byte, len(key))
	copy(s.key, key)
	s.start = time.Now()
}

// Lock zeroes the session key and clears the start time so no stale
// state can be mistaken for an active session.
func (s *State) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	crypto.Zero(s.key)
	s.key = nil
	s.start = time.Time{}
}

// IsUnlocked reports whether a session key is currently present,
// irrespective of expiry.
func (s *State) IsUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != nil
}

// Key returns a copy of the current session key, or nil if locked.
func (s *State) Key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil
	}
	out := make([]byte, len(s.key))
	copy(out, s.key)
	return out
}

// Remaining returns the time left before the session expires, or zero
// if locked or already expired.
func (s *State) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return 0
	}
	left := Timeout - time.Since(s.start)
	if left < 0 {
		return 0
	}
	return left
}

// CheckAndRefresh is the gate every protected VaultEngine operation
// calls: Locked if no key, Expired if stale, else refresh session_start.
func (s *State) CheckAndRefresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return vaulterr.New(vaulterr.Locked, "vault is locked")
	}
	if time.Since(s.start) > Timeout {
		return vaulterr.New(vaulterr.Expired, "session expired")
	}
	s.start = time.Now()
	return nil
}

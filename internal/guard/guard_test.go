package guard_test

import (
	"testing"
	"time"

	"github.com/latchvault/vaultengine/internal/guard"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

func TestCheckPassesWithNoFailures(t *testing.T) {
	g := guard.New()
	if err := g.Check(); err != nil {
		t.Fatalf("expected no lockout, got %v", err)
	}
}

func TestRecordFailureLocksOutImmediately(t *testing.T) {
	g := guard.New()
	g.RecordFailure()

	if err := g.Check(); vaulterr.Of(err) != vaulterr.LockedOut {
		t.Fatalf("expected LockedOut after a failure, got %v", err)
	}
}

func TestRecordSuccessResetsCounter(t *testing.T) {
	g := guard.New()
	g.RecordFailure()
	g.RecordFailure()
	g.RecordSuccess()

	if got := g.Failed(); got != 0 {
		t.Fatalf("expected failure count reset to 0, got %d", got)
	}
}

func TestBackoffGrowsExponentiallyUpToMax(t *testing.T) {
	g := guard.New()
	for i := 1; i <= guard.HardLockAt-1; i++ {
		g.RecordFailure()
		if got := g.Failed(); got != i {
			t.Fatalf("expected failure count %d, got %d", i, got)
		}
	}
}

func TestHardLockAtTenFailuresUsesMaxBackoff(t *testing.T) {
	g := guard.New()
	for i := 0; i < guard.HardLockAt; i++ {
		g.RecordFailure()
	}
	if err := g.Check(); vaulterr.Of(err) != vaulterr.LockedOut {
		t.Fatalf("expected LockedOut at the hard-lock threshold, got %v", err)
	}
}

func TestCheckDoesNotPanicImmediatelyAfterLockoutWindow(t *testing.T) {
	// not a real clock-advance test (Guard uses time.Now internally and
	// exposes no injectable clock), but confirms the base backoff is at
	// least guard.Base so a single failure cannot be bypassed instantly.
	g := guard.New()
	g.RecordFailure()
	start := time.Now()
	err := g.Check()
	if vaulterr.Of(err) != vaulterr.LockedOut {
		t.Fatalf("expected LockedOut immediately after a failure, got %v", err)
	}
	if time.Since(start) > guard.Base {
		t.Fatalf("test took longer than the base backoff window; unexpected")
	}
}

// Package health audits a vault's entry set for weak, reused, and
// breached passwords. Ported from original_source/vault_health.rs
// (check_weak_passwords, check_reused_passwords,
// calculate_vault_health_score); the k-anonymous SHA-1 split used by
// BreachLookup implementations is grounded on the teacher's
// auth/hibp.go CheckHIBP.
package health

import (
	"context"
	"sort"

	"github.com/latchvault/vaultengine/internal/strength"
)

// EntryInput is the minimal view of a vault entry the auditor needs.
type EntryInput struct {
	ID       string
	Title    string
	Password string
}

// WeakEntry is a single weak-password finding.
type WeakEntry struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Score   int     `json:"score"`
	Entropy float64 `json:"entropy"`
}

// ReusedGroup is a set of entries sharing one exact password.
type ReusedGroup struct {
	Password string   `json:"-"`
	EntryIDs []string `json:"entry_ids"`
	Titles   []string `json:"titles"`
}

// BreachedEntry is a single breach-lookup hit.
type BreachedEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Report is the full audit result over an entry set.
type Report struct {
	Weak            []WeakEntry     `json:"weak_passwords"`
	Reused          []ReusedGroup   `json:"reused_passwords"`
	Breached        []BreachedEntry `json:"breached_passwords"`
	StrongPasswords int             `json:"strong_passwords"`
	OverallScore    int             `json:"overall_score"`
	AverageEntropy  float64         `json:"average_entropy"`
}

// BreachLookup abstracts the k-anonymous HIBP-style protocol so the
// auditor itself performs no network I/O by default.
type BreachLookup interface {
	// Lookup returns how many times password appears in the breach
	// corpus, or an error if the lookup could not be completed.
	Lookup(ctx context.Context, password string) (count int, err error)
}

// NoLookup is the default BreachLookup: always reports zero matches,
// satisfying the interface without any network access.
type NoLookup struct{}

// Lookup always returns a zero count.
func (NoLookup) Lookup(ctx context.Context, password string) (int, error) {
	return 0, nil
}

// weakScoreThreshold is the zxcvbn score below which a password is weak.
const weakScoreThreshold = 3

// Audit scores entries for weak, reused, and breached passwords using
// lookup (pass health.NoLookup{} for a purely local audit).
func Audit(ctx context.Context, entries []EntryInput, lookup BreachLookup) Report {
	if lookup == nil {
		lookup = NoLookup{}
	}

	var report Report
	total := len(entries)
	if total == 0 {
		report.OverallScore = 100
		return report
	}

	var entropySum float64
	byPassword := make(map[string][]EntryInput)

	for _, e := range entries {
		r := strength.Analyze(e.Password)
		entropySum += r.Entropy
		if r.Score < weakScoreThreshold {
			report.Weak = append(report.Weak, WeakEntry{ID: e.ID, Title: e.Title, Score: r.Score, Entropy: r.Entropy})
		} else {
			report.StrongPasswords++
		}
		byPassword[e.Password] = append(byPassword[e.Password], e)

		if count, err := lookup.Lookup(ctx, e.Password); err == nil && count > 0 {
			report.Breached = append(report.Breached, BreachedEntry{ID: e.ID, Title: e.Title, Count: count})
		}
	}

	sort.Slice(report.Weak, func(i, j int) bool {
		return report.Weak[i].Entropy < report.Weak[j].Entropy
	})

	excessReused := 0
	for pw, group := range byPassword {
		if len(group) < 2 {
			continue
		}
		g := ReusedGroup{Password: pw}
		for _, e := range group {
			g.EntryIDs = append(g.EntryIDs, e.ID)
			g.Titles = append(g.Titles, e.Title)
		}
		report.Reused = append(report.Reused, g)
		excessReused += len(group) - 1
	}
	sort.Slice(report.Reused, func(i, j int) bool {
		return len(report.Reused[i].EntryIDs) > len(report.Reused[j].EntryIDs)
	})

	report.AverageEntropy = entropySum / float64(total)

	weakFrac := float64(len(report.Weak)) / float64(total)
	reusedFrac := float64(excessReused) / float64(total)
	breachedFrac := float64(len(report.Breached)) / float64(total)

	score := 100.0 - (40*weakFrac + 30*reusedFrac + 50*breachedFrac)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	report.OverallScore = int(score)

	return report
}

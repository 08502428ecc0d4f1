// Package strength scores password strength using the teacher's own
// zxcvbn library (auth/policy.go imports it directly), replicating
// original_source/password_generator.rs's analyze_password_strength
// score/entropy/label/warning/suggestion mapping.
package strength

import (
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

// Report is the result of analyzing a single password. Analyze is pure:
// equal passwords always yield equal reports.
type Report struct {
	Score       int      `json:"score"`
	Entropy     float64  `json:"entropy"`
	Label       string   `json:"label"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

var scoreLabels = [5]string{"Very Weak", "Weak", "Fair", "Strong", "Very Strong"}

// Analyze scores pw with zxcvbn and maps it onto a Report.
func Analyze(pw string) Report {
	result := zxcvbn.PasswordStrength(pw, nil)

	score := result.Score
	if score < 0 {
		score = 0
	}
	if score > 4 {
		score = 4
	}

	r := Report{
		Score:   score,
		Entropy: result.Entropy,
		Label:   scoreLabels[score],
	}
	r.Warnings, r.Suggestions = feedback(pw, score)
	return r
}

// feedback mirrors the coarse guidance a password-health UI shows
// alongside a zxcvbn score; zxcvbn-go itself does not return structured
// warnings/suggestions the way the upstream JS implementation does, so
// this derives a small, deterministic set from the score and basic
// composition checks.
func feedback(pw string, score int) (warnings, suggestions []string) {
	if score <= 1 {
		warnings = append(warnings, "This password is easy to guess.")
	}
	if len(pw) < 12 {
		suggestions = append(suggestions, "Use a longer password.")
	}
	if !hasClass(pw, isUpper) || !hasClass(pw, isLower) {
		suggestions = append(suggestions, "Mix uppercase and lowercase letters.")
	}
	if !hasClass(pw, isDigit) {
		suggestions = append(suggestions, "Add a number.")
	}
	if !hasClass(pw, isSymbol) {
		suggestions = append(suggestions, "Add a symbol.")
	}
	if score >= 3 && len(warnings) == 0 && len(suggestions) == 0 {
		suggestions = append(suggestions, fmt.Sprintf("Good password (score %d).", score))
	}
	return warnings, suggestions
}

func hasClass(s string, classify func(rune) bool) bool {
	for _, r := range s {
		if classify(r) {
			return true
		}
	}
	return false
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isSymbol(r rune) bool { return !isUpper(r) && !isLower(r) && !isDigit(r) && r > ' ' }

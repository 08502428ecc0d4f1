package engine

import "unicode"

// fuzzyScore is a from-scratch port of the Skim-style subsequence
// matcher original_source/vault.rs used via fuzzy_matcher::skim::
// SkimMatcherV2: case-insensitive, characters of pattern must appear in
// order within text, contiguous runs score a bonus. Returns (score,
// matched); matched is false when pattern is not a subsequence of text.
//
// No example-pack dependency exposes this exact 0..N scoring contract
// with the "qualifies at >= 50" threshold this package relies on, so
// this is hand-written rather than imported — see DESIGN.md.
func fuzzyScore(text, pattern string) (int, bool) {
	if pattern == "" {
		return 0, true
	}

	t := []rune(foldCase(text))
	p := []rune(foldCase(pattern))

	const (
		baseMatch       = 16
		contiguousBonus = 16
		firstCharBonus  = 8
	)

	score := 0
	ti := 0
	pi := 0
	runLength := 0

	for ti < len(t) && pi < len(p) {
		if t[ti] == p[pi] {
			score += baseMatch
			if ti == 0 {
				score += firstCharBonus
			}
			runLength++
			if runLength > 1 {
				score += contiguousBonus
			}
			pi++
		} else {
			runLength = 0
		}
		ti++
	}

	if pi != len(p) {
		return 0, false
	}
	return score, true
}

func foldCase(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}

// bestFieldScore returns the higher of title/username fuzzy scores,
// taking the max of the two.
func bestFieldScore(title, username, query string) (int, bool) {
	titleScore, titleOK := fuzzyScore(title, query)
	userScore, userOK := fuzzyScore(username, query)
	if !titleOK && !userOK {
		return 0, false
	}
	best := titleScore
	if userOK && userScore > best {
		best = userScore
	}
	return best, true
}

package match

import "strings"

// versionMarkers are title tokens that denote a distinct recording rather
// than noise to be ignored — per spec §4.1, two titles differing only by
// one of these should NOT be treated as the same recording.
var versionMarkers = []string{"live", "remix", "acoustic", "demo", "extended"}

// Similarity returns a score in [0,1]: 1 - levenshtein(a,b)/max(|a|,|b|).
// If exactly one of a/b carries a version marker the other lacks, the
// score is penalized — the spec's "richer engines may apply version-aware
// penalties" clause, implemented here since this is the only scoring
// engine in this system (no external fuzzy-match service is wired).
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	na, nb := []rune(a), []rune(b)
	dist := levenshtein(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	if maxLen == 0 {
		return 1
	}

	score := 1 - float64(dist)/float64(maxLen)
	if score < 0 {
		score = 0
	}

	if versionMarkerMismatch(a, b) {
		score *= 0.5
	}

	return score
}

func versionMarkerMismatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, marker := range versionMarkers {
		inA := strings.Contains(la, marker)
		inB := strings.Contains(lb, marker)
		if inA != inB {
			return true
		}
	}
	return false
}

// levenshtein computes the edit distance between two rune slices using the
// standard two-row dynamic-programming table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = minOf3(del, ins, sub)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

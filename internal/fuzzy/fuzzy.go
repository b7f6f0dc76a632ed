// Package fuzzy implements the string-similarity scoring used to rank
// category and parameter candidates. Scores are integers from 0 (no
// similarity) to 100 (equal after normalization).
package fuzzy

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ratio scores the similarity of two strings using Levenshtein distance
// normalized by the longer string's length.
func Ratio(a, b string) int {
	ra, rb := normalize(a), normalize(b)
	return ratio(ra, rb)
}

// PartialRatio scores the best alignment of the shorter string against any
// equally long window of the longer string. It rewards substring matches:
// PartialRatio("Tolerance", "Resistance Tolerance") is 100.
func PartialRatio(a, b string) int {
	ra, rb := normalize(a), normalize(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for start := 0; start+len(ra) <= len(rb); start++ {
		if score := ratio(ra, rb[start:start+len(ra)]); score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b []rune) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	dist := levenshtein(a, b)
	return (100*(longer-dist) + longer/2) / longer
}

// levenshtein computes the edit distance between two rune slices with a
// two-row dynamic programming table.
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
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// normalize applies NFKC normalization and case folding so that width and
// compatibility variants compare equal.
func normalize(s string) []rune {
	return []rune(strings.ToLower(norm.NFKC.String(strings.TrimSpace(s))))
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

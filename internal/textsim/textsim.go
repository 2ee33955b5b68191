// Package textsim provides string distance metrics used when pairing
// drawing entities with extracted tag text.
package textsim

import (
	"strings"
	"unicode/utf8"
)

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Single-row dynamic programming over the shorter string.
	if len(rb) < len(ra) {
		ra, rb = rb, ra
	}

	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		prev := row[0]
		row[0] = j
		for i := 1; i <= len(ra); i++ {
			cur := row[i]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[i] = minInt(row[i]+1, row[i-1]+1, prev+cost)
			prev = cur
		}
	}

	return row[len(ra)]
}

// Similarity returns a normalized similarity in [0,1] between a and b.
// Comparison is case-insensitive; identical strings score 1.
func Similarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))

	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}

	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

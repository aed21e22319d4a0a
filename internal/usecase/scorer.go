package usecase

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Confidence scores
const (
	exactMatchConfidence     = 100
	substringMatchConfidence = 80
)

// Score computes a 0-100 confidence that found refers to the pattern variation.
// Rules, first applicable wins:
//   - exact match (case-normalized): 100
//   - either string contains the other: 80
//   - otherwise 1 - levenshtein/maxLen, as a rounded percentage floored at 0
func Score(found, variation string) int {
	a := strings.ToLower(found)
	b := strings.ToLower(variation)

	if a == b {
		return exactMatchConfidence
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringMatchConfidence
	}

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	distance := LevenshteinDistance(a, b)

	confidence := int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))
	if confidence < 0 {
		return 0
	}
	return confidence
}

// LevenshteinDistance calculates the edit distance between two strings
// (unit cost insert/delete/substitute, case-sensitive, over runes).
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

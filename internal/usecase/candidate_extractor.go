package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/medilens/backend/internal/domain"
)

// minContainedTokenLength guards the "variation contains token" branch
// against trivial tokens like "d" matching everywhere.
const minContainedTokenLength = 3

// ExtractCandidates scans OCR text line by line against the pattern catalog.
// Each token anchors a unigram, bigram and trigram window; a window that
// contains a variation (or a unigram longer than 3 characters that the
// variation contains) is a hit. The first hit per canonical name wins and
// candidates are returned in discovery order.
func ExtractCandidates(text string, catalog domain.PatternCatalog) []domain.Candidate {
	entries := catalog.Entries()
	seen := make(map[string]bool)
	var candidates []domain.Candidate

	for _, line := range splitLines(text) {
		tokens := strings.Fields(strings.ToLower(line))

		for i, token := range tokens {
			bigram, trigram := windowsAt(tokens, i)

			for _, entry := range entries {
				if seen[entry.Name] {
					continue
				}

				for _, variation := range entry.Variations {
					if !windowHit(token, bigram, trigram, variation) {
						continue
					}

					seen[entry.Name] = true
					candidates = append(candidates, domain.Candidate{
						FoundText:        line,
						MatchedName:      entry.Name,
						MatchedVariation: variation,
						Confidence:       Score(token, variation),
					})
					break
				}
			}
		}
	}

	return candidates
}

// splitLines splits text into trimmed, non-empty lines in their original order
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// windowsAt returns the bigram and trigram windows anchored at token i.
// A window is empty when there are not enough tokens left on the line.
func windowsAt(tokens []string, i int) (bigram, trigram string) {
	if i+1 < len(tokens) {
		bigram = tokens[i] + " " + tokens[i+1]
	}
	if i+2 < len(tokens) {
		trigram = bigram + " " + tokens[i+2]
	}
	return bigram, trigram
}

// windowHit reports whether any window contains the variation, or the
// variation contains a sufficiently long unigram.
func windowHit(unigram, bigram, trigram, variation string) bool {
	if strings.Contains(unigram, variation) {
		return true
	}
	if bigram != "" && strings.Contains(bigram, variation) {
		return true
	}
	if trigram != "" && strings.Contains(trigram, variation) {
		return true
	}
	return strings.Contains(variation, unigram) && utf8.RuneCountInString(unigram) > minContainedTokenLength
}

package summarizer

import (
	"math"
	"strings"
	"unicode/utf8"
)

// idealSummaryLength is the rune count a digest-style summary gravitates
// toward; the length component decays linearly away from it.
const idealSummaryLength = 150

// terminalPunct are the runes that end a sentence in Korean or English
// news copy.
const terminalPunct = ".!?…。"

// Score rates a summary between 0 and 1 from four equally weighted
// components: length near the ideal, compression ratio between 10% and
// 30% of the original, three to five sentences, and a proper sentence
// ending. The score is advisory and never blocks a summary.
func Score(original, summary string) float64 {
	summaryLength := utf8.RuneCountInString(summary)
	if summaryLength == 0 {
		return 0
	}
	originalLength := utf8.RuneCountInString(original)

	return 0.25*lengthScore(summaryLength) +
		0.25*compressionScore(originalLength, summaryLength) +
		0.25*sentenceScore(countSentences(summary)) +
		0.25*endingScore(summary)
}

func lengthScore(n int) float64 {
	deviation := math.Abs(float64(n)-idealSummaryLength) / idealSummaryLength
	if deviation > 1 {
		deviation = 1
	}
	return 1 - deviation
}

func compressionScore(originalLength, summaryLength int) float64 {
	if originalLength == 0 {
		return 0
	}
	ratio := float64(summaryLength) / float64(originalLength)
	switch {
	case ratio >= 0.10 && ratio <= 0.30:
		return 1
	case ratio < 0.10:
		return ratio / 0.10
	default:
		s := 1 - (ratio-0.30)/0.70
		if s < 0 {
			s = 0
		}
		return s
	}
}

func sentenceScore(count int) float64 {
	switch {
	case count >= 3 && count <= 5:
		return 1
	case count == 2 || count == 6:
		return 0.5
	default:
		return 0
	}
}

func endingScore(summary string) float64 {
	trimmed := strings.TrimRight(summary, " \t")
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return 0
	}
	if strings.ContainsRune(terminalPunct, runes[len(runes)-1]) {
		return 1
	}
	return 0
}

// countSentences counts runs of terminal punctuation, so an ellipsis
// counts as one sentence end, not three.
func countSentences(s string) int {
	count := 0
	prevTerminal := false
	for _, r := range s {
		terminal := strings.ContainsRune(terminalPunct, r)
		if terminal && !prevTerminal {
			count++
		}
		prevTerminal = terminal
	}
	return count
}

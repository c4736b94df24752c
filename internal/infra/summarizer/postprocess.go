package summarizer

import (
	"regexp"
	"strings"
)

var (
	summaryLabelRe = regexp.MustCompile(`^(?i:(요약문?|summary)\s*[:：]\s*)`)
	leadInRe       = regexp.MustCompile(`^(?i:(이\s?기사는\s+|according to (the|this) article,?\s+))`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// quotePairs are the surrounding quote styles models like to add.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
	{'『', '』'},
}

// Postprocess normalizes raw model output into a clean summary: labels
// like "요약:" go, surrounding quotes go, filler lead-ins go, and
// dangling separators at the end go. Idempotent.
func Postprocess(raw string) string {
	s := strings.TrimSpace(raw)
	s = whitespaceRe.ReplaceAllString(s, " ")

	// Labels and quotes can nest either way around, so strip both twice.
	for i := 0; i < 2; i++ {
		s = strings.TrimSpace(summaryLabelRe.ReplaceAllString(s, ""))
		s = stripSurroundingQuotes(s)
	}

	s = strings.TrimSpace(leadInRe.ReplaceAllString(s, ""))
	s = trimTrailingOrphans(s)
	return strings.TrimSpace(s)
}

func stripSurroundingQuotes(s string) string {
	for {
		runes := []rune(s)
		if len(runes) < 2 {
			return s
		}
		stripped := false
		for _, pair := range quotePairs {
			if runes[0] == pair[0] && runes[len(runes)-1] == pair[1] {
				s = strings.TrimSpace(string(runes[1 : len(runes)-1]))
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

// trimTrailingOrphans drops separators left dangling at the end of the
// text, keeping sentence-final punctuation.
func trimTrailingOrphans(s string) string {
	for {
		trimmed := strings.TrimRight(s, " \t")
		runes := []rune(trimmed)
		if len(runes) == 0 {
			return trimmed
		}
		last := runes[len(runes)-1]
		if strings.ContainsRune(",;:·、", last) {
			s = string(runes[:len(runes)-1])
			continue
		}
		return trimmed
	}
}

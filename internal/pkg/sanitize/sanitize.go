// Package sanitize screens user-supplied text at the service boundary
// before it reaches the pipeline or an LLM prompt. It normalizes
// whitespace, strips control characters, and rejects prompt-injection
// and script/SQL fragments outright.
package sanitize

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Input length limits in runes.
const (
	MaxQueryLength = 1000
	MaxTextLength  = 10000
	MinQueryLength = 2
)

// Sentinel errors. Messages are worded for the safe-error responder:
// they carry no internals and can be shown to clients as-is.
var (
	ErrEmptyInput  = errors.New("input is required")
	ErrUnsafeInput = errors.New("invalid input: disallowed content")
	ErrTooShort    = errors.New("query is too short")
)

// injectionPatterns match attempts to redirect the LLM or smuggle code
// through a query. Matching input is rejected, not repaired.
var injectionPatterns = []*regexp.Regexp{
	// system prompt override attempts
	regexp.MustCompile(`(?i)(ignore|forget|override)\s+(previous|above|prior|earlier)\s+(instruction|prompt|rule)`),
	regexp.MustCompile(`(?i)(you\s+are\s+now|act\s+as|pretend\s+to\s+be|roleplay)`),
	regexp.MustCompile(`(?i)(system\s*:|assistant\s*:)`),
	regexp.MustCompile(`(?i)###\s*(instruction|system|prompt)`),
	regexp.MustCompile(`(?i)\[(system|assistant)\]`),
	// script injection
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	// SQL fragments
	regexp.MustCompile(`(?i)(union\s+select|drop\s+table|delete\s+from|insert\s+into)`),
	regexp.MustCompile(`['"]\s*;\s*--`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Query screens a search query: control characters are stripped,
// whitespace is collapsed, injection patterns are rejected, and the
// result is bounded to MaxQueryLength runes with a minimum of
// MinQueryLength runes.
func Query(query string) (string, error) {
	cleaned, err := clean(query, MaxQueryLength, true)
	if err != nil {
		return "", err
	}
	if len([]rune(cleaned)) < MinQueryLength {
		return "", ErrTooShort
	}
	return cleaned, nil
}

// Text screens free-form text bound for the summarizer. Longer inputs
// than MaxTextLength runes are truncated rather than rejected; article
// text legitimately contains markup-like fragments, so only the prompt
// injection screen applies, not the script/SQL one.
func Text(text string) (string, error) {
	return clean(text, MaxTextLength, false)
}

func clean(input string, maxLen int, strict bool) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	// 제어문자 제거
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	input = whitespaceRun.ReplaceAllString(input, " ")
	input = strings.TrimSpace(input)

	runes := []rune(input)
	if len(runes) > maxLen {
		input = string(runes[:maxLen])
	}

	patterns := injectionPatterns
	if !strict {
		// prompt redirection screen only
		patterns = injectionPatterns[:5]
	}
	for _, p := range patterns {
		if p.MatchString(input) {
			return "", ErrUnsafeInput
		}
	}

	if input == "" {
		return "", ErrEmptyInput
	}
	return input, nil
}

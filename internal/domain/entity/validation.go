package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL validates the format of an article or feed URL.
// It checks that the URL is well-formed, absolute, uses an HTTP/HTTPS
// scheme, and has a host. Network-level checks (DNS, private IP blocking)
// belong to the fetcher, which runs them before dialing.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	// DoS protection: enforce maximum URL length
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	// http 또는 https 스킴만 허용
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// CanonicalURL returns the deduplication key for an article URL.
// The scheme and host are lowercased; path, query and fragment are kept
// exactly as given, so meaningfully different URLs never collapse.
func CanonicalURL(rawURL string) (string, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	i := strings.Index(rawURL, "://")
	scheme := strings.ToLower(rawURL[:i])
	tail := rawURL[i+3:]

	// 호스트 이후 부분은 원문 그대로 유지
	rest := ""
	if j := strings.IndexAny(tail, "/?#"); j >= 0 {
		rest = tail[j:]
		tail = tail[:j]
	}

	return scheme + "://" + strings.ToLower(tail) + rest, nil
}

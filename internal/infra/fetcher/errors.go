package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/sony/gobreaker"

	"glbaguni/internal/resilience/retry"
)

// Fetch failures collapse into a small taxonomy so callers can branch with
// errors.Is/As instead of string matching. Every error returned by Get,
// GetFeed, and GetArticle wraps one of these sentinels or *retry.HTTPError
// for non-2xx responses. The original error stays in the chain, which is
// what lets the retry layer tell a slow dial from an expired deadline.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrPrivateIP        = errors.New("private IP address not allowed")
	ErrTimeout          = errors.New("request timeout")
	ErrDNS              = errors.New("DNS lookup failed")
	ErrConnect          = errors.New("connection failed")
	ErrTLS              = errors.New("TLS handshake failed")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// classifyTransportError maps an error out of http.Client.Do or a body
// read onto the taxonomy. Sentinels already in the taxonomy pass through
// unchanged, including redirect errors that the client wraps in *url.Error.
func classifyTransportError(err error) error {
	switch {
	case errors.Is(err, ErrTooManyRedirects),
		errors.Is(err, ErrInvalidURL),
		errors.Is(err, ErrPrivateIP),
		errors.Is(err, ErrDNS):
		return unwrapURLError(err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %w", ErrDNS, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	if isTLSError(err) {
		return fmt.Errorf("%w: %w", ErrTLS, err)
	}

	return fmt.Errorf("%w: %w", ErrConnect, err)
}

// unwrapURLError strips the *url.Error shell so the message is not
// "Get \"http://...\": Get \"http://...\": too many redirects".
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func isTLSError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var certInvalid x509.CertificateInvalidError
	return errors.As(err, &certInvalid)
}

// ErrorLabel returns the metrics label for a fetch error. The values match
// the error_type label of feed_fetch_errors_total.
func ErrorLabel(err error) string {
	var httpErr *retry.HTTPError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrDNS):
		return "dns"
	case errors.Is(err, ErrTLS):
		return "tls"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, ErrBodyTooLarge):
		return "body_too_large"
	case errors.As(err, &httpErr):
		return "http_status"
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrPrivateIP):
		return "invalid_url"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "connect"
	}
}

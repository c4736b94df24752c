package fetcher

import (
	"fmt"
	"net"
	"net/url"
)

// validateURL rejects anything the fetcher should never touch: non-HTTP
// schemes, hostless URLs, and (when denyPrivateIPs is set) hosts that
// resolve to internal addresses. It runs before the first request and
// again on every redirect target, so a public page cannot bounce the
// fetcher into the internal network.
func validateURL(rawURL string, denyPrivateIPs bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDNS, host, err)
	}

	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, ip)
		}
	}

	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

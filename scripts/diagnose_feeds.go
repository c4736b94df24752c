//go:build ignore

// Feed registry diagnostic. Probes every registered publisher feed and
// prints a health table: HTTP status, parse result, entry count, newest
// entry, and response time.
//
// Run from the repository root:
//
//	go run scripts/diagnose_feeds.go [publisher-key ...]
//
// With no arguments every publisher is probed; keys limit the probe to
// those publishers.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mmcdole/gofeed"

	"glbaguni/internal/infra/registry"
)

const (
	probeTimeout = 15 * time.Second
	// probeDelay keeps the probe polite; publishers rate-limit crawlers.
	probeDelay = 500 * time.Millisecond
)

// FeedDiagnostic is the probe result for a single feed endpoint.
type FeedDiagnostic struct {
	Publisher    string
	URL          string
	Status       string // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT", "REDIRECT"
	HTTPCode     int
	FeedType     string
	ItemCount    int
	NewestItem   string
	RedirectURL  string
	ResponseTime time.Duration
	ErrorMessage string
}

func main() {
	reg := registry.New()

	publishers := reg.All()
	if len(os.Args) > 1 {
		publishers = publishers[:0]
		for _, key := range os.Args[1:] {
			p, ok := reg.Lookup(key)
			if !ok {
				log.Fatalf("unknown publisher %q (known keys: %v)", key, reg.Keys())
			}
			publishers = append(publishers, p)
		}
	}

	total := 0
	for _, p := range publishers {
		total += len(p.Feeds)
	}
	log.Printf("Probing %d feeds across %d publishers...", total, len(publishers))

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	diagnostics := make([]FeedDiagnostic, 0, total)
	n := 0
	for _, p := range publishers {
		for _, feedURL := range p.Feeds {
			n++
			log.Printf("[%d/%d] %s: %s", n, total, p.Name, feedURL)
			diagnostics = append(diagnostics, probeFeed(client, p.Name, feedURL))
			time.Sleep(probeDelay)
		}
	}

	printTable(diagnostics)
}

func probeFeed(client *http.Client, publisher, feedURL string) FeedDiagnostic {
	diag := FeedDiagnostic{
		Publisher: publisher,
		URL:       feedURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "glbaguni-diagnostic/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	start := time.Now()
	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(start)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("no response within %v", probeTimeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	diag.HTTPCode = resp.StatusCode
	if resp.Request.URL.String() != feedURL {
		diag.RedirectURL = resp.Request.URL.String()
	}
	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	// Parse with the same library the fetch pipeline uses, so a feed
	// that fails here fails in production too.
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.FeedType = parsed.FeedType
	diag.ItemCount = len(parsed.Items)
	for _, item := range parsed.Items {
		if item.PublishedParsed != nil {
			diag.NewestItem = item.PublishedParsed.Format("2006-01-02 15:04")
			break
		}
	}

	switch {
	case diag.ItemCount == 0:
		diag.Status = "EMPTY"
		diag.ErrorMessage = "feed parsed but has no entries"
	case diag.RedirectURL != "":
		diag.Status = "REDIRECT"
	default:
		diag.Status = "OK"
	}
	return diag
}

func printTable(diagnostics []FeedDiagnostic) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tPUBLISHER\tTYPE\tITEMS\tNEWEST\tTIME\tURL")

	statusCount := make(map[string]int)
	healthy := 0
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Status == "OK" || d.Status == "REDIRECT" {
			healthy++
		}

		detail := d.URL
		if d.ErrorMessage != "" {
			detail = fmt.Sprintf("%s (%s)", d.URL, d.ErrorMessage)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%dms\t%s\n",
			d.Status, d.Publisher, orDash(d.FeedType), d.ItemCount,
			orDash(d.NewestItem), d.ResponseTime.Milliseconds(), detail)

		if d.RedirectURL != "" {
			fmt.Fprintf(w, "\t\t\t\t\t\t-> %s\n", d.RedirectURL)
		}
	}
	if err := w.Flush(); err != nil {
		log.Printf("failed to flush table: %v", err)
	}

	fmt.Println()
	fmt.Printf("healthy: %d/%d (%.1f%%)\n",
		healthy, len(diagnostics), float64(healthy)/float64(len(diagnostics))*100)
	for status, count := range statusCount {
		if status != "OK" {
			fmt.Printf("  %s: %d\n", status, count)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

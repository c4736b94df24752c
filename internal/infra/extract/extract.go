// Package extract turns fetched article HTML into clean body text.
// Extraction is a cascade: publisher-specific selectors first, generic
// selectors with a readability backup second, and a bare paragraph sweep
// last. The first stage that yields enough text wins.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	// stageWinLength is the cleaned-text length a cascade stage must
	// reach to win.
	stageWinLength = 100

	// minContentLength is the floor below which the final result counts
	// as a failed extraction.
	minContentLength = 50

	// minParagraphLength keeps navigation crumbs out of the paragraph
	// fallback.
	minParagraphLength = 20
)

// ErrExtractionFailed means no cascade stage produced enough text.
var ErrExtractionFailed = errors.New("content extraction failed")

// Elements that never contain article text.
const noiseElements = "script, style, nav, header, footer, aside, form, iframe, noscript, button, input, select, textarea"

// Class and id fragments that mark ads, share bars, navigation, and
// related-article boxes. Matched on word boundaries so "content" is not
// caught by "nav". gnb and lnb are the menu-bar names Korean portals use.
var noiseClassRe = regexp.MustCompile(`(^|[\s_-])(ad|ads|advert|banner|share|sns|social|related|recommend|nav|navigation|navbar|menu|gnb|lnb|breadcrumb|comment|promo|popup)([\s_-]|$)`)

var genericSelectors = []string{
	"article",
	".article-content",
	".post-content",
	"#content",
	".entry-content",
	"main",
}

// Extractor applies the selector cascade. Safe for concurrent use; the
// rule table is read-only after construction.
type Extractor struct {
	rules []Rule
}

// New creates an Extractor with the embedded publisher rules.
func New() *Extractor {
	return &Extractor{rules: DefaultRules()}
}

// NewWithRules creates an Extractor with an explicit rule table, as loaded
// from EXTRACTOR_RULES_PATH.
func NewWithRules(rules []Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract returns the cleaned article body for a fetched page. finalURL
// decides which publisher rules apply and resolves relative links for the
// readability pass.
func (e *Extractor) Extract(htmlBody []byte, finalURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return "", fmt.Errorf("%w: parsing HTML: %v", ErrExtractionFailed, err)
	}
	removeNoise(doc)

	if text, ok := e.publisherStage(doc, finalURL); ok {
		return text, nil
	}
	if text, ok := genericStage(doc, htmlBody, finalURL); ok {
		return text, nil
	}

	text := Clean(paragraphFallback(doc))
	if utf8.RuneCountInString(text) < minContentLength {
		return "", fmt.Errorf("%w: %d chars after cleaning", ErrExtractionFailed, utf8.RuneCountInString(text))
	}
	return text, nil
}

// Title returns the page's headline: og:title when present, the <title>
// tag otherwise. An empty string means the page names neither.
func (e *Extractor) Title(htmlBody []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := CleanSnippet(og); title != "" {
			return title
		}
	}
	return CleanSnippet(doc.Find("title").First().Text())
}

// publisherStage tries the selector list registered for the page's host.
func (e *Extractor) publisherStage(doc *goquery.Document, finalURL string) (string, bool) {
	parsed, err := url.Parse(finalURL)
	if err != nil {
		return "", false
	}
	rule, ok := matchRule(e.rules, parsed.Hostname())
	if !ok {
		return "", false
	}

	for _, selector := range rule.Selectors {
		text := Clean(selectionText(doc.Find(selector)))
		if utf8.RuneCountInString(text) >= stageWinLength {
			return text, true
		}
	}

	slog.Debug("publisher selectors yielded no content",
		slog.String("publisher", rule.Name),
		slog.String("url", finalURL))
	return "", false
}

// genericStage tries the common article containers, then a readability
// pass over the whole page.
func genericStage(doc *goquery.Document, htmlBody []byte, finalURL string) (string, bool) {
	for _, selector := range genericSelectors {
		text := Clean(selectionText(doc.Find(selector)))
		if utf8.RuneCountInString(text) >= stageWinLength {
			return text, true
		}
	}

	pageURL, err := url.Parse(finalURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(bytes.NewReader(htmlBody), pageURL)
	if err != nil {
		return "", false
	}

	text := Clean(article.TextContent)
	if utf8.RuneCountInString(text) >= stageWinLength {
		return text, true
	}
	return "", false
}

// paragraphFallback collects every paragraph long enough to be prose.
func paragraphFallback(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if utf8.RuneCountInString(text) >= minParagraphLength {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n")
}

// removeNoise drops elements that never hold article text, then nodes
// whose class or id marks them as ads, share bars, or related boxes.
func removeNoise(doc *goquery.Document) {
	doc.Find(noiseElements).Remove()

	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if noiseClassRe.MatchString(strings.ToLower(class)) || noiseClassRe.MatchString(strings.ToLower(id)) {
			s.Remove()
		}
	})
}

// selectionText joins the paragraph text inside a selection. Containers
// without <p> children contribute their whole text.
func selectionText(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		paragraphs := s.Find("p")
		if paragraphs.Length() == 0 {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
			return
		}
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	})
	return strings.Join(parts, "\n")
}

// Package registry holds the static table of Korean news publishers and
// their RSS endpoints. Lookups are by publisher key; ordering is the
// registration order, so every caller sees the same sequence.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/observability/metrics"
)

// MaxFeedsPerPublisher caps the endpoints one publisher may register.
const MaxFeedsPerPublisher = 5

// Publisher is one news organization with its registered feed endpoints.
type Publisher struct {
	// Key is the stable lookup identifier, lowercase ASCII.
	Key string

	// Name is the display name, usually Korean.
	Name string

	// Category groups publishers the way Korean media directories do:
	// 종합 for general dailies, 통신 for wire services, 방송 for
	// broadcasters.
	Category string

	// Feeds are the RSS/Atom endpoints, at most MaxFeedsPerPublisher.
	Feeds []string
}

// defaultPublishers is the built-in table of major Korean outlets.
func defaultPublishers() []Publisher {
	return []Publisher{
		{
			Key: "hani", Name: "한겨레", Category: "종합",
			Feeds: []string{
				"http://www.hani.co.kr/rss/",
				"http://www.hani.co.kr/rss/economy/",
			},
		},
		{
			Key: "chosun", Name: "조선일보", Category: "종합",
			Feeds: []string{
				"https://www.chosun.com/arc/outboundfeeds/rss/",
				"https://www.chosun.com/arc/outboundfeeds/rss/category/economy/",
			},
		},
		{
			Key: "joongang", Name: "중앙일보", Category: "종합",
			Feeds: []string{
				"https://rss.joins.com/joins_news_list.xml",
				"https://rss.joins.com/joins_money_list.xml",
			},
		},
		{
			Key: "yonhap", Name: "연합뉴스", Category: "통신",
			Feeds: []string{
				"https://www.yna.co.kr/rss/news.xml",
				"https://feeds.feedburner.com/yonhapnews_top",
				"https://feeds.feedburner.com/yonhapnews_it",
			},
		},
		{
			Key: "sbs", Name: "SBS", Category: "방송",
			Feeds: []string{
				"https://news.sbs.co.kr/news/SectionRssFeed.do?sectionId=01",
				"https://rss.sbs.co.kr/news/SectionRssFeed.jsp?sectionId=01",
			},
		},
		{
			Key: "kbs", Name: "KBS", Category: "방송",
			Feeds: []string{
				"http://world.kbs.co.kr/rss/rss_news.htm?lang=k",
			},
		},
		{
			Key: "mbc", Name: "MBC", Category: "방송",
			Feeds: []string{
				"https://imnews.imbc.com/rss/news.xml",
			},
		},
		{
			Key: "jtbc", Name: "JTBC", Category: "방송",
			Feeds: []string{
				"https://news.jtbc.joins.com/rss/news.xml",
				"http://fs.jtbc.joins.com/RSS/newsflash.xml",
			},
		},
	}
}

// Registry resolves publisher keys to their feeds.
type Registry struct {
	byKey map[string]Publisher
	order []string
}

// New builds the registry from the built-in publisher table.
func New() *Registry {
	r, err := NewWithPublishers(defaultPublishers())
	if err != nil {
		// The built-in table is validated by tests; reaching this means
		// a broken edit to defaultPublishers.
		panic(fmt.Sprintf("registry: invalid built-in publisher table: %v", err))
	}
	return r
}

// NewWithPublishers builds a registry from an explicit table. Every
// publisher needs a key, a name, and 1 to MaxFeedsPerPublisher valid
// absolute feed URLs; duplicate keys are rejected.
func NewWithPublishers(publishers []Publisher) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Publisher, len(publishers))}

	for _, p := range publishers {
		key := strings.ToLower(strings.TrimSpace(p.Key))
		if key == "" {
			return nil, fmt.Errorf("publisher %q: key is required", p.Name)
		}
		if _, exists := r.byKey[key]; exists {
			return nil, fmt.Errorf("publisher %q: duplicate key", key)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("publisher %q: name is required", key)
		}
		if len(p.Feeds) == 0 {
			return nil, fmt.Errorf("publisher %q: at least one feed is required", key)
		}
		if len(p.Feeds) > MaxFeedsPerPublisher {
			return nil, fmt.Errorf("publisher %q: %d feeds exceeds the limit of %d",
				key, len(p.Feeds), MaxFeedsPerPublisher)
		}
		for _, feed := range p.Feeds {
			if err := entity.ValidateURL(feed); err != nil {
				return nil, fmt.Errorf("publisher %q: feed %q: %w", key, feed, err)
			}
		}

		p.Key = key
		r.byKey[key] = p
		r.order = append(r.order, key)
	}

	metrics.UpdateRegisteredFeeds(r.FeedCount())
	return r, nil
}

// Lookup resolves a publisher by key, case-insensitively.
func (r *Registry) Lookup(key string) (Publisher, bool) {
	p, ok := r.byKey[strings.ToLower(strings.TrimSpace(key))]
	return p, ok
}

// All returns every publisher in registration order.
func (r *Registry) All() []Publisher {
	out := make([]Publisher, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}

// ByCategory returns the publishers in one category, in registration
// order. An empty category returns everything.
func (r *Registry) ByCategory(category string) []Publisher {
	if category == "" {
		return r.All()
	}
	var out []Publisher
	for _, key := range r.order {
		if p := r.byKey[key]; p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range r.order {
		c := r.byKey[key].Category
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Keys returns the publisher keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FeedCount returns the total number of registered feed endpoints.
func (r *Registry) FeedCount() int {
	total := 0
	for _, p := range r.byKey {
		total += len(p.Feeds)
	}
	return total
}

package extract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps a publisher's hostnames to the CSS selectors that hold the
// article body on its pages. Selectors are tried in order.
type Rule struct {
	Name      string   `yaml:"name"`
	Hosts     []string `yaml:"hosts"`
	Selectors []string `yaml:"selectors"`
}

type rulesFile struct {
	Publishers []Rule `yaml:"publishers"`
}

// DefaultRules returns the embedded selector table for the major Korean
// publishers. Site redesigns land here first; EXTRACTOR_RULES_PATH exists
// so a deployment can patch a selector without a release.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "hani",
			Hosts:     []string{"hani.co.kr"},
			Selectors: []string{".article-text", "div.text"},
		},
		{
			Name:      "chosun",
			Hosts:     []string{"chosun.com"},
			Selectors: []string{"section.article-body", ".par"},
		},
		{
			Name:      "joongang",
			Hosts:     []string{"joongang.co.kr"},
			Selectors: []string{"#article_body", ".article_body"},
		},
		{
			Name:      "yonhap",
			Hosts:     []string{"yna.co.kr"},
			Selectors: []string{".story-news", "#articleWrap"},
		},
		{
			Name:      "sbs",
			Hosts:     []string{"sbs.co.kr"},
			Selectors: []string{".text_area", ".main_text"},
		},
		{
			Name:      "kbs",
			Hosts:     []string{"kbs.co.kr"},
			Selectors: []string{"#cont_newstext", ".detail-body"},
		},
		{
			Name:      "mbc",
			Hosts:     []string{"imbc.com"},
			Selectors: []string{".news_txt", "#content .news_txt"},
		},
		{
			Name:      "jtbc",
			Hosts:     []string{"jtbc.co.kr"},
			Selectors: []string{"#articlebody", ".article_content"},
		},
	}
}

// LoadRulesFromEnv returns the selector table, reading an override file
// when EXTRACTOR_RULES_PATH is set. A set but unreadable or invalid file
// is an error so the deployment fails visibly.
func LoadRulesFromEnv() ([]Rule, error) {
	path := os.Getenv("EXTRACTOR_RULES_PATH")
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading EXTRACTOR_RULES_PATH: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing EXTRACTOR_RULES_PATH: %w", err)
	}
	if len(file.Publishers) == 0 {
		return nil, fmt.Errorf("EXTRACTOR_RULES_PATH %s defines no publishers", path)
	}

	for i, rule := range file.Publishers {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if len(rule.Hosts) == 0 {
			return nil, fmt.Errorf("rule %q: at least one host is required", rule.Name)
		}
		if len(rule.Selectors) == 0 {
			return nil, fmt.Errorf("rule %q: at least one selector is required", rule.Name)
		}
	}

	return file.Publishers, nil
}

// matchRule finds the first rule whose host list matches the hostname,
// either exactly or as a parent domain.
func matchRule(rules []Rule, hostname string) (Rule, bool) {
	hostname = strings.ToLower(hostname)
	for _, rule := range rules {
		for _, host := range rule.Hosts {
			host = strings.ToLower(host)
			if hostname == host || strings.HasSuffix(hostname, "."+host) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

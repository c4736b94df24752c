package extract

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Decoration bullets that Korean newsrooms prefix to paragraphs.
	bulletPrefixRe = regexp.MustCompile(`^[▲▼◆◇■●▶◀※☞\s]+`)

	// Agency datelines such as "(서울=연합뉴스) 홍길동 기자 =".
	agencyPrefixRe = regexp.MustCompile(`^\([가-힣]+\s*=\s*[^)]+\)\s*([가-힣]{2,5}\s*(기자|특파원)\s*=?\s*)?`)

	// Lines that are only a reporter signature, optionally with an email.
	reporterLineRe = regexp.MustCompile(`^[가-힣]{2,5}\s*(기자|특파원|앵커)\s*([\w.%+-]+@[\w.-]+)?\s*$`)

	// Copyright boilerplate anywhere in a line kills the whole line.
	copyrightRe = regexp.MustCompile(`저작권자|무단\s?전재|재배포\s?금지|ⓒ\s*[\w가-힣]`)

	innerSpaceRe = regexp.MustCompile(`[ \t\x{00a0}]+`)

	cdataRe      = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	readMoreRe   = regexp.MustCompile(`(\.{3}|…)?\s*(기사\s*)?더\s?보기\s*$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean strips Korean news boilerplate from extracted body text: reporter
// signature lines, copyright notices, decoration bullets, and ragged
// whitespace. Clean(Clean(x)) == Clean(x) holds, so cleaning already
// cleaned text is safe.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = bulletPrefixRe.ReplaceAllString(line, "")
		line = agencyPrefixRe.ReplaceAllString(line, "")
		line = innerSpaceRe.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}
		if reporterLineRe.MatchString(line) {
			continue
		}
		if copyrightRe.MatchString(line) {
			continue
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// CleanSnippet normalizes an RSS summary fragment into plain text: CDATA
// markers and tags go, entities are unescaped, "더보기" tails are cut, and
// all whitespace collapses to single spaces.
func CleanSnippet(snippet string) string {
	if snippet == "" {
		return ""
	}

	snippet = cdataRe.ReplaceAllString(snippet, "")
	snippet = tagRe.ReplaceAllString(snippet, " ")
	snippet = html.UnescapeString(snippet)
	snippet = whitespaceRe.ReplaceAllString(snippet, " ")
	snippet = strings.TrimSpace(snippet)
	snippet = readMoreRe.ReplaceAllString(snippet, "")
	return strings.TrimSpace(snippet)
}

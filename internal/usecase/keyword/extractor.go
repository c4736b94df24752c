// Package keyword extracts search keywords from a free-form news query.
// Extraction never fails: an LLM pass is backed by curated Korean news
// term patterns, and finally by the query's own whitespace tokens.
package keyword

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"glbaguni/internal/infra/llm"
	"glbaguni/internal/observability/metrics"
)

const (
	// MaxKeywords caps the result of every cascade tier.
	MaxKeywords = 10

	// maxQueryRunes caps the query text handed to the LLM. The pattern
	// and token tiers see the full query.
	maxQueryRunes = 200

	// maxKeywordRunes rejects implausibly long "keywords". Model refusals
	// come back as prose, not keyword lists; dropping them here pushes the
	// cascade to the next tier.
	maxKeywordRunes = 30

	// minTokenRunes drops single-character tokens in the final tier.
	minTokenRunes = 2

	llmMaxTokens   = 200
	llmTemperature = 0.3
)

const systemPrompt = `당신은 뉴스 키워드 추출 전문가입니다.
사용자가 제공한 텍스트에서 뉴스 검색에 유용한 핵심 키워드를 추출해주세요.
- 고유명사(회사명, 인물명, 지역명, 기술명 등)를 우선 추출
- 핵심 주제어를 포함
- 최대 10개까지
- 각 키워드는 따옴표 없이 콤마로 구분
- 키워드만 출력하고 다른 설명은 하지 마세요`

// categoryPatterns matches well-known Korean news terms. Categories are
// scanned in a fixed order so results stay deterministic.
var categoryPatterns = []*regexp.Regexp{
	// 회사명
	regexp.MustCompile(`(?i)(삼성|LG|SK|현대|기아|네이버|카카오|쿠팡|배달의민족|토스|TSMC|애플|구글|마이크로소프트|테슬라)`),
	// 기술
	regexp.MustCompile(`(?i)(반도체|AI|인공지능|5G|6G|블록체인|메타버스|NFT|클라우드|빅데이터)`),
	// 경제
	regexp.MustCompile(`(?i)(주가|증시|코스피|나스닥|달러|원화|금리|인플레이션|경기침체)`),
	// 정치
	regexp.MustCompile(`(?i)(대통령|국회|정부|여당|야당|선거|정책|법안)`),
	// 사회
	regexp.MustCompile(`(?i)(코로나|백신|기후|환경|교육|의료|복지)`),
}

// Extractor runs the keyword cascade. A nil Client skips the LLM tier.
type Extractor struct {
	Client llm.ChatClient
}

func NewExtractor(client llm.ChatClient) *Extractor {
	return &Extractor{Client: client}
}

// Extract returns up to MaxKeywords keywords for the query. The result
// keeps first-seen order and is case-insensitively distinct. An empty
// result is possible only for degenerate queries (blank or all
// single-character tokens).
func (e *Extractor) Extract(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if keywords := e.fromLLM(ctx, query); len(keywords) > 0 {
		metrics.RecordKeywordExtraction("llm")
		slog.Info("keywords extracted",
			slog.String("method", "llm"),
			slog.Any("keywords", keywords))
		return keywords
	}

	if keywords := fromPatterns(query); len(keywords) > 0 {
		metrics.RecordKeywordExtraction("regex")
		slog.Info("keywords extracted",
			slog.String("method", "regex"),
			slog.Any("keywords", keywords))
		return keywords
	}

	keywords := fromTokens(query)
	metrics.RecordKeywordExtraction("tokens")
	slog.Info("keywords extracted",
		slog.String("method", "tokens"),
		slog.Any("keywords", keywords))
	return keywords
}

// fromLLM asks the model for comma-separated keywords. Any failure
// returns nil so the cascade can continue.
func (e *Extractor) fromLLM(ctx context.Context, query string) []string {
	if e.Client == nil {
		return nil
	}

	reply, err := e.Client.Chat(ctx, systemPrompt, "텍스트: "+truncateQuery(query), llm.Options{
		MaxTokens:   llmMaxTokens,
		Temperature: llmTemperature,
	})
	if err != nil {
		slog.Warn("LLM keyword extraction failed, falling back",
			slog.Any("error", err))
		return nil
	}

	parts := strings.Split(reply.Text, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		kw := strings.TrimSpace(part)
		if kw == "" || utf8.RuneCountInString(kw) > maxKeywordRunes {
			continue
		}
		keywords = append(keywords, kw)
	}
	return distinct(keywords)
}

// fromPatterns collects category term matches in query order, category by
// category.
func fromPatterns(query string) []string {
	var keywords []string
	for _, pattern := range categoryPatterns {
		keywords = append(keywords, pattern.FindAllString(query, -1)...)
	}
	return distinct(keywords)
}

// fromTokens falls back to the query's own whitespace tokens.
func fromTokens(query string) []string {
	fields := strings.Fields(query)
	keywords := make([]string, 0, len(fields))
	for _, token := range fields {
		if utf8.RuneCountInString(token) >= minTokenRunes {
			keywords = append(keywords, token)
		}
	}
	return distinct(keywords)
}

// distinct keeps the first occurrence of each keyword, compared
// case-insensitively, capped at MaxKeywords.
func distinct(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	result := make([]string, 0, MaxKeywords)
	for _, kw := range keywords {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, kw)
		if len(result) == MaxKeywords {
			break
		}
	}
	return result
}

func truncateQuery(query string) string {
	runes := []rune(query)
	if len(runes) <= maxQueryRunes {
		return query
	}
	return string(runes[:maxQueryRunes])
}

package news

import (
	"errors"
	"testing"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/registry"
)

func TestPlanFeeds_CapsPerPublisherAndTotal(t *testing.T) {
	f := newFixture()
	f.registry.publishers = []registry.Publisher{
		{Key: "yonhap", Name: "연합뉴스", Feeds: []string{
			"https://feeds.example.co.kr/yonhap-1.xml",
			"https://feeds.example.co.kr/yonhap-2.xml",
			"https://feeds.example.co.kr/yonhap-3.xml",
		}},
		{Key: "hani", Name: "한겨레", Feeds: []string{
			"https://feeds.example.co.kr/hani-1.xml",
			"https://feeds.example.co.kr/hani-2.xml",
			"https://feeds.example.co.kr/hani-3.xml",
		}},
		{Key: "sbs", Name: "SBS", Feeds: []string{
			"https://feeds.example.co.kr/sbs-1.xml",
			"https://feeds.example.co.kr/sbs-2.xml",
			"https://feeds.example.co.kr/sbs-3.xml",
		}},
		{Key: "kbs", Name: "KBS", Feeds: []string{
			"https://feeds.example.co.kr/kbs-1.xml",
		}},
	}

	plan := f.service(t).planFeeds()

	want := []string{
		"https://feeds.example.co.kr/yonhap-1.xml",
		"https://feeds.example.co.kr/yonhap-2.xml",
		"https://feeds.example.co.kr/hani-1.xml",
		"https://feeds.example.co.kr/hani-2.xml",
		"https://feeds.example.co.kr/sbs-1.xml",
		"https://feeds.example.co.kr/sbs-2.xml",
	}
	if len(plan) != len(want) {
		t.Fatalf("expected %d feeds, got %d", len(want), len(plan))
	}
	for i, feedURL := range want {
		if plan[i].URL != feedURL {
			t.Fatalf("plan[%d]: want %q, got %q", i, feedURL, plan[i].URL)
		}
	}
	if plan[0].Publisher != "연합뉴스" || plan[2].Publisher != "한겨레" {
		t.Fatalf("unexpected publishers in plan: %+v", plan)
	}
}

func TestPlanFeeds_InvalidURLDoesNotConsumeSlot(t *testing.T) {
	f := newFixture()
	f.registry.publishers = []registry.Publisher{
		{Key: "yonhap", Name: "연합뉴스", Feeds: []string{
			"ftp://feeds.example.co.kr/bad.xml",
			"https://feeds.example.co.kr/yonhap-1.xml",
			"https://feeds.example.co.kr/yonhap-2.xml",
		}},
	}

	plan := f.service(t).planFeeds()

	if len(plan) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(plan))
	}
	if plan[0].URL != "https://feeds.example.co.kr/yonhap-1.xml" ||
		plan[1].URL != "https://feeds.example.co.kr/yonhap-2.xml" {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestFilterByKeywords(t *testing.T) {
	byTitle := feedArticle(t, "AI 산업 동향 점검", "https://news.example.co.kr/articles/1", "연합뉴스", "")
	bySummary := feedArticle(t, "오늘의 경제", "https://news.example.co.kr/articles/2", "연합뉴스", "ai 반도체 수요가 급증했다")
	noMatch := feedArticle(t, "주말 날씨", "https://news.example.co.kr/articles/3", "연합뉴스", "전국이 맑겠습니다")

	matched := filterByKeywords([]*entity.Article{byTitle, bySummary, noMatch}, []string{" AI ", ""})

	if len(matched) != 2 || matched[0] != byTitle || matched[1] != bySummary {
		t.Fatalf("unexpected matches: %+v", matched)
	}
	if byTitle.State != entity.StateFiltered || bySummary.State != entity.StateFiltered {
		t.Fatal("matched articles should be filtered")
	}
	if noMatch.State != entity.StateDropped || noMatch.Reason != entity.DropNoKeywordMatch {
		t.Fatalf("unexpected state for non-match: %s/%s", noMatch.State, noMatch.Reason)
	}
}

func TestDedupeByCanonical_FirstWins(t *testing.T) {
	first := feedArticle(t, "단독 보도", "https://news.example.co.kr/articles/1", "연합뉴스", "")
	dup := feedArticle(t, "단독 보도 전재", "HTTPS://News.Example.Co.KR/articles/1", "한겨레", "")
	other := feedArticle(t, "다른 기사", "https://news.example.co.kr/articles/2", "한겨레", "")
	for _, a := range []*entity.Article{first, dup, other} {
		if err := a.MarkFiltered(); err != nil {
			t.Fatalf("MarkFiltered: %v", err)
		}
	}

	unique := dedupeByCanonical([]*entity.Article{first, dup, other})

	if len(unique) != 2 || unique[0] != first || unique[1] != other {
		t.Fatalf("unexpected survivors: %+v", unique)
	}
	if dup.State != entity.StateDropped || dup.Reason != entity.DropDuplicateURL {
		t.Fatalf("unexpected duplicate state: %s/%s", dup.State, dup.Reason)
	}
}

func TestCapArticles(t *testing.T) {
	articles := []*entity.Article{
		feedArticle(t, "기사 하나", "https://news.example.co.kr/articles/1", "연합뉴스", ""),
		feedArticle(t, "기사 둘", "https://news.example.co.kr/articles/2", "연합뉴스", ""),
		feedArticle(t, "기사 셋", "https://news.example.co.kr/articles/3", "연합뉴스", ""),
	}

	kept := capArticles(articles, 5)
	if len(kept) != 3 {
		t.Fatalf("expected all 3 under the cap, got %d", len(kept))
	}

	kept = capArticles(articles, 2)
	if len(kept) != 2 || kept[0] != articles[0] || kept[1] != articles[1] {
		t.Fatalf("unexpected kept articles: %+v", kept)
	}
	if articles[2].State != entity.StateDropped || articles[2].Reason != entity.DropOverArticleCap {
		t.Fatalf("unexpected overflow state: %s/%s", articles[2].State, articles[2].Reason)
	}
}

func TestTallyOutcomes(t *testing.T) {
	summarized := feedArticle(t, "요약된 기사", "https://news.example.co.kr/articles/1", "연합뉴스", "")
	if err := summarized.MarkFiltered(); err != nil {
		t.Fatal(err)
	}
	if err := summarized.MarkBodyFetched("본문입니다"); err != nil {
		t.Fatal(err)
	}
	if err := summarized.MarkSummarized("짧은 요약입니다."); err != nil {
		t.Fatal(err)
	}

	unmatched := feedArticle(t, "무관한 기사", "https://news.example.co.kr/articles/2", "연합뉴스", "")
	if err := unmatched.Drop(entity.DropNoKeywordMatch); err != nil {
		t.Fatal(err)
	}

	duplicate := feedArticle(t, "중복 기사", "https://news.example.co.kr/articles/3", "연합뉴스", "")
	if err := duplicate.MarkFiltered(); err != nil {
		t.Fatal(err)
	}
	if err := duplicate.Drop(entity.DropDuplicateURL); err != nil {
		t.Fatal(err)
	}

	fetchFailed := feedArticle(t, "수신 실패 기사", "https://news.example.co.kr/articles/4", "연합뉴스", "")
	if err := fetchFailed.MarkFiltered(); err != nil {
		t.Fatal(err)
	}
	if err := fetchFailed.Drop(entity.DropBodyFetchFailed); err != nil {
		t.Fatal(err)
	}

	llmFailed := feedArticle(t, "요약 실패 기사", "https://news.example.co.kr/articles/5", "연합뉴스", "")
	if err := llmFailed.MarkFiltered(); err != nil {
		t.Fatal(err)
	}
	if err := llmFailed.MarkBodyFetched("본문입니다"); err != nil {
		t.Fatal(err)
	}
	if err := llmFailed.Drop(entity.DropSummarizeFailed); err != nil {
		t.Fatal(err)
	}

	pending := feedArticle(t, "미처리 기사", "https://news.example.co.kr/articles/6", "연합뉴스", "")

	var tally Tally
	tallyOutcomes(&tally, []*entity.Article{summarized, unmatched, duplicate, fetchFailed, llmFailed, pending})

	if tally.Matched != 4 {
		t.Fatalf("expected Matched=4, got %d", tally.Matched)
	}
	if tally.BodiesFetched != 2 {
		t.Fatalf("expected BodiesFetched=2, got %d", tally.BodiesFetched)
	}
	if tally.Summarized != 1 {
		t.Fatalf("expected Summarized=1, got %d", tally.Summarized)
	}
	wantDrops := map[string]int{
		"no_keyword_match":  1,
		"duplicate_url":     1,
		"body_fetch_failed": 1,
		"summarize_failed":  1,
	}
	for reason, count := range wantDrops {
		if tally.Dropped[reason] != count {
			t.Fatalf("drop %q: want %d, got %d (%+v)", reason, count, tally.Dropped[reason], tally.Dropped)
		}
	}
	if len(tally.Dropped) != len(wantDrops) {
		t.Fatalf("unexpected extra drop reasons: %+v", tally.Dropped)
	}
}

func TestHTMLContent(t *testing.T) {
	for contentType, want := range map[string]bool{
		"":                          true,
		"text/html; charset=utf-8":  true,
		"TEXT/HTML":                 true,
		"application/xhtml+xml":     true,
		"application/json":          false,
		"image/png":                 false,
		"application/rss+xml":       false,
		"text/plain; charset=utf-8": false,
	} {
		if got := htmlContent(contentType); got != want {
			t.Errorf("htmlContent(%q) = %v, want %v", contentType, got, want)
		}
	}
}

func TestSourceFromURL(t *testing.T) {
	for rawURL, want := range map[string]string{
		"https://www.hani.co.kr/arti/economy/1": "hani.co.kr",
		"https://News.Example.Co.KR/path":       "news.example.co.kr",
		"https://news.example.co.kr:8443/a":     "news.example.co.kr",
		"://missing-scheme":                     "",
		"https://":                              "",
	} {
		if got := sourceFromURL(rawURL); got != want {
			t.Errorf("sourceFromURL(%q) = %q, want %q", rawURL, got, want)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", "ko"},
		{"ko", "ko"},
		{"en", "en"},
	} {
		got, err := normalizeLanguage(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("normalizeLanguage(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}

	_, err := normalizeLanguage("jp")
	var verr *entity.ValidationError
	if !errors.As(err, &verr) || verr.Field != "language" {
		t.Fatalf("expected language validation error, got %v", err)
	}
}

func TestSummaryInput(t *testing.T) {
	a := feedArticle(t, "반도체 기사", "https://news.example.co.kr/articles/1", "연합뉴스", "")
	if err := a.MarkFiltered(); err != nil {
		t.Fatal(err)
	}
	if err := a.MarkBodyFetched("본문 첫 문장. 본문 둘째 문장."); err != nil {
		t.Fatal(err)
	}
	if got := summaryInput(a); got != "반도체 기사\n\n본문 첫 문장. 본문 둘째 문장." {
		t.Fatalf("unexpected summarizer input %q", got)
	}
}

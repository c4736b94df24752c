// Package main provides the CLI for the news search pipeline.
// Usage: news-search "query" [-max N] [-lang ko|en] [-format text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/extract"
	"glbaguni/internal/infra/feed"
	"glbaguni/internal/infra/fetcher"
	"glbaguni/internal/infra/llm"
	"glbaguni/internal/infra/registry"
	"glbaguni/internal/infra/summarizer"
	"glbaguni/internal/observability/logging"
	"glbaguni/internal/pkg/budget"
	"glbaguni/internal/pkg/sanitize"
	"glbaguni/internal/usecase/keyword"
	newsUC "glbaguni/internal/usecase/news"
)

// Exit codes: 0 on success, 1 when the pipeline fails, 2 on bad usage.
const (
	exitOK       = 0
	exitPipeline = 1
	exitUsage    = 2
)

// SearchOutput is the JSON document printed by -format json.
type SearchOutput struct {
	RequestID      string                   `json:"request_id"`
	Query          string                   `json:"query"`
	Language       string                   `json:"language"`
	Keywords       []string                 `json:"keywords"`
	Articles       []*entity.ArticleSummary `json:"articles"`
	TotalArticles  int                      `json:"total_articles"`
	Tally          newsUC.Tally             `json:"tally"`
	ElapsedSeconds float64                  `json:"elapsed_seconds"`
}

func main() {
	var (
		maxArticles  int
		language     string
		outputFormat string
	)

	flag.IntVar(&maxArticles, "max", 0, "maximum articles to summarize (0 uses the default)")
	flag.StringVar(&language, "lang", "ko", "summary language: ko or en")
	flag.StringVar(&outputFormat, "format", "text", "output format: text or json")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(exitUsage)
	}

	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, want text or json\n", outputFormat)
		os.Exit(exitUsage)
	}

	logger := initLogger()

	query, err := sanitize.Query(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	svc, caps := buildPipeline(logger)

	ctx, cancel := context.WithTimeout(context.Background(), caps.OverallTimeout+5*time.Second)
	defer cancel()

	logger.Info("searching news",
		slog.String("query", query),
		slog.Int("max_articles", maxArticles),
		slog.String("language", language))

	result, err := svc.ProcessQuery(ctx, newsUC.Request{
		Query:       query,
		MaxArticles: maxArticles,
		Language:    language,
		RequestID:   uuid.New().String(),
	})
	if err != nil {
		exitWithError(err)
	}

	if outputFormat == "json" {
		outputJSON(result)
	} else {
		outputText(result)
	}
	os.Exit(exitOK)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: news-search "<query>" [-max N] [-lang ko|en] [-format text|json]`)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, `  news-search "요즘 반도체 뉴스 알려줘"`)
	fmt.Fprintln(os.Stderr, `  news-search "AI 규제 동향" -max 5`)
	fmt.Fprintln(os.Stderr, `  news-search "climate policy" -lang en -format json`)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

// buildPipeline wires the search pipeline from environment
// configuration. CLI runs keep no history and send no digest.
func buildPipeline(logger *slog.Logger) (*newsUC.Service, budget.Caps) {
	caps := budget.DefaultCaps()

	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(exitPipeline)
	}
	pages, err := fetcher.New(fetchCfg)
	if err != nil {
		logger.Error("failed to build fetcher", slog.Any("error", err))
		os.Exit(exitPipeline)
	}

	rules, err := extract.LoadRulesFromEnv()
	if err != nil {
		logger.Error("failed to load extraction rules", slog.Any("error", err))
		os.Exit(exitPipeline)
	}

	chat, err := llm.NewFromEnv()
	if err != nil {
		logger.Error("failed to build LLM client", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitPipeline)
	}

	summ, err := summarizer.NewFromEnv()
	if err != nil {
		logger.Error("failed to build summarizer", slog.Any("error", err))
		os.Exit(exitPipeline)
	}

	svc, err := newsUC.NewService(
		keyword.NewExtractor(chat),
		registry.New(),
		feed.NewClient(pages, caps.MaxEntriesPerFeed),
		pages,
		extract.NewWithRules(rules),
		summ,
		nil,
		nil,
		caps,
	)
	if err != nil {
		logger.Error("failed to build news service", slog.Any("error", err))
		os.Exit(exitPipeline)
	}
	return svc, caps
}

// exitWithError maps pipeline errors to exit codes: rejected input is a
// usage error, everything else is a pipeline failure.
func exitWithError(err error) {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", vErr)
		os.Exit(exitUsage)
	}

	var fatal newsUC.FatalError
	if errors.As(err, &fatal) {
		fmt.Fprintln(os.Stderr, fatal.UserMessage())
		os.Exit(exitPipeline)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitPipeline)
}

// outputText prints the result in human-readable form.
func outputText(result *newsUC.Result) {
	fmt.Printf("검색어: %s\n", result.Query)
	fmt.Printf("키워드: %s\n", strings.Join(result.Keywords, ", "))
	fmt.Printf("요약 기사 %d건 (%.1fs)\n\n", len(result.Summaries), result.Elapsed.Seconds())

	for i, s := range result.Summaries {
		fmt.Printf("%d. %s\n", i+1, s.Title)
		fmt.Printf("   출처: %s\n", s.Source)
		fmt.Printf("   URL: %s\n", s.URL)
		fmt.Printf("   %s\n", s.Summary)
		fmt.Println()
	}
}

// outputJSON prints the result as indented JSON.
func outputJSON(result *newsUC.Result) {
	out := SearchOutput{
		RequestID:      result.RequestID,
		Query:          result.Query,
		Language:       result.Language,
		Keywords:       result.Keywords,
		Articles:       result.Summaries,
		TotalArticles:  len(result.Summaries),
		Tally:          result.Tally,
		ElapsedSeconds: result.Elapsed.Seconds(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(exitPipeline)
	}
}

// initLogger initializes a structured logger writing to stderr so that
// stdout carries only the result.
func initLogger() *slog.Logger {
	logger := logging.NewCLILogger()
	slog.SetDefault(logger)
	return logger
}

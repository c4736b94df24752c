// Package main provides the CLI for direct article summarization.
// Usage: news-summarize <url...> [-lang ko|en] [-format text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"glbaguni/internal/domain/entity"
	"glbaguni/internal/infra/extract"
	"glbaguni/internal/infra/fetcher"
	"glbaguni/internal/infra/summarizer"
	"glbaguni/internal/observability/logging"
	"glbaguni/internal/pkg/budget"
	newsUC "glbaguni/internal/usecase/news"
)

// Exit codes: 0 on success, 1 when the pipeline fails, 2 on bad usage.
const (
	exitOK       = 0
	exitPipeline = 1
	exitUsage    = 2
)

// SummarizeOutput is the JSON document printed by -format json.
type SummarizeOutput struct {
	RequestID      string                   `json:"request_id"`
	Language       string                   `json:"language"`
	Summaries      []*entity.ArticleSummary `json:"summaries"`
	TotalRequested int                      `json:"total_requested"`
	TotalSummaries int                      `json:"total_summaries"`
	Dropped        map[string]int           `json:"dropped,omitempty"`
	ElapsedSeconds float64                  `json:"elapsed_seconds"`
}

func main() {
	var (
		language     string
		outputFormat string
	)

	flag.StringVar(&language, "lang", "ko", "summary language: ko or en")
	flag.StringVar(&outputFormat, "format", "text", "output format: text or json")
	flag.Usage = usage
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		usage()
		os.Exit(exitUsage)
	}

	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, want text or json\n", outputFormat)
		os.Exit(exitUsage)
	}

	logger := initLogger()
	svc, caps := buildPipeline(logger)

	ctx, cancel := context.WithTimeout(context.Background(), caps.OverallTimeout+5*time.Second)
	defer cancel()

	logger.Info("summarizing articles",
		slog.Int("urls", len(urls)),
		slog.String("language", language))

	result, err := svc.SummarizeArticles(ctx, newsUC.SummarizeRequest{
		URLs:      urls,
		Language:  language,
		RequestID: uuid.New().String(),
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
	fmt.Fprintln(os.Stderr, "Usage: news-summarize <url...> [-lang ko|en] [-format text|json]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  news-summarize https://news.example.co.kr/articles/1")
	fmt.Fprintln(os.Stderr, "  news-summarize -lang en -format json https://a.example.com/x https://b.example.com/y")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

// buildPipeline wires the summarize-only tail of the pipeline. The
// keyword and feed stages never run for explicit URLs, so their
// dependencies stay nil, as do history and the digest dispatcher.
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

	summ, err := summarizer.NewFromEnv()
	if err != nil {
		logger.Error("failed to build summarizer", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitPipeline)
	}

	svc, err := newsUC.NewService(nil, nil, nil, pages, extract.NewWithRules(rules), summ, nil, nil, caps)
	if err != nil {
		logger.Error("failed to build pipeline", slog.Any("error", err))
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
func outputText(result *newsUC.SummarizeResult) {
	fmt.Printf("요약 %d건 / 요청 %d건 (%.1fs)\n\n",
		len(result.Summaries), result.Requested, result.Elapsed.Seconds())

	for i, s := range result.Summaries {
		fmt.Printf("%d. %s\n", i+1, s.Title)
		fmt.Printf("   출처: %s\n", s.Source)
		fmt.Printf("   URL: %s\n", s.URL)
		fmt.Printf("   %s\n", s.Summary)
		fmt.Println()
	}

	for reason, n := range result.Dropped {
		fmt.Printf("제외 %d건: %s\n", n, reason)
	}
}

// outputJSON prints the result as indented JSON.
func outputJSON(result *newsUC.SummarizeResult) {
	out := SummarizeOutput{
		RequestID:      result.RequestID,
		Language:       result.Language,
		Summaries:      result.Summaries,
		TotalRequested: result.Requested,
		TotalSummaries: len(result.Summaries),
		Dropped:        result.Dropped,
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

package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"glbaguni/internal/common/pagination"
	pgRepo "glbaguni/internal/infra/adapter/persistence/postgres"
	"glbaguni/internal/infra/db"
	"glbaguni/internal/infra/extract"
	"glbaguni/internal/infra/feed"
	"glbaguni/internal/infra/fetcher"
	"glbaguni/internal/infra/llm"
	"glbaguni/internal/infra/notifier"
	"glbaguni/internal/infra/registry"
	"glbaguni/internal/infra/summarizer"
	"glbaguni/internal/observability/logging"
	"glbaguni/internal/observability/slo"
	"glbaguni/internal/observability/tracing"
	"glbaguni/internal/pkg/budget"
	"glbaguni/pkg/config"

	histUC "glbaguni/internal/usecase/history"
	"glbaguni/internal/usecase/keyword"
	newsUC "glbaguni/internal/usecase/news"
	"glbaguni/internal/usecase/notify"

	hhttp "glbaguni/internal/handler/http"
	hhistory "glbaguni/internal/handler/http/history"
	hnews "glbaguni/internal/handler/http/news"
	"glbaguni/internal/handler/http/requestid"
	hsource "glbaguni/internal/handler/http/source"

	_ "glbaguni/docs" // swagger docs
)

// @title           글바구니 API
// @version         1.0
// @description     자연어 질의로 한국 언론사 RSS를 수집해 AI 요약을 제공하는 뉴스 검색 API입니다.
// @description     키워드 추출, 피드 수집, 본문 추출, 요약, 검색 이력 조회 기능을 제공합니다.

// @contact.name   API Support

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// pipelineTimeout bounds one search or summarize request end to end.
// It sits above the pipeline's own 60s budget so the usecase, not the
// HTTP layer, is what normally times out.
const pipelineTimeout = 65 * time.Second

func main() {
	logger := initLogger()

	llmCfg := llm.LoadConfig()
	validateLLMCredentials(logger, llmCfg)

	database := initHistoryDB(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close history database", slog.Any("error", err))
			}
		}()
	}

	version := getVersion()
	components := setupServer(logger, database, llmCfg.Provider, version)

	runServer(logger, components, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateLLMCredentials aborts startup when the configured provider has
// no usable API key. Every pipeline request needs the LLM, so a broken
// key should fail here rather than on the first query.
func validateLLMCredentials(logger *slog.Logger, cfg llm.Config) {
	if err := llm.ValidateCredentials(cfg.Provider); err != nil {
		logger.Error("LLM credentials validation failed",
			slog.String("provider", cfg.Provider),
			slog.Any("error", err))
		os.Exit(1)
	}
}

// initHistoryDB opens the optional history database and runs migrations.
// Returns nil when HISTORY_DATABASE_URL is unset; the pipeline runs
// without stored history in that case.
func initHistoryDB(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open history database", slog.Any("error", err))
		os.Exit(1)
	}
	if database == nil {
		return nil
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate history database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler         http.Handler
	Limiter         *hhttp.RateLimiter
	CleanupInterval time.Duration
	Dispatcher      *notify.Dispatcher
}

// setupServer assembles the pipeline and returns the HTTP handler with
// all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, llmProvider, version string) *ServerComponents {
	caps := budget.DefaultCaps()

	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load fetcher configuration", slog.Any("error", err))
		os.Exit(1)
	}
	pages, err := fetcher.New(fetchCfg)
	if err != nil {
		logger.Error("failed to build fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	feeds := feed.NewClient(pages, caps.MaxEntriesPerFeed)

	rules, err := extract.LoadRulesFromEnv()
	if err != nil {
		logger.Error("failed to load extraction rules", slog.Any("error", err))
		os.Exit(1)
	}
	extractor := extract.NewWithRules(rules)

	chat, err := llm.NewFromEnv()
	if err != nil {
		logger.Error("failed to build LLM client", slog.Any("error", err))
		os.Exit(1)
	}
	keywords := keyword.NewExtractor(chat)

	summ, err := summarizer.NewFromEnv()
	if err != nil {
		logger.Error("failed to build summarizer", slog.Any("error", err))
		os.Exit(1)
	}

	reg := registry.New()
	logger.Info("feed registry loaded",
		slog.Int("publishers", len(reg.All())),
		slog.Int("feeds", reg.FeedCount()))

	var histSvc *histUC.Service
	if database != nil {
		histSvc = histUC.NewService(pgRepo.NewHistoryRepo(database))
		logger.Info("search history enabled")
	}

	dispatcher := notify.NewDispatcher(notifier.NewFromEnv(),
		config.GetEnvInt("DIGEST_MAX_WORKERS", 4))

	svc, err := newsUC.NewService(keywords, reg, feeds, pages, extractor, summ, histSvc, dispatcher, caps)
	if err != nil {
		logger.Error("failed to build news service", slog.Any("error", err))
		os.Exit(1)
	}

	rateLimitCfg := config.LoadRateLimitConfig()
	var limiter *hhttp.RateLimiter
	if rateLimitCfg.Enabled {
		limiter = hhttp.NewRateLimiter(rateLimitCfg.Limit, rateLimitCfg.Window)
		logger.Info("rate limiting initialized",
			slog.Int("limit", rateLimitCfg.Limit),
			slog.Duration("window", rateLimitCfg.Window))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mux := setupRoutes(database, version, llmProvider, svc, histSvc, reg, dispatcher)
	handler := applyMiddleware(logger, mux, limiter)

	return &ServerComponents{
		Handler:         handler,
		Limiter:         limiter,
		CleanupInterval: rateLimitCfg.CleanupInterval,
		Dispatcher:      dispatcher,
	}
}

// setupRoutes registers all HTTP routes. Every endpoint is public; the
// service has no user accounts.
func setupRoutes(
	database *sql.DB,
	version string,
	llmProvider string,
	svc *newsUC.Service,
	histSvc *histUC.Service,
	reg *registry.Registry,
	dispatcher *notify.Dispatcher,
) *http.ServeMux {
	mux := http.NewServeMux()

	hnews.Register(mux, svc, pipelineTimeout)
	hhistory.Register(mux, histSvc, pagination.LoadFromEnv())
	hsource.Register(mux, reg)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:          database,
		Registry:    reg,
		Notify:      dispatcher,
		LLMProvider: llmProvider,
		Version:     version,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database, Registry: reg})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Swagger UI
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): CORS → Request ID → Tracing → IP Rate Limit →
// Recovery → Logging → Body Size Limit → Metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler, limiter *hhttp.RateLimiter) http.Handler {
	corsCfg := hhttp.LoadCORSConfig()
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsCfg.AllowedOrigins),
		slog.Any("allowed_methods", corsCfg.AllowedMethods),
		slog.Int("max_age", corsCfg.MaxAge))

	// 안쪽부터 바깥쪽 순서로 감싼다
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	if limiter != nil {
		chain = limiter.Limit(chain)
	}
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = hhttp.CORS(corsCfg)(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.Limiter != nil {
		go components.Limiter.StartCleanup(ctx, components.CleanupInterval)
		logger.Info("rate limit cleanup started",
			slog.Duration("interval", components.CleanupInterval))
	}

	go slo.StartUpdater(ctx, time.Minute)

	addr := config.GetEnvString("SERVER_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Cancel background goroutines (rate limit cleanup)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	// 진행 중인 다이제스트 전송을 마저 보내고 종료한다
	if err := components.Dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("digest dispatcher shutdown failed", slog.Any("error", err))
	}

	logger.Info("server stopped")
}

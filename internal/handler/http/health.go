// Package http provides the REST surface of the news pipeline: search
// and summarize endpoints, history and source listings, health probes,
// and the middleware stack around them.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"glbaguni/internal/infra/registry"
	"glbaguni/internal/observability/metrics"
	"glbaguni/internal/usecase/notify"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus reports one component check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports component health: the LLM configuration, the
// feed registry, the optional history database, and digest delivery.
// History being absent is a configuration, not a failure.
type HealthHandler struct {
	DB          *sql.DB // nil when history is disabled
	Registry    *registry.Registry
	Notify      *notify.Dispatcher
	LLMProvider string
	Version     string
}

// ServeHTTP runs all checks. 200 when the pipeline can serve searches,
// 503 otherwise.
// @Summary      서비스 상태 확인
// @Description  LLM 설정, 피드 레지스트리, 이력 DB, 다이제스트 전송 상태를 반환합니다.
// @Tags         ops
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	checks["llm"] = h.checkLLM()
	if checks["llm"].Status == "unhealthy" {
		allHealthy = false
	}

	checks["registry"] = h.checkRegistry()
	if checks["registry"].Status == "unhealthy" {
		allHealthy = false
	}

	// 이력 DB는 옵션 구성: 없어도 파이프라인은 동작한다
	checks["history"] = h.checkHistory(ctx)
	checks["notifier"] = h.checkNotifier()

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

func (h *HealthHandler) checkLLM() CheckStatus {
	if h.LLMProvider == "" {
		return CheckStatus{
			Status:  "unhealthy",
			Message: "no LLM provider configured",
		}
	}
	return CheckStatus{
		Status:  "healthy",
		Details: map[string]any{"provider": h.LLMProvider},
	}
}

func (h *HealthHandler) checkRegistry() CheckStatus {
	if h.Registry == nil || h.Registry.FeedCount() == 0 {
		return CheckStatus{
			Status:  "unhealthy",
			Message: "feed registry is empty",
		}
	}
	return CheckStatus{
		Status: "healthy",
		Details: map[string]any{
			"publishers": len(h.Registry.All()),
			"feeds":      h.Registry.FeedCount(),
		},
	}
}

func (h *HealthHandler) checkHistory(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{
			Status:  "disabled",
			Message: "history database not configured",
		}
	}

	if err := h.DB.PingContext(ctx); err != nil {
		// 검색 자체는 DB 없이도 동작하므로 degraded로만 표시한다
		return CheckStatus{
			Status:  "degraded",
			Message: "history database unreachable",
		}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
	}

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{
				Status:  "degraded",
				Message: "connection pool utilization above 80%",
				Details: details,
			}
		}
	}

	return CheckStatus{Status: "healthy", Details: details}
}

func (h *HealthHandler) checkNotifier() CheckStatus {
	if h.Notify == nil {
		return CheckStatus{
			Status:  "disabled",
			Message: "digest delivery not configured",
		}
	}

	dh := h.Notify.Health()
	if !dh.Enabled {
		return CheckStatus{
			Status:  "disabled",
			Message: "digest delivery not configured",
		}
	}

	details := map[string]any{
		"cooling_down":         dh.CoolingDown,
		"consecutive_failures": dh.ConsecutiveFailures,
	}
	if dh.CoolingDown {
		details["cooldown_ends_at"] = dh.CooldownEndsAt.UTC().Format(time.RFC3339)
		return CheckStatus{
			Status:  "degraded",
			Message: "deliveries paused after repeated failures",
			Details: details,
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler is the readiness probe. Ready means the registry has
// feeds and the history database, when configured, answers a ping.
type ReadyHandler struct {
	DB       *sql.DB // nil when history is disabled
	Registry *registry.Registry
}

// ServeHTTP answers 200 when traffic can be served.
// @Summary      준비 상태 확인
// @Tags         ops
// @Produce      plain
// @Success      200 {string} string "ready"
// @Failure      503 {string} string "not ready"
// @Router       /ready [get]
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Registry == nil || h.Registry.FeedCount() == 0 {
		http.Error(w, "feed registry is empty", http.StatusServiceUnavailable)
		return
	}
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "history database not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler is the liveness probe.
type LiveHandler struct{}

// ServeHTTP answers 200 whenever the process can respond at all.
// @Summary      생존 확인
// @Tags         ops
// @Produce      plain
// @Success      200 {string} string "alive"
// @Router       /live [get]
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

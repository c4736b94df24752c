package news

import (
	"net/http"
	"time"

	httph "glbaguni/internal/handler/http"
)

// Register mounts the two pipeline endpoints. Both run a multi-stage
// crawl-and-summarize pipeline, so they get a per-route timeout above
// the pipeline's own processing budget.
func Register(mux *http.ServeMux, svc Pipeline, routeTimeout time.Duration) {
	timeout := httph.Timeout(routeTimeout)
	mux.Handle("POST /news/search", timeout(SearchHandler{svc}))
	mux.Handle("POST /summarize", timeout(SummarizeHandler{svc}))
}

package news

import (
	"encoding/json"
	"net/http"

	"glbaguni/internal/handler/http/requestid"
	"glbaguni/internal/handler/http/respond"
	"glbaguni/internal/pkg/sanitize"
	newsUC "glbaguni/internal/usecase/news"
)

type SearchHandler struct{ Svc Pipeline }

// ServeHTTP 뉴스 검색
// @Summary      뉴스 검색
// @Description  자연어 질의에서 키워드를 추출해 등록된 RSS 피드를 수집하고, 기사 본문을 요약해 반환합니다.
// @Tags         news
// @Accept       json
// @Produce      json
// @Param        request body SearchRequest true "검색 요청"
// @Success      200 {object} SearchResponse "검색 결과"
// @Failure      400 {string} string "잘못된 요청"
// @Failure      404 {string} string "관련 뉴스 없음"
// @Failure      429 {string} string "요청 한도 초과"
// @Failure      504 {string} string "처리 시간 초과"
// @Router       /news/search [post]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	query, err := sanitize.Query(req.Query)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.ProcessQuery(r.Context(), newsUC.Request{
		Query:       query,
		MaxArticles: req.MaxArticles,
		Language:    req.Language,
		UserID:      req.UserID,
		RequestID:   requestid.FromContext(r.Context()),
	})
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, SearchResponse{
		RequestID:      result.RequestID,
		Query:          result.Query,
		Language:       result.Language,
		Keywords:       result.Keywords,
		Articles:       result.Summaries,
		TotalArticles:  len(result.Summaries),
		Tally:          result.Tally,
		ElapsedSeconds: result.Elapsed.Seconds(),
		UserID:         req.UserID,
	})
}

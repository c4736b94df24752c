package news

import (
	"encoding/json"
	"errors"
	"net/http"

	"glbaguni/internal/handler/http/requestid"
	"glbaguni/internal/handler/http/respond"
	newsUC "glbaguni/internal/usecase/news"
)

type SummarizeHandler struct{ Svc Pipeline }

// ServeHTTP URL 요약
// @Summary      기사 URL 요약
// @Description  지정한 기사 URL의 본문을 수집해 요약합니다. 키워드 추출과 피드 수집 단계는 거치지 않습니다.
// @Tags         news
// @Accept       json
// @Produce      json
// @Param        request body SummarizeHTTPRequest true "요약 요청"
// @Success      200 {object} SummarizeResponse "요약 결과"
// @Failure      400 {string} string "잘못된 요청"
// @Failure      404 {string} string "요약 가능한 기사 없음"
// @Failure      429 {string} string "요청 한도 초과"
// @Failure      504 {string} string "처리 시간 초과"
// @Router       /summarize [post]
func (h SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req SummarizeHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.URLs) == 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("urls are required"))
		return
	}

	// 기존 클라이언트는 user_id 없이 recipient만 보낸다
	userID := req.UserID
	if userID == "" {
		userID = req.Recipient
	}

	result, err := h.Svc.SummarizeArticles(r.Context(), newsUC.SummarizeRequest{
		URLs:      req.URLs,
		Language:  req.Language,
		UserID:    userID,
		RequestID: requestid.FromContext(r.Context()),
	})
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, SummarizeResponse{
		RequestID:      result.RequestID,
		Language:       result.Language,
		Summaries:      result.Summaries,
		TotalRequested: result.Requested,
		TotalSummaries: len(result.Summaries),
		Dropped:        result.Dropped,
		ElapsedSeconds: result.Elapsed.Seconds(),
		UserID:         req.UserID,
	})
}

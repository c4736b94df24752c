// Package history provides the HTTP handler for the stored search
// history listing.
package history

import (
	"errors"
	"net/http"
	"time"

	"glbaguni/internal/common/pagination"
	"glbaguni/internal/domain/entity"
	"glbaguni/internal/handler/http/respond"
	"glbaguni/internal/pkg/config"
	histUC "glbaguni/internal/usecase/history"
)

// DTO represents one stored history row on the wire.
type DTO struct {
	ID             int64    `json:"id" example:"1"`
	Query          string   `json:"query,omitempty" example:"요즘 반도체 뉴스 알려줘"`
	ArticleTitle   string   `json:"article_title" example:"삼성전자, 2나노 공정 양산 시작"`
	ArticleURL     string   `json:"article_url" example:"https://news.example.co.kr/articles/1"`
	ArticleSource  string   `json:"article_source" example:"연합뉴스"`
	ContentExcerpt string   `json:"content_excerpt,omitempty"`
	SummaryText    string   `json:"summary_text,omitempty"`
	Language       string   `json:"language" example:"ko"`
	Keywords       []string `json:"keywords,omitempty" example:"반도체,뉴스"`
	CreatedAt      string   `json:"created_at" example:"2025-08-10T09:00:00Z"`
}

// ListResponse is the paginated history listing.
type ListResponse struct {
	Data       []DTO               `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}

type ListHandler struct {
	Svc           *histUC.Service
	PaginationCfg pagination.Config
}

// ServeHTTP 검색 이력 조회
// @Summary      검색 이력 조회
// @Description  사용자의 검색 및 요약 이력을 페이지 단위로 반환합니다.
// @Tags         history
// @Produce      json
// @Param        user_id query string true "사용자 ID"
// @Param        language query string false "요약 언어로 필터 (ko, en)"
// @Param        page query int false "페이지 번호 (1부터, 기본 1)"
// @Param        per_page query int false "페이지당 건수 (기본 20, 최대 100)"
// @Success      200 {object} ListResponse "이력 목록"
// @Failure      400 {string} string "잘못된 요청"
// @Failure      503 {string} string "이력 저장소 미구성"
// @Router       /history [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.Enabled() {
		respond.JSON(w, http.StatusServiceUnavailable,
			map[string]string{"error": "history is not configured"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	language := r.URL.Query().Get("language")
	if language != "" {
		if err := config.ValidateLanguage(language); err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	page, err := h.Svc.List(r.Context(), userID, language, params.Page, params.PerPage)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(page.Records))
	for _, rec := range page.Records {
		dtos = append(dtos, toDTO(rec))
	}

	respond.JSON(w, http.StatusOK, ListResponse{
		Data: dtos,
		Pagination: pagination.Metadata{
			Total:      page.TotalItems,
			Page:       page.Page,
			PerPage:    page.PerPage,
			TotalPages: pagination.CalculateTotalPages(page.TotalItems, page.PerPage),
		},
	})
}

func toDTO(rec *entity.SearchRecord) DTO {
	return DTO{
		ID:             rec.ID,
		Query:          rec.Query,
		ArticleTitle:   rec.ArticleTitle,
		ArticleURL:     rec.ArticleURL,
		ArticleSource:  rec.ArticleSource,
		ContentExcerpt: rec.ContentExcerpt,
		SummaryText:    rec.SummaryText,
		Language:       rec.Language,
		Keywords:       rec.Keywords,
		CreatedAt:      rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Register mounts the history listing endpoint.
func Register(mux *http.ServeMux, svc *histUC.Service, paginationCfg pagination.Config) {
	mux.Handle("GET /history", ListHandler{Svc: svc, PaginationCfg: paginationCfg})
}

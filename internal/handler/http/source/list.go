// Package source exposes the feed registry as a read-only listing.
package source

import (
	"net/http"

	"glbaguni/internal/handler/http/respond"
	"glbaguni/internal/infra/registry"
)

// DTO represents one registered publisher on the wire.
type DTO struct {
	Key      string   `json:"key" example:"yonhap"`
	Name     string   `json:"name" example:"연합뉴스"`
	Category string   `json:"category" example:"통신"`
	Feeds    []string `json:"feeds"`
}

// ListResponse is the registry listing with its totals. Categories
// lists the values accepted by the category filter.
type ListResponse struct {
	Publishers []DTO    `json:"publishers"`
	Categories []string `json:"categories" example:"방송,종합,통신"`
	TotalFeeds int      `json:"total_feeds" example:"14"`
}

type ListHandler struct{ Registry *registry.Registry }

// ServeHTTP 뉴스 소스 목록
// @Summary      뉴스 소스 목록
// @Description  검색에 사용하는 언론사와 RSS 피드 목록을 반환합니다. category 파라미터로 분류를 좁힐 수 있습니다.
// @Tags         sources
// @Produce      json
// @Param        category query string false "분류로 필터 (종합, 통신, 방송 등)"
// @Success      200 {object} ListResponse "소스 목록"
// @Router       /sources [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	publishers := h.Registry.All()
	if category := r.URL.Query().Get("category"); category != "" {
		publishers = h.Registry.ByCategory(category)
	}

	out := make([]DTO, 0, len(publishers))
	totalFeeds := 0
	for _, p := range publishers {
		out = append(out, DTO{
			Key: p.Key, Name: p.Name, Category: p.Category,
			Feeds: p.Feeds,
		})
		totalFeeds += len(p.Feeds)
	}
	respond.JSON(w, http.StatusOK, ListResponse{
		Publishers: out,
		Categories: h.Registry.Categories(),
		TotalFeeds: totalFeeds,
	})
}

// Register mounts the registry listing endpoint.
func Register(mux *http.ServeMux, reg *registry.Registry) {
	mux.Handle("GET /sources", ListHandler{Registry: reg})
}

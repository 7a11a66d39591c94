package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/mux"

	"reelview/internal/pagination"
	"reelview/models"
	catalogpkg "reelview/services/catalog"
	"reelview/services/category"
)

// catalogService is the slice of the catalog service the listing handlers
// need.
type catalogService interface {
	FetchList(ctx context.Context, q catalogpkg.ListQuery) models.ResultPage
	Search(ctx context.Context, mediaType, query string, page int) models.ResultPage
	Genres(ctx context.Context, mediaType string) ([]models.Genre, error)
}

var _ catalogService = (*catalogpkg.Service)(nil)

type CatalogHandler struct {
	Service  catalogService
	Resolver *category.Resolver
}

func NewCatalogHandler(s catalogService, resolver *category.Resolver) *CatalogHandler {
	return &CatalogHandler{Service: s, Resolver: resolver}
}

// CategoryResponse is one page of a category listing plus the pagination
// controls to render for it. A 0 in Pages marks an ellipsis.
type CategoryResponse struct {
	Key          string               `json:"key"`
	Title        string               `json:"title"`
	Icon         string               `json:"icon,omitempty"`
	MediaType    string               `json:"mediaType"`
	Query        string               `json:"query,omitempty"`
	Message      string               `json:"message,omitempty"`
	Items        []models.CatalogItem `json:"items"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"totalPages"`
	TotalResults int                  `json:"totalResults"`
	Pages        []int                `json:"pages"`
}

// Category serves GET /api/category/{id}?page=&q=. The id is a known category
// key, a numeric genre id, or the literal "search".
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]
	desc := h.Resolver.Resolve(key)
	page := pagination.ParsePage(r.URL.Query().Get("page"))

	var (
		result models.ResultPage
		query  string
	)

	switch desc.Kind {
	case category.KindList:
		result = h.Service.FetchList(r.Context(), catalogpkg.ListQuery{
			MediaType: desc.MediaType,
			Resource:  desc.Resource,
			Page:      page,
		})
	case category.KindGenre:
		result = h.Service.FetchList(r.Context(), catalogpkg.ListQuery{
			MediaType: desc.MediaType,
			GenreID:   desc.GenreID,
			Page:      page,
		})
	case category.KindSearch:
		query = strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "search query required")
			return
		}
		result = h.Service.Search(r.Context(), catalogpkg.MediaTypeMulti, query, page)
		// Page 0 on the result marks a failed request; a search that
		// succeeded with no matches echoes the upstream page number.
		if result.Page == 0 {
			writeError(w, http.StatusBadGateway, "failed to load search results")
			return
		}
	default:
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	resp := CategoryResponse{
		Key:          desc.Key,
		Title:        desc.Title,
		Icon:         desc.Icon,
		MediaType:    desc.MediaType,
		Query:        query,
		Items:        result.Items,
		Page:         page,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
		Pages:        pagination.Window(page, result.TotalPages),
	}
	if query != "" && result.TotalResults == 0 {
		resp.Message = fmt.Sprintf("no results for %q", query)
	}
	writeJSON(w, http.StatusOK, resp)
}

// searchRequest is the validated query surface of GET /api/search.
type searchRequest struct {
	Query     string
	MediaType string
	Page      int
}

func (q searchRequest) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Query, validation.Required),
		validation.Field(&q.MediaType, validation.In(
			catalogpkg.MediaTypeMovie, catalogpkg.MediaTypeTV, catalogpkg.MediaTypeMulti,
		)),
	)
}

// Search serves GET /api/search?q=&type=&page=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{
		Query:     strings.TrimSpace(r.URL.Query().Get("q")),
		MediaType: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))),
		Page:      pagination.ParsePage(r.URL.Query().Get("page")),
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MediaType == "" {
		req.MediaType = catalogpkg.MediaTypeMulti
	}

	result := h.Service.Search(r.Context(), req.MediaType, req.Query, req.Page)
	if result.Page == 0 {
		writeError(w, http.StatusBadGateway, "failed to load search results")
		return
	}

	resp := CategoryResponse{
		Key:          "search",
		Title:        "Search Results",
		MediaType:    req.MediaType,
		Query:        req.Query,
		Items:        result.Items,
		Page:         req.Page,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalResults,
		Pages:        pagination.Window(req.Page, result.TotalPages),
	}
	if result.TotalResults == 0 {
		resp.Message = fmt.Sprintf("no results for %q", req.Query)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Genres serves GET /api/genres?type= for the navigation chrome.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if mediaType == "" {
		mediaType = catalogpkg.MediaTypeMovie
	}
	if mediaType != catalogpkg.MediaTypeMovie && mediaType != catalogpkg.MediaTypeTV {
		writeError(w, http.StatusBadRequest, "type must be movie or tv")
		return
	}

	genres, err := h.Service.Genres(r.Context(), mediaType)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load genres")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Genre{"genres": genres})
}

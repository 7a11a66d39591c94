package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelview/models"
	catalogpkg "reelview/services/catalog"
	"reelview/services/category"
)

// fakeCatalog records the last query and serves canned pages.
type fakeCatalog struct {
	lastList   catalogpkg.ListQuery
	lastSearch struct {
		mediaType string
		query     string
		page      int
	}
	listResult   models.ResultPage
	searchResult models.ResultPage
	genres       []models.Genre
	genresErr    error
}

func (f *fakeCatalog) FetchList(ctx context.Context, q catalogpkg.ListQuery) models.ResultPage {
	f.lastList = q
	return f.listResult
}

func (f *fakeCatalog) Search(ctx context.Context, mediaType, query string, page int) models.ResultPage {
	f.lastSearch.mediaType = mediaType
	f.lastSearch.query = query
	f.lastSearch.page = page
	return f.searchResult
}

func (f *fakeCatalog) Genres(ctx context.Context, mediaType string) ([]models.Genre, error) {
	return f.genres, f.genresErr
}

func samplePage(page, totalPages, totalResults int, titles ...string) models.ResultPage {
	items := make([]models.CatalogItem, 0, len(titles))
	for i, title := range titles {
		items = append(items, models.CatalogItem{ID: int64(i + 1), Title: title, MediaType: catalogpkg.MediaTypeMovie})
	}
	return models.ResultPage{Items: items, Page: page, TotalPages: totalPages, TotalResults: totalResults}
}

func newCatalogRouter(svc catalogService) *mux.Router {
	h := NewCatalogHandler(svc, category.NewResolver())
	r := mux.NewRouter()
	r.HandleFunc("/api/category/{id}", h.Category).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/genres", h.Genres).Methods(http.MethodGet)
	return r
}

func doRequest(t *testing.T, router *mux.Router, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCategory(t *testing.T, rec *httptest.ResponseRecorder) CategoryResponse {
	t.Helper()
	var resp CategoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCategoryStaticList(t *testing.T) {
	svc := &fakeCatalog{listResult: samplePage(2, 10, 195, "The Matrix", "Inception")}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/trending-movies?page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, catalogpkg.MediaTypeMovie, svc.lastList.MediaType)
	assert.Equal(t, catalogpkg.ResourceTrending, svc.lastList.Resource)
	assert.Equal(t, 2, svc.lastList.Page)

	resp := decodeCategory(t, rec)
	assert.Equal(t, "trending-movies", resp.Key)
	assert.Equal(t, "Trending Movies", resp.Title)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.TotalPages)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, []int{1, 2, 3, 0, 10}, resp.Pages)
}

func TestCategoryGenreID(t *testing.T) {
	svc := &fakeCatalog{listResult: samplePage(1, 3, 55, "Die Hard")}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/28")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(28), svc.lastList.GenreID)
	assert.Empty(t, svc.lastList.Resource)
	assert.Equal(t, 1, svc.lastList.Page)

	resp := decodeCategory(t, rec)
	assert.Equal(t, "Action Movies", resp.Title)
	assert.Equal(t, []int{1, 2, 3}, resp.Pages)
}

func TestCategoryDefaultsBadPageToOne(t *testing.T) {
	svc := &fakeCatalog{listResult: samplePage(1, 1, 1, "Solo")}
	router := newCatalogRouter(svc)

	for _, target := range []string{
		"/api/category/popular-movies?page=abc",
		"/api/category/popular-movies?page=-4",
		"/api/category/popular-movies?page=0",
		"/api/category/popular-movies",
	} {
		doRequest(t, router, target)
		assert.Equal(t, 1, svc.lastList.Page, target)
	}
}

func TestCategoryUnknownKey(t *testing.T) {
	router := newCatalogRouter(&fakeCatalog{})
	rec := doRequest(t, router, "/api/category/definitely-not-a-category")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryEmptyFetchRendersEmptyState(t *testing.T) {
	// List fetches never fail; a degraded fetch shows up as an empty page.
	svc := &fakeCatalog{listResult: models.EmptyResultPage()}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/popular-tv")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCategory(t, rec)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Empty(t, resp.Pages)
}

func TestCategorySearchRequiresQuery(t *testing.T) {
	router := newCatalogRouter(&fakeCatalog{})
	rec := doRequest(t, router, "/api/category/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategorySearchFailureIsBadGateway(t *testing.T) {
	// Page 0 marks a failed search as opposed to an empty one.
	svc := &fakeCatalog{searchResult: models.EmptyResultPage()}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/search?q=batman")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCategorySearchNoResultsMessage(t *testing.T) {
	svc := &fakeCatalog{searchResult: samplePage(1, 0, 0)}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/search?q=zzzzzz")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCategory(t, rec)
	assert.Equal(t, `no results for "zzzzzz"`, resp.Message)
	assert.Empty(t, resp.Items)
}

func TestCategorySearchSuccess(t *testing.T) {
	svc := &fakeCatalog{searchResult: samplePage(1, 2, 25, "Batman", "Batman Begins")}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/category/search?q=batman")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, catalogpkg.MediaTypeMulti, svc.lastSearch.mediaType)
	assert.Equal(t, "batman", svc.lastSearch.query)

	resp := decodeCategory(t, rec)
	assert.Equal(t, "batman", resp.Query)
	assert.Empty(t, resp.Message)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, []int{1, 2}, resp.Pages)
}

func TestSearchEndpoint(t *testing.T) {
	svc := &fakeCatalog{searchResult: samplePage(3, 8, 150, "Alien")}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/search?q=alien&type=movie&page=3")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, catalogpkg.MediaTypeMovie, svc.lastSearch.mediaType)
	assert.Equal(t, 3, svc.lastSearch.page)

	resp := decodeCategory(t, rec)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, []int{1, 2, 3, 4, 0, 8}, resp.Pages)
}

func TestSearchEndpointValidation(t *testing.T) {
	router := newCatalogRouter(&fakeCatalog{})

	rec := doRequest(t, router, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, "/api/search?q=x&type=podcast")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenresEndpoint(t *testing.T) {
	svc := &fakeCatalog{genres: []models.Genre{{ID: 28, Name: "Action"}}}
	router := newCatalogRouter(svc)

	rec := doRequest(t, router, "/api/genres?type=movie")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]models.Genre
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp["genres"], 1)
}

func TestGenresEndpointErrors(t *testing.T) {
	rec := doRequest(t, newCatalogRouter(&fakeCatalog{}), "/api/genres?type=podcast")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc := &fakeCatalog{genresErr: errors.New("upstream down")}
	rec = doRequest(t, newCatalogRouter(svc), "/api/genres")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

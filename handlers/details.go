package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sourcegraph/conc/pool"

	"reelview/internal/pagination"
	"reelview/models"
	catalogpkg "reelview/services/catalog"
)

// detailsService is the slice of the catalog service the detail handlers
// need.
type detailsService interface {
	Details(ctx context.Context, id int64) (*models.TitleDetails, error)
	DetailBundle(ctx context.Context, id int64) (*models.DetailBundle, error)
	Credits(ctx context.Context, mediaType string, id int64) (models.Credits, error)
	Similar(ctx context.Context, mediaType string, id int64, page int) models.ResultPage
	Recommendations(ctx context.Context, mediaType string, id int64, page int) models.ResultPage
	Videos(ctx context.Context, mediaType string, id int64) ([]models.Video, error)
	Reviews(ctx context.Context, mediaType string, id int64, page int) ([]models.Review, error)
	Images(ctx context.Context, mediaType string, id int64) (models.ImageSet, error)
	Keywords(ctx context.Context, mediaType string, id int64) ([]models.Keyword, error)
	WatchProviders(ctx context.Context, mediaType string, id int64) (models.WatchProviders, error)
	Person(ctx context.Context, id int64) (*models.Person, error)
	PersonCredits(ctx context.Context, id int64) (models.PersonCredits, error)
	CuratedList(ctx context.Context, id int64, page int) (*models.CuratedList, error)
}

var _ detailsService = (*catalogpkg.Service)(nil)

type DetailsHandler struct {
	Service detailsService
}

func NewDetailsHandler(s detailsService) *DetailsHandler {
	return &DetailsHandler{Service: s}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// Title serves GET /api/title/{id}: the detail bundle for a movie or series.
// Not-found and upstream failure are distinct states for the view.
func (h *DetailsHandler) Title(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid title id")
		return
	}

	bundle, err := h.Service.DetailBundle(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalogpkg.ErrNotFound) {
			writeError(w, http.StatusNotFound, "title not found")
			return
		}
		log.Printf("[details] bundle for %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load title")
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// Related serves GET /api/title/{id}/{kind}?type=&page= for the sub-resources
// a detail page can lazily load. When the caller does not say whether the id
// is a movie or series, the (cached) detail lookup decides.
func (h *DetailsHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid title id")
		return
	}
	kind := mux.Vars(r)["kind"]
	page := pagination.ParsePage(r.URL.Query().Get("page"))

	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if mediaType != catalogpkg.MediaTypeMovie && mediaType != catalogpkg.MediaTypeTV {
		details, err := h.Service.Details(r.Context(), id)
		if err != nil {
			if errors.Is(err, catalogpkg.ErrNotFound) {
				writeError(w, http.StatusNotFound, "title not found")
				return
			}
			writeError(w, http.StatusBadGateway, "failed to resolve title")
			return
		}
		mediaType = details.MediaType
	}

	ctx := r.Context()
	var (
		payload any
		err     error
	)
	switch kind {
	case "credits":
		payload, err = h.Service.Credits(ctx, mediaType, id)
	case "similar":
		payload = h.Service.Similar(ctx, mediaType, id, page)
	case "recommendations":
		payload = h.Service.Recommendations(ctx, mediaType, id, page)
	case "videos":
		payload, err = h.Service.Videos(ctx, mediaType, id)
	case "reviews":
		payload, err = h.Service.Reviews(ctx, mediaType, id, page)
	case "images":
		payload, err = h.Service.Images(ctx, mediaType, id)
	case "keywords":
		payload, err = h.Service.Keywords(ctx, mediaType, id)
	case "watch-providers":
		payload, err = h.Service.WatchProviders(ctx, mediaType, id)
	default:
		writeError(w, http.StatusNotFound, "unknown sub-resource")
		return
	}
	if err != nil {
		if errors.Is(err, catalogpkg.ErrNotFound) {
			writeError(w, http.StatusNotFound, "title not found")
			return
		}
		log.Printf("[details] %s for %s/%d failed: %v", kind, mediaType, id, err)
		writeError(w, http.StatusBadGateway, "failed to load "+kind)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// PersonResponse is a person's details plus their combined credits.
type PersonResponse struct {
	Person  *models.Person       `json:"person"`
	Credits models.PersonCredits `json:"credits"`
}

// Person serves GET /api/person/{id}. The credits fetch runs alongside the
// details fetch; missing credits degrade to empty lists.
func (h *DetailsHandler) Person(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	resp := PersonResponse{
		Credits: models.PersonCredits{Cast: []models.CatalogItem{}, Crew: []models.CatalogItem{}},
	}
	var personErr error

	p := pool.New().WithContext(r.Context())
	p.Go(func(ctx context.Context) error {
		resp.Person, personErr = h.Service.Person(ctx, id)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		credits, err := h.Service.PersonCredits(ctx, id)
		if err != nil {
			log.Printf("[details] person credits for %d unavailable: %v", id, err)
			return nil
		}
		resp.Credits = credits
		return nil
	})
	_ = p.Wait()

	if personErr != nil {
		if errors.Is(personErr, catalogpkg.ErrNotFound) {
			writeError(w, http.StatusNotFound, "person not found")
			return
		}
		log.Printf("[details] person %d failed: %v", id, personErr)
		writeError(w, http.StatusBadGateway, "failed to load person")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CuratedList serves GET /api/list/{id}?page=.
func (h *DetailsHandler) CuratedList(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid list id")
		return
	}
	page := pagination.ParsePage(r.URL.Query().Get("page"))

	list, err := h.Service.CuratedList(r.Context(), id, page)
	if err != nil {
		if errors.Is(err, catalogpkg.ErrNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		log.Printf("[details] list %d failed: %v", id, err)
		writeError(w, http.StatusBadGateway, "failed to load list")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

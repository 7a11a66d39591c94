package handlers

import (
	"context"
	"net/http"

	"reelview/models"
	catalogpkg "reelview/services/catalog"
)

type homeService interface {
	HomeRows(ctx context.Context) []models.HomeRow
	Configuration() models.UpstreamConfiguration
}

var _ homeService = (*catalogpkg.Service)(nil)

type HomeHandler struct {
	Service homeService
}

func NewHomeHandler(s homeService) *HomeHandler {
	return &HomeHandler{Service: s}
}

// HomeResponse carries the home screen shelves.
type HomeResponse struct {
	Rows []models.HomeRow `json:"rows"`
}

// Home serves GET /api/home.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HomeResponse{Rows: h.Service.HomeRows(r.Context())})
}

// Configuration serves GET /api/configuration: the upstream image settings
// captured during warmup.
func (h *HomeHandler) Configuration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Configuration())
}

// Health serves GET /api/health.
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

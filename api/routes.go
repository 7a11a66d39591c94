package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"reelview/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every response with an X-Request-ID so a failed
// fetch in the frontend can be matched against the server log.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// Register mounts the API endpoints onto the provided router.
func Register(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	detailsHandler *handlers.DetailsHandler,
	homeHandler *handlers.HomeHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)
	api.Use(requestIDMiddleware)

	api.HandleFunc("/health", homeHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/home", homeHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/configuration", homeHandler.Configuration).Methods(http.MethodGet)

	api.HandleFunc("/category/{id}", catalogHandler.Category).Methods(http.MethodGet)
	api.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/genres", catalogHandler.Genres).Methods(http.MethodGet)

	api.HandleFunc("/title/{id:[0-9]+}", detailsHandler.Title).Methods(http.MethodGet)
	api.HandleFunc("/title/{id:[0-9]+}/{kind}", detailsHandler.Related).Methods(http.MethodGet)
	api.HandleFunc("/person/{id:[0-9]+}", detailsHandler.Person).Methods(http.MethodGet)
	api.HandleFunc("/list/{id:[0-9]+}", detailsHandler.CuratedList).Methods(http.MethodGet)

	// CORS preflight for any API path.
	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodOptions)
}

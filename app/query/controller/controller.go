package controller

import (
	"net/http"

	"github.com/canopy-network/statusdim/app/query/types"
	"github.com/gorilla/mux"
)

type Controller struct {
	App *types.App
	// DefaultMode answers requests without a ?mode parameter
	DefaultMode types.Mode
}

// NewController returns a new controller.
func NewController(app *types.App, defaultMode types.Mode) *Controller {
	return &Controller{
		App:         app,
		DefaultMode: defaultMode,
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	r.HandleFunc("/intervals", c.HandleIntervals).Methods(http.MethodGet)
	r.HandleFunc("/entities/{id}/intervals", c.HandleEntityIntervals).Methods(http.MethodGet)
	r.HandleFunc("/entities/{id}/status", c.HandleEntityStatus).Methods(http.MethodGet)

	r.HandleFunc("/reports/inactive", c.HandleEverInactive).Methods(http.MethodGet)
	r.HandleFunc("/reports/active", c.HandleActiveCounts).Methods(http.MethodGet)

	r.HandleFunc("/rebuild", c.HandleRebuild).Methods(http.MethodPost)

	return r, nil
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the page, the JSON API, health and metrics endpoints.
// staticDir is served under /static/ when non-empty.
func NewRouter(h *FusionHandler, staticDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if staticDir != "" {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))),
		).Methods(http.MethodGet)
	}

	session := func(next http.HandlerFunc) http.HandlerFunc {
		return withSession(h.config.SessionTTL, next)
	}

	r.HandleFunc("/", session(h.HandleIndex)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/actions", h.HandleActions).Methods(http.MethodGet)
	api.HandleFunc("/state", session(h.HandleState)).Methods(http.MethodGet)
	api.HandleFunc("/slots/{slot:[0-9]+}", session(h.HandleUpload)).Methods(http.MethodPost)
	api.HandleFunc("/action", session(h.HandleSelectAction)).Methods(http.MethodPost)
	api.HandleFunc("/fuse", session(h.HandleFuse)).Methods(http.MethodPost)
	api.HandleFunc("/reset", session(h.HandleReset)).Methods(http.MethodPost)
	api.HandleFunc("/result", session(h.HandleResult)).Methods(http.MethodGet)

	return r
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jwaldner/mtts/internal/metrics"
)

// NewRouter wires every endpoint of the results service
func NewRouter(h *ResultsHandler, m *metrics.Registry) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(m))

	r.HandleFunc("/", h.StatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/data/results.json", h.PayloadHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/metadata", h.MetadataHandler).Methods(http.MethodGet)
	api.HandleFunc("/columns", h.ColumnsHandler).Methods(http.MethodGet)
	api.HandleFunc("/reload", h.ReloadHandler).Methods(http.MethodPost)

	// legacy trigger used by the screener's own scheduler
	r.HandleFunc("/update", h.ReloadHandler).Methods(http.MethodPost)

	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	return r
}

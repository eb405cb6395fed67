package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/metrics"
	"github.com/jwaldner/mtts/internal/payload"
	"github.com/jwaldner/mtts/internal/table"
)

// ServiceName is reported by the status endpoint
const ServiceName = "mtts"

// ResultsHandler publishes the screener payload and its header
type ResultsHandler struct {
	store   *payload.Store
	metrics *metrics.Registry
}

// NewResultsHandler creates a handler over store
func NewResultsHandler(store *payload.Store, m *metrics.Registry) *ResultsHandler {
	return &ResultsHandler{store: store, metrics: m}
}

// MetadataResponse is the body of GET /api/metadata
type MetadataResponse struct {
	table.PresentedMetadata
	Rows     int    `json:"rows"`
	Pass     int    `json:"pass"`
	Version  uint64 `json:"version"`
	LoadedAt int64  `json:"loaded_at"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn.Printf("⚠️ encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{
		"status": "error",
		"error":  msg,
	})
}

// Reload re-reads the payload source and swaps it in. trigger labels the
// reload in logs and metrics ("startup", "cron", "api").
func (h *ResultsHandler) Reload(ctx context.Context, trigger string) (*payload.Snapshot, error) {
	logger.Info.Printf("🔄 payload reload requested (%s)", trigger)
	snap, err := h.store.Reload(ctx)
	if h.metrics != nil {
		h.metrics.RecordReload(trigger, err)
		if err == nil {
			h.metrics.SetPayload(len(snap.Results.Data), snap.Results.PassCount(), snap.Version, snap.LoadedAt)
		}
	}
	return snap, err
}

// StatusHandler reports the service and the payload timestamp
func (h *ResultsHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	lastUpdate := ""
	if snap := h.store.Current(); snap != nil {
		lastUpdate = snap.Results.Metadata.Timestamp
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "running",
		"service":     ServiceName,
		"last_update": lastUpdate,
	})
}

// HealthHandler is healthy once a payload is loaded
func (h *ResultsHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.store.Current() == nil {
		writeError(w, http.StatusServiceUnavailable, "no payload loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// PayloadHandler serves the payload bytes exactly as loaded
func (h *ResultsHandler) PayloadHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no payload loaded")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Last-Modified", snap.LoadedAt.UTC().Format(http.TimeFormat))
	if _, err := w.Write(snap.Raw); err != nil {
		logger.Warn.Printf("⚠️ write payload: %v", err)
	}
}

// MetadataHandler returns the presented dashboard header
func (h *ResultsHandler) MetadataHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no payload loaded")
		return
	}
	writeJSON(w, http.StatusOK, MetadataResponse{
		PresentedMetadata: table.PresentMetadata(snap.Results.Metadata),
		Rows:              len(snap.Results.Data),
		Pass:              snap.Results.PassCount(),
		Version:           snap.Version,
		LoadedAt:          snap.LoadedAt.Unix(),
	})
}

// ColumnsHandler returns the table column metadata
func (h *ResultsHandler) ColumnsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns":      table.Columns(),
		"criteria":     table.Criteria(),
		"page_sizes":   table.PageSizeOptions,
		"default_sort": table.FormatSortKeys(table.DefaultSortKeys()),
		"default_size": table.DefaultPageSize,
	})
}

// ReloadHandler manually triggers a payload reload
func (h *ResultsHandler) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	snap, err := h.Reload(r.Context(), "api")
	duration := time.Since(startTime)

	if err != nil {
		logger.Error.Printf("❌ payload reload failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "success",
		"message":         "payload reloaded",
		"update_duration": duration.Milliseconds(),
		"version":         snap.Version,
		"rows":            len(snap.Results.Data),
		"pass":            snap.Results.PassCount(),
		"timestamp":       snap.Results.Metadata.Timestamp,
	})
	logger.Info.Printf("✅ payload reload completed in %v", duration)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

type Handler struct {
	source  Pinger
	objects func() int
}

// New returns health handlers. objects reports the size of the loaded
// catalog.
func New(source Pinger, objects func() int) *Handler {
	return &Handler{source: source, objects: objects}
}

// Register mounts /healthz and /readyz on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Liveness)
	mux.HandleFunc("GET /readyz", h.Readiness)
}

// Liveness handles GET /healthz
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz: the data source must answer a ping and
// the catalog must not be empty.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Data source unavailable", err.Error())
		return
	}
	n := h.objects()
	if n == 0 {
		writeError(w, http.StatusServiceUnavailable, "CATALOG_EMPTY", "No objects loaded", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "objects": n})
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

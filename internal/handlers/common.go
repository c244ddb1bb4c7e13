package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shelfkeeper/bibliothek/internal/library"
	"github.com/shelfkeeper/bibliothek/internal/session"
)

const maxBodyBytes = 1 << 20

// GenericError is shown for every failure that is not a rejected input
const GenericError = "Da ist etwas schiefgelaufen. Bitte über \"Zurücksetzen\" den lokalen Zustand neu laden."

type Handler struct {
	sessions *session.Store
	library  *library.Service
}

// New builds the handler. Sessions idle for longer than sessionTTL are
// dropped; a non-positive value uses session.DefaultTTL.
func New(lib *library.Service, sessionTTL time.Duration) *Handler {
	sessions := session.NewStore()
	if sessionTTL > 0 {
		sessions.TTL = sessionTTL
	}
	return &Handler{
		sessions: sessions,
		library:  lib,
	}
}

// Routes returns the complete HTTP handler, wrapped in panic recovery
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", h.HandleBooks)
	mux.HandleFunc("/api/authors", h.HandleAuthors)
	mux.HandleFunc("/api/maintenance/reconcile", h.HandleReconcile)
	mux.HandleFunc("/api/maintenance/backfill", h.HandleBackfill)
	mux.HandleFunc("/api/session/reset", h.HandleReset)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("/", h.HandleStatic)
	return Recover(mux)
}

type errorResponse struct {
	Error string `json:"error"`
	// ResetHint tells the page to offer the reset action
	ResetHint bool `json:"reset_hint,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSONStatus(w, code, errorResponse{Error: message, ResetHint: code >= http.StatusInternalServerError})
}

// writeFailure maps rejected input to 400 and everything else to the
// generic 500 message
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if library.IsValidation(err) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, library.ErrNoLookup) {
		h.writeError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	h.writeError(w, GenericError, http.StatusInternalServerError)
}

// decode reads a JSON body. An empty body leaves v untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter) {
	h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

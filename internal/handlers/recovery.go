package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover turns a panic in next into the generic 500 response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered", "method", r.Method, "path", r.URL.Path, "err", err, "stack", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errorResponse{Error: GenericError, ResetHint: true})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

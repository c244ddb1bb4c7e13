package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w)
		return
	}
	h.sessionFor(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

package handlers

import (
	"net/http"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

type addAuthorRequest struct {
	Name string `json:"name"`
}

type saveAuthorsRequest struct {
	Names []string `json:"names"`
}

func (h *Handler) HandleAuthors(w http.ResponseWriter, r *http.Request) {
	sc := h.sessionFor(w, r)

	switch r.Method {
	case http.MethodGet:
		summaries, err := h.library.Authors(r.Context(), sc)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		if summaries == nil {
			summaries = []models.AuthorSummary{}
		}
		h.writeJSON(w, summaries)
	case http.MethodPost:
		var req addAuthorRequest
		if !h.decode(w, r, &req) {
			return
		}
		if err := h.library.AddAuthor(r.Context(), sc, req.Name); err != nil {
			h.writeFailure(w, r, err)
			return
		}
		h.writeJSONStatus(w, http.StatusCreated, map[string]string{"status": "ok"})
	case http.MethodPut:
		var req saveAuthorsRequest
		if !h.decode(w, r, &req) {
			return
		}
		n, err := h.library.SaveAuthors(r.Context(), sc, req.Names)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		h.writeJSON(w, map[string]int{"saved": n})
	default:
		h.methodNotAllowed(w)
	}
}

package handlers

import (
	"net/http"

	"github.com/shelfkeeper/bibliothek/internal/models"
)

type addBookRequest struct {
	Entry  string `json:"entry"`
	Rating int    `json:"rating"`
}

type deleteBooksRequest struct {
	Titles []string `json:"titles"`
}

func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	sc := h.sessionFor(w, r)

	switch r.Method {
	case http.MethodGet:
		// the first page load of a session tidies up the store
		h.library.MaintainOnce(r.Context(), sc)

		books, err := h.library.Search(r.Context(), sc, r.URL.Query().Get("q"))
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		if books == nil {
			books = []models.Book{}
		}
		h.writeJSON(w, books)
	case http.MethodPost:
		var req addBookRequest
		if !h.decode(w, r, &req) {
			return
		}
		res, err := h.library.AddBook(r.Context(), sc, req.Entry, req.Rating)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		h.writeJSONStatus(w, http.StatusCreated, res)
	case http.MethodDelete:
		var req deleteBooksRequest
		if !h.decode(w, r, &req) {
			return
		}
		n, err := h.library.DeleteBooks(r.Context(), sc, req.Titles)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		h.writeJSON(w, map[string]int{"deleted": n})
	default:
		h.methodNotAllowed(w)
	}
}

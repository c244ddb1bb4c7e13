package handlers

import (
	"net/http"

	"github.com/shelfkeeper/bibliothek/internal/backfill"
)

type backfillRequest struct {
	// All lifts the batch limit
	All           bool `json:"all"`
	RetryNotFound bool `json:"retry_not_found"`
}

func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}
	sc := h.sessionFor(w, r)

	res, err := h.library.Reconcile(r.Context(), sc)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, res)
}

func (h *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}
	sc := h.sessionFor(w, r)

	var req backfillRequest
	if !h.decode(w, r, &req) {
		return
	}
	opts := backfill.Options{RetryNotFound: req.RetryNotFound}
	if !req.All {
		opts.Limit = h.library.BackfillBatch
	}

	res, err := h.library.Backfill(r.Context(), sc, opts)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, res)
}

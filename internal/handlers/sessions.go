package handlers

import (
	"net/http"

	"github.com/shelfkeeper/bibliothek/internal/session"
)

const SessionCookie = "bibliothek_session"

// sessionFor returns the caller's context, issuing a new cookie when the
// request has none or names an unknown session
func (h *Handler) sessionFor(w http.ResponseWriter, r *http.Request) *session.Context {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sc, created := h.sessions.Ensure(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sc.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sc
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}
	sc := h.sessionFor(w, r)
	sc.Reset()
	h.writeJSON(w, map[string]string{"status": "ok"})
}

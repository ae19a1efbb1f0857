package handler

import (
	"net/http"

	"medsync/internal/auth"
	"medsync/internal/meds"
)

// sessionFrom resolves the caller's lifecycle-store session, hydrating it on
// first use. Writes the error response itself on failure.
func sessionFrom(w http.ResponseWriter, r *http.Request, sessions *meds.Manager) (*meds.Session, bool) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	s, err := sessions.Load(r.Context(), email)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

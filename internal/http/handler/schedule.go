package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medsync/internal/meds"
)

type ScheduleHandler struct {
	Sessions *meds.Manager
}

// List returns the schedule, generating today's entries first when the user
// has medications but none scheduled.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Schedule(r.Context()))
}

type markDoseReq struct {
	Status string `json:"status"`
}

func (h *ScheduleHandler) MarkDose(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	var req markDoseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err := s.MarkDose(r.Context(), chi.URLParam(r, "id"), meds.DoseStatus(req.Status))
	if errors.Is(err, meds.ErrInvalidStatus) {
		http.Error(w, "status must be taken or skipped", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"medsync/internal/meds"
)

type DashboardHandler struct {
	Sessions *meds.Manager
}

type dashboardDTO struct {
	ActiveMeds   int               `json:"activeMeds"`
	TakenToday   int               `json:"takenToday"`
	PendingToday int               `json:"pendingToday"`
	SkippedToday int               `json:"skippedToday"`
	Adherence    int               `json:"adherence"`
	LowStock     []meds.Medication `json:"lowStock"`
}

// Stats derives the dashboard view: today's dose counts, adherence percentage
// and the low-stock list.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	today := meds.DateOf(time.Now())
	out := dashboardDTO{LowStock: []meds.Medication{}}

	for _, m := range s.Medications() {
		if m.Active {
			out.ActiveMeds++
		}
		if meds.LowStock(m) {
			out.LowStock = append(out.LowStock, m)
		}
	}

	total := 0
	for _, e := range s.Schedule(r.Context()) {
		if e.Date != today {
			continue
		}
		total++
		switch e.Status {
		case meds.DoseTaken:
			out.TakenToday++
		case meds.DosePending:
			out.PendingToday++
		case meds.DoseSkipped:
			out.SkippedToday++
		}
	}

	out.Adherence = 100
	if total > 0 {
		out.Adherence = int(math.Round(float64(out.TakenToday) / float64(total) * 100))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

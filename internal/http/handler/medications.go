package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"medsync/internal/meds"
)

type MedicationHandler struct {
	Sessions *meds.Manager
}

// medicationReq is the write shape for create and update. Business validation
// happens here, at the calling boundary; the lifecycle store assumes it.
type medicationReq struct {
	Name            string  `json:"name"`
	GenericName     string  `json:"genericName"`
	FormType        string  `json:"formType"`
	Dosage          string  `json:"dosage"`
	Frequency       string  `json:"frequency"`
	MealRelation    string  `json:"mealRelation"`
	Instructions    string  `json:"instructions"`
	NextDose        *string `json:"nextDose"` // RFC3339 optional
	ImageURL        string  `json:"imageUrl"`
	InitialQuantity int     `json:"initialQuantity"`
	CurrentQuantity int     `json:"currentQuantity"`
}

func (req *medicationReq) toMedication() (meds.Medication, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return meds.Medication{}, errors.New("name required")
	}

	form := meds.FormType(req.FormType)
	if !form.Valid() {
		return meds.Medication{}, errors.New("unknown formType")
	}
	meal := meds.MealRelation(req.MealRelation)
	if !meal.Valid() {
		return meds.Medication{}, errors.New("unknown mealRelation")
	}
	if req.InitialQuantity < 0 || req.CurrentQuantity < 0 {
		return meds.Medication{}, errors.New("quantities must not be negative")
	}

	var nextDose *time.Time
	if req.NextDose != nil && strings.TrimSpace(*req.NextDose) != "" {
		t, err := time.Parse(time.RFC3339, *req.NextDose)
		if err != nil {
			return meds.Medication{}, errors.New("invalid nextDose (RFC3339)")
		}
		nextDose = &t
	}

	return meds.Medication{
		Name:            req.Name,
		GenericName:     strings.TrimSpace(req.GenericName),
		FormType:        form,
		Dosage:          strings.TrimSpace(req.Dosage),
		Frequency:       strings.TrimSpace(req.Frequency),
		MealRelation:    meal,
		Instructions:    strings.TrimSpace(req.Instructions),
		NextDose:        nextDose,
		ImageURL:        strings.TrimSpace(req.ImageURL),
		InitialQuantity: req.InitialQuantity,
		CurrentQuantity: req.CurrentQuantity,
		Active:          true,
	}, nil
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Medications())
}

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	var req medicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	med, err := req.toMedication()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	med.ID = meds.NewMedicationID()

	s.AddMedication(r.Context(), med)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(med)
}

func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, found := s.Medication(id); !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req medicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	med, err := req.toMedication()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	med.ID = id

	s.UpdateMedication(r.Context(), med)
	w.WriteHeader(http.StatusNoContent)
}

func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	s.DeleteMedication(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type refillReq struct {
	Amount int `json:"amount"`
}

func (h *MedicationHandler) Refill(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	var req refillReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	updated, err := s.RefillMedication(r.Context(), chi.URLParam(r, "id"), req.Amount)
	switch {
	case errors.Is(err, meds.ErrInvalidAmount):
		http.Error(w, "amount must be a positive integer", http.StatusBadRequest)
		return
	case errors.Is(err, meds.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
}

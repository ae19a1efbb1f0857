package meds

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormType is the physical form of a medication.
type FormType string

const (
	FormPill      FormType = "pill"
	FormTablet    FormType = "tablet"
	FormCapsule   FormType = "capsule"
	FormInhaler   FormType = "inhaler"
	FormSyrup     FormType = "syrup"
	FormInjection FormType = "injection"
	FormCream     FormType = "cream"
	FormDrops     FormType = "drops"
	FormOther     FormType = "other"
)

func (f FormType) Valid() bool {
	switch f {
	case FormPill, FormTablet, FormCapsule, FormInhaler, FormSyrup,
		FormInjection, FormCream, FormDrops, FormOther:
		return true
	}
	return false
}

// Ingestible reports whether a meal relation is meaningful for this form.
func (f FormType) Ingestible() bool {
	switch f {
	case FormPill, FormTablet, FormCapsule, FormSyrup, FormDrops:
		return true
	case FormInhaler, FormInjection, FormCream, FormOther:
		return false
	}
	return false
}

// MealRelation says when a dose should be taken relative to meals.
type MealRelation string

const (
	MealBefore  MealRelation = "Before Meal"
	MealAfter   MealRelation = "After Meal"
	MealWith    MealRelation = "With Meal"
	MealAnytime MealRelation = "Anytime"
	MealEmpty   MealRelation = "Empty Stomach"
)

func (m MealRelation) Valid() bool {
	switch m {
	case MealBefore, MealAfter, MealWith, MealAnytime, MealEmpty, "":
		return true
	}
	return false
}

// DoseStatus is the state of a single schedule entry.
type DoseStatus string

const (
	DosePending DoseStatus = "pending"
	DoseTaken   DoseStatus = "taken"
	DoseSkipped DoseStatus = "skipped"
)

func (s DoseStatus) Valid() bool {
	switch s {
	case DosePending, DoseTaken, DoseSkipped:
		return true
	}
	return false
}

// Medication is one tracked prescription or OTC item.
//
// JSON tags match the persisted snapshot shape, so a snapshot written by one
// session hydrates unchanged in the next.
type Medication struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	GenericName     string       `json:"genericName,omitempty"`
	FormType        FormType     `json:"formType"`
	Dosage          string       `json:"dosage"`
	CurrentQuantity int          `json:"currentQuantity"`
	InitialQuantity int          `json:"initialQuantity"`
	Frequency       string       `json:"frequency"`
	MealRelation    MealRelation `json:"mealRelation,omitempty"`
	Instructions    string       `json:"instructions,omitempty"`
	NextDose        *time.Time   `json:"nextDose,omitempty"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	Active          bool         `json:"active"`
}

// NewMedicationID returns a fresh opaque id. Ids are never reused.
func NewMedicationID() string {
	return uuid.NewString()
}

// ScheduleEntry is one planned dose event for one medication on one calendar
// date. Time is a local "HH:MM" label, Date an ISO calendar date; neither
// carries a timezone.
type ScheduleEntry struct {
	ID           string     `json:"id"`
	MedicationID string     `json:"medicationId"`
	Time         string     `json:"time"`
	Date         string     `json:"date"`
	Status       DoseStatus `json:"status"`
}

func newEntryID(medicationID string, now time.Time) string {
	return fmt.Sprintf("sch_%s_%d", medicationID, now.UnixNano())
}

// DateOf formats t as the schedule's calendar-date key.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// Snapshot is the persisted state pair for one user.
type Snapshot struct {
	Medications []Medication    `json:"medications"`
	Schedule    []ScheduleEntry `json:"schedule"`
}

package meds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEntryFor(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 30, 0, 0, time.Local)

	t.Run("fallback time without next dose", func(t *testing.T) {
		m := Medication{ID: "med-1", Active: true}
		e := defaultEntryFor(m, day)
		assert.Equal(t, "09:00", e.Time)
		assert.Equal(t, "2026-08-29", e.Date)
		assert.Equal(t, DosePending, e.Status)
		assert.Equal(t, "med-1", e.MedicationID)
	})

	t.Run("time label from next dose", func(t *testing.T) {
		next := time.Date(2026, 8, 29, 18, 5, 0, 0, time.Local)
		m := Medication{ID: "med-2", NextDose: &next, Active: true}
		e := defaultEntryFor(m, day)
		assert.Equal(t, "18:05", e.Time)
	})
}

func TestBulkGenerateFor(t *testing.T) {
	day := time.Date(2026, 8, 29, 7, 0, 0, 0, time.Local)
	medications := []Medication{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
		{ID: "c", Active: true},
	}

	entries := bulkGenerateFor(medications, day)
	require.Len(t, entries, 2)

	ids := []string{entries[0].MedicationID, entries[1].MedicationID}
	assert.Equal(t, []string{"a", "c"}, ids)
	for _, e := range entries {
		assert.Equal(t, DosePending, e.Status)
		assert.Equal(t, "2026-08-29", e.Date)
	}
}

func TestBulkGenerateForEmpty(t *testing.T) {
	assert.Empty(t, bulkGenerateFor(nil, time.Now()))
}

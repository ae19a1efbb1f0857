package meds

import "time"

// fallbackTime is the dose time used when a medication carries no nextDose
// hint.
const fallbackTime = "09:00"

// defaultEntryFor builds the single pending entry created for a medication on
// the given day. The time label comes from the medication's nextDose when
// present, formatted to local "HH:MM".
func defaultEntryFor(m Medication, day time.Time) ScheduleEntry {
	label := fallbackTime
	if m.NextDose != nil {
		label = m.NextDose.Local().Format("15:04")
	}
	return ScheduleEntry{
		ID:           newEntryID(m.ID, day),
		MedicationID: m.ID,
		Time:         label,
		Date:         DateOf(day),
		Status:       DosePending,
	}
}

// bulkGenerateFor derives a full day's entries, one per active medication.
// Callers must only invoke it against an empty schedule; the generator itself
// does not deduplicate.
func bulkGenerateFor(medications []Medication, day time.Time) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(medications))
	for _, m := range medications {
		if !m.Active {
			continue
		}
		entries = append(entries, defaultEntryFor(m, day))
	}
	return entries
}

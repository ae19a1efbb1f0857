package meds

import "time"

// starterMedications gives a brand-new user something to explore before they
// add their own. Quantities and dosing mirror common prescriptions.
func starterMedications(now time.Time) []Medication {
	morning := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
	evening := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	return []Medication{
		{
			ID:              NewMedicationID(),
			Name:            "Lisinopril",
			GenericName:     "Lisinopril",
			FormType:        FormTablet,
			Dosage:          "10mg",
			CurrentQuantity: 14,
			InitialQuantity: 30,
			Frequency:       "Daily",
			MealRelation:    MealWith,
			Instructions:    "Take with food in the morning",
			NextDose:        &morning,
			Active:          true,
		},
		{
			ID:              NewMedicationID(),
			Name:            "Metformin",
			FormType:        FormPill,
			Dosage:          "500mg",
			CurrentQuantity: 45,
			InitialQuantity: 60,
			Frequency:       "2x Daily",
			MealRelation:    MealAfter,
			Instructions:    "Take with evening meal",
			NextDose:        &evening,
			Active:          true,
		},
	}
}

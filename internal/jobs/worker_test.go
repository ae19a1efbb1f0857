package jobs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertTemplate(t *testing.T) {
	p := LowStockPayload{
		MedicationID:    "med-1",
		Name:            "Lisinopril",
		Dosage:          "10mg",
		CurrentQuantity: 6,
		InitialQuantity: 30,
	}

	var buf bytes.Buffer
	require.NoError(t, alertPlainTemplate.Execute(&buf, p))

	out := buf.String()
	assert.Contains(t, out, "Lisinopril (10mg)")
	assert.Contains(t, out, "6 of 30 doses left")
}

func TestAlertTemplateWithoutDosage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, alertPlainTemplate.Execute(&buf, LowStockPayload{Name: "Metformin", CurrentQuantity: 2, InitialQuantity: 60}))
	assert.Contains(t, buf.String(), "Metformin: 2 of 60")
}

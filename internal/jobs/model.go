package jobs

import "time"

type Job struct {
	ID    uint64 `gorm:"primaryKey"`
	Email string `gorm:"index;not null"`

	Type    string `gorm:"type:text;not null"` // LOW_STOCK_ALERT
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED/CANCELLED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// LowStockPayload is the LOW_STOCK_ALERT job body: enough medication state to
// render the alert without re-reading the snapshot.
type LowStockPayload struct {
	MedicationID    string `json:"medication_id"`
	Name            string `json:"name"`
	Dosage          string `json:"dosage,omitempty"`
	CurrentQuantity int    `json:"current_quantity"`
	InitialQuantity int    `json:"initial_quantity"`
}

package meds

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotStore is the persistence boundary: one snapshot per user identity.
// The in-memory session stays authoritative; Save failures are surfaced so the
// caller can log them, but never roll back state.
type SnapshotStore interface {
	Load(ctx context.Context, email string) (Snapshot, bool, error)
	Save(ctx context.Context, email string, snap Snapshot) error
}

// SnapshotRecord is the gorm row backing SnapshotStore.
type SnapshotRecord struct {
	ID        uint64          `gorm:"primaryKey"`
	Email     string          `gorm:"uniqueIndex;not null"`
	Data      json.RawMessage `gorm:"type:jsonb;not null;default:'{}'::jsonb"`
	UpdatedAt time.Time       `gorm:"not null;default:now()"`
}

func (SnapshotRecord) TableName() string { return "user_snapshots" }

// DBSnapshotStore persists snapshots as one jsonb row per user email.
type DBSnapshotStore struct {
	DB *gorm.DB
}

func (s *DBSnapshotStore) Load(ctx context.Context, email string) (Snapshot, bool, error) {
	var rec SnapshotRecord
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *DBSnapshotStore) Save(ctx context.Context, email string, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	rec := SnapshotRecord{Email: email, Data: b, UpdatedAt: time.Now()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

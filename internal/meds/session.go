package meds

import (
	"context"
	"errors"
	"sync"
	"time"

	"medsync/internal/logger"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid dose status")
)

// MessageRole identifies the author of an assistant chat message.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// Message is one turn of the assistant conversation. The log is session-scoped
// and not persisted.
type Message struct {
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// AlertSink receives low-stock notifications raised by dose consumption.
type AlertSink interface {
	EnqueueLowStock(ctx context.Context, email string, m Medication) error
}

// Session is the lifecycle store for one signed-in user: the sole mutation
// surface over the medication and schedule collections. All operations run to
// completion under the session lock, so no caller ever observes intermediate
// state. Every mutation writes the snapshot through to the SnapshotStore;
// write failures are logged and the in-memory state stays authoritative.
type Session struct {
	mu sync.Mutex

	email       string
	medications []Medication
	schedule    []ScheduleEntry
	messages    []Message

	store  SnapshotStore
	alerts AlertSink
	log    *logger.Logger
	now    func() time.Time
}

// Email returns the owning user identity.
func (s *Session) Email() string { return s.email }

// Medications returns a copy of the medication collection.
func (s *Session) Medications() []Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Medication, len(s.medications))
	copy(out, s.medications)
	return out
}

// Schedule returns a copy of the schedule, bulk-generating today's entries
// first when the user has medications but an empty schedule.
func (s *Session) Schedule(ctx context.Context) []ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureScheduleLocked(ctx)
	out := make([]ScheduleEntry, len(s.schedule))
	copy(out, s.schedule)
	return out
}

// Medication looks up one medication by id.
func (s *Session) Medication(id string) (Medication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.medications {
		if m.ID == id {
			return m, true
		}
	}
	return Medication{}, false
}

// AddMedication appends the medication and creates exactly one pending
// schedule entry dated today. Business validation (non-empty name, known form
// type) is the caller's job.
func (s *Session) AddMedication(ctx context.Context, m Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.medications = append(s.medications, m)
	s.schedule = append(s.schedule, defaultEntryFor(m, now))
	s.persistLocked(ctx)
}

// UpdateMedication replaces the medication with the matching id. Existing
// schedule entries are left untouched. Unknown ids are absorbed as no-ops.
func (s *Session) UpdateMedication(ctx context.Context, m Medication) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.medications {
		if s.medications[i].ID == m.ID {
			s.medications[i] = m
			s.persistLocked(ctx)
			return
		}
	}
}

// DeleteMedication removes the medication and cascades to every schedule
// entry referencing it. Both removals happen as one state transition under the
// session lock, so orphaned entries are never visible.
func (s *Session) DeleteMedication(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.medications[:0]
	found := false
	for _, m := range s.medications {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return
	}
	s.medications = kept

	entries := s.schedule[:0]
	for _, e := range s.schedule {
		if e.MedicationID != id {
			entries = append(entries, e)
		}
	}
	s.schedule = entries

	s.persistLocked(ctx)

	// Deleting the last entries for the day re-triggers generation for the
	// remaining medications.
	s.ensureScheduleLocked(ctx)
}

// RefillMedication applies a replenishment to the medication's inventory.
// Unknown ids are no-ops; non-positive amounts are rejected.
func (s *Session) RefillMedication(ctx context.Context, id string, amount int) (Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.medications {
		if s.medications[i].ID != id {
			continue
		}
		updated, err := Replenish(s.medications[i], amount)
		if err != nil {
			return Medication{}, err
		}
		s.medications[i] = updated
		s.persistLocked(ctx)
		return updated, nil
	}
	return Medication{}, ErrNotFound
}

// MarkDose transitions a schedule entry to taken or skipped.
//
// Inventory is deducted exactly once per transition into taken: re-confirming
// an already-taken dose does not deduct again, and skipping a taken dose does
// not refund the unit. No entry ever returns to pending.
func (s *Session) MarkDose(ctx context.Context, scheduleID string, status DoseStatus) error {
	if status != DoseTaken && status != DoseSkipped {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.schedule {
		if s.schedule[i].ID != scheduleID {
			continue
		}

		if status == DoseTaken && s.schedule[i].Status != DoseTaken {
			s.consumeLocked(ctx, s.schedule[i].MedicationID)
		}
		s.schedule[i].Status = status
		s.persistLocked(ctx)
		return nil
	}

	// Unknown ids are internally generated and should not occur; absorb.
	return nil
}

// Messages returns a copy of the assistant conversation log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendMessage records one turn of the assistant conversation.
func (s *Session) AppendMessage(role MessageRole, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := Message{Role: role, Text: text, Timestamp: s.now()}
	s.messages = append(s.messages, msg)
	return msg
}

// Snapshot returns the persistable state pair.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Medications: make([]Medication, len(s.medications)),
		Schedule:    make([]ScheduleEntry, len(s.schedule)),
	}
	copy(snap.Medications, s.medications)
	copy(snap.Schedule, s.schedule)
	return snap
}

// consumeLocked deducts one unit from the referenced medication. A missing
// medication leaves inventory untouched; the status change still applies.
func (s *Session) consumeLocked(ctx context.Context, medicationID string) {
	for i := range s.medications {
		if s.medications[i].ID != medicationID {
			continue
		}
		before := s.medications[i]
		after := Consume(before)
		s.medications[i] = after

		if s.alerts != nil && !LowStock(before) && LowStock(after) {
			if err := s.alerts.EnqueueLowStock(ctx, s.email, after); err != nil {
				s.log.Error("enqueue low-stock alert", "email", s.email, "medication", after.ID, "err", err)
			}
		}
		return
	}
}

// ensureScheduleLocked bulk-generates today's entries when the user has
// medications but no schedule at all. The emptiness check is the duplicate
// guard; generation itself never deduplicates.
func (s *Session) ensureScheduleLocked(ctx context.Context) {
	if len(s.medications) == 0 || len(s.schedule) != 0 {
		return
	}
	s.schedule = bulkGenerateFor(s.medications, s.now())
	s.persistLocked(ctx)
}

func (s *Session) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.email, s.snapshotLocked()); err != nil {
		s.log.Error("snapshot write-through failed", "email", s.email, "err", err)
	}
}

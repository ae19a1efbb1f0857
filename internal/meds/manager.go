package meds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medsync/internal/logger"
)

// Manager owns the live sessions, one per signed-in user identity. Load
// hydrates a session from the snapshot store (seeding starter data for
// brand-new users); Unload drops the in-memory state on logout while the
// persisted snapshot survives for the next login.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store  SnapshotStore
	alerts AlertSink
	log    *logger.Logger
	now    func() time.Time
}

func NewManager(store SnapshotStore, alerts AlertSink, log *logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		alerts:   alerts,
		log:      log,
		now:      time.Now,
	}
}

// Load returns the live session for email, hydrating it on first use.
func (mg *Manager) Load(ctx context.Context, email string) (*Session, error) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	if s, ok := mg.sessions[email]; ok {
		return s, nil
	}

	s := &Session{
		email:  email,
		store:  mg.store,
		alerts: mg.alerts,
		log:    mg.log,
		now:    mg.now,
	}

	if mg.store != nil {
		snap, ok, err := mg.store.Load(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("hydrate session for %s: %w", email, err)
		}
		if ok {
			s.medications = snap.Medications
			s.schedule = snap.Schedule
		} else {
			s.medications = starterMedications(mg.now())
		}
	}

	s.mu.Lock()
	s.ensureScheduleLocked(ctx)
	s.mu.Unlock()

	mg.sessions[email] = s
	return s, nil
}

// Unload clears the in-memory session for email. The persisted snapshot is
// untouched and rehydrates the next Load.
func (mg *Manager) Unload(email string) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	delete(mg.sessions, email)
}

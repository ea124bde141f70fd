package session

import (
	"context"
	"sync"
	"time"

	"enterprise-portal/internal/store"

	"github.com/google/uuid"
)

type entry struct {
	mu     sync.Mutex
	ctrl   *Controller
	loaded bool
	used   time.Time
}

// Manager holds one Controller per browser session. Calls for the same sid
// run one at a time; different sessions proceed in parallel.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps, sessions: make(map[string]*entry), now: time.Now}
}

// New returns a fresh session id.
func (m *Manager) New() string {
	return uuid.NewString()
}

// With runs fn against the controller for sid, rehydrating it from the
// durable slot the first time the sid is seen by this process.
func (m *Manager) With(ctx context.Context, sid string, fn func(*Controller) error) error {
	e := m.entry(sid)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		if err := e.ctrl.Rehydrate(ctx); err != nil {
			return err
		}
		e.loaded = true
	}
	return fn(e.ctrl)
}

// Forget drops the in-memory controller for sid.
func (m *Manager) Forget(sid string) {
	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()
}

// Sweep drops controllers unused for longer than maxIdle. State survives in
// the durable slot and is rehydrated on the next request.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for sid, e := range m.sessions {
		if e.used.Before(cutoff) {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed
}

// PruneRecords deletes durable session records last written more than ttl
// ago. Their cookies have expired by then. Slots without prune support are
// left alone.
func (m *Manager) PruneRecords(ctx context.Context, ttl time.Duration) (int, error) {
	pruner, ok := m.deps.Slot.(store.Pruner)
	if !ok {
		return 0, nil
	}
	return pruner.Prune(ctx, KeyPrefix+":", m.now().Add(-ttl))
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) entry(sid string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sid]
	if !ok {
		e = &entry{ctrl: NewController(sid, m.deps)}
		m.sessions[sid] = e
	}
	e.used = m.now()
	return e
}

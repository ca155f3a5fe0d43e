// internal/store/memory.go
//
// In-memory session store for the HTTP mode.
//
// Characteristics:
//   - One *Session (one engine) per client, keyed by a UUID.
//   - Map guarded by an RWMutex; each Session carries its own mutex so engine
//     operations on one session are serialized without blocking the others.
//   - State is lost when the process restarts. Sessions idle longer than the
//     configured TTL are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/lemonle/internal/game"
)

var ErrNotFound = errors.New("store: session not found")

// Session is one client's game. Lock it around every engine call.
type Session struct {
	sync.Mutex
	ID        string
	Engine    *game.Engine
	CreatedAt time.Time
	Round     int // incremented by every reset

	lastSeen time.Time
}

// Touch marks the session as used now. Call with the session locked.
func (s *Session) Touch() { s.lastSeen = time.Now() }

// Store defines the persistence interface for sessions.
type Store interface {
	// Create registers a new session for a fresh engine.
	Create(ctx context.Context, solution game.Word) (*Session, error)

	// Get retrieves a session by ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session; unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions idle for longer than ttl and reports how many.
	Sweep(ctx context.Context, ttl time.Duration) int

	// Len reports the number of live sessions.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Create(ctx context.Context, solution game.Word) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Engine:    game.New(solution),
		CreatedAt: now,
		lastSeen:  now,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		s.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.Unlock()
		if idle {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

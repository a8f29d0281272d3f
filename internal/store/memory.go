// internal/store/memory.go
//
// In-memory registry of user sessions. Each user session owns a scope that
// maps game IDs to game sessions (a game.Store).
//
// Characteristics:
//   - Scopes are created on first access and dropped after an idle TTL.
//   - Operations on one scope are serialized by a per-scope mutex; distinct
//     user sessions proceed concurrently.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alfabetiza/internal/game"
)

// Store gives handlers serialized access to a user session's game state.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Do runs fn with the scope of sessionID, creating it if needed.
	// No other Do for the same session runs concurrently.
	Do(ctx context.Context, sessionID string, fn func(game.Store) error) error

	// Drop ends a session and discards its state.
	Drop(ctx context.Context, sessionID string) error
}

// scope is one user's game sessions.
type scope struct {
	mu       sync.Mutex // serializes game operations for this user session
	games    game.MapStore
	lastSeen time.Time
}

// Memory is the map-based Store implementation.
type Memory struct {
	mu     sync.RWMutex      // guards scopes
	scopes map[string]*scope // keyed by session ID
	ttl    time.Duration     // idle lifetime; zero keeps scopes forever
	now    func() time.Time
}

// NewMemoryStore constructs an empty registry whose sessions expire after ttl
// of inactivity.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{
		scopes: make(map[string]*scope),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Do looks up or creates the scope and runs fn under its lock.
func (m *Memory) Do(ctx context.Context, sessionID string, fn func(game.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		sc := m.scope(sessionID)
		sc.mu.Lock()
		if m.registered(sessionID, sc) {
			defer sc.mu.Unlock()
			sc.lastSeen = m.now()
			return fn(sc.games)
		}
		// Swept or dropped while we waited for the lock.
		sc.mu.Unlock()
	}
}

// registered reports whether sc is still the live scope for sessionID.
func (m *Memory) registered(sessionID string, sc *scope) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scopes[sessionID] == sc
}

// scope returns the scope for sessionID, creating it on first use.
func (m *Memory) scope(sessionID string) *scope {
	m.mu.RLock()
	sc, ok := m.scopes[sessionID]
	m.mu.RUnlock()
	if ok {
		return sc
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sc, ok := m.scopes[sessionID]; ok {
		return sc
	}
	sc = &scope{games: game.MapStore{}, lastSeen: m.now()}
	m.scopes[sessionID] = sc
	return sc
}

// Drop removes the session's scope. Dropping an unknown session is not an error.
func (m *Memory) Drop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes, sessionID)
	return nil
}

// Len reports the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scopes)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed. A scope currently inside Do is skipped.
func (m *Memory) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sc := range m.scopes {
		if !sc.mu.TryLock() {
			continue
		}
		idle := sc.lastSeen.Before(cutoff)
		sc.mu.Unlock()
		if idle {
			delete(m.scopes, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (m *Memory) Janitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Int("live", m.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// internal/game/types.go
//
// Core type definitions for the game session state machine.
// Defines:
//   - Status: four-valued feedback state (new/playing/correct/wrong).
//   - Session: state for one game within one user session.
//   - Store: the per-user session scope the engine reads and writes.

package game

import (
	"errors"

	"github.com/robalobadob/alfabetiza/internal/catalog"
)

// Status drives UI feedback for a game session.
//
//	new → playing → {correct, wrong}
//	wrong → playing    (retry)
//	correct → playing  (next challenge, via a fresh draw)
type Status string

const (
	StatusNew     Status = "new"
	StatusPlaying Status = "playing"
	StatusCorrect Status = "correct"
	StatusWrong   Status = "wrong"
)

var (
	// ErrConfiguration marks an unusable catalog: empty challenge list or a
	// record missing the field an operation needs.
	ErrConfiguration = errors.New("game: configuration error")

	// ErrPrecondition marks an operation invoked out of order: uninitialized
	// session or no current challenge.
	ErrPrecondition = errors.New("game: precondition failed")
)

// Session holds the state of one mini-game for one user session.
// Attempt and Remaining are only used by token-assembly games; together they
// always hold exactly the current challenge's tokens.
type Session struct {
	GameID     string
	Challenges []catalog.Challenge // Full catalog for this game, never mutated.
	Status     Status
	Attempt    []string // Tokens placed so far, in placement order.
	Remaining  []string // Shuffled tokens not yet placed.

	current int // index into Challenges; -1 before the first draw
}

// Current returns the active challenge, if one has been drawn.
func (s *Session) Current() (catalog.Challenge, bool) {
	if s.current < 0 || s.current >= len(s.Challenges) {
		return catalog.Challenge{}, false
	}
	return s.Challenges[s.current], true
}

// Store is a session-scoped mapping from game ID to game session.
// It survives across requests of one user session and is discarded when the
// session ends.
type Store interface {
	Get(gameID string) (*Session, bool)
	Set(gameID string, s *Session)
	Has(gameID string) bool
}

// MapStore is the plain map implementation of Store.
type MapStore map[string]*Session

func (m MapStore) Get(gameID string) (*Session, bool) {
	s, ok := m[gameID]
	return s, ok
}

func (m MapStore) Set(gameID string, s *Session) { m[gameID] = s }

func (m MapStore) Has(gameID string) bool {
	_, ok := m[gameID]
	return ok
}

// internal/game/engine.go
//
// Game session state machine shared by every mini-game.
// Responsibilities:
//   - Initialize a game session once per (user session, game ID).
//   - Draw challenges at random without immediate repetition.
//   - Check free-text answers (trimmed, case-insensitive).
//   - Token assembly for sentence games: place, clear, check (trimmed, case-sensitive).
//
// Notes:
//   - The engine owns no state; every call reads and writes through a Store.
//   - Randomness is injected so tests can seed it.
//   - Callers serialize operations per user session (see internal/store).

package game

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/alfabetiza/internal/catalog"
)

// answerLanguage is the fixed language answers are case-folded in.
var answerLanguage = language.BrazilianPortuguese

// Rand is the random source used for draws and shuffles.
// *math/rand.Rand satisfies it but is not safe for concurrent use; share one
// only in single-goroutine tests.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// globalRand uses the process-wide math/rand source, which is safe for
// concurrent use.
type globalRand struct{}

func (globalRand) Intn(n int) int                     { return rand.Intn(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Engine applies state transitions to game sessions.
type Engine struct {
	rng Rand
}

// NewEngine returns an engine drawing from rng, or from the global source if rng is nil.
func NewEngine(rng Rand) *Engine {
	if rng == nil {
		rng = globalRand{}
	}
	return &Engine{rng: rng}
}

// Initialize creates the session for gameID with status new and no current
// challenge. It is a no-op when the session already exists, so repeated
// renders keep in-progress state.
func (e *Engine) Initialize(st Store, gameID string, challenges []catalog.Challenge) error {
	if st.Has(gameID) {
		return nil
	}
	if len(challenges) == 0 {
		return fmt.Errorf("%w: game %q has no challenges", ErrConfiguration, gameID)
	}
	st.Set(gameID, &Session{
		GameID:     gameID,
		Challenges: slices.Clone(challenges),
		Status:     StatusNew,
		current:    -1,
	})
	return nil
}

// DrawChallenge picks a challenge uniformly at random and starts playing it.
//
// With more than one challenge the draw is resampled until it differs from
// the current one. That only excludes an immediate repeat: with two
// challenges play alternates, with more a challenge may come back after one
// other.
func (e *Engine) DrawChallenge(st Store, gameID string) (catalog.Challenge, error) {
	s, err := lookup(st, gameID)
	if err != nil {
		return catalog.Challenge{}, err
	}
	n := len(s.Challenges)
	if n == 0 {
		return catalog.Challenge{}, fmt.Errorf("%w: game %q has no challenges", ErrConfiguration, gameID)
	}

	i := e.rng.Intn(n)
	if n > 1 {
		for i == s.current {
			i = e.rng.Intn(n)
		}
	}
	s.current = i
	s.Status = StatusPlaying
	return s.Challenges[i], nil
}

// SubmitAnswer compares the user's text with the current challenge's correct
// answer after trimming and lowercasing both. Internal spacing and
// punctuation are compared as-is. A solved challenge only moves on through a
// new draw, so answering it again is a precondition error.
func (e *Engine) SubmitAnswer(st Store, gameID, answer string) (bool, error) {
	s, cur, err := lookupUnsolved(st, gameID)
	if err != nil {
		return false, err
	}
	if cur.Correct == "" {
		return false, fmt.Errorf("%w: challenge %q has no correct answer", ErrConfiguration, cur.ID)
	}

	ok := normalizeAnswer(answer) == normalizeAnswer(cur.Correct)
	s.Status = verdict(ok)
	return ok, nil
}

// Retry takes a wrong answer back to playing. Any other status is left alone.
func (e *Engine) Retry(st Store, gameID string) error {
	s, _, err := lookupCurrent(st, gameID)
	if err != nil {
		return err
	}
	if s.Status == StatusWrong {
		s.Status = StatusPlaying
	}
	return nil
}

// normalizeAnswer trims surrounding whitespace and lowercases in pt-BR.
// A Caser is not safe for concurrent use, so one is built per call.
func normalizeAnswer(s string) string {
	return cases.Lower(answerLanguage).String(strings.TrimSpace(s))
}

func verdict(ok bool) Status {
	if ok {
		return StatusCorrect
	}
	return StatusWrong
}

// lookup returns the initialized session for gameID.
func lookup(st Store, gameID string) (*Session, error) {
	s, ok := st.Get(gameID)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: game %q not initialized", ErrPrecondition, gameID)
	}
	return s, nil
}

// lookupCurrent returns the session and its current challenge.
func lookupCurrent(st Store, gameID string) (*Session, catalog.Challenge, error) {
	s, err := lookup(st, gameID)
	if err != nil {
		return nil, catalog.Challenge{}, err
	}
	cur, ok := s.Current()
	if !ok {
		return nil, catalog.Challenge{}, fmt.Errorf("%w: game %q has no current challenge", ErrPrecondition, gameID)
	}
	return s, cur, nil
}

// lookupUnsolved is lookupCurrent for operations that may not touch a solved
// challenge.
func lookupUnsolved(st Store, gameID string) (*Session, catalog.Challenge, error) {
	s, cur, err := lookupCurrent(st, gameID)
	if err != nil {
		return nil, catalog.Challenge{}, err
	}
	if s.Status == StatusCorrect {
		return nil, catalog.Challenge{}, fmt.Errorf("%w: game %q: challenge %q already solved", ErrPrecondition, gameID, cur.ID)
	}
	return s, cur, nil
}

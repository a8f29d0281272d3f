// internal/game/scramble.go
//
// Sentence assembly on top of the base state machine: the answer is built by
// placing tokens one at a time instead of typing it.

package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robalobadob/alfabetiza/internal/catalog"
)

// InitializeScramble initializes the session and makes sure the attempt and
// remaining token lists exist. Existing lists are kept.
func (e *Engine) InitializeScramble(st Store, gameID string, challenges []catalog.Challenge) error {
	if err := e.Initialize(st, gameID, challenges); err != nil {
		return err
	}
	s, err := lookup(st, gameID)
	if err != nil {
		return err
	}
	if s.Attempt == nil {
		s.Attempt = []string{}
	}
	if s.Remaining == nil {
		s.Remaining = []string{}
	}
	return nil
}

// SetupChallenge draws a new challenge and deals its tokens shuffled into
// Remaining, with an empty Attempt.
func (e *Engine) SetupChallenge(st Store, gameID string) (catalog.Challenge, error) {
	cur, err := e.DrawChallenge(st, gameID)
	if err != nil {
		return catalog.Challenge{}, err
	}
	s, err := lookup(st, gameID)
	if err != nil {
		return catalog.Challenge{}, err
	}
	s.Remaining = e.shuffled(cur.Tokens)
	s.Attempt = []string{}
	// Set even though the draw did: a challenge may carry no tokens.
	s.Status = StatusPlaying
	return cur, nil
}

// PlaceToken moves one occurrence of token from Remaining to the end of
// Attempt. A token that is not in Remaining (a stale click after a reset) is
// ignored, and so is any placement once the sentence is solved.
func (e *Engine) PlaceToken(st Store, gameID, token string) error {
	s, err := lookup(st, gameID)
	if err != nil {
		return err
	}
	i := slices.Index(s.Remaining, token)
	if i < 0 || s.Status == StatusCorrect {
		return nil
	}
	s.Remaining = slices.Delete(s.Remaining, i, i+1)
	s.Attempt = append(s.Attempt, token)
	s.Status = StatusPlaying
	return nil
}

// ClearAttempt puts every token back into Remaining in a fresh order and
// empties Attempt. Used for "clear" and for "try again" after a wrong check.
func (e *Engine) ClearAttempt(st Store, gameID string) error {
	s, cur, err := lookupUnsolved(st, gameID)
	if err != nil {
		return err
	}
	s.Remaining = e.shuffled(cur.Tokens)
	s.Attempt = []string{}
	s.Status = StatusPlaying
	return nil
}

// SubmitAssembled joins Attempt with single spaces and compares it with the
// challenge's sentence. Only surrounding whitespace is ignored: capitalization
// and punctuation tokens are part of the answer.
func (e *Engine) SubmitAssembled(st Store, gameID string) (bool, error) {
	s, cur, err := lookupUnsolved(st, gameID)
	if err != nil {
		return false, err
	}
	if cur.Correct == "" {
		return false, fmt.Errorf("%w: challenge %q has no correct sentence", ErrConfiguration, cur.ID)
	}

	candidate := strings.TrimSpace(strings.Join(s.Attempt, " "))
	ok := candidate == strings.TrimSpace(cur.Correct)
	s.Status = verdict(ok)
	return ok, nil
}

// shuffled returns a random permutation of tokens without touching the input.
func (e *Engine) shuffled(tokens []string) []string {
	out := slices.Clone(tokens)
	if out == nil {
		out = []string{}
	}
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

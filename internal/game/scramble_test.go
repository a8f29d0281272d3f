package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/alfabetiza/internal/catalog"
)

var catMilk = catalog.Challenge{
	ID:      "gato_leite",
	Tokens:  []string{"O", "gato", "bebe", "leite", "."},
	Correct: "O gato bebe leite .",
}

// setupScramble returns a store holding one scramble game with its challenge dealt.
func setupScramble(t *testing.T, e *Engine, challenges ...catalog.Challenge) (MapStore, *Session) {
	t.Helper()
	st := MapStore{}
	require.NoError(t, e.InitializeScramble(st, "scramble", challenges))
	_, err := e.SetupChallenge(st, "scramble")
	require.NoError(t, err)
	s, ok := st.Get("scramble")
	require.True(t, ok)
	return st, s
}

// assertConserved checks attempt+remaining is a permutation of the challenge tokens.
func assertConserved(t *testing.T, s *Session) {
	t.Helper()
	cur, ok := s.Current()
	require.True(t, ok)
	got := append(slices.Clone(s.Attempt), s.Remaining...)
	slices.Sort(got)
	want := slices.Clone(cur.Tokens)
	slices.Sort(want)
	assert.Equal(t, want, got)
}

func TestInitializeScramble(t *testing.T) {
	t.Parallel()
	e, st := seeded(), MapStore{}
	require.NoError(t, e.InitializeScramble(st, "scramble", []catalog.Challenge{catMilk}))
	s, _ := st.Get("scramble")
	assert.Equal(t, StatusNew, s.Status)
	assert.NotNil(t, s.Attempt)
	assert.Empty(t, s.Attempt)
	assert.NotNil(t, s.Remaining)
	assert.Empty(t, s.Remaining)

	_, err := e.SetupChallenge(st, "scramble")
	require.NoError(t, err)
	require.NoError(t, e.PlaceToken(st, "scramble", "O"))
	require.NoError(t, e.InitializeScramble(st, "scramble", []catalog.Challenge{catMilk}))
	assert.Equal(t, []string{"O"}, s.Attempt, "re-initializing keeps the attempt")
	assert.Len(t, s.Remaining, 4)
}

func TestSetupChallengeDealsShuffledTokens(t *testing.T) {
	t.Parallel()
	_, s := setupScramble(t, seeded(), catMilk)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Empty(t, s.Attempt)
	assert.Len(t, s.Remaining, len(catMilk.Tokens))
	assertConserved(t, s)
	assert.Equal(t, []string{"O", "gato", "bebe", "leite", "."}, catMilk.Tokens, "catalog tokens untouched")
}

func TestSetupChallengeWithoutTokens(t *testing.T) {
	t.Parallel()
	_, s := setupScramble(t, seeded(), catalog.Challenge{ID: "empty", Correct: ""})
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Empty(t, s.Remaining)
	assert.Empty(t, s.Attempt)
}

func TestAssembleInOrder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		order []string
		want  bool
	}{
		{name: "correct order", order: []string{"O", "gato", "bebe", "leite", "."}, want: true},
		{name: "swapped words", order: []string{"gato", "O", "bebe", "leite", "."}, want: false},
		{name: "partial", order: []string{"O", "gato"}, want: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := seeded()
			st, s := setupScramble(t, e, catMilk)
			for _, tok := range tc.order {
				require.NoError(t, e.PlaceToken(st, "scramble", tok))
				assertConserved(t, s)
			}

			got, err := e.SubmitAssembled(st, "scramble")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			if tc.want {
				assert.Equal(t, StatusCorrect, s.Status)
			} else {
				assert.Equal(t, StatusWrong, s.Status)
			}
		})
	}
}

func TestSubmitAssembledIsCaseSensitive(t *testing.T) {
	t.Parallel()
	lower := catalog.Challenge{ID: "lower", Tokens: []string{"o", "gato", "bebe", "leite", "."}, Correct: "O gato bebe leite ."}
	e := seeded()
	st, s := setupScramble(t, e, lower)
	for _, tok := range lower.Tokens {
		require.NoError(t, e.PlaceToken(st, "scramble", tok))
	}
	ok, err := e.SubmitAssembled(st, "scramble")
	require.NoError(t, err)
	assert.False(t, ok, "free-text answers fold case; assembled sentences do not")
	assert.Equal(t, StatusWrong, s.Status)
}

func TestPlaceTokenNotRemaining(t *testing.T) {
	t.Parallel()
	e := seeded()
	st, s := setupScramble(t, e, catMilk)
	require.NoError(t, e.PlaceToken(st, "scramble", "O"))

	attempt, remaining := slices.Clone(s.Attempt), slices.Clone(s.Remaining)
	require.NoError(t, e.PlaceToken(st, "scramble", "O"), "already placed")
	require.NoError(t, e.PlaceToken(st, "scramble", "cachorro"), "never in the sentence")

	assert.Equal(t, attempt, s.Attempt)
	assert.Equal(t, remaining, s.Remaining)
}

func TestPlaceTokenRemovesOneDuplicate(t *testing.T) {
	t.Parallel()
	dup := catalog.Challenge{
		ID:      "nao_nao",
		Tokens:  []string{"Não", ",", "não", ",", "não", "."},
		Correct: "Não , não , não .",
	}
	e := seeded()
	st, s := setupScramble(t, e, dup)

	require.NoError(t, e.PlaceToken(st, "scramble", "não"))
	assert.Equal(t, []string{"não"}, s.Attempt)
	assert.Equal(t, 1, countOf(s.Remaining, "não"))
	assert.Equal(t, 2, countOf(s.Remaining, ","))
	assertConserved(t, s)

	require.NoError(t, e.PlaceToken(st, "scramble", ","))
	assert.Equal(t, 1, countOf(s.Remaining, ","))
	assertConserved(t, s)
}

func TestClearAttemptAfterWrong(t *testing.T) {
	t.Parallel()
	e := seeded()
	st, s := setupScramble(t, e, catMilk)
	for _, tok := range []string{"gato", "O", "bebe", "leite", "."} {
		require.NoError(t, e.PlaceToken(st, "scramble", tok))
	}
	ok, err := e.SubmitAssembled(st, "scramble")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, StatusWrong, s.Status)

	require.NoError(t, e.ClearAttempt(st, "scramble"))
	assert.Empty(t, s.Attempt)
	assert.Len(t, s.Remaining, len(catMilk.Tokens))
	assert.Equal(t, StatusPlaying, s.Status)
	assertConserved(t, s)
}

func TestPlaceTokenResetsStatus(t *testing.T) {
	t.Parallel()
	e := NewEngine(&seqRand{ints: []int{0}})
	st, s := setupScramble(t, e, catMilk)
	require.NoError(t, e.PlaceToken(st, "scramble", "gato"))
	_, err := e.SubmitAssembled(st, "scramble")
	require.NoError(t, err)
	require.Equal(t, StatusWrong, s.Status)

	require.NoError(t, e.PlaceToken(st, "scramble", "O"))
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, []string{"gato", "O"}, s.Attempt)
}

func TestNextChallengeRedeals(t *testing.T) {
	t.Parallel()
	other := catalog.Challenge{ID: "bola_azul", Tokens: []string{"A", "bola", "é", "azul", "."}, Correct: "A bola é azul ."}
	e := seeded()
	st, s := setupScramble(t, e, catMilk, other)
	first, _ := s.Current()
	require.NoError(t, e.PlaceToken(st, "scramble", first.Tokens[0]))

	next, err := e.SetupChallenge(st, "scramble")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Empty(t, s.Attempt)
	assertConserved(t, s)
}

func countOf(xs []string, x string) int {
	n := 0
	for _, v := range xs {
		if v == x {
			n++
		}
	}
	return n
}

func TestSolvedSentenceIsFrozen(t *testing.T) {
	t.Parallel()
	e := seeded()
	st, s := setupScramble(t, e, catMilk)
	for _, tok := range catMilk.Tokens {
		require.NoError(t, e.PlaceToken(st, "scramble", tok))
	}
	ok, err := e.SubmitAssembled(st, "scramble")
	require.NoError(t, err)
	require.True(t, ok)

	// Even with a token on the table, nothing moves once solved.
	s.Remaining = []string{"leite"}
	require.NoError(t, e.PlaceToken(st, "scramble", "leite"))
	assert.Equal(t, StatusCorrect, s.Status)
	assert.Equal(t, catMilk.Tokens, s.Attempt)

	assert.ErrorIs(t, e.ClearAttempt(st, "scramble"), ErrPrecondition)
	_, err = e.SubmitAssembled(st, "scramble")
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, StatusCorrect, s.Status)
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	games := c.Games()
	require.Len(t, games, 4)
	for _, g := range games {
		assert.NotEmpty(t, g.Challenges, g.ID)
	}

	g, ok := c.Game("scramble_sentence")
	require.True(t, ok)
	assert.Equal(t, ModeScramble, g.Mode)
	assert.False(t, g.Mode.FreeText())

	_, ok = c.Game("nope")
	assert.False(t, ok)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"games": [{"id": "g", "mode": "naming", "challenges": [{"id": "a", "image": "a.jpg", "correct": "a"}]}]
	}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Games(), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "game without id", doc: `{"games":[{"mode":"naming","challenges":[{"id":"a","image":"x","correct":"a"}]}]}`},
		{name: "unknown mode", doc: `{"games":[{"id":"g","mode":"quiz","challenges":[{"id":"a","correct":"a"}]}]}`},
		{name: "no challenges", doc: `{"games":[{"id":"g","mode":"naming","challenges":[]}]}`},
		{name: "naming without image", doc: `{"games":[{"id":"g","mode":"naming","challenges":[{"id":"a","correct":"a"}]}]}`},
		{name: "missing correct", doc: `{"games":[{"id":"g","mode":"dictation","challenges":[{"id":"a","sentence":"Oi."}]}]}`},
		{name: "choice with one option", doc: `{"games":[{"id":"g","mode":"choice","challenges":[{"id":"a","image":"x","prompt":"_","options":["A"],"correct":"A","full_word":"A"}]}]}`},
		{name: "choice correct not offered", doc: `{"games":[{"id":"g","mode":"choice","challenges":[{"id":"a","image":"x","prompt":"_","options":["A","B"],"correct":"C","full_word":"C"}]}]}`},
		{name: "scramble tokens mismatch", doc: `{"games":[{"id":"g","mode":"scramble","challenges":[{"id":"a","tokens":["O","gato"],"correct":"O cão"}]}]}`},
		{name: "scramble empty token", doc: `{"games":[{"id":"g","mode":"scramble","challenges":[{"id":"a","tokens":["O",""],"correct":"O "}]}]}`},
		{name: "duplicate challenge", doc: `{"games":[{"id":"g","mode":"naming","challenges":[{"id":"a","image":"x","correct":"a"},{"id":"a","image":"y","correct":"b"}]}]}`},
		{name: "duplicate game", doc: `{"games":[
			{"id":"g","mode":"naming","challenges":[{"id":"a","image":"x","correct":"a"}]},
			{"id":"g","mode":"naming","challenges":[{"id":"b","image":"x","correct":"b"}]}]}`},
		{name: "letter without word", doc: `{"letters":[{"letter":"A"}]}`},
		{name: "syllables without vowels", doc: `{"syllables":{"consonants":["B"]}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestGameReturnsCopy(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	g, _ := c.Game("complete_word")
	g.Challenges[0].Correct = "XX"

	again, _ := c.Game("complete_word")
	assert.Equal(t, "SA", again.Challenges[0].Correct)
}

func TestLettersAndSyllables(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	l, ok := c.Letter("b")
	require.True(t, ok)
	assert.Equal(t, "Bola", l.Word)
	_, ok = c.Letter("Z")
	assert.False(t, ok)

	syl, ok := c.Syllable("b", "a")
	require.True(t, ok)
	assert.Equal(t, "BA", syl)
	_, ok = c.Syllable("A", "B")
	assert.False(t, ok)

	s := c.Syllables()
	assert.Len(t, s.Vowels, 5)
	assert.Contains(t, s.Consonants, "X")
}

// internal/catalog/catalog.go
//
// Challenge catalog for the literacy games.
//
// Responsibilities:
//   - Decode the catalog document (letters, syllables, games).
//   - Validate every challenge against the fields its game mode needs.
//   - Load from an override file (CATALOG_FILE) or fall back to the embedded default.
//
// Modes:
//   - choice:    pick the missing syllable (image, prompt, options, correct, full_word).
//   - naming:    type the name of the pictured object (image, correct).
//   - dictation: write the sentence that was read aloud (sentence, correct).
//   - scramble:  order word tokens into a sentence (tokens, correct).
//
// The catalog is immutable once loaded; callers receive copies of slices.

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/robalobadob/alfabetiza/assets"
)

// ErrMalformed is returned for catalog documents that cannot be served:
// missing required fields, empty games, duplicate IDs.
var ErrMalformed = errors.New("catalog: malformed")

// Mode selects how a game's challenges are answered.
type Mode string

const (
	ModeChoice    Mode = "choice"
	ModeNaming    Mode = "naming"
	ModeDictation Mode = "dictation"
	ModeScramble  Mode = "scramble"
)

// FreeText reports whether answers in this mode are typed or picked strings
// (as opposed to assembled from tokens).
func (m Mode) FreeText() bool { return m != ModeScramble }

// Challenge is one task of a game. Which fields are populated depends on the mode.
type Challenge struct {
	ID       string   `json:"id" validate:"required"`
	Image    string   `json:"image,omitempty" validate:"required"`
	Prompt   string   `json:"prompt,omitempty" validate:"required"`
	Options  []string `json:"options,omitempty" validate:"required,min=2,dive,required"`
	Correct  string   `json:"correct" validate:"required"`
	FullWord string   `json:"full_word,omitempty" validate:"required"`
	Sentence string   `json:"sentence,omitempty" validate:"required"`
	Tokens   []string `json:"tokens,omitempty" validate:"required,min=1,dive,required"`
}

// requiredFields lists, per mode, the Challenge fields that must validate.
var requiredFields = map[Mode][]string{
	ModeChoice:    {"ID", "Image", "Prompt", "Options", "Correct", "FullWord"},
	ModeNaming:    {"ID", "Image", "Correct"},
	ModeDictation: {"ID", "Sentence", "Correct"},
	ModeScramble:  {"ID", "Tokens", "Correct"},
}

// Game is a named mini-game and its ordered challenge list.
type Game struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Mode       Mode        `json:"mode"`
	Challenges []Challenge `json:"challenges"`
}

// Letter pairs a letter of the alphabet with an example word.
type Letter struct {
	Letter string `json:"letter" validate:"required"`
	Word   string `json:"word" validate:"required"`
	Emoji  string `json:"emoji,omitempty"`
	Image  string `json:"image,omitempty"`
}

// Syllables holds the consonants and vowels offered by the syllable builder.
type Syllables struct {
	Consonants []string `json:"consonants" validate:"required,min=1,dive,required"`
	Vowels     []string `json:"vowels" validate:"required,min=1,dive,required"`
}

// Catalog is the full, validated content set.
type Catalog struct {
	letters   []Letter
	syllables Syllables
	games     []Game
	byID      map[string]int
}

type document struct {
	Letters   []Letter  `json:"letters"`
	Syllables Syllables `json:"syllables"`
	Games     []Game    `json:"games"`
}

var validate = validator.New()

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = assets.Catalog()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for i := range doc.Letters {
		if err := validate.Struct(&doc.Letters[i]); err != nil {
			return nil, fmt.Errorf("%w: letter %d: %v", ErrMalformed, i, err)
		}
	}
	if len(doc.Syllables.Consonants) > 0 || len(doc.Syllables.Vowels) > 0 {
		if err := validate.Struct(&doc.Syllables); err != nil {
			return nil, fmt.Errorf("%w: syllables: %v", ErrMalformed, err)
		}
	}

	c := &Catalog{
		letters:   doc.Letters,
		syllables: doc.Syllables,
		games:     doc.Games,
		byID:      make(map[string]int, len(doc.Games)),
	}
	for i, g := range doc.Games {
		if err := validateGame(g); err != nil {
			return nil, err
		}
		if _, dup := c.byID[g.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate game %q", ErrMalformed, g.ID)
		}
		c.byID[g.ID] = i
	}
	return c, nil
}

// validateGame checks game-level shape and every challenge for its mode.
func validateGame(g Game) error {
	if g.ID == "" {
		return fmt.Errorf("%w: game without id", ErrMalformed)
	}
	fields, ok := requiredFields[g.Mode]
	if !ok {
		return fmt.Errorf("%w: game %q: unknown mode %q", ErrMalformed, g.ID, g.Mode)
	}
	if len(g.Challenges) == 0 {
		return fmt.Errorf("%w: game %q has no challenges", ErrMalformed, g.ID)
	}
	seen := make(map[string]struct{}, len(g.Challenges))
	for i := range g.Challenges {
		ch := &g.Challenges[i]
		if err := validate.StructPartial(ch, fields...); err != nil {
			return fmt.Errorf("%w: game %q challenge %d (%q): %v", ErrMalformed, g.ID, i, ch.ID, err)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: game %q: duplicate challenge %q", ErrMalformed, g.ID, ch.ID)
		}
		seen[ch.ID] = struct{}{}

		switch g.Mode {
		case ModeChoice:
			if !slices.Contains(ch.Options, ch.Correct) {
				return fmt.Errorf("%w: game %q challenge %q: correct %q not among options",
					ErrMalformed, g.ID, ch.ID, ch.Correct)
			}
		case ModeScramble:
			if strings.Join(ch.Tokens, " ") != strings.TrimSpace(ch.Correct) {
				return fmt.Errorf("%w: game %q challenge %q: tokens do not join to %q",
					ErrMalformed, g.ID, ch.ID, ch.Correct)
			}
		}
	}
	return nil
}

// Game returns a copy of the game with the given ID.
func (c *Catalog) Game(id string) (Game, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Game{}, false
	}
	g := c.games[i]
	g.Challenges = slices.Clone(g.Challenges)
	return g, true
}

// Games returns every game in document order.
func (c *Catalog) Games() []Game {
	out := make([]Game, 0, len(c.games))
	for _, g := range c.games {
		g.Challenges = slices.Clone(g.Challenges)
		out = append(out, g)
	}
	return out
}

// Letters returns the letter examples in document order.
func (c *Catalog) Letters() []Letter { return slices.Clone(c.letters) }

// Letter looks up a letter example, case-insensitively.
func (c *Catalog) Letter(l string) (Letter, bool) {
	for _, x := range c.letters {
		if strings.EqualFold(x.Letter, l) {
			return x, true
		}
	}
	return Letter{}, false
}

// Syllables returns the consonant and vowel sets.
func (c *Catalog) Syllables() Syllables {
	return Syllables{
		Consonants: slices.Clone(c.syllables.Consonants),
		Vowels:     slices.Clone(c.syllables.Vowels),
	}
}

// Syllable joins a consonant and a vowel. Both must belong to the catalog sets.
func (c *Catalog) Syllable(consonant, vowel string) (string, bool) {
	consonant, vowel = strings.ToUpper(consonant), strings.ToUpper(vowel)
	if !slices.Contains(c.syllables.Consonants, consonant) || !slices.Contains(c.syllables.Vowels, vowel) {
		return "", false
	}
	return consonant + vowel, true
}

// internal/httpserver/routes_content.go
//
// Stateless content routes:
//   - GET /letters                          → letter examples
//   - GET /letters/{letter}                 → one letter example
//   - GET /syllables                        → consonants and vowels
//   - GET /syllables/{consonant}/{vowel}    → the syllable they form
//   - GET /audio?text=...                   → speech for a short text (audio/mpeg)

package httpserver

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

// maxSpeechRunes bounds /audio requests to words and short sentences.
const maxSpeechRunes = 200

// mountContent registers the letter, syllable and audio routes.
func (s *Server) mountContent(r chi.Router) {
	r.Get("/letters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.catalog.Letters())
	})
	r.Get("/letters/{letter}", func(w http.ResponseWriter, r *http.Request) {
		l, ok := s.catalog.Letter(chi.URLParam(r, "letter"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown_letter")
			return
		}
		writeJSON(w, http.StatusOK, l)
	})
	r.Get("/syllables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.catalog.Syllables())
	})
	r.Get("/syllables/{consonant}/{vowel}", func(w http.ResponseWriter, r *http.Request) {
		syl, ok := s.catalog.Syllable(chi.URLParam(r, "consonant"), chi.URLParam(r, "vowel"))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown_syllable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"syllable": syl})
	})
	r.Get("/audio", s.handleAudio)
}

// handleAudio speaks arbitrary short text: letters, syllables, example words.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	switch {
	case text == "":
		writeError(w, http.StatusBadRequest, "missing_text")
		return
	case utf8.RuneCountInString(text) > maxSpeechRunes:
		writeError(w, http.StatusBadRequest, "text_too_long")
		return
	}
	s.speak(w, r, text, cacheByText)
}

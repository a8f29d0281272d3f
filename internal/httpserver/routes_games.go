// internal/httpserver/routes_games.go
//
// HTTP routes for the mini-games. Each route is one user event dispatched to
// the game engine; the response is the resulting state for the UI to render.
//
//   - GET  /games                  → list games
//   - GET  /games/{gameID}         → current state (initializes on first visit)
//   - POST /games/{gameID}/next    → draw the next challenge (from new or correct)
//   - POST /games/{gameID}/answer  → check a typed or picked answer
//   - POST /games/{gameID}/retry   → try again after a wrong answer
//   - POST /games/{gameID}/place   → sentence games: place one token
//   - POST /games/{gameID}/clear   → sentence games: take every token back
//   - POST /games/{gameID}/check   → sentence games: check the assembled sentence
//   - GET  /games/{gameID}/speech  → audio for the current challenge, if any
//
// All state access goes through store.Store.Do, so events of one session are
// applied one at a time.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/alfabetiza/internal/audio"
	"github.com/robalobadob/alfabetiza/internal/catalog"
	"github.com/robalobadob/alfabetiza/internal/game"
)

// mountGames registers all /games routes.
func (s *Server) mountGames(r chi.Router) {
	r.Get("/games", s.handleListGames)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Post("/next", s.handleNext)
		r.Post("/answer", s.handleAnswer)
		r.Post("/retry", s.handleRetry)
		r.Post("/place", s.handlePlace)
		r.Post("/clear", s.handleClear)
		r.Post("/check", s.handleCheck)
		r.Get("/speech", s.handleSpeech)
	})
}

// statusError is an HTTP-level rejection of an event.
type statusError struct {
	status int
	code   string
}

func (e *statusError) Error() string { return e.code }

func conflict(code string) error { return &statusError{status: http.StatusConflict, code: code} }

var errWrongMode = &statusError{status: http.StatusBadRequest, code: "unsupported_for_mode"}

// -----------------------------------------------------------------------------
// views

// gameInfo is one entry of GET /games.
type gameInfo struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Mode       catalog.Mode `json:"mode"`
	Challenges int          `json:"challenges"`
}

// challengeView is the UI's view of a challenge. The answer is only included
// once it has been found.
type challengeView struct {
	ID       string   `json:"id"`
	Image    string   `json:"image,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Options  []string `json:"options,omitempty"`
	Correct  string   `json:"correct,omitempty"`
	FullWord string   `json:"fullWord,omitempty"`
}

// stateRes is the state of one game after an event.
type stateRes struct {
	Game      string         `json:"game"`
	Title     string         `json:"title"`
	Mode      catalog.Mode   `json:"mode"`
	Status    game.Status    `json:"status"`
	Challenge *challengeView `json:"challenge,omitempty"`
	Attempt   []string       `json:"attempt,omitempty"`
	Remaining []string       `json:"remaining,omitempty"`
	Result    *bool          `json:"result,omitempty"` // set by answer/check
	Speech    bool           `json:"speech"`           // GET .../speech has audio to offer
}

func view(g catalog.Game, sess *game.Session) stateRes {
	res := stateRes{Game: g.ID, Title: g.Title, Mode: g.Mode, Status: sess.Status}
	if g.Mode == catalog.ModeScramble {
		res.Attempt = append([]string(nil), sess.Attempt...)
		res.Remaining = append([]string(nil), sess.Remaining...)
	}
	cur, ok := sess.Current()
	if !ok {
		return res
	}
	cv := &challengeView{ID: cur.ID, Image: cur.Image, Prompt: cur.Prompt, Options: cur.Options}
	if sess.Status == game.StatusCorrect {
		cv.Correct = cur.Correct
		cv.FullWord = cur.FullWord
	}
	res.Challenge = cv
	res.Speech = speechText(g.Mode, sess) != ""
	return res
}

// speechText is what the UI should be able to play right now: the dictation
// sentence while it is being written, or the finished word or sentence after
// a correct answer.
func speechText(mode catalog.Mode, sess *game.Session) string {
	cur, ok := sess.Current()
	if !ok {
		return ""
	}
	if mode == catalog.ModeDictation {
		return cur.Sentence
	}
	if sess.Status != game.StatusCorrect {
		return ""
	}
	if mode == catalog.ModeChoice && cur.FullWord != "" {
		return cur.FullWord
	}
	return cur.Correct
}

// -----------------------------------------------------------------------------
// plumbing

// ensure initializes the visitor's session for g and returns it.
func (s *Server) ensure(st game.Store, g catalog.Game) (*game.Session, error) {
	var err error
	if g.Mode == catalog.ModeScramble {
		err = s.engine.InitializeScramble(st, g.ID, g.Challenges)
	} else {
		err = s.engine.Initialize(st, g.ID, g.Challenges)
	}
	if err != nil {
		return nil, err
	}
	sess, _ := st.Get(g.ID)
	return sess, nil
}

// play resolves the game in the URL, runs fn under the session lock, and
// writes the resulting state.
func (s *Server) play(w http.ResponseWriter, r *http.Request, fn func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error)) {
	g, ok := s.catalog.Game(chi.URLParam(r, "gameID"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_game")
		return
	}

	var res stateRes
	err := s.sessions.Do(r.Context(), sessionID(r), func(st game.Store) error {
		sess, err := s.ensure(st, g)
		if err != nil {
			return err
		}
		var result *bool
		if fn != nil {
			if result, err = fn(st, g, sess); err != nil {
				return err
			}
		}
		res = view(g, sess)
		res.Result = result
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// fail maps engine and event errors to HTTP responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var se *statusError
	switch {
	case errors.As(err, &se):
		writeError(w, se.status, se.code)
	case errors.Is(err, game.ErrPrecondition):
		hlog.FromRequest(r).Warn().Err(err).Msg("event out of order")
		writeError(w, http.StatusConflict, "precondition_failed")
	case errors.Is(err, game.ErrConfiguration):
		hlog.FromRequest(r).Error().Err(err).Msg("catalog configuration")
		writeError(w, http.StatusInternalServerError, "configuration_error")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("game event")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &statusError{status: http.StatusBadRequest, code: "bad_json"}
	}
	return nil
}

// -----------------------------------------------------------------------------
// handlers

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.catalog.Games()
	out := make([]gameInfo, 0, len(games))
	for _, g := range games {
		out = append(out, gameInfo{ID: g.ID, Title: g.Title, Mode: g.Mode, Challenges: len(g.Challenges)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.play(w, r, nil)
}

// handleNext advances to a fresh challenge. Only a new game or a solved
// challenge can advance; retries go through /retry.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if sess.Status != game.StatusNew && sess.Status != game.StatusCorrect {
			return nil, conflict("challenge_in_progress")
		}
		var err error
		if g.Mode == catalog.ModeScramble {
			_, err = s.engine.SetupChallenge(st, g.ID)
		} else {
			_, err = s.engine.DrawChallenge(st, g.ID)
		}
		return nil, err
	})
}

type answerReq struct {
	Answer string `json:"answer"`
}

// handleAnswer checks a typed or picked answer. A previous wrong answer is
// retried first, so the learner can simply submit again.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if !g.Mode.FreeText() {
			return nil, errWrongMode
		}
		switch sess.Status {
		case game.StatusCorrect:
			return nil, conflict("already_solved")
		case game.StatusWrong:
			if err := s.engine.Retry(st, g.ID); err != nil {
				return nil, err
			}
		}
		ok, err := s.engine.SubmitAnswer(st, g.ID, req.Answer)
		if err != nil {
			return nil, err
		}
		return &ok, nil
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if g.Mode == catalog.ModeScramble {
			return nil, s.engine.ClearAttempt(st, g.ID)
		}
		return nil, s.engine.Retry(st, g.ID)
	})
}

type placeReq struct {
	Token string `json:"token"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if g.Mode != catalog.ModeScramble {
			return nil, errWrongMode
		}
		if sess.Status == game.StatusCorrect {
			return nil, conflict("already_solved")
		}
		return nil, s.engine.PlaceToken(st, g.ID, req.Token)
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if g.Mode != catalog.ModeScramble {
			return nil, errWrongMode
		}
		if sess.Status == game.StatusCorrect {
			return nil, conflict("already_solved")
		}
		return nil, s.engine.ClearAttempt(st, g.ID)
	})
}

// handleCheck scores the assembled sentence once every token is placed.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.play(w, r, func(st game.Store, g catalog.Game, sess *game.Session) (*bool, error) {
		if g.Mode != catalog.ModeScramble {
			return nil, errWrongMode
		}
		if sess.Status != game.StatusPlaying {
			return nil, conflict("not_playing")
		}
		if len(sess.Remaining) > 0 {
			return nil, conflict("incomplete")
		}
		ok, err := s.engine.SubmitAssembled(st, g.ID)
		if err != nil {
			return nil, err
		}
		return &ok, nil
	})
}

// handleSpeech plays the current speech text. The session lock is released
// before synthesis so a slow TTS call does not hold up the session.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	g, ok := s.catalog.Game(chi.URLParam(r, "gameID"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_game")
		return
	}
	var text string
	err := s.sessions.Do(r.Context(), sessionID(r), func(st game.Store) error {
		sess, err := s.ensure(st, g)
		if err != nil {
			return err
		}
		text = speechText(g.Mode, sess)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if text == "" {
		writeError(w, http.StatusNotFound, "no_speech")
		return
	}
	s.speak(w, r, text, noStore)
}

// Cache-Control values for audio. Per-game speech has a fixed URL whose
// content follows the current challenge; /audio is keyed by its text.
const (
	noStore     = "no-store"
	cacheByText = "private, max-age=86400"
)

// speak writes synthesized audio, or a non-fatal 503 when none is available.
func (s *Server) speak(w http.ResponseWriter, r *http.Request, text, cacheControl string) {
	if s.audio == nil {
		writeError(w, http.StatusServiceUnavailable, "audio_unavailable")
		return
	}
	b, err := s.audio.Synthesize(r.Context(), text)
	if err != nil {
		if !errors.Is(err, audio.ErrUnavailable) {
			hlog.FromRequest(r).Error().Err(err).Msg("synthesize")
		} else {
			hlog.FromRequest(r).Warn().Err(err).Str("text", text).Msg("no audio")
		}
		writeError(w, http.StatusServiceUnavailable, "audio_unavailable")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

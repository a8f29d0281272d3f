// internal/httpserver/server.go
//
// HTTP server wiring for the literacy games backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, JSON, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health".
//   - Content endpoints: /letters, /syllables, /audio (routes_content.go).
//   - Game endpoints: /games/* (routes_games.go), keyed by the session cookie.
//
// Notes:
//   - Every visitor gets a signed session cookie (session.go); game state lives
//     in the session store under that ID.
//   - CORS is origin-aware and credentials-enabled so the cookie travels.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/alfabetiza/internal/audio"
	"github.com/robalobadob/alfabetiza/internal/catalog"
	"github.com/robalobadob/alfabetiza/internal/game"
	"github.com/robalobadob/alfabetiza/internal/store"
)

// Options carries the server's collaborators and session settings.
type Options struct {
	Catalog       *catalog.Catalog
	Sessions      store.Store
	Engine        *game.Engine
	Audio         audio.Synthesizer
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	ClientOrigin  string
	SecureCookies bool
}

// Server bundles router, catalog, session store, engine, and audio.
type Server struct {
	r        *chi.Mux
	catalog  *catalog.Catalog
	sessions store.Store
	engine   *game.Engine
	audio    audio.Synthesizer
	cookies  sessionCookies
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Engine == nil {
		opts.Engine = game.NewEngine(nil)
	}
	s := &Server{
		r:        chi.NewRouter(),
		catalog:  opts.Catalog,
		sessions: opts.Sessions,
		engine:   opts.Engine,
		audio:    opts.Audio,
		cookies: sessionCookies{
			name:   opts.CookieName,
			secret: []byte(opts.SessionSecret),
			ttl:    opts.SessionTTL,
			secure: opts.SecureCookies,
		},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(withRequestID)
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(15 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"alfabetiza","endpoints":["/health","/letters","/syllables","/games","/audio"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountContent(s.r)

	// Game state is per visitor: everything below carries a session.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		s.mountGames(r)
		r.Delete("/session", s.handleEndSession)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start serves HTTP on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withRequestID adds chi's request ID to the request logger.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ responses ----------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

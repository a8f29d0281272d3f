// internal/httpserver/session.go
//
// Anonymous session identity for game state.
// Responsibilities:
//   - Issue an HS256 JWT whose jti is the session ID, in an HttpOnly cookie.
//   - Accept the token from the cookie or an Authorization: Bearer header.
//   - Mint a new session for missing, expired or forged tokens.
//   - Slide the expiry forward on every request; DELETE /session ends it.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// ctxSessionKey is the context key type for the session ID.
type ctxSessionKey struct{}

// sessionCookies issues and verifies the signed session token.
// The token is an HS256 JWT whose jti is the session ID.
type sessionCookies struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

// sign returns a token for sessionID expiring after the TTL.
func (c sessionCookies) sign(sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(c.secret)
	return ss, exp, err
}

// verify returns the session ID carried by a valid, unexpired token.
func (c sessionCookies) verify(token string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !t.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}

// set writes the session cookie.
func (c sessionCookies) set(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if c.secure {
		sameSite = http.SameSiteNoneMode // required for cross-site use when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clear deletes the session cookie.
func (c sessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the session cookie.
func (c sessionCookies) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if ck, err := r.Cookie(c.name); err == nil {
		return ck.Value
	}
	return ""
}

// withSession resolves the visitor's session, minting a new one when the
// token is missing, expired, or forged. The cookie is refreshed on every
// request so an active session keeps sliding forward.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := s.cookies.verify(s.cookies.bearerOrCookie(r))
		if !ok {
			sid = uuid.NewString()
			hlog.FromRequest(r).Debug().Str("session", sid).Msg("new session")
		}

		tok, exp, err := s.cookies.sign(sid, time.Now())
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("sign session")
			writeError(w, http.StatusInternalServerError, "session_failed")
			return
		}
		s.cookies.set(w, tok, exp)

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("session", sid)
		})
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the session placed in the context by withSession.
func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(ctxSessionKey{}).(string)
	return sid
}

// handleEndSession discards the visitor's game state and clears the cookie.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Drop(r.Context(), sessionID(r)); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("drop session")
	}
	s.cookies.clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

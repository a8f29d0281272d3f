package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/robalobadob/alfabetiza/assets"
	"github.com/robalobadob/alfabetiza/internal/db"
)

func TestHTTPSynthesizer(t *testing.T) {
	t.Parallel()
	type seen struct {
		accept string
		query  url.Values
	}
	reqs := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- seen{accept: r.Header.Get("Accept"), query: r.URL.Query()}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	h := NewHTTPSynthesizer(srv.URL+"/translate_tts", language.BrazilianPortuguese, time.Second)
	b, err := h.Synthesize(context.Background(), "  O sapo pula.  ")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), b)

	got := <-reqs
	assert.Equal(t, "O sapo pula.", got.query.Get("q"))
	assert.Equal(t, "pt-BR", got.query.Get("tl"))
	assert.Equal(t, "UTF-8", got.query.Get("ie"))
	assert.Equal(t, "audio/mpeg", got.accept)
}

func TestHTTPSynthesizerFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		handler http.HandlerFunc
	}{
		{
			name:    "empty text",
			text:    "   ",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("x")) },
		},
		{
			name:    "upstream error",
			text:    "uva",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
		},
		{
			name:    "empty body",
			text:    "uva",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			h := NewHTTPSynthesizer(srv.URL, language.BrazilianPortuguese, time.Second)
			b, err := h.Synthesize(context.Background(), tc.text)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Nil(t, b)
		})
	}
}

func TestHTTPSynthesizerUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewHTTPSynthesizer(endpoint, language.BrazilianPortuguese, time.Second).
		Synthesize(context.Background(), "uva")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// countingSynth returns fixed audio and counts calls.
type countingSynth struct {
	calls atomic.Int32
	err   error
}

func (c *countingSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []byte("mp3:" + text), nil
}

func newCache(t *testing.T, next Synthesizer) *Cache {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "audio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(context.Background(), sqlDB, assets.Migrations()))
	return NewCache(sqlDB, next, language.BrazilianPortuguese)
}

func TestCacheHit(t *testing.T) {
	next := &countingSynth{}
	c := newCache(t, next)
	ctx := context.Background()

	first, err := c.Synthesize(ctx, "bola")
	require.NoError(t, err)
	second, err := c.Synthesize(ctx, " bola ")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3:bola"), first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, next.calls.Load())
}

func TestCacheMissFailure(t *testing.T) {
	next := &countingSynth{err: ErrUnavailable}
	c := newCache(t, next)

	_, err := c.Synthesize(context.Background(), "bola")
	assert.ErrorIs(t, err, ErrUnavailable)

	var n int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(1) FROM audio_cache`).Scan(&n))
	assert.Equal(t, 0, n, "failures are not cached")
}

func TestCachePurge(t *testing.T) {
	next := &countingSynth{}
	c := newCache(t, next)
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	_, err := c.Synthesize(ctx, "velho")
	require.NoError(t, err)
	clock = clock.Add(48 * time.Hour)
	_, err = c.Synthesize(ctx, "novo")
	require.NoError(t, err)

	n, err := c.Purge(ctx, clock.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = c.Synthesize(ctx, "velho")
	require.NoError(t, err)
	assert.EqualValues(t, 3, next.calls.Load(), "purged entries are synthesized again")
}

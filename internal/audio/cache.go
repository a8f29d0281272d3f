// internal/audio/cache.go
//
// SQLite-backed audio cache.
// Responsibilities:
//   - Serve stored MP3 bytes for (lang, text) without calling the synthesizer.
//   - Store fresh audio on a miss; failed syntheses are never stored.
//   - Purge entries older than a cutoff (AUDIO_CACHE_TTL, at startup).
//
// Database errors are logged and bypassed: audio still reaches the caller.

package audio

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// Cache stores synthesized audio in the audio_cache table and only calls the
// wrapped synthesizer on a miss. Database errors are logged and bypassed.
type Cache struct {
	db   *sql.DB
	next Synthesizer
	lang string
	now  func() time.Time
}

// NewCache wraps next with a SQLite cache keyed by lang and text.
func NewCache(db *sql.DB, next Synthesizer, lang language.Tag) *Cache {
	return &Cache{db: db, next: next, lang: lang.String(), now: time.Now}
}

// Synthesize returns cached audio for text, synthesizing and storing it on a miss.
func (c *Cache) Synthesize(ctx context.Context, text string) ([]byte, error) {
	key := strings.TrimSpace(text)

	var b []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT mp3 FROM audio_cache WHERE lang=? AND text=?`, c.lang, key,
	).Scan(&b)
	switch {
	case err == nil && len(b) > 0:
		return b, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		log.Warn().Err(err).Str("text", key).Msg("audio cache read")
	}

	b, err = c.next.Synthesize(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO audio_cache(lang, text, mp3, created_at) VALUES (?,?,?,?)`,
		c.lang, key, b, c.now().UTC().Format(time.RFC3339),
	); err != nil {
		log.Warn().Err(err).Str("text", key).Msg("audio cache write")
	}
	return b, nil
}

// Purge deletes cached entries created before cutoff and returns how many were removed.
func (c *Cache) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM audio_cache WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

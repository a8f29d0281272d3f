// internal/audio/audio.go
//
// Text-to-speech for game feedback.
// Responsibilities:
//   - Synthesizer: text in, MP3 bytes out, or ErrUnavailable.
//   - HTTPSynthesizer: calls a translate_tts style endpoint over HTTP.
//   - Cache: keeps synthesized audio in SQLite so a word is fetched once.
//
// Audio is never required for play: callers report ErrUnavailable as
// "no audio" and carry on.

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ErrUnavailable is returned whenever audio could not be produced.
var ErrUnavailable = errors.New("audio: no audio available")

// maxAudioBytes bounds a single response body.
const maxAudioBytes = 2 << 20

// Synthesizer turns text into playable MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// HTTPSynthesizer fetches speech from a translate_tts style endpoint:
//
//	GET <endpoint>?ie=UTF-8&q=<text>&tl=<lang>&client=tw-ob
type HTTPSynthesizer struct {
	client   *http.Client
	endpoint string
	lang     language.Tag
}

// NewHTTPSynthesizer returns a synthesizer for endpoint speaking lang.
func NewHTTPSynthesizer(endpoint string, lang language.Tag, timeout time.Duration) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		lang:     lang,
	}
}

// Synthesize requests speech for text. Every failure wraps ErrUnavailable.
func (h *HTTPSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnavailable)
	}

	u, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", h.lang.String())
	q.Set("client", "tw-ob")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tts status %d", ErrUnavailable, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	switch {
	case len(b) == 0:
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	case len(b) > maxAudioBytes:
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrUnavailable, maxAudioBytes)
	}
	return b, nil
}

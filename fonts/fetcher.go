// Package fonts downloads web fonts and turns them into text faces for the
// layout engine.
package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/image/font/sfnt"

	"ogimage/common"
	"ogimage/config"
	"ogimage/layout"
)

const maxFontBytes = 32 << 20

// Source provides the face used to render one image
type Source interface {
	Load(ctx context.Context) (layout.TextFace, error)
}

// Fetcher downloads fonts over HTTP with a per-attempt timeout and a fixed
// number of retries
type Fetcher struct {
	URL       string
	Fallbacks []string
	Timeout   time.Duration
	Retries   int
	Client    *http.Client
}

// NewFetcher creates a fetcher from the font configuration
func NewFetcher(cfg config.FontConfig) *Fetcher {
	return &Fetcher{
		URL:       cfg.URL,
		Fallbacks: cfg.FallbackURLs,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		Client:    &http.Client{},
	}
}

// Load downloads the primary font and its fallbacks and builds a face
func (f *Fetcher) Load(ctx context.Context) (layout.TextFace, error) {
	urls := append([]string{f.URL}, f.Fallbacks...)
	parsed := make([]*sfnt.Font, 0, len(urls))

	for _, url := range urls {
		data, err := f.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		fnt, err := Parse(data)
		if err != nil {
			return nil, common.RenderError("decode font "+url, err)
		}
		parsed = append(parsed, fnt)
	}

	return NewFace(parsed[0], parsed[1:]...), nil
}

// Fetch downloads url, retrying failed attempts up to Retries times
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := 1 + f.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			log.Printf("Font fetch failed (attempt %d/%d): %v", attempt, attempts, err)
		}
	}

	return nil, common.NetworkError("fetch font", url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxFontBytes {
		return nil, errors.New("font exceeds 32MB")
	}
	if len(data) == 0 {
		return nil, errors.New("empty font body")
	}
	return data, nil
}

// Cached wraps src so that the first successful face is reused.
// Failures are not cached.
func Cached(src Source) Source {
	return &cachedSource{src: src}
}

type cachedSource struct {
	src  Source
	mu   sync.Mutex
	face layout.TextFace
}

func (c *cachedSource) Load(ctx context.Context) (layout.TextFace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.face != nil {
		return c.face, nil
	}
	face, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.face = face
	return face, nil
}

// Package library provides a client for the music library backend.
package library

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/domain/track"
)

// Client fetches the user's tracks from the library backend and keeps
// a read-mostly cache shared with every consumer in the process. The
// client only ever reads library data, never mutates it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	cacheMu sync.RWMutex
	cache   []track.Track
}

// Config represents library client configuration.
type Config struct {
	BaseURL string // e.g. http://localhost:5000
	Token   string // optional bearer token
}

// songsEnvelope covers the wrapped payload shape the backend sometimes
// returns instead of a bare array.
type songsEnvelope struct {
	Songs []track.Track `json:"songs"`
}

// New creates a new library client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("library base URL is required")
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Tracks returns all tracks, served from the cache when populated.
func (c *Client) Tracks(ctx context.Context) ([]track.Track, error) {
	c.cacheMu.RLock()
	cached := c.cache
	c.cacheMu.RUnlock()

	if len(cached) > 0 {
		return cached, nil
	}
	return c.Refresh(ctx)
}

// Refresh fetches the track list from the backend and replaces the
// cache. Used when a search runs against an empty cache.
func (c *Client) Refresh(ctx context.Context) ([]track.Track, error) {
	tracks, err := c.fetchTracks(ctx)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache = tracks
	c.cacheMu.Unlock()

	zlog.Debug().Msgf("library: refreshed track cache: count=%d", len(tracks))
	return tracks, nil
}

// Cached returns the current cache contents without fetching.
func (c *Client) Cached() []track.Track {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	out := make([]track.Track, len(c.cache))
	copy(out, c.cache)
	return out
}

func (c *Client) fetchTracks(ctx context.Context) ([]track.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/songs", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "library request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("library returned status %d", resp.StatusCode)
	}

	// The backend returns either a bare array or {"songs": [...]}.
	var tracks []track.Track
	if err := json.Unmarshal(body, &tracks); err == nil {
		return tracks, nil
	}

	var envelope songsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to parse library response")
	}
	return envelope.Songs, nil
}

package library

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/cloudly-labs/orb/internal/domain/track"
)

// FindMatch returns the first track whose title, artist, or album
// contains the query (case-insensitive). Listing order decides ties, so
// results are deterministic for a given library.
func FindMatch(tracks []track.Track, query string) (track.Track, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return track.Track{}, false
	}
	for i := range tracks {
		if tracks[i].MatchesQuery(query) {
			return tracks[i], true
		}
	}
	return track.Track{}, false
}

// trackSource adapts a track slice to the fuzzy matcher.
type trackSource []track.Track

func (s trackSource) String(i int) string { return s[i].SearchText() }
func (s trackSource) Len() int            { return len(s) }

// Search ranks cached tracks against the query with fuzzy matching and
// returns up to limit results, best first. Used for the UI search
// surface; voice dispatch keeps the deterministic FindMatch rule.
func (c *Client) Search(query string, limit int) []track.Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	c.cacheMu.RLock()
	source := trackSource(c.cache)
	matches := fuzzy.FindFrom(query, source)

	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	out := make([]track.Track, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, source[m.Index])
	}
	c.cacheMu.RUnlock()

	return out
}

// Package track provides the Track domain entity.
package track

import "strings"

// Track represents a song in the user's music library.
// Fields mirror what the library backend returns for a song.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	CoverURL   string  `json:"coverUrl"`
	AudioURL   string  `json:"audioUrl"`
	DurationMs float64 `json:"duration"`
	UploadedBy string  `json:"uploadedBy"`
	Liked      bool    `json:"liked"`
}

// MatchesQuery reports whether the query is a case-insensitive substring
// of the track's title, artist, or album. The query must already be
// lowercased.
func (t *Track) MatchesQuery(query string) bool {
	if query == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Artist), query) ||
		strings.Contains(strings.ToLower(t.Album), query)
}

// SearchText returns the text a fuzzy matcher should rank against.
func (t *Track) SearchText() string {
	return t.Title + " " + t.Artist + " " + t.Album
}

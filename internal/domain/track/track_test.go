package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_MatchesQuery(t *testing.T) {
	trk := Track{
		ID:     "track-1",
		Title:  "Calm Waters",
		Artist: "The Drifters",
		Album:  "Ocean Songs",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{
			name:  "matches title substring",
			query: "calm",
			want:  true,
		},
		{
			name:  "matches artist substring",
			query: "drifters",
			want:  true,
		},
		{
			name:  "matches album substring",
			query: "ocean",
			want:  true,
		},
		{
			name:  "no match",
			query: "zzz",
			want:  false,
		},
		{
			name:  "empty query never matches",
			query: "",
			want:  false,
		},
		{
			name:  "full title",
			query: "calm waters",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trk.MatchesQuery(tt.query))
		})
	}
}

func TestTrack_SearchText(t *testing.T) {
	trk := Track{Title: "Loud City", Artist: "Metro", Album: "Night Drive"}
	assert.Equal(t, "Loud City Metro Night Drive", trk.SearchText())
}

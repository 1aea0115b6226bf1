package dispatch

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly-labs/orb/internal/app/grammar"
	"github.com/cloudly-labs/orb/internal/app/player"
	"github.com/cloudly-labs/orb/internal/domain/track"
)

type fakeLibrary struct {
	tracks       []track.Track
	err          error
	refreshed    []track.Track
	refreshCalls int
}

func (l *fakeLibrary) Tracks(context.Context) ([]track.Track, error) {
	return l.tracks, l.err
}

func (l *fakeLibrary) Refresh(context.Context) ([]track.Track, error) {
	l.refreshCalls++
	return l.refreshed, l.err
}

type fakeSpeaker struct {
	texts []string
}

func (s *fakeSpeaker) Say(text string) { s.texts = append(s.texts, text) }

type fakeAnnouncer struct {
	toasts []string
}

func (a *fakeAnnouncer) Toast(text string) { a.toasts = append(a.toasts, text) }

func sampleTracks() []track.Track {
	return []track.Track{
		{ID: "1", Title: "Ocean Waves", Artist: "Ambient Co"},
		{ID: "2", Title: "Midnight Drive", Artist: "Neon City"},
		{ID: "3", Title: "Morning Coffee", Artist: "Lo-Fi Friends"},
	}
}

func newDispatcher(t *testing.T, lib Library) (*Dispatcher, *player.Controller, *fakeSpeaker, *fakeAnnouncer) {
	t.Helper()
	p := player.NewController()
	t.Cleanup(p.Close)
	sp := &fakeSpeaker{}
	an := &fakeAnnouncer{}
	d := New(Config{
		Player:    p,
		Library:   lib,
		Speaker:   sp,
		Announcer: an,
		PickIndex: func(int) int { return 0 },
	})
	return d, p, sp, an
}

func TestDispatchPauseResume(t *testing.T) {
	d, p, _, an := newDispatcher(t, nil)
	p.Play(sampleTracks()[0], nil)
	require.True(t, p.IsPlaying())

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.Pause})
	assert.False(t, p.IsPlaying())

	// Pausing while already paused stays paused.
	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.Pause})
	assert.False(t, p.IsPlaying())

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.Resume})
	assert.True(t, p.IsPlaying())

	assert.Equal(t, []string{"Paused", "Paused", "Resumed"}, an.toasts)
}

func TestDispatchVolumeClamping(t *testing.T) {
	d, p, _, _ := newDispatcher(t, nil)

	for i := 0; i < 10; i++ {
		d.Dispatch(context.Background(), grammar.Command{Kind: grammar.VolumeUp})
	}
	assert.InDelta(t, 1.0, p.Volume(), 1e-9)

	for i := 0; i < 10; i++ {
		d.Dispatch(context.Background(), grammar.Command{Kind: grammar.VolumeDown})
	}
	assert.InDelta(t, 0.0, p.Volume(), 1e-9)
}

func TestDispatchVolumeStep(t *testing.T) {
	d, p, _, _ := newDispatcher(t, nil)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.VolumeDown})
	assert.InDelta(t, player.DefaultVolume-DefaultVolumeStep, p.Volume(), 1e-9)
}

func TestDispatchToggleLike(t *testing.T) {
	d, p, sp, _ := newDispatcher(t, nil)
	p.Play(sampleTracks()[0], sampleTracks())

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.ToggleLike})
	cur, ok := p.CurrentTrack()
	require.True(t, ok)
	assert.True(t, cur.Liked)
	assert.Equal(t, []string{"Liked"}, sp.texts)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.ToggleLike})
	cur, _ = p.CurrentTrack()
	assert.False(t, cur.Liked)
}

func TestDispatchPlayQueryMatch(t *testing.T) {
	lib := &fakeLibrary{tracks: sampleTracks()}
	d, p, _, an := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayQuery, Arg: "midnight"})

	cur, ok := p.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "Midnight Drive", cur.Title)
	assert.Equal(t, []string{"Searching: midnight", "Playing Midnight Drive"}, an.toasts)
}

func TestDispatchPlayQueryNoMatch(t *testing.T) {
	lib := &fakeLibrary{tracks: sampleTracks()}
	d, p, sp, _ := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayQuery, Arg: "polka"})

	_, ok := p.CurrentTrack()
	assert.False(t, ok, "a missed search must not touch playback")
	assert.Equal(t, []string{"I couldn't find polka"}, sp.texts)
}

func TestDispatchPlayQueryRefreshesEmptyCache(t *testing.T) {
	lib := &fakeLibrary{refreshed: sampleTracks()}
	d, p, _, _ := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayQuery, Arg: "ocean"})

	assert.Equal(t, 1, lib.refreshCalls)
	cur, ok := p.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "Ocean Waves", cur.Title)
}

func TestDispatchPlayQueryLibraryDown(t *testing.T) {
	lib := &fakeLibrary{err: errors.New("connection refused")}
	d, p, sp, _ := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayQuery, Arg: "ocean"})

	_, ok := p.CurrentTrack()
	assert.False(t, ok)
	assert.Equal(t, []string{"I can't reach the music library right now."}, sp.texts)
}

func TestDispatchPlayQueryEmptyLibrary(t *testing.T) {
	lib := &fakeLibrary{}
	d, _, sp, _ := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayQuery, Arg: "ocean"})

	assert.Equal(t, []string{"I don't see any songs in your library."}, sp.texts)
}

func TestDispatchPlayMood(t *testing.T) {
	lib := &fakeLibrary{tracks: sampleTracks()}
	d, p, sp, _ := newDispatcher(t, lib)

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.PlayMood, Arg: "calm"})

	cur, ok := p.CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "Ocean Waves", cur.Title)
	assert.Equal(t, []string{"Playing some calm music"}, sp.texts)
}

func TestDispatchShuffleSpeaks(t *testing.T) {
	d, p, sp, _ := newDispatcher(t, nil)
	p.Play(sampleTracks()[0], sampleTracks())

	d.Dispatch(context.Background(), grammar.Command{Kind: grammar.Shuffle})
	assert.Equal(t, []string{"Shuffling"}, sp.texts)
}

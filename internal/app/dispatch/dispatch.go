// Package dispatch executes interpreted voice commands against the playback
// and library capabilities and produces the user-facing feedback for each.
package dispatch

import (
	"context"
	"fmt"
	"math/rand"

	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/app/grammar"
	"github.com/cloudly-labs/orb/internal/domain/track"
	"github.com/cloudly-labs/orb/internal/infra/library"
)

// DefaultVolumeStep is the amount one "louder"/"quieter" command moves.
const DefaultVolumeStep = 0.2

// Player is the playback surface commands drive.
type Player interface {
	Play(t track.Track, queue []track.Track)
	TogglePlay()
	Next()
	Previous()
	SetVolume(v float64)
	ToggleLike(trackID string, liked bool)
	ShuffleQueue()
	CurrentTrack() (track.Track, bool)
	IsPlaying() bool
	Volume() float64
}

// Library supplies the full track list for search and mood playback.
type Library interface {
	Tracks(ctx context.Context) ([]track.Track, error)
	Refresh(ctx context.Context) ([]track.Track, error)
}

// Speaker plays spoken feedback.
type Speaker interface {
	Say(text string)
}

// Announcer shows transient visual acknowledgments.
type Announcer interface {
	Toast(text string)
}

// Messages holds the feedback strings. Entries with a %s verb are formatted
// with the query, title or mood they acknowledge.
type Messages struct {
	Paused             string
	Resumed            string
	NextSong           string
	Shuffling          string
	Liked              string
	Searching          string
	Playing            string
	Mood               string
	NotFound           string
	LibraryUnreachable string
	LibraryEmpty       string
}

// DefaultMessages returns the stock feedback strings.
func DefaultMessages() Messages {
	return Messages{
		Paused:             "Paused",
		Resumed:            "Resumed",
		NextSong:           "Next Song",
		Shuffling:          "Shuffling",
		Liked:              "Liked",
		Searching:          "Searching: %s",
		Playing:            "Playing %s",
		Mood:               "Playing some %s music",
		NotFound:           "I couldn't find %s",
		LibraryUnreachable: "I can't reach the music library right now.",
		LibraryEmpty:       "I don't see any songs in your library.",
	}
}

// Config assembles a Dispatcher.
type Config struct {
	Player     Player
	Library    Library
	Speaker    Speaker
	Announcer  Announcer
	VolumeStep float64
	Messages   Messages

	// PickIndex selects the mood track, nil means uniform random.
	PickIndex func(n int) int
}

// Dispatcher maps a grammar command to player and library calls.
type Dispatcher struct {
	player    Player
	library   Library
	speaker   Speaker
	announcer Announcer
	step      float64
	msgs      Messages
	pick      func(n int) int
}

// New builds a dispatcher. Player is required, everything else degrades
// to a no-op when absent.
func New(cfg Config) *Dispatcher {
	step := cfg.VolumeStep
	if step <= 0 {
		step = DefaultVolumeStep
	}
	pick := cfg.PickIndex
	if pick == nil {
		pick = rand.Intn
	}
	msgs := cfg.Messages
	if msgs == (Messages{}) {
		msgs = DefaultMessages()
	}
	return &Dispatcher{
		player:    cfg.Player,
		library:   cfg.Library,
		speaker:   cfg.Speaker,
		announcer: cfg.Announcer,
		step:      step,
		msgs:      msgs,
		pick:      pick,
	}
}

// Dispatch executes one command. It blocks until the command's player and
// library work is done; spoken feedback continues asynchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd grammar.Command) {
	switch cmd.Kind {
	case grammar.Pause:
		if d.player.IsPlaying() {
			d.player.TogglePlay()
		}
		d.toast(d.msgs.Paused)
	case grammar.Resume:
		if !d.player.IsPlaying() {
			d.player.TogglePlay()
		}
		d.toast(d.msgs.Resumed)
	case grammar.Next:
		d.player.Next()
		d.toast(d.msgs.NextSong)
	case grammar.Previous:
		d.player.Previous()
	case grammar.Shuffle:
		d.player.ShuffleQueue()
		d.say(d.msgs.Shuffling)
	case grammar.VolumeUp:
		d.player.SetVolume(d.player.Volume() + d.step)
	case grammar.VolumeDown:
		d.player.SetVolume(d.player.Volume() - d.step)
	case grammar.ToggleLike:
		if cur, ok := d.player.CurrentTrack(); ok {
			d.player.ToggleLike(cur.ID, !cur.Liked)
		}
		d.say(d.msgs.Liked)
	case grammar.PlayQuery:
		d.playQuery(ctx, cmd.Arg)
	case grammar.PlayMood:
		d.playMood(ctx, cmd.Arg)
	default:
		zlog.Debug().Str("command", cmd.Kind.String()).Msg("nothing to dispatch")
	}
}

func (d *Dispatcher) playQuery(ctx context.Context, query string) {
	d.toast(fmt.Sprintf(d.msgs.Searching, query))

	tracks, ok := d.loadTracks(ctx)
	if !ok {
		return
	}
	match, found := library.FindMatch(tracks, query)
	if !found {
		d.say(fmt.Sprintf(d.msgs.NotFound, query))
		return
	}
	d.player.Play(match, nil)
	d.toast(fmt.Sprintf(d.msgs.Playing, match.Title))
}

func (d *Dispatcher) playMood(ctx context.Context, mood string) {
	tracks, ok := d.loadTracks(ctx)
	if !ok {
		return
	}
	d.say(fmt.Sprintf(d.msgs.Mood, mood))
	d.player.Play(tracks[d.pick(len(tracks))], nil)
}

// loadTracks consults the cached track list, forcing one fresh fetch before
// giving up on an empty cache. It speaks the failure and returns false when
// nothing is playable.
func (d *Dispatcher) loadTracks(ctx context.Context) ([]track.Track, bool) {
	if d.library == nil {
		d.say(d.msgs.LibraryUnreachable)
		return nil, false
	}
	tracks, err := d.library.Tracks(ctx)
	if err == nil && len(tracks) == 0 {
		tracks, err = d.library.Refresh(ctx)
	}
	if err != nil {
		zlog.Warn().Err(err).Msg("library fetch failed")
		d.say(d.msgs.LibraryUnreachable)
		return nil, false
	}
	if len(tracks) == 0 {
		d.say(d.msgs.LibraryEmpty)
		return nil, false
	}
	return tracks, true
}

func (d *Dispatcher) say(text string) {
	if d.speaker != nil {
		d.speaker.Say(text)
	}
}

func (d *Dispatcher) toast(text string) {
	if d.announcer != nil {
		d.announcer.Toast(text)
	}
}

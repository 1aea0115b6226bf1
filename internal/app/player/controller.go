package player

import (
	"context"
	"math/rand"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/domain/track"
)

// DefaultVolume is the volume used before the user ever adjusts it.
const DefaultVolume = 0.7

// Controller manages playback state with an internal queue.
type Controller struct {
	mu sync.RWMutex

	queue  []track.Track
	index  int // Position of the current track in queue; meaningless when state is StateIdle
	state  State
	volume float64

	eventCh chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new player controller.
func NewController() *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		queue:   make([]track.Track, 0),
		state:   StateIdle,
		volume:  DefaultVolume,
		eventCh: make(chan Event, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Play starts playing the given track. When queue is nil the track
// becomes a singleton queue; otherwise the queue replaces the current
// one and playback starts at the track's position in it.
func (c *Controller) Play(t track.Track, queue []track.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(queue) == 0 {
		queue = []track.Track{t}
	}
	c.queue = make([]track.Track, len(queue))
	copy(c.queue, queue)

	c.index = 0
	for i := range c.queue {
		if c.queue[i].ID == t.ID {
			c.index = i
			break
		}
	}
	c.state = StatePlaying

	zlog.Debug().Msgf("player: playing track: id=%s title=%q queue_len=%d", t.ID, t.Title, len(c.queue))
	c.sendEventLocked(EventTrackChanged)
}

// TogglePlay flips between playing and paused. With no current track it
// is a no-op.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying:
		c.state = StatePaused
	case StatePaused:
		c.state = StatePlaying
	default:
		return
	}
	c.sendEventLocked(EventStateChanged)
}

// Next advances to the next track, wrapping around at the end of the
// queue. A no-op when the queue is empty.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 || c.state == StateIdle {
		return
	}
	c.index = (c.index + 1) % len(c.queue)
	c.state = StatePlaying
	c.sendEventLocked(EventTrackChanged)
}

// Previous steps back to the previous track, wrapping around at the
// start of the queue. A no-op when the queue is empty.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 || c.state == StateIdle {
		return
	}
	if c.index == 0 {
		c.index = len(c.queue) - 1
	} else {
		c.index--
	}
	c.state = StatePlaying
	c.sendEventLocked(EventTrackChanged)
}

// SetVolume sets the volume, clamped to [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	c.sendEventLocked(EventVolumeChanged)
}

// ToggleLike sets the liked flag on the track wherever it appears in
// the queue. Unknown track IDs are a harmless no-op.
func (c *Controller) ToggleLike(trackID string, liked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for i := range c.queue {
		if c.queue[i].ID == trackID {
			c.queue[i].Liked = liked
			changed = true
		}
	}
	if changed {
		c.sendEventLocked(EventQueueChanged)
	}
}

// ShuffleQueue shuffles the queue. The current track keeps playing;
// only its position in the queue changes.
func (c *Controller) ShuffleQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) < 2 {
		return
	}

	currentID := ""
	if c.state != StateIdle {
		currentID = c.queue[c.index].ID
	}

	rand.Shuffle(len(c.queue), func(i, j int) {
		c.queue[i], c.queue[j] = c.queue[j], c.queue[i]
	})

	if currentID != "" {
		for i := range c.queue {
			if c.queue[i].ID == currentID {
				c.index = i
				break
			}
		}
	}
	c.sendEventLocked(EventQueueChanged)
}

// CurrentTrack returns the currently selected track.
func (c *Controller) CurrentTrack() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateIdle || len(c.queue) == 0 {
		return track.Track{}, false
	}
	return c.queue[c.index], true
}

// IsPlaying returns true if a track is actively playing.
func (c *Controller) IsPlaying() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StatePlaying
}

// Volume returns the current volume in [0, 1].
func (c *Controller) Volume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume
}

// GetState returns the current playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Queue returns a copy of the queue.
func (c *Controller) Queue() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]track.Track, len(c.queue))
	copy(out, c.queue)
	return out
}

// Close closes the controller and releases resources.
func (c *Controller) Close() {
	c.cancel()
	close(c.eventCh)
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(typ EventType) {
	e := Event{
		Type:   typ,
		State:  c.state,
		Volume: c.volume,
	}
	if c.state != StateIdle && len(c.queue) > 0 {
		t := c.queue[c.index]
		e.Track = &t
	}

	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}

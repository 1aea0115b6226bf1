package player

import "github.com/cloudly-labs/orb/internal/domain/track"

// EventType represents a player event type.
type EventType int

const (
	EventTrackChanged  EventType = iota // Current track changed
	EventStateChanged                   // Playing/paused flipped
	EventVolumeChanged                  // Volume changed
	EventQueueChanged                   // Queue order or contents changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventStateChanged:
		return "state_changed"
	case EventVolumeChanged:
		return "volume_changed"
	case EventQueueChanged:
		return "queue_changed"
	default:
		return "unknown"
	}
}

// Event represents a player state change for UI consumers.
type Event struct {
	Type   EventType
	Track  *track.Track // Current track (nil when idle)
	State  State
	Volume float64
}

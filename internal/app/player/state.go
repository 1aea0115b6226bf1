// Package player provides the in-process playback state the voice
// engine controls: current track, queue, volume, and likes. Audio
// rendering belongs to the UI; this controller is the source of truth
// it renders from.
package player

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No track selected
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

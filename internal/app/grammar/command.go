// Package grammar maps normalized utterances to playback commands.
package grammar

// Kind identifies a recognized command intent.
type Kind int

const (
	Unrecognized Kind = iota // No rule matched
	Pause                    // Pause playback
	Resume                   // Resume playback
	Next                     // Skip to next track
	Previous                 // Return to previous track
	Shuffle                  // Shuffle the queue
	VolumeUp                 // Raise volume by one step
	VolumeDown               // Lower volume by one step
	ToggleLike               // Toggle like on the current track
	PlayQuery                // Search the library and play a match
	PlayMood                 // Play something for a mood keyword
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Shuffle:
		return "shuffle"
	case VolumeUp:
		return "volume_up"
	case VolumeDown:
		return "volume_down"
	case ToggleLike:
		return "toggle_like"
	case PlayQuery:
		return "play_query"
	case PlayMood:
		return "play_mood"
	case Unrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// Command is a recognized intent with its optional argument.
// Arg holds the search query for PlayQuery and the mood token for
// PlayMood; it is empty for every other kind.
type Command struct {
	Kind Kind
	Arg  string
}

// NeedsLibrary reports whether dispatching the command requires a
// library lookup.
func (c Command) NeedsLibrary() bool {
	return c.Kind == PlayQuery || c.Kind == PlayMood
}

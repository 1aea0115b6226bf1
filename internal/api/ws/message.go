package ws

import "github.com/cloudly-labs/orb/internal/domain/track"

// Message is the envelope for everything sent to browser clients.
// SequenceNo lets a client detect dropped frames after a reconnect.
type Message struct {
	Type       string `json:"type"`
	SequenceNo uint64 `json:"sequenceNo"`

	// orb_state
	State     string `json:"state,omitempty"`
	Listening *bool  `json:"listening,omitempty"`

	// transcript
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`

	// player
	Track       *track.Track `json:"track,omitempty"`
	PlayerState string       `json:"playerState,omitempty"`
	Volume      *float64     `json:"volume,omitempty"`

	// search_results
	Query  string        `json:"query,omitempty"`
	Tracks []track.Track `json:"tracks,omitempty"`
}

const (
	// TypeOrbState reports the voice session state.
	TypeOrbState = "orb_state"
	// TypeTranscript reports a recognized utterance.
	TypeTranscript = "transcript"
	// TypeToast shows a transient acknowledgment.
	TypeToast = "toast"
	// TypePlayer reports playback changes.
	TypePlayer = "player"
	// TypeSearchResults answers a client search request.
	TypeSearchResults = "search_results"
)

// clientRequest is what clients are allowed to send upstream.
type clientRequest struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

package voice

// EventType identifies the kind of session event.
type EventType int

const (
	// EventStateChanged reports a session state transition.
	EventStateChanged EventType = iota
	// EventTranscript reports a recognized utterance.
	EventTranscript
)

// Event is delivered on the controller's event channel for UI consumers.
type Event struct {
	Type       EventType
	State      SessionState
	Open       bool
	Transcript string
	Final      bool
}

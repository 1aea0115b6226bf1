package voice

// SessionState is the externally visible phase of the command session.
type SessionState int

const (
	// StateIdle means no session is open and input is gated on the wake word.
	StateIdle SessionState = iota
	// StateListening means the session is open and waiting for a command.
	StateListening
	// StateProcessing means a library-backed command is in flight.
	StateProcessing
	// StateSpeaking means spoken feedback is currently playing.
	StateSpeaking
	// StateActive means a command just completed and the session is about to close.
	StateActive
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

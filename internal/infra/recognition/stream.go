// Package recognition provides the speech-to-text stream the voice
// engine listens to, together with the restart policy that keeps it
// "always on" despite engines that idle-time-out.
package recognition

import "github.com/cockroachdb/errors"

// ErrNoSpeech is returned by an engine run that terminated because no
// speech was detected in the interval. It is expected and frequent, not
// a failure.
var ErrNoSpeech = errors.New("no speech detected")

// TranscriptEvent is a single recognition result. Text carries
// everything recognized in the current utterance attempt, lowercased,
// not just the delta since the previous event.
type TranscriptEvent struct {
	Text  string
	Final bool
}

// Engine is a single run of a speech-to-text source.
//
// Run captures audio and calls emit for every interim and final
// transcript until the engine terminates on its own (idle timeout,
// device loss) or Stop is called. Engines are best-effort: Run
// returning is normal, and the Supervisor restarts it.
type Engine interface {
	Name() string
	Run(emit func(TranscriptEvent)) error
	Stop()
}

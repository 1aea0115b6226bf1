package feedback

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

// NoopSynthesizer logs what it would have said. Used when no TTS binary
// is available so the assistant keeps working silently.
type NoopSynthesizer struct{}

// Synthesize logs the text and returns immediately.
func (NoopSynthesizer) Synthesize(_ context.Context, text string) error {
	zlog.Debug().Msgf("feedback: would say %q", text)
	return nil
}

// Package feedback provides the spoken-feedback channel.
//
// A Speaker owns at most one utterance at a time: speaking a new text
// cancels whatever is still playing so acknowledgments never queue up
// and play late or out of order.
package feedback

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// Synthesizer produces audio for a short text. Synthesize blocks until
// the audio has finished playing or the context is cancelled.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// Speaker speaks short acknowledgment texts through a Synthesizer.
type Speaker struct {
	mu     sync.Mutex
	synth  Synthesizer
	cancel context.CancelFunc

	// onStart fires when an utterance begins, onDone when it finishes
	// without being cancelled. Both are invoked from the speaking
	// goroutine, never inline from Say.
	onStart func()
	onDone  func()
}

// NewSpeaker creates a speaker. The callbacks may be nil.
func NewSpeaker(synth Synthesizer, onStart, onDone func()) *Speaker {
	return &Speaker{
		synth:   synth,
		onStart: onStart,
		onDone:  onDone,
	}
}

// Say speaks the text, cancelling any utterance still in progress.
// It returns immediately; completion is reported via the onDone hook.
func (s *Speaker) Say(text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		if s.onStart != nil {
			s.onStart()
		}

		err := s.synth.Synthesize(ctx, text)

		if ctx.Err() != nil {
			// Superseded by a newer utterance or shut down; the newer
			// utterance owns the completion callback now.
			return
		}
		if err != nil {
			zlog.Warn().Err(err).Msgf("feedback: synthesis failed: text=%q", text)
		}
		if s.onDone != nil {
			s.onDone()
		}
	}()
}

// Close cancels any utterance in progress.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

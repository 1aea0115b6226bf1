package recognition

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/cockroachdb/errors"
)

// DefaultRestartDelay spaces engine restarts so a persistently failing
// engine does not spin.
const DefaultRestartDelay = 500 * time.Millisecond

// Supervisor keeps an Engine running for as long as listening is
// enabled, restarting it after a short delay whenever it terminates.
// Teardown flips the enabled flag before stopping the engine so a
// termination observed mid-shutdown can never schedule a restart.
type Supervisor struct {
	mu      sync.Mutex
	engine  Engine
	delay   time.Duration
	handler func(TranscriptEvent)

	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSupervisor creates a supervisor delivering transcript events to
// handler. A non-positive delay falls back to DefaultRestartDelay.
func NewSupervisor(engine Engine, delay time.Duration, handler func(TranscriptEvent)) *Supervisor {
	if delay <= 0 {
		delay = DefaultRestartDelay
	}
	return &Supervisor{
		engine:  engine,
		delay:   delay,
		handler: handler,
	}
}

// Enable starts the engine loop. Enabling while already enabled is
// tolerated and ignored.
func (s *Supervisor) Enable() {
	s.mu.Lock()
	if s.enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	zlog.Info().Msgf("recognition: listening enabled: engine=%s", s.engine.Name())
	go s.loop(stopCh, doneCh)
}

// Disable stops the engine and suppresses any pending restart. It
// blocks until the loop has exited.
func (s *Supervisor) Disable() {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	// Flip the flag before stopping the engine: the loop checks it
	// after every run, so a restart can no longer be scheduled.
	s.enabled = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	s.engine.Stop()
	<-doneCh
	zlog.Info().Msgf("recognition: listening disabled: engine=%s", s.engine.Name())
}

// Enabled reports whether listening is currently enabled.
func (s *Supervisor) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Supervisor) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		err := s.engine.Run(s.emit)
		switch {
		case err == nil:
			// Spontaneous termination, e.g. engine idle timeout.
		case errors.Is(err, ErrNoSpeech):
			// Expected and frequent; stay quiet.
		default:
			zlog.Warn().Err(err).Msgf("recognition: engine run failed: engine=%s", s.engine.Name())
		}

		if !s.Enabled() {
			return
		}

		select {
		case <-time.After(s.delay):
		case <-stopCh:
			return
		}

		if !s.Enabled() {
			return
		}
	}
}

func (s *Supervisor) emit(e TranscriptEvent) {
	if !s.Enabled() {
		return
	}
	s.handler(e)
}

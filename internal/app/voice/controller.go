package voice

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/app/grammar"
	"github.com/cloudly-labs/orb/internal/app/wakeword"
)

const (
	// DefaultQuietPeriod closes an open session after this much silence.
	DefaultQuietPeriod = 5 * time.Second
	// DefaultSuccessClose closes the session shortly after a completed command.
	DefaultSuccessClose = 1 * time.Second

	eventBufferSize = 16
)

// Dispatcher executes an interpreted command against the playback capabilities.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd grammar.Command)
}

// Speaker plays spoken feedback. Say must not block.
type Speaker interface {
	Say(text string)
}

// Config tunes the session lifetime.
type Config struct {
	QuietPeriod  time.Duration
	SuccessClose time.Duration
	WakeAck      string
}

func (c *Config) fillDefaults() {
	if c.QuietPeriod <= 0 {
		c.QuietPeriod = DefaultQuietPeriod
	}
	if c.SuccessClose <= 0 {
		c.SuccessClose = DefaultSuccessClose
	}
	if c.WakeAck == "" {
		c.WakeAck = "I'm here"
	}
}

// Controller owns the command session state machine. Transcripts flow in
// through HandleTranscript; while no session is open they are matched against
// the wake word only, and while one is open final transcripts are interpreted
// and dispatched. Every transition is serialized under a single mutex.
type Controller struct {
	mu sync.Mutex

	cfg        Config
	detector   *wakeword.Detector
	dispatcher Dispatcher
	speaker    Speaker

	state          SessionState
	isOpen         bool
	lastTranscript string

	closeTimer *time.Timer
	timerGen   uint64

	eventCh chan Event
	closed  bool
}

// New returns a controller in the idle state.
func New(cfg Config, detector *wakeword.Detector, dispatcher Dispatcher, speaker Speaker) *Controller {
	cfg.fillDefaults()
	if detector == nil {
		detector = wakeword.New(nil)
	}
	return &Controller{
		cfg:        cfg,
		detector:   detector,
		dispatcher: dispatcher,
		speaker:    speaker,
		state:      StateIdle,
		eventCh:    make(chan Event, eventBufferSize),
	}
}

// Events returns the channel of session events. Events are dropped rather
// than blocking when the consumer falls behind.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// State returns the current session state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsOpen reports whether a command session is open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// LastTranscript returns the most recent normalized utterance.
func (c *Controller) LastTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTranscript
}

// HandleTranscript feeds one recognized utterance into the state machine.
// It is safe to call from the recognition goroutine.
func (c *Controller) HandleTranscript(raw string, final bool) {
	text := grammar.Normalize(raw)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.lastTranscript = text
	c.sendEventLocked(Event{Type: EventTranscript, Transcript: text, Final: final})

	if !c.isOpen {
		if c.detector.Match(text) {
			c.openSessionLocked()
		}
		c.mu.Unlock()
		return
	}

	if !final {
		c.mu.Unlock()
		return
	}

	// Any final utterance extends the quiet period of an open session.
	c.armCloseTimerLocked(c.cfg.QuietPeriod)

	cmd := grammar.Interpret(text)
	if cmd.Kind == grammar.Unrecognized {
		c.mu.Unlock()
		return
	}
	if cmd.NeedsLibrary() {
		c.setStateLocked(StateProcessing)
	}
	c.mu.Unlock()

	zlog.Debug().Str("command", cmd.Kind.String()).Str("arg", cmd.Arg).Msg("dispatching voice command")
	c.dispatcher.Dispatch(context.Background(), cmd)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.isOpen {
		// Session timed out while the command was in flight.
		return
	}
	c.setStateLocked(StateActive)
	c.armCloseTimerLocked(c.cfg.SuccessClose)
}

// OnSpeechStart marks spoken feedback as playing.
func (c *Controller) OnSpeechStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.setStateLocked(StateSpeaking)
}

// OnSpeechDone reverts the speaking state once feedback finishes.
func (c *Controller) OnSpeechDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateSpeaking {
		return
	}
	if c.isOpen {
		c.setStateLocked(StateListening)
	} else {
		c.setStateLocked(StateIdle)
	}
}

// Close tears the controller down. No further events are delivered.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancelCloseTimerLocked()
	c.isOpen = false
	c.state = StateIdle
	close(c.eventCh)
}

func (c *Controller) openSessionLocked() {
	c.isOpen = true
	c.setStateLocked(StateListening)
	c.armCloseTimerLocked(c.cfg.QuietPeriod)
	if c.speaker != nil {
		c.speaker.Say(c.cfg.WakeAck)
	}
	zlog.Info().Msg("command session opened")
}

func (c *Controller) closeSessionLocked() {
	c.isOpen = false
	c.cancelCloseTimerLocked()
	c.setStateLocked(StateIdle)
	zlog.Info().Msg("command session closed")
}

// armCloseTimerLocked replaces any pending close timer. The generation
// counter keeps a superseded timer that already fired from closing the
// session out from under the newer one.
func (c *Controller) armCloseTimerLocked(d time.Duration) {
	c.cancelCloseTimerLocked()
	c.timerGen++
	gen := c.timerGen
	c.closeTimer = time.AfterFunc(d, func() {
		c.onCloseTimer(gen)
	})
}

func (c *Controller) cancelCloseTimerLocked() {
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
	c.timerGen++
}

func (c *Controller) onCloseTimer(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.timerGen || !c.isOpen {
		return
	}
	c.closeSessionLocked()
}

func (c *Controller) setStateLocked(s SessionState) {
	if c.state == s {
		return
	}
	c.state = s
	c.sendEventLocked(Event{Type: EventStateChanged, State: s, Open: c.isOpen})
}

func (c *Controller) sendEventLocked(e Event) {
	select {
	case c.eventCh <- e:
	default:
		zlog.Warn().Msg("session event channel full, dropping event")
	}
}

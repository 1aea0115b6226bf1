package recognition

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// scriptedEngine terminates each run immediately with the next error in
// its script (nil means clean termination), counting runs.
type scriptedEngine struct {
	mu     sync.Mutex
	errs   []error
	runs   atomic.Int32
	events []TranscriptEvent
}

func (e *scriptedEngine) Name() string { return "scripted" }

func (e *scriptedEngine) Run(emit func(TranscriptEvent)) error {
	n := int(e.runs.Add(1)) - 1

	e.mu.Lock()
	events := e.events
	e.mu.Unlock()
	for _, ev := range events {
		emit(ev)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if n < len(e.errs) {
		return e.errs[n]
	}
	return nil
}

func (e *scriptedEngine) Stop() {}

// blockingEngine runs until stopped, then terminates cleanly.
type blockingEngine struct {
	stopCh chan struct{}
	runs   atomic.Int32
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{stopCh: make(chan struct{}, 1)}
}

func (e *blockingEngine) Name() string { return "blocking" }

func (e *blockingEngine) Run(emit func(TranscriptEvent)) error {
	e.runs.Add(1)
	<-e.stopCh
	return nil
}

func (e *blockingEngine) Stop() {
	select {
	case e.stopCh <- struct{}{}:
	default:
	}
}

func TestSupervisor_RestartsAfterTermination(t *testing.T) {
	engine := &scriptedEngine{}
	s := NewSupervisor(engine, 10*time.Millisecond, func(TranscriptEvent) {})

	s.Enable()
	defer s.Disable()

	assert.Eventually(t, func() bool {
		return engine.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond, "engine must be restarted after each termination")
}

func TestSupervisor_SwallowsNoSpeech(t *testing.T) {
	engine := &scriptedEngine{errs: []error{ErrNoSpeech, ErrNoSpeech}}
	s := NewSupervisor(engine, 5*time.Millisecond, func(TranscriptEvent) {})

	s.Enable()
	defer s.Disable()

	assert.Eventually(t, func() bool {
		return engine.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond, "no-speech terminations must not halt the loop")
}

func TestSupervisor_DeliversEvents(t *testing.T) {
	engine := &scriptedEngine{events: []TranscriptEvent{
		{Text: "hey cloudly", Final: false},
		{Text: "hey cloudly", Final: true},
	}}

	var mu sync.Mutex
	var got []TranscriptEvent
	s := NewSupervisor(engine, 10*time.Millisecond, func(e TranscriptEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	s.Enable()
	defer s.Disable()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.False(t, got[0].Final)
	assert.True(t, got[1].Final)
	mu.Unlock()
}

func TestSupervisor_TeardownCancelsRestarts(t *testing.T) {
	engine := newBlockingEngine()
	s := NewSupervisor(engine, 5*time.Millisecond, func(TranscriptEvent) {})

	s.Enable()
	assert.Eventually(t, func() bool {
		return engine.runs.Load() == 1
	}, time.Second, time.Millisecond)

	s.Disable()
	assert.False(t, s.Enabled())

	// A spontaneous termination after teardown (simulated by another
	// Stop poke) must not bring the engine back.
	engine.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), engine.runs.Load(), "no restart after teardown")
}

func TestSupervisor_EnableIsIdempotent(t *testing.T) {
	engine := newBlockingEngine()
	s := NewSupervisor(engine, 5*time.Millisecond, func(TranscriptEvent) {})

	s.Enable()
	s.Enable()
	defer s.Disable()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), engine.runs.Load(), "double enable must not start a second loop")
}

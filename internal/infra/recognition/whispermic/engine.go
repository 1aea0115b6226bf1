// Package whispermic provides the microphone recognition engine:
// portaudio capture, spectral-flux voice activity detection, and
// whisper transcription of each utterance.
package whispermic

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"
	zlog "github.com/rs/zerolog/log"

	"github.com/cloudly-labs/orb/internal/infra/recognition"
	"github.com/cloudly-labs/orb/internal/infra/recognition/whisperstt"
)

const (
	sampleRate = 16000
	frameSize  = 8196

	// quietTime is how long the flux must stay low before an utterance
	// is considered finished.
	quietTime = 200 * time.Millisecond
)

// Config configures the microphone engine.
type Config struct {
	Transcriber *whisperstt.Transcriber

	// InterimInterval is how often a partial transcript is emitted
	// while an utterance is still in progress.
	InterimInterval time.Duration

	// IdleTimeout terminates a run with ErrNoSpeech when nothing was
	// heard for this long, handing control back to the restart policy.
	IdleTimeout time.Duration

	// Capture optionally records each finished utterance as a WAV
	// file for debugging.
	Capture *Capture
}

// Engine is a recognition.Engine reading from the default microphone.
type Engine struct {
	cfg Config

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}

	audioInit bool
}

// New creates the microphone engine and initializes portaudio. An
// initialization failure means no usable audio device; the caller
// degrades to disabled listening.
func New(cfg Config) (*Engine, error) {
	if cfg.Transcriber == nil {
		return nil, errors.New("transcriber is required")
	}
	if cfg.InterimInterval <= 0 {
		cfg.InterimInterval = 700 * time.Millisecond
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize audio")
	}

	return &Engine{cfg: cfg, audioInit: true}, nil
}

// Name returns the engine name.
func (e *Engine) Name() string { return "whisper-mic" }

// Stop makes the current Run return promptly.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopCh != nil && !e.stopped {
		e.stopped = true
		close(e.stopCh)
	}
}

// Close releases the audio subsystem.
func (e *Engine) Close() {
	if e.audioInit {
		if err := portaudio.Terminate(); err != nil {
			zlog.Warn().Err(err).Msg("whispermic: failed to terminate audio")
		}
		e.audioInit = false
	}
}

// Run captures one utterance from the microphone, emitting interim
// transcripts while speech is in progress and a final transcript once
// the speaker goes quiet. It returns ErrNoSpeech on idle timeout.
func (e *Engine) Run(emit func(recognition.TranscriptEvent)) error {
	e.mu.Lock()
	e.stopCh = make(chan struct{})
	e.stopped = false
	stopCh := e.stopCh
	e.mu.Unlock()

	in := make([]int16, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(in), in)
	if err != nil {
		return errors.Wrap(err, "failed to open audio stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return errors.Wrap(err, "failed to start audio stream")
	}
	defer func() { _ = stream.Stop() }()

	var (
		heardSomething bool
		quiet          bool
		quietStart     time.Time
		lastFlux       float64
		lastInterim    time.Time
		utterance      []int
	)

	v := newVAD(frameSize)
	started := time.Now()

	for {
		select {
		case <-stopCh:
			return nil
		default:
		}

		if err := stream.Read(); err != nil {
			return errors.Wrap(err, "audio read failed")
		}

		flux := v.Flux(in)
		if lastFlux == 0 {
			lastFlux = flux
			continue
		}

		if !heardSomething {
			if flux >= lastFlux*fluxRatio {
				heardSomething = true
				for _, s := range in {
					utterance = append(utterance, int(s))
				}
				lastInterim = time.Now()
			} else {
				lastFlux = flux
				if time.Since(started) > e.cfg.IdleTimeout {
					return recognition.ErrNoSpeech
				}
			}
			continue
		}

		for _, s := range in {
			utterance = append(utterance, int(s))
		}

		if flux*fluxRatio <= lastFlux {
			if !quiet {
				quiet = true
				quietStart = time.Now()
			} else if time.Since(quietStart) > quietTime {
				break
			}
		} else {
			quiet = false
			lastFlux = flux

			// Partial transcript while the utterance continues, so a
			// wake word can be caught before the final result.
			if time.Since(lastInterim) >= e.cfg.InterimInterval {
				lastInterim = time.Now()
				if text := e.transcribe(utterance); text != "" {
					emit(recognition.TranscriptEvent{Text: text, Final: false})
				}
			}
		}
	}

	if e.cfg.Capture != nil {
		e.cfg.Capture.Save(utterance)
	}

	text := e.transcribe(utterance)
	if text == "" {
		return recognition.ErrNoSpeech
	}
	emit(recognition.TranscriptEvent{Text: text, Final: true})
	return nil
}

func (e *Engine) transcribe(samples []int) string {
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	text, err := e.cfg.Transcriber.Transcribe(buf.AsFloat32Buffer().Data)
	if err != nil {
		zlog.Warn().Err(err).Msg("whispermic: transcription failed")
		return ""
	}
	return text
}

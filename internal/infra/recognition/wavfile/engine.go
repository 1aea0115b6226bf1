// Package wavfile provides a recognition engine that transcribes a
// recorded WAV file instead of live microphone audio. Useful for
// developing the voice loop on machines without a capture device.
package wavfile

import (
	"github.com/cockroachdb/errors"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"

	"github.com/cloudly-labs/orb/internal/infra/recognition"
	"github.com/cloudly-labs/orb/internal/infra/recognition/whisperstt"
)

// Engine replays one WAV file as a single final transcript. After the
// first pass each subsequent Run blocks until stopped, so the
// supervisor's restart policy does not loop the file forever.
type Engine struct {
	fs          afero.Fs
	path        string
	transcriber *whisperstt.Transcriber

	played bool
	stopCh chan struct{}
}

// New creates the file engine.
func New(fs afero.Fs, path string, transcriber *whisperstt.Transcriber) (*Engine, error) {
	if path == "" {
		return nil, errors.New("wav file path is required")
	}
	if transcriber == nil {
		return nil, errors.New("transcriber is required")
	}
	return &Engine{
		fs:          fs,
		path:        path,
		transcriber: transcriber,
		stopCh:      make(chan struct{}),
	}, nil
}

// Name returns the engine name.
func (e *Engine) Name() string { return "wav-file" }

// Stop makes Run return.
func (e *Engine) Stop() {
	select {
	case <-e.stopCh:
	default:
		close(e.stopCh)
	}
}

// Run transcribes the file once and emits it as a final transcript.
func (e *Engine) Run(emit func(recognition.TranscriptEvent)) error {
	if e.played {
		<-e.stopCh
		return nil
	}
	e.played = true

	f, err := e.fs.Open(e.path)
	if err != nil {
		return errors.Wrapf(err, "failed to open wav file %q", e.path)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return errors.Wrap(err, "failed to decode wav file")
	}

	text, err := e.transcriber.Transcribe(buf.AsFloat32Buffer().Data)
	if err != nil {
		return errors.Wrap(err, "transcription failed")
	}
	if text == "" {
		return recognition.ErrNoSpeech
	}

	emit(recognition.TranscriptEvent{Text: text, Final: true})
	return nil
}

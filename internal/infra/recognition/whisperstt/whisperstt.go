// Package whisperstt wraps the whisper.cpp bindings behind a small
// transcriber shared by the microphone and file engines.
package whisperstt

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Transcriber turns PCM audio into lowercased transcript text.
type Transcriber struct {
	model whisper.Model
}

// New loads a whisper model from disk. A missing or unloadable model is
// the "unsupported platform" case: the caller degrades to disabled
// listening instead of crashing.
func New(modelPath string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper model path is required")
	}
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load whisper model %q", modelPath)
	}
	return &Transcriber{model: model}, nil
}

// Transcribe runs the model over 16 kHz mono float32 samples and
// returns the joined segment text, lowercased and trimmed.
func (t *Transcriber) Transcribe(samples []float32) (string, error) {
	ctx, err := t.model.NewContext()
	if err != nil {
		return "", errors.Wrap(err, "failed to create whisper context")
	}

	var cb whisper.SegmentCallback
	if err := ctx.Process(samples, cb); err != nil {
		return "", errors.Wrap(err, "whisper processing failed")
	}

	var parts []string
	seen := make(map[string]bool)
	for {
		segment, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to read whisper segment")
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		// Bracketed segments are non-speech annotations like (music)
		// or [BLANK_AUDIO].
		if text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}

	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " "))), nil
}

// Close releases the model.
func (t *Transcriber) Close() error {
	return t.model.Close()
}

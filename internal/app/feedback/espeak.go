package feedback

import (
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// SystemSynthesizer speaks through a system TTS binary (espeak-ng by
// default). Cancellation kills the subprocess, which cuts the audio off
// mid-word; that is the desired behavior for superseded acknowledgments.
type SystemSynthesizer struct {
	command string
	voice   string
	rate    int
}

// SystemConfig configures the system TTS synthesizer.
type SystemConfig struct {
	Command string // TTS binary, default "espeak-ng"
	Voice   string // voice name, passed as -v when set
	Rate    int    // words per minute, passed as -s when positive
}

// NewSystemSynthesizer resolves the TTS binary. A missing binary is
// reported as an error so the caller can degrade to a no-op speaker.
func NewSystemSynthesizer(cfg SystemConfig) (*SystemSynthesizer, error) {
	command := cfg.Command
	if command == "" {
		command = "espeak-ng"
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return nil, errors.Wrapf(err, "tts binary %q not found", command)
	}
	return &SystemSynthesizer{
		command: resolved,
		voice:   cfg.Voice,
		rate:    cfg.Rate,
	}, nil
}

// Synthesize speaks the text, blocking until the audio finishes or the
// context is cancelled.
func (s *SystemSynthesizer) Synthesize(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var args []string
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	if s.rate > 0 {
		args = append(args, "-s", strconv.Itoa(s.rate))
	}
	args = append(args, trimmed)

	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "tts subprocess failed")
	}
	return nil
}

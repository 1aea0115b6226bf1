package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
library:
  base_url: http://localhost:3000
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 5000, cfg.Voice.QuietPeriodMs)
	assert.Equal(t, 1000, cfg.Voice.SuccessCloseMs)
	assert.InDelta(t, 0.2, cfg.Voice.VolumeStep, 1e-9)
	assert.Equal(t, "I'm here", cfg.Voice.WakeAck)
	assert.Equal(t, "whisper", cfg.Recognizer.Engine)
	assert.Equal(t, 500, cfg.Recognizer.RestartDelayMs)
	assert.Equal(t, "espeak-ng", cfg.Speech.Command)
	assert.Equal(t, "Paused", cfg.Messages.Paused)
	assert.Equal(t, "I couldn't find %s", cfg.Messages.NotFound)

	assert.Equal(t, 5*time.Second, cfg.Voice.QuietPeriod())
	assert.Equal(t, time.Second, cfg.Voice.SuccessClose())
	assert.Equal(t, 500*time.Millisecond, cfg.Recognizer.RestartDelay())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  addr: ":9000"
voice:
  wake_phrases: ["hey orb"]
  quiet_period_ms: 8000
  volume_step: 0.1
recognizer:
  engine: wav
  settings:
    model_path: /models/ggml-base.en.bin
    path: /tmp/sample.wav
library:
  base_url: http://localhost:3000
  token: file-token
messages:
  paused: "Halted"
`))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"hey orb"}, cfg.Voice.WakePhrases)
	assert.Equal(t, 8000, cfg.Voice.QuietPeriodMs)
	assert.InDelta(t, 0.1, cfg.Voice.VolumeStep, 1e-9)
	assert.Equal(t, "Halted", cfg.Messages.Paused)
	// Unset messages still get defaults.
	assert.Equal(t, "Resumed", cfg.Messages.Resumed)

	wav, err := cfg.Recognizer.DecodeWavSettings()
	require.NoError(t, err)
	assert.Equal(t, "/models/ggml-base.en.bin", wav.ModelPath)
	assert.Equal(t, "/tmp/sample.wav", wav.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIBRARY_BASE_URL", "http://music.internal:8080")
	t.Setenv("LIBRARY_TOKEN", "env-token")
	t.Setenv("WHISPER_MODEL_PATH", "/models/ggml-tiny.en.bin")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://music.internal:8080", cfg.Library.BaseURL)
	assert.Equal(t, "env-token", cfg.Library.Token)

	whisper, err := cfg.Recognizer.DecodeWhisperSettings()
	require.NoError(t, err)
	assert.Equal(t, "/models/ggml-tiny.en.bin", whisper.ModelPath)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing library base url",
			content: "server:\n  addr: \":8090\"\n",
			errMsg:  "BaseURL",
		},
		{
			name: "unknown recognizer engine",
			content: minimalConfig + `
recognizer:
  engine: sphinx
`,
			errMsg: "Engine",
		},
		{
			name: "volume step out of range",
			content: minimalConfig + `
voice:
  volume_step: 1.5
`,
			errMsg: "VolumeStep",
		},
		{
			name: "negative quiet period",
			content: minimalConfig + `
voice:
  quiet_period_ms: -1
`,
			errMsg: "QuietPeriodMs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDecodeWhisperSettings_RequiresModelPath(t *testing.T) {
	cfg := RecognizerConfig{Settings: map[string]any{"capture_dir": "/tmp/captures"}}
	_, err := cfg.DecodeWhisperSettings()
	assert.Error(t, err)
}

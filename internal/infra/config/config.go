// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Voice      VoiceConfig      `yaml:"voice"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Speech     SpeechConfig     `yaml:"speech"`
	Library    LibraryConfig    `yaml:"library"`
	Messages   MessagesConfig   `yaml:"messages"`
}

// ServerConfig represents the HTTP/WebSocket server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8090"`
}

// VoiceConfig tunes the command session lifetime and the wake word.
type VoiceConfig struct {
	WakePhrases    []string `yaml:"wake_phrases"`
	WakeAck        string   `yaml:"wake_ack" default:"I'm here"`
	QuietPeriodMs  int      `yaml:"quiet_period_ms" default:"5000" validate:"gt=0,lte=60000"`
	SuccessCloseMs int      `yaml:"success_close_ms" default:"1000" validate:"gt=0,lte=60000"`
	VolumeStep     float64  `yaml:"volume_step" default:"0.2" validate:"gt=0,lte=1"`
}

// QuietPeriod returns the quiet period as a duration.
func (c VoiceConfig) QuietPeriod() time.Duration {
	return time.Duration(c.QuietPeriodMs) * time.Millisecond
}

// SuccessClose returns the post-command close delay as a duration.
func (c VoiceConfig) SuccessClose() time.Duration {
	return time.Duration(c.SuccessCloseMs) * time.Millisecond
}

// RecognizerConfig selects and configures the speech recognition engine.
type RecognizerConfig struct {
	Engine         string         `yaml:"engine" default:"whisper" validate:"oneof=whisper wav disabled"`
	RestartDelayMs int            `yaml:"restart_delay_ms" default:"500" validate:"gte=0,lte=60000"`
	Settings       map[string]any `yaml:"settings"`
}

// RestartDelay returns the engine restart delay as a duration.
func (c RecognizerConfig) RestartDelay() time.Duration {
	return time.Duration(c.RestartDelayMs) * time.Millisecond
}

// WhisperSettings are the engine settings for the live microphone engine.
type WhisperSettings struct {
	ModelPath         string `mapstructure:"model_path"`
	InterimIntervalMs int    `mapstructure:"interim_interval_ms"`
	IdleTimeoutSec    int    `mapstructure:"idle_timeout_sec"`
	CaptureDir        string `mapstructure:"capture_dir"`
}

// WavSettings are the engine settings for the WAV file replay engine.
type WavSettings struct {
	ModelPath string `mapstructure:"model_path"`
	Path      string `mapstructure:"path"`
}

// DecodeWhisperSettings decodes the recognizer settings map for the
// whisper engine.
func (c RecognizerConfig) DecodeWhisperSettings() (WhisperSettings, error) {
	var s WhisperSettings
	if err := mapstructure.Decode(c.Settings, &s); err != nil {
		return s, errors.Wrap(err, "failed to decode whisper settings")
	}
	if s.ModelPath == "" {
		return s, errors.New("recognizer.settings.model_path is required for the whisper engine")
	}
	return s, nil
}

// DecodeWavSettings decodes the recognizer settings map for the wav engine.
func (c RecognizerConfig) DecodeWavSettings() (WavSettings, error) {
	var s WavSettings
	if err := mapstructure.Decode(c.Settings, &s); err != nil {
		return s, errors.Wrap(err, "failed to decode wav settings")
	}
	if s.ModelPath == "" || s.Path == "" {
		return s, errors.New("recognizer.settings.model_path and path are required for the wav engine")
	}
	return s, nil
}

// SpeechConfig configures spoken feedback.
type SpeechConfig struct {
	Engine  string `yaml:"engine" default:"system" validate:"oneof=system none"`
	Command string `yaml:"command" default:"espeak-ng"`
	Voice   string `yaml:"voice"`
	Rate    int    `yaml:"rate" default:"170" validate:"gte=0,lte=450"`
}

// LibraryConfig points at the music library service.
type LibraryConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Token   string `yaml:"token"`
}

// MessagesConfig holds the user-facing feedback strings. Entries with a
// %s verb are formatted with what they acknowledge.
type MessagesConfig struct {
	Paused             string `yaml:"paused" default:"Paused"`
	Resumed            string `yaml:"resumed" default:"Resumed"`
	NextSong           string `yaml:"next_song" default:"Next Song"`
	Shuffling          string `yaml:"shuffling" default:"Shuffling"`
	Liked              string `yaml:"liked" default:"Liked"`
	Searching          string `yaml:"searching" default:"Searching: %s"`
	Playing            string `yaml:"playing" default:"Playing %s"`
	Mood               string `yaml:"mood" default:"Playing some %s music"`
	NotFound           string `yaml:"not_found" default:"I couldn't find %s"`
	LibraryUnreachable string `yaml:"library_unreachable" default:"I can't reach the music library right now."`
	LibraryEmpty       string `yaml:"library_empty" default:"I don't see any songs in your library."`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("LIBRARY_BASE_URL"); v != "" {
		c.Library.BaseURL = v
	}
	if v := os.Getenv("LIBRARY_TOKEN"); v != "" {
		c.Library.Token = v
	}
	if v := os.Getenv("WHISPER_MODEL_PATH"); v != "" {
		if c.Recognizer.Settings == nil {
			c.Recognizer.Settings = make(map[string]any)
		}
		c.Recognizer.Settings["model_path"] = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

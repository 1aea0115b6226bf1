// Package main provides the orb voice control server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/cloudly-labs/orb/internal/api/ws"
	"github.com/cloudly-labs/orb/internal/app/dispatch"
	"github.com/cloudly-labs/orb/internal/app/feedback"
	"github.com/cloudly-labs/orb/internal/app/player"
	"github.com/cloudly-labs/orb/internal/app/voice"
	"github.com/cloudly-labs/orb/internal/app/wakeword"
	"github.com/cloudly-labs/orb/internal/infra/config"
	"github.com/cloudly-labs/orb/internal/infra/library"
	"github.com/cloudly-labs/orb/internal/infra/logger"
	"github.com/cloudly-labs/orb/internal/infra/recognition"
	"github.com/cloudly-labs/orb/internal/infra/recognition/wavfile"
	"github.com/cloudly-labs/orb/internal/infra/recognition/whispermic"
	"github.com/cloudly-labs/orb/internal/infra/recognition/whisperstt"
)

var (
	app        = kingpin.New("orb", "Cloudly voice control server")
	configPath = app.Flag("config", "Path to config file").Default("config/orb.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-engines command
	listEnginesCmd = app.Command("list-engines", "List available recognition engines and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listEnginesCmd.FullCommand() {
		printEngines()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Library client and startup scan. A failed scan is not fatal, the
	// cache is refilled on the next search.
	lib, err := library.New(library.Config{
		BaseURL: cfg.Library.BaseURL,
		Token:   cfg.Library.Token,
	})
	if err != nil {
		return fmt.Errorf("failed to create library client: %w", err)
	}
	if tracks, err := lib.Refresh(ctx); err != nil {
		zlog.Warn().Err(err).Msg("Startup library scan failed")
	} else {
		zlog.Info().Msgf("Library scan complete: %d tracks", len(tracks))
	}

	// Playback controller
	playerCtl := player.NewController()
	defer playerCtl.Close()

	// WebSocket hub for the dashboard
	hub := ws.NewHub(lib.Search)
	defer hub.Close()

	// Spoken feedback. The speaker drives the controller's speaking state,
	// the controller is created right after, so the callbacks close over it.
	synth := newSynthesizer(cfg.Speech)
	var sessionCtl *voice.Controller
	speaker := feedback.NewSpeaker(synth,
		func() {
			if sessionCtl != nil {
				sessionCtl.OnSpeechStart()
			}
		},
		func() {
			if sessionCtl != nil {
				sessionCtl.OnSpeechDone()
			}
		},
	)
	defer speaker.Close()

	// Command dispatcher
	dispatcher := dispatch.New(dispatch.Config{
		Player:     playerCtl,
		Library:    lib,
		Speaker:    speaker,
		Announcer:  hub,
		VolumeStep: cfg.Voice.VolumeStep,
		Messages:   messagesFromConfig(cfg.Messages),
	})

	// Session controller
	sessionCtl = voice.New(voice.Config{
		QuietPeriod:  cfg.Voice.QuietPeriod(),
		SuccessClose: cfg.Voice.SuccessClose(),
		WakeAck:      cfg.Voice.WakeAck,
	}, wakeword.New(cfg.Voice.WakePhrases), dispatcher, speaker)
	defer sessionCtl.Close()

	// Recognition engine and restart supervisor. No usable engine means
	// the server still runs, just without voice input.
	var supervisor *recognition.Supervisor
	engine, engineClose, err := newEngine(cfg.Recognizer)
	if err != nil {
		zlog.Warn().Err(err).Msg("Voice input disabled: no usable recognition engine")
	} else if engine != nil {
		defer engineClose()
		supervisor = recognition.NewSupervisor(engine, cfg.Recognizer.RestartDelay(), func(e recognition.TranscriptEvent) {
			sessionCtl.HandleTranscript(e.Text, e.Final)
		})
		supervisor.Enable()
		defer supervisor.Disable()
		zlog.Info().Msgf("Listening with engine: %s", engine.Name())
	}

	// Forward session and player events to the dashboard.
	go forwardSessionEvents(sessionCtl, hub, supervisor)
	go forwardPlayerEvents(playerCtl, hub)

	// HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler())
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown. The deferred teardown stops listening before the
	// session controller goes away.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

// newSynthesizer builds the speech backend, degrading to the silent one
// when the configured command is missing.
func newSynthesizer(cfg config.SpeechConfig) feedback.Synthesizer {
	if cfg.Engine == "none" {
		return feedback.NoopSynthesizer{}
	}
	synth, err := feedback.NewSystemSynthesizer(feedback.SystemConfig{
		Command: cfg.Command,
		Voice:   cfg.Voice,
		Rate:    cfg.Rate,
	})
	if err != nil {
		zlog.Warn().Err(err).Msg("Spoken feedback disabled")
		return feedback.NoopSynthesizer{}
	}
	return synth
}

// newEngine builds the configured recognition engine. The returned close
// function releases the engine's audio and model resources.
func newEngine(cfg config.RecognizerConfig) (recognition.Engine, func(), error) {
	switch cfg.Engine {
	case "disabled":
		return nil, nil, nil
	case "wav":
		settings, err := cfg.DecodeWavSettings()
		if err != nil {
			return nil, nil, err
		}
		transcriber, err := whisperstt.New(settings.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		engine, err := wavfile.New(afero.NewOsFs(), settings.Path, transcriber)
		if err != nil {
			transcriber.Close()
			return nil, nil, err
		}
		return engine, func() { transcriber.Close() }, nil
	default:
		settings, err := cfg.DecodeWhisperSettings()
		if err != nil {
			return nil, nil, err
		}
		transcriber, err := whisperstt.New(settings.ModelPath)
		if err != nil {
			return nil, nil, err
		}
		var capture *whispermic.Capture
		if settings.CaptureDir != "" {
			capture, err = whispermic.NewCapture(afero.NewOsFs(), settings.CaptureDir)
			if err != nil {
				zlog.Warn().Err(err).Msg("Utterance capture disabled")
			}
		}
		engine, err := whispermic.New(whispermic.Config{
			Transcriber:     transcriber,
			InterimInterval: time.Duration(settings.InterimIntervalMs) * time.Millisecond,
			IdleTimeout:     time.Duration(settings.IdleTimeoutSec) * time.Second,
			Capture:         capture,
		})
		if err != nil {
			transcriber.Close()
			return nil, nil, err
		}
		return engine, func() {
			engine.Close()
			transcriber.Close()
		}, nil
	}
}

// forwardSessionEvents pushes session state and transcript events to
// connected dashboard clients.
func forwardSessionEvents(ctl *voice.Controller, hub *ws.Hub, supervisor *recognition.Supervisor) {
	for e := range ctl.Events() {
		switch e.Type {
		case voice.EventStateChanged:
			listening := supervisor != nil && supervisor.Enabled()
			hub.Broadcast(ws.Message{
				Type:      ws.TypeOrbState,
				State:     e.State.String(),
				Listening: &listening,
			})
		case voice.EventTranscript:
			hub.Broadcast(ws.Message{
				Type:  ws.TypeTranscript,
				Text:  e.Transcript,
				Final: e.Final,
			})
		}
	}
}

// forwardPlayerEvents pushes playback changes to connected dashboard clients.
func forwardPlayerEvents(ctl *player.Controller, hub *ws.Hub) {
	for e := range ctl.Events() {
		msg := ws.Message{
			Type:        ws.TypePlayer,
			PlayerState: ctl.GetState().String(),
		}
		if e.Track != nil {
			msg.Track = e.Track
		}
		if e.Type == player.EventVolumeChanged {
			v := e.Volume
			msg.Volume = &v
		}
		hub.Broadcast(msg)
	}
}

// messagesFromConfig maps the configured feedback strings onto the
// dispatcher's message set.
func messagesFromConfig(m config.MessagesConfig) dispatch.Messages {
	return dispatch.Messages{
		Paused:             m.Paused,
		Resumed:            m.Resumed,
		NextSong:           m.NextSong,
		Shuffling:          m.Shuffling,
		Liked:              m.Liked,
		Searching:          m.Searching,
		Playing:            m.Playing,
		Mood:               m.Mood,
		NotFound:           m.NotFound,
		LibraryUnreachable: m.LibraryUnreachable,
		LibraryEmpty:       m.LibraryEmpty,
	}
}

// printEngines prints available recognition engines.
func printEngines() {
	fmt.Println("Available Engines:")
	fmt.Printf("  %-12s - %s\n", "whisper", "live microphone input with on-device whisper transcription")
	fmt.Printf("  %-12s - %s\n", "wav", "replay a WAV file through whisper (for testing)")
	fmt.Printf("  %-12s - %s\n", "disabled", "no voice input")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebovdev/exospot/internal/api"
	"github.com/glebovdev/exospot/internal/cache"
	"github.com/glebovdev/exospot/internal/catalog"
	"github.com/glebovdev/exospot/internal/config"
	"github.com/glebovdev/exospot/internal/external"
	"github.com/glebovdev/exospot/internal/player"
	"github.com/glebovdev/exospot/internal/service"
	"github.com/glebovdev/exospot/internal/stream"
	"github.com/glebovdev/exospot/internal/terminal"
	"github.com/glebovdev/exospot/internal/track"
	"github.com/glebovdev/exospot/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	dbFlag      = flag.String("db", "", "Path to the track catalog (default from config, then songs.db)")
	replayFlag  = flag.String("replay", "", "Preview key while playing: restart or toggle")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n", config.AppName, config.AppVersion, config.AppTagline)
		fmt.Fprintf(os.Stderr, "%s\n\n", config.AppProjectShort)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
	}
}

func versionText() string {
	return fmt.Sprintf("%s v%s - %s\n%s\n\nAuthor:  %s\nProject: %s\n",
		config.AppName, config.AppVersion, config.AppTagline,
		config.AppDescription, config.AppAuthor, config.AppProjectURL)
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Print(versionText())
		os.Exit(0)
	}

	setupLogging(*debugFlag)

	if err := run(); err != nil {
		log.Error().Err(err).Msg("Exiting with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Info().Msgf("%s stopped", config.AppName)
}

func setupLogging(debug bool) {
	if !debug {
		// Avoid TUI corruption by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logFile := os.Stderr
	logPath, err := cache.DebugLogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
	} else if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
	} else {
		logFile = f
		fmt.Printf("Debug log: %s\n", logPath)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
	}

	if !config.Exists() {
		if err := cfg.Save(); err != nil {
			log.Warn().Err(err).Msg("Failed to write default config")
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to apply environment overrides")
	}

	if *dbFlag != "" {
		cfg.Database = *dbFlag
	}
	if *replayFlag != "" {
		cfg.Replay = *replayFlag
	}

	if configPath, err := config.GetConfigPath(); err == nil {
		log.Debug().Msgf("Config: %s", configPath)
	}
	return cfg
}

func run() error {
	cfg := loadConfig()

	replay, err := player.ParseReplayMode(cfg.Replay)
	if err != nil {
		return err
	}

	store, err := catalog.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	userAgent := fmt.Sprintf("%s/%s", cache.AppName, config.AppVersion)

	coverCache, err := cache.NewCache()
	if err != nil {
		log.Warn().Err(err).Msg("Cover cache unavailable")
	}
	tracks := service.NewTrackService(store, api.NewCoverClient(userAgent), coverCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := tracks.LoadTracks(ctx); err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}
	if tracks.TrackCount() == 0 {
		return errors.New("the catalog has no tracks")
	}

	out := player.NewSpeaker(player.DefaultSampleRate, time.Duration(cfg.SpeakerBufferMs)*time.Millisecond)
	defer out.Close()

	pipeline := player.NewPipeline(stream.NewFetcher(userAgent))

	newPreviewer := func(t track.Track, onFailure func(error)) ui.Previewer {
		sink, err := player.NewSink(out, cfg.Volume)
		if err != nil {
			log.Error().Err(err).Str("track", t.ID).Msg("Audio output unavailable")
			onFailure(err)
			return nil
		}
		return player.NewController(player.ControllerConfig{
			URL:       t.PreviewURL,
			Hint:      cfg.Codec,
			Opener:    pipeline,
			Sink:      sink,
			Replay:    replay,
			OnFailure: onFailure,
		})
	}

	term, err := terminal.Open()
	if err != nil {
		return err
	}
	defer term.Restore()

	coordinator := ui.NewCoordinator(ui.Options{
		Terminal:     term,
		Tracks:       tracks,
		NewPreviewer: newPreviewer,
		Open:         external.Open,
		SearchURL:    cfg.SearchURL,
		Colors:       ui.ColorsFromTheme(cfg.Theme),
		QueueSize:    cfg.InputQueue,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			log.Info().Msg("Received shutdown signal, cleaning up...")
			coordinator.Shutdown()
		case <-ctx.Done():
		}
	}()

	log.Info().Int("tracks", tracks.TrackCount()).Msg("Starting UI...")
	return coordinator.Run(ctx)
}

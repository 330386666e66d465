package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hydropulse/internal/config"
	"hydropulse/internal/estimator"
	"hydropulse/internal/inference"
	"hydropulse/internal/server"
	"hydropulse/internal/storage/memory"
	"hydropulse/internal/storage/postgres"
	"hydropulse/internal/tracker"
	"hydropulse/internal/weather"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	done <- true
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	oracle := weather.New(weather.Config{
		APIKey:            cfg.WeatherAPIKey,
		NormalizeCityKeys: cfg.NormalizeCityKeys,
		Logger:            log.With().Str("component", "weather").Logger(),
	})

	ai := inference.New(inference.Config{
		APIKey: cfg.InferenceAPIKey,
		Logger: log.With().Str("component", "inference").Logger(),
	})
	engine := estimator.New(ai, log.With().Str("component", "estimator").Logger())

	var (
		serverStorage server.HealthReporter
		svc           *tracker.Service
	)
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer store.Close()
		if err := store.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("apply schema")
		}
		serverStorage = store
		svc = tracker.New(store, store, oracle, engine, log.With().Str("component", "tracker").Logger())
		log.Info().Msg("using postgres storage")
	} else {
		store := memory.New()
		svc = tracker.New(store, store, oracle, engine, log.With().Str("component", "tracker").Logger())
		log.Info().Msg("using in-memory storage")
	}

	apiServer := server.NewServer(server.Config{
		Port:    cfg.Port,
		Tracker: svc,
		Storage: serverStorage,
		Logger:  log.Logger,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Msg("listening")
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}

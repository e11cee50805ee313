package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/internal/api/handlers"
	"github.com/lmbridge/lmbridge/internal/config"
	"github.com/lmbridge/lmbridge/internal/infrastructure/backend"
	"github.com/lmbridge/lmbridge/internal/services/completion"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	backendCfg, err := config.LoadBackend()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load backend configuration")
	}

	backendClient, err := backend.NewService(backendCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backend client - required for core functionality")
	}

	completionService, err := completion.NewService(backendClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize completion service")
	}

	r := handlers.NewRouter(cfg, completionService)

	log.Info().Str("addr", cfg.Addr()).Bool("verbose", cfg.Verbose).Msg("Gateway listening")
	if err := http.ListenAndServe(cfg.Addr(), r); err != nil {
		log.Error().Err(err).Msg("ListenAndServe error")
		os.Exit(1)
	}
}

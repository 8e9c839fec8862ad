package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/config"
	"github.com/keshon/jukebox/internal/discord"
	"github.com/keshon/jukebox/internal/eventlog"
	"github.com/keshon/jukebox/internal/logging"
	"github.com/keshon/jukebox/internal/music/resolver"
	"github.com/keshon/jukebox/internal/storage"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Setup(cfg.LogLevel)
	log.Info().Msgf("Starting %s bot...", discord.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("Failed to open storage")
	}
	defer store.Close()

	events := eventlog.New(cfg.LogDir, cfg.EventLogEnabled)
	defer events.Close()

	res := resolver.Default(resolver.Options{
		Workers:       cfg.ResolveWorkers,
		PlaylistLimit: cfg.PlaylistLimit,
	})

	bot, err := discord.New(cfg, store, events, res)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	if err := bot.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		return
	}
	log.Info().Msg("Bot stopped")
}

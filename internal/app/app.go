// Package app wires the configuration, storage, scraping, and Discord
// layers together and runs the bot.
package app

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/embedfixer/embedfixer/internal/bot"
	"github.com/embedfixer/embedfixer/internal/discord"
	"github.com/embedfixer/embedfixer/internal/fetch"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
	"github.com/embedfixer/embedfixer/internal/orchestrator"
	"github.com/embedfixer/embedfixer/internal/platform/config"
	"github.com/embedfixer/embedfixer/internal/platform/observability"
	"github.com/embedfixer/embedfixer/internal/resolver"
	db "github.com/embedfixer/embedfixer/internal/storage"
)

type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.database, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunBot assembles the pipeline and blocks on the gateway session until ctx
// is cancelled.
func (a *App) RunBot(ctx context.Context) error {
	session, err := discordgo.New("Bot " + a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("gateway session init: %w", err)
	}

	disabled, err := a.database.ListDisabledChannels(ctx)
	if err != nil {
		return fmt.Errorf("load channel opt-outs: %w", err)
	}

	a.logger.Info().Int("count", len(disabled)).Msg("channel opt-outs loaded")

	fetcher := fetch.New(a.cfg.WebFetchRPS, a.cfg.WebFetchTimeout)
	resolvers := resolver.NewRegistry(fetcher, a.cfg.GalleryLimit, a.logger)
	messenger := discord.NewMessenger(session, a.cfg.BotToken)

	pipeline := orchestrator.New(messenger, resolvers, fetcher, orchestrator.Config{
		MirrorHosts: map[linkdetect.Platform][]string{
			linkdetect.PlatformTikTok:    a.cfg.TikTokMirrorHosts,
			linkdetect.PlatformInstagram: a.cfg.InstagramMirrorHosts,
			linkdetect.PlatformFacebook:  a.cfg.FacebookMirrorHosts,
		},
		PollInterval:        a.cfg.EmbedPollInterval,
		FirstMirrorTimeout:  a.cfg.FirstMirrorTimeout,
		BackupMirrorTimeout: a.cfg.BackupMirrorTimeout,
		ErrorNoticeLifetime: a.cfg.ErrorNoticeLifetime,
	}, a.logger)

	return bot.New(session, a.database, pipeline, messenger, a.logger).Run(ctx)
}

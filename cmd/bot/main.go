package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tallypaws/scrambl/internal/config"
	"github.com/tallypaws/scrambl/internal/database"
	"github.com/tallypaws/scrambl/internal/fm"
	"github.com/tallypaws/scrambl/internal/game"
	"github.com/tallypaws/scrambl/internal/images"
	"github.com/tallypaws/scrambl/internal/musicbrainz"
	"github.com/tallypaws/scrambl/internal/services"
	"github.com/tallypaws/scrambl/internal/telegram"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}
	if cfg.LastfmAPIKey == "" {
		log.Fatal().Msg("LASTFM_API_KEY is required")
	}
	if cfg.WebhookBaseURL == "" {
		log.Fatal().Msg("WEBHOOK_BASE_URL is required")
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	fmClient := fm.NewClient(cfg.LastfmAPIKey)
	mbClient := musicbrainz.NewClient()

	links := services.NewLinkService(db)
	links.OnChange(func(telegramID int64, lastfmUser string) {
		log.Info().Int64("telegram_id", telegramID).Str("lastfm", lastfmUser).Msg("account linked")
	})

	botClient := telegram.NewClient(cfg.BotToken)

	games := game.NewService(
		services.NewHistoryService(fmClient),
		services.NewMetadataHinter(fmClient, mbClient),
		links,
		telegram.NewMessenger(botClient),
		images.NewTransformer(),
		time.Duration(cfg.GuessTimeoutSeconds)*time.Second,
	)

	handler := telegram.NewUpdateHandler(botClient, games, links, fmClient)
	server := telegram.NewServer(botClient, handler, cfg.WebhookSecret)

	r := gin.Default()
	if err := server.Register(r, cfg.WebhookBaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to register webhook")
	}
	defer server.Shutdown()

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

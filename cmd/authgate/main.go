package main

import (
	"context"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/chainmall/authgate/adapters/directory"
	"github.com/chainmall/authgate/adapters/events"
	"github.com/chainmall/authgate/adapters/store"
	"github.com/chainmall/authgate/adapters/verifier"
	"github.com/chainmall/authgate/config"
	"github.com/chainmall/authgate/ports"
	"github.com/chainmall/authgate/service"
	transport "github.com/chainmall/authgate/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("configuration invalid")
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	dir, err := directory.NewCognito(ctx, cfg.Cognito.Region, cfg.Cognito.ClientID, cfg.Cognito.ClientSecret, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up identity directory client")
	}

	var nonces ports.NonceStore = store.NewMemoryStore()
	var publisher ports.EventPublisher

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse Redis URL")
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to reach Redis")
		}

		nonces = store.NewRedisStore(redisClient)

		wmPublisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = events.NewWatermillPublisher(wmPublisher)
	} else {
		logger.Warn().Msg("REDIS_URL not set, challenge nonces held in memory only")
	}

	authService := service.NewAuthService(dir, verifier.NewPersonalSign(), nonces, publisher, logger, cfg.ChallengeTTL)
	sessions := transport.NewSessionManager(cfg.IsProduction())
	handlers := transport.NewAuthHandlers(authService, sessions, logger)
	router := transport.NewRouter(handlers, logger)

	logger.Info().Str("port", cfg.Port).Msg("authgate listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var out = zerolog.New(os.Stdout)
	if !cfg.IsProduction() {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	return out.With().Timestamp().Str("service", "authgate").Logger()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/config"
	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/extract"
	httpapi "github.com/aselo_helpline/backend/internal/http"
	"github.com/aselo_helpline/backend/internal/metrics"
	"github.com/aselo_helpline/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "aselo-backend").Str("env", cfg.Env).Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer store.Close()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	var model ai.Model
	if cfg.AIProvider == config.ProviderMock {
		model = &ai.MockModel{}
		logger.Info().Msg("using mock language model")
	} else {
		client, err := ai.NewOpenRouterClient(cfg.AIBaseURL, cfg.AIModel, cfg.AIAPIKey, cfg.AITimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure language model")
		}
		client.SiteURL = cfg.SiteURL
		client.SiteName = cfg.SiteName
		model = client
		logger.Info().Str("model", cfg.AIModel).Msg("using openrouter language model")
	}

	m := metrics.New()
	assistant := extract.NewAssistant(model,
		ai.Options{Temperature: cfg.ChatTemperature, MaxTokens: cfg.ChatMaxTokens},
		ai.Options{Temperature: cfg.SummaryTemperature, MaxTokens: cfg.SummaryMaxTokens},
		logger.With().Str("component", "assistant").Logger(), m)
	extractor := extract.NewExtractor(model, cfg.ExtractionTemperature, cfg.ExtractionMaxTokens,
		logger.With().Str("component", "extractor").Logger(), m)

	chat := &service.ChatService{
		Store:     store,
		Assistant: assistant,
		Extractor: extractor,
		Logger:    logger,
	}
	forms := &service.FormService{
		Store:     store,
		Validator: service.NewValidator(),
		Logger:    logger,
	}

	router := httpapi.Router(cfg, store, chat, forms, m, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if cfg.StoreDriver == config.StorePostgres {
		pg, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return db.OpenJSON(cfg.DBPath)
}

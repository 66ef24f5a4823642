package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"studyguide/internal/app"
	"studyguide/internal/config"
	"studyguide/internal/docstore"
	"studyguide/internal/server"
	"studyguide/internal/util"
	"studyguide/pkg/ai"
	"studyguide/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	docTTL, err := config.ParseDocTTL(cfg.DocTTL)
	if err != nil {
		log.Fatalf("failed to parse doc TTL: %v", err)
	}

	var dataStore store.Store
	if cfg.DatabaseURL != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init store: %v", err)
		}
		dataStore = gormStore
		slog.Info("database initialized")
	} else {
		slog.Warn("DATABASE_URL not set; persistence degraded to no-op")
		dataStore = store.NewNoopStore()
	}

	var generator ai.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to init gemini client: %v", err)
		}
		generator = ai.NewGeminiGenerator(client, cfg.GenerationModel)
		slog.Info("gemini client initialized", "model", cfg.GenerationModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set; AI endpoints will return errors")
	}

	appCore, err := app.New(app.Config{
		Store:                    dataStore,
		Docs:                     docstore.New(docTTL),
		Generator:                generator,
		Retryer:                  ai.NewRetryer(),
		MaxConcurrentExtractions: cfg.MaxConcurrentExtractions,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                       appCore,
		RedisAddr:                 cfg.RedisAddr,
		RedisPassword:             cfg.RedisPassword,
		ReviewRateLimitPerMinute:  cfg.ReviewRateLimitPerMinute,
		ContactRateLimitPerMinute: cfg.ContactRateLimitPerMinute,
		MaxUploadBytes:            cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

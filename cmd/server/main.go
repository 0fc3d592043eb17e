package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prudhvinik1/onboardflow/internal/config"
	"github.com/prudhvinik1/onboardflow/internal/database"
	"github.com/prudhvinik1/onboardflow/internal/handlers"
	"github.com/prudhvinik1/onboardflow/internal/kv"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize the key-value store backend
	var store kv.Store
	switch cfg.KVBackend {
	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create postgres pool")
		}
		defer pool.Close()
		store = kv.NewPostgresStore(pool)
	default:
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create redis client")
		}
		defer client.Close()
		store = kv.NewRedisStore(client)
	}

	creds := services.NewCredentialService(cfg.JWTSecret, cfg.JWTExpiry, cfg.PasswordSalt)
	onboarding := services.NewOnboardingService(store, creds)

	router := handlers.NewRouter(cfg, store, creds, onboarding, version)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info().Str("port", cfg.ServerPort).Str("backend", cfg.KVBackend).Msg("starting server")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axiapac.com/timetrack/config"
	"axiapac.com/timetrack/mockapi"
	"axiapac.com/timetrack/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}
	logger := telemetry.NewLogger(os.Stderr, cfg.LogLevel, true)

	srv := mockapi.New(mockapi.Options{
		Secret:      cfg.MockSigningSecret,
		TokenTTL:    cfg.MockTokenTTL,
		IncludeUser: os.Getenv("TIMETRACK_MOCK_INCLUDE_USER") == "true",
		Logger:      logger,
	})
	if err := srv.Seed(); err != nil {
		log.Fatal("failed to seed accounts: ", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.MockAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.MockAddr).Msg("mock backend listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

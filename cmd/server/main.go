package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"turnping/internal/app"
	"turnping/internal/cache"
	"turnping/internal/config"
	"turnping/internal/logger"
	"turnping/internal/model"
	"turnping/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	if a.TurnEvents != nil {
		go cache.KeepSubscribed(ctx, a.TurnEvents, cache.NewResubscribeBackOff(), log, func(e *model.TurnEvent) {
			log.Info("turn changed",
				zap.String("gameSessionId", e.GameSessionID),
				zap.String("code", e.Code),
				zap.String("currentTurn", e.CurrentTurn))
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: rest.NewRouter(a.Store),
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server exited")
}

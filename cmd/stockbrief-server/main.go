package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockbrief/internal/app"
	"stockbrief/internal/config"
	"stockbrief/internal/logger"

	"github.com/subosito/gotenv"
)

func main() {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env failed: %v", err)
	}
	cfgPath := os.Getenv("STOCKBRIEF_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	closeLogs, err := app.SetupLogging(cfg.App)
	if err != nil {
		log.Fatalf("init logging failed: %v", err)
	}
	defer closeLogs()
	logger.Infof("config loaded (env=%s, source=%s, model=%s)", cfg.App.Env, cfg.Market.ResolveActiveSource().Name, cfg.AI.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	logger.Infof("shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newsblend-hq/newsblend-aggregator/internal/app"
	"github.com/newsblend-hq/newsblend-aggregator/internal/config"
	"github.com/newsblend-hq/newsblend-aggregator/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("aggregator starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresher, err := app.NewRefresher(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize aggregator", "error", err)
		return err
	}

	if err := refresher.Run(ctx); err != nil {
		return fmt.Errorf("aggregator run: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/consoleshop/pkg/config"
	"github.com/example/consoleshop/pkg/console"
	"github.com/example/consoleshop/pkg/logger"
	"github.com/example/consoleshop/pkg/repository"
	"github.com/example/consoleshop/pkg/shop"
	"go.uber.org/zap"
)

func main() {
	// Load config
	if err := config.LoadDotEnv(".env"); err != nil {
		panic(fmt.Sprintf("Failed to load .env: %v", err))
	}
	configPath := os.Getenv("SHOP_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting shop",
		zap.String("name", cfg.Shop.Name),
		zap.String("backend", cfg.Storage.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Shop failed", zap.Error(err))
		log.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("Shop stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	stores, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	s, err := shop.New(ctx, stores, log.Named("shop"))
	if err != nil {
		return fmt.Errorf("failed to load shop data: %w", err)
	}

	fmt.Printf("Welcome to %s\n", cfg.Shop.Name)
	app := console.New(s, os.Stdin, os.Stdout, cfg.Shop.Currency, log.Named("console"))
	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("Received shutdown signal")
		return nil
	}
	return err
}

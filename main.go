package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sitesage/internal/adapter/gemini"
	"sitesage/internal/app"
	"sitesage/internal/config"
	"sitesage/internal/logger"
)

func main() {
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()

	ai, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	defer ai.Close()

	a, err := app.New(cfg, deps.DB, deps.VectorStore, ai, deps.Publisher)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}

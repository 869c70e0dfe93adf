package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/smart-assistant/internal/bootstrap"
	"github.com/Rrens/smart-assistant/internal/cli"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/logger"
	"github.com/Rrens/smart-assistant/internal/notify"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Terminal output carries the notifications, keep the log quiet
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logging.Level = "warn"
	}
	logFile, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		return 1
	}
	defer logFile.Close()

	notifier := notify.Multi{notify.NewTerminalNotifier(os.Stderr)}
	if cfg.Logging.File != "" {
		notifier = append(notifier, notify.LogNotifier{})
	}

	components, err := bootstrap.New(cfg, notifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, &cli.App{
		Config:         cfg,
		Store:          components.Store,
		Client:         components.Client,
		Auth:           components.Auth,
		Chat:           components.Chat,
		KnowledgeBases: components.KnowledgeBases,
	})
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/mama165/sdk-go/logs"

	"message-store/handler"
	"message-store/internal/bootstrap"
	"message-store/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	// ---- Store ----
	// The store lives for the whole execution environment; Lambda gives no
	// shutdown hook, so it is never closed explicitly.
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open message store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	svc, err := bootstrap.NewService(store, log)
	if err != nil {
		log.Error("failed to create message service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(svc, log)
	if err != nil {
		log.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	log.Info("message store lambda ready", "backend", cfg.StoreBackend)
	lambda.Start(h.Handle)
}

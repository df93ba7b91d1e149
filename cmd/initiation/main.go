package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stellar/go/clients/horizonclient"

	"github.com/panarchynow/initiation/internal/api"
	"github.com/panarchynow/initiation/internal/config"
	"github.com/panarchynow/initiation/internal/ipfs"
	"github.com/panarchynow/initiation/internal/relay"
	"github.com/panarchynow/initiation/internal/stellar"
	"github.com/panarchynow/initiation/internal/stellar/retry"
	"github.com/panarchynow/initiation/internal/storage"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Configure logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"horizon", cfg.HorizonURL,
		"network", cfg.NetworkPassphrase,
		"log_level", cfg.LogLevel,
	)

	// 3. Submission history is optional; without a database the build
	// endpoints still work, only /accounts/{id}/submissions is disabled
	ctx := context.Background()
	var repository storage.Repository
	if cfg.DatabaseURL != "" {
		repo, err := storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		repository = repo
		slog.Info("Database connected successfully")
	} else {
		slog.Info("No DATABASE_URL set, submission history disabled")
	}

	// 4. Wire the snapshot reader and assembler against horizon
	strategy := retry.NewStrategy(retry.LoadConfig())
	snapshots := stellar.NewSnapshotReader(
		stellar.NewHorizonAccountSource(cfg.HorizonURL, strategy),
	)
	horizon := &horizonclient.Client{
		HorizonURL: cfg.HorizonURL,
		HTTP:       http.DefaultClient,
	}
	generator := &stellar.Generator{
		Snapshots: snapshots,
		Assembler: &stellar.Assembler{
			Source:         horizon,
			BaseFee:        cfg.BaseFee,
			TimeoutMinutes: cfg.TimeoutMinutes,
		},
		Tags: stellar.DefaultTags,
	}

	// 5. External collaborators
	relayClient := relay.New(cfg.RelayURL)
	var uploads *ipfs.Client
	if cfg.PinataJWT != "" {
		uploads = ipfs.New(cfg.PinataEndpoint, cfg.PinataJWT)
	} else {
		slog.Info("No PINATA_JWT set, file uploads disabled")
	}

	// 6. Start the API server
	server := api.NewServer(cfg.Port, generator, relayClient, uploads, repository, cfg.NetworkPassphrase)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	// 7. Wait for interrupt, then drain connections
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	slog.Warn("Interrupt received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error shutting down API server", "error", err)
	}

	slog.Info("Initiation stopped")
}

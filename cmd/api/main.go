package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/enterprise-insights/gh-inventory/internal/api"
	"github.com/enterprise-insights/gh-inventory/internal/config"
	"github.com/enterprise-insights/gh-inventory/internal/logging"
	"github.com/enterprise-insights/gh-inventory/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, _, err := logging.New(cfg.LogLevel, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.StorageType == "none" {
		logger.Fatal("the API server requires storage; set STORAGE_TYPE to sqlite or postgres")
	}

	store, err := storage.NewStorage(storage.Config{
		Type:        cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		PostgresURL: cfg.PostgresURL,
	})
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	router := api.NewRouter(store, logger)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info("starting inventory API server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

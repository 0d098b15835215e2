package main

import (
	"log/slog"
	"os"

	"github.com/palengke-ph/backend/internal/auth"
	"github.com/palengke-ph/backend/internal/config"
	"github.com/palengke-ph/backend/internal/realtime"
	"github.com/palengke-ph/backend/internal/server"
	"github.com/palengke-ph/backend/internal/storage/sqlite"
	"github.com/palengke-ph/backend/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := realtime.NewHub()
	srv := server.New(store, jwtManager, hub)

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := srv.Router().Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

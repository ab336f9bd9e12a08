package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janmaslov/wishlist/internal/adapters/storage"
	"github.com/janmaslov/wishlist/internal/config"
	"github.com/janmaslov/wishlist/internal/database"
	"github.com/janmaslov/wishlist/internal/identity"
	"github.com/janmaslov/wishlist/internal/router"
	"github.com/janmaslov/wishlist/internal/wishlist"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting wishlist server")

	db, err := database.NewMySQLConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}

	// Identity provider: Jellyfin when configured, static local users otherwise.
	var provider identity.Provider
	if cfg.Jellyfin.URL != "" {
		provider = identity.NewJellyfinProvider(cfg.Jellyfin.URL, cfg.Jellyfin.Timeout)
		slog.Info("Using Jellyfin identity provider", "url", cfg.Jellyfin.URL)
	} else {
		local, err := identity.NewLocalProvider(cfg.LocalUsers)
		if err != nil {
			slog.Error("Failed to load local users", "error", err)
			os.Exit(1)
		}
		provider = local
		slog.Info("Using local identity provider", "users", len(cfg.LocalUsers))
	}

	// Poster storage is optional; without it uploads return 503.
	var posters wishlist.PosterStorage
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewPosterStore(cfg.Storage)
		if err != nil {
			slog.Error("Failed to connect to poster storage", "error", err)
			os.Exit(1)
		}
		posters = store
	}

	app := router.New(cfg, db, provider, posters)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Drop live connections before refusing new requests.
	app.Registry().Close()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}

// Package main is the entry point for the printquote server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"printquote/api"
	"printquote/db"
	"printquote/internal/config"
	"printquote/internal/logging"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Initialize(cfg.LoggingConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Logger

	conn, err := db.Open(cfg.Storage.DatabasePath)
	if err != nil {
		log.Fatal("open catalog database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatal("migrate catalog database", zap.Error(err))
	}

	ctx := context.Background()
	store := db.NewStore(conn, log)
	if cfg.Storage.SeedDefaults {
		if err := store.SeedIfEmpty(ctx); err != nil {
			log.Fatal("seed catalog defaults", zap.Error(err))
		}
	}

	server, err := api.NewServer(ctx, store, log, version)
	if err != nil {
		log.Fatal("load catalog snapshot", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	log.Info("printquote server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("version", version),
		zap.String("db", cfg.Storage.DatabasePath))
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

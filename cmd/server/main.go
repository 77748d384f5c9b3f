// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// invoicemock — Mock Invoice-Email Service
//
// Entry point for the mock data service. It:
//  1. Loads configuration from config.yaml and the environment
//  2. Opens the configured storage backend (file, postgres, or redis)
//  3. Builds the inconsistency-injecting generator
//  4. Serves the invoice API
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcem/invoicemock/internal/config"
	"github.com/bcem/invoicemock/internal/generator"
	"github.com/bcem/invoicemock/internal/notify"
	"github.com/bcem/invoicemock/internal/server"
	"github.com/bcem/invoicemock/internal/storage"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting invoicemock service")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"backend", cfg.StorageBackend,
		"inconsistency_rate", cfg.InconsistencyRate,
		"duplicate_rate", cfg.DuplicateRate,
		"auth", cfg.AuthEnabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Open Storage Backend ---
	store, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StorageBackend,
		FilePath:    cfg.FilePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		RedisKey:    cfg.RedisKey,
	})
	if err != nil {
		slog.Error("failed to open storage backend", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	slog.Info("storage backend ready", "backend", cfg.StorageBackend)

	// --- Generator ---
	gen := generator.New(generator.Config{
		InconsistencyRate: cfg.InconsistencyRate,
		HistorySize:       cfg.HistorySize,
	})

	// --- Downstream Notifier (optional) ---
	notifier := notify.New(ctx, notify.Config{
		URL:          cfg.NotifyURL,
		ClientID:     cfg.NotifyClientID,
		ClientSecret: cfg.NotifyClientSecret,
		TokenURL:     cfg.NotifyTokenURL,
	})
	if notifier != nil {
		slog.Info("downstream notifier enabled", "url", cfg.NotifyURL)
	}

	// --- HTTP Server ---
	srv := server.New(cfg, gen, store, notifier)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		if err := store.Close(); err != nil {
			slog.Error("storage close error", "error", err)
		}
	}()

	slog.Info("invoicemock service listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("invoicemock service stopped")
}

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

// invoicemock — Seed Command
//
// Standalone CLI tool that generates a batch of dirty invoice emails and
// persists it to the configured storage backend. Intended for populating
// fixture data on new deployments without going through the API.
//
// Usage:
//
//	go run ./cmd/seed/ [--count 25] [--duplicate-rate 0.1] [--clear]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bcem/invoicemock/internal/config"
	"github.com/bcem/invoicemock/internal/generator"
	"github.com/bcem/invoicemock/internal/storage"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	countFlag := flag.Int("count", 25, "Number of invoice emails to generate")
	dupFlag := flag.Float64("duplicate-rate", -1, "Duplicate probability in [0,1] (default: configured value)")
	clearFlag := flag.Bool("clear", false, "Clear the stored collection before seeding")
	flag.Parse()

	if *countFlag <= 0 {
		fmt.Fprintf(os.Stderr, "Error: --count must be positive\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if *dupFlag > 1 {
		fmt.Fprintf(os.Stderr, "Error: --duplicate-rate must be within [0,1]\n")
		os.Exit(1)
	}

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	duplicateRate := cfg.DuplicateRate
	if *dupFlag >= 0 {
		duplicateRate = *dupFlag
	}

	slog.Info("seeding storage backend",
		"backend", cfg.StorageBackend,
		"count", *countFlag,
		"duplicate_rate", duplicateRate,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("storage close error", "error", err)
		}
	}()

	if *clearFlag {
		if err := store.Clear(ctx); err != nil {
			slog.Error("failed to clear collection", "error", err)
			os.Exit(1)
		}
		slog.Info("cleared stored collection")
	}

	// --- Generate and Persist ---
	gen := generator.New(generator.Config{
		InconsistencyRate: cfg.InconsistencyRate,
		HistorySize:       cfg.HistorySize,
	})
	batch := gen.GenerateBatch(*countFlag, duplicateRate)

	if err := store.Save(ctx, batch); err != nil {
		slog.Error("failed to save batch", "count", len(batch), "error", err)
		os.Exit(1)
	}

	total, err := store.Count(ctx)
	if err != nil {
		slog.Error("failed to count collection", "error", err)
		os.Exit(1)
	}

	slog.Info("seed complete",
		"saved", len(batch),
		"total_stored", total,
	)
}

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

// Package storage persists generated invoice-email batches behind a
// single Backend contract with interchangeable implementations: a flat
// JSON file, a Postgres JSONB document table, and a Redis list. The
// active backend is selected at startup via a factory keyed on the
// configured backend name.
//
// Backends never deduplicate on write — duplicated records are part of
// the fixture and are counted.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bcem/invoicemock/internal/models"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ErrUnsupportedBackend is returned by Open for an unknown backend name.
var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// Backend is the persistence contract for invoice-email records.
//
// Save of an empty batch is a no-op success. Clear is idempotent. Close
// releases any held connection and is safe to call more than once.
// Callers bound operations with the request context; backends do not
// retry.
type Backend interface {
	// Save appends a batch of records to the collection.
	Save(ctx context.Context, records []models.EmailRecord) error

	// ListAll returns every stored record in insertion order.
	ListAll(ctx context.Context) ([]models.EmailRecord, error)

	// ListPage returns up to limit records starting at offset, in
	// insertion order. An offset past the end yields an empty slice.
	ListPage(ctx context.Context, offset, limit int) ([]models.EmailRecord, error)

	// Count returns the total number of stored records, duplicates
	// included.
	Count(ctx context.Context) (int64, error)

	// Clear removes every stored record.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Options carries the connection parameters Open needs. The caller maps
// service configuration onto these at startup.
type Options struct {
	Backend     string
	FilePath    string
	DatabaseURL string
	RedisURL    string
	RedisKey    string
}

// Open creates the backend named by opts.Backend and verifies
// connectivity where the backend holds a connection.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendFile:
		return NewFileBackend(opts.FilePath)

	case BackendPostgres:
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create Postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		return NewPostgresBackend(ctx, pool)

	case BackendRedis:
		opt, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		return NewRedisBackend(rdb, opts.RedisKey), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, opts.Backend)
	}
}

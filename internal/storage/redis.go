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

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/bcem/invoicemock/internal/models"
)

// RedisBackend keeps the collection as a Redis list of JSON documents.
// RPUSH preserves insertion order, LRANGE serves pages natively, and
// each command is atomic on the server side — no extra locking needed.
type RedisBackend struct {
	rdb *redis.Client
	key string

	closeOnce sync.Once
	closeErr  error
}

// NewRedisBackend creates a backend storing records under the given
// list key.
func NewRedisBackend(rdb *redis.Client, key string) *RedisBackend {
	return &RedisBackend{rdb: rdb, key: key}
}

// Save appends the batch to the list in a single RPUSH.
func (b *RedisBackend) Save(ctx context.Context, records []models.EmailRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.MessageID, err)
		}
		docs = append(docs, doc)
	}

	if err := b.rdb.RPush(ctx, b.key, docs...).Err(); err != nil {
		return fmt.Errorf("redis RPUSH: %w", err)
	}
	return nil
}

// ListAll returns every stored record.
func (b *RedisBackend) ListAll(ctx context.Context) ([]models.EmailRecord, error) {
	return b.listRange(ctx, 0, -1)
}

// ListPage uses LRANGE with an inclusive window.
func (b *RedisBackend) ListPage(ctx context.Context, offset, limit int) ([]models.EmailRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	return b.listRange(ctx, int64(offset), int64(offset+limit-1))
}

func (b *RedisBackend) listRange(ctx context.Context, start, stop int64) ([]models.EmailRecord, error) {
	docs, err := b.rdb.LRange(ctx, b.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE: %w", err)
	}

	records := make([]models.EmailRecord, 0, len(docs))
	for i, doc := range docs {
		var rec models.EmailRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal list entry %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Count returns the list length.
func (b *RedisBackend) Count(ctx context.Context) (int64, error) {
	count, err := b.rdb.LLen(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis LLEN: %w", err)
	}
	return count, nil
}

// Clear deletes the list key. Deleting a missing key succeeds, so this
// is idempotent.
func (b *RedisBackend) Clear(ctx context.Context) error {
	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("redis DEL: %w", err)
	}
	return nil
}

// Close closes the client connection. Safe to call multiple times.
func (b *RedisBackend) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.rdb.Close()
	})
	return b.closeErr
}

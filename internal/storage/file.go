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
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bcem/invoicemock/internal/models"
)

// FileBackend stores the whole collection as one JSON array on disk.
// Every mutation reads the file fully, mutates in memory, and rewrites
// it through a temp file + atomic rename, so a failed write never leaves
// a half-written collection behind. Writes are O(total size) — the
// dataset is a test fixture, not a production store.
type FileBackend struct {
	// mu serialises read-modify-write cycles so concurrent saves cannot
	// lose updates.
	mu   sync.Mutex
	path string
}

// NewFileBackend creates the data directory and an empty collection file
// if none exists.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	b := &FileBackend{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := b.write(nil); err != nil {
			return nil, fmt.Errorf("initialise collection file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat collection file: %w", err)
	}
	return b, nil
}

// read loads the full collection. A missing or corrupt file is treated
// as an empty collection rather than a hard failure — the fixture can
// always be regenerated. Caller must hold b.mu.
func (b *FileBackend) read() []models.EmailRecord {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read collection file, treating as empty",
				"path", b.path,
				"error", err,
			)
		}
		return nil
	}

	var records []models.EmailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("collection file is not valid JSON, treating as empty",
			"path", b.path,
			"error", err,
		)
		return nil
	}
	return records
}

// write replaces the collection file atomically. Caller must hold b.mu
// (except during construction, before the backend is shared).
func (b *FileBackend) write(records []models.EmailRecord) error {
	if records == nil {
		records = []models.EmailRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, ".invoices-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace collection file: %w", err)
	}
	return nil
}

// Save appends the batch and rewrites the file.
func (b *FileBackend) Save(_ context.Context, records []models.EmailRecord) error {
	if len(records) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.read()
	return b.write(append(existing, records...))
}

// ListAll returns every stored record.
func (b *FileBackend) ListAll(_ context.Context) ([]models.EmailRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(), nil
}

// ListPage slices the in-memory collection after a full read.
func (b *FileBackend) ListPage(_ context.Context, offset, limit int) ([]models.EmailRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := b.read()
	if offset >= len(records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], nil
}

// Count returns the stored record total.
func (b *FileBackend) Count(_ context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.read())), nil
}

// Clear rewrites the file as an empty collection. Idempotent.
func (b *FileBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(nil)
}

// Close is a no-op; the file is not held open between operations.
func (b *FileBackend) Close() error {
	return nil
}

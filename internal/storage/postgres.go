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
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcem/invoicemock/internal/models"
)

// PostgresBackend is the document-store variant: records are stored as
// JSONB documents in a single table, stamped with a server-assigned
// insertion timestamp. Row ids are surfaced to callers as opaque
// strings. Individual statements rely on Postgres atomicity; no
// read-then-write sequences assume a stale count.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates the backend and ensures the document table
// exists.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	b := &PostgresBackend{pool: pool}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure invoice schema: %w", err)
	}
	slog.Info("postgres invoice store initialised")
	return b, nil
}

func (b *PostgresBackend) ensureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS invoice_emails (
			id         BIGSERIAL PRIMARY KEY,
			message_id TEXT NOT NULL,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_invoice_emails_message ON invoice_emails(message_id);
	`)
	return err
}

// Save bulk-inserts the batch. It fails if the number of acknowledged
// insertions differs from the batch size.
func (b *PostgresBackend) Save(ctx context.Context, records []models.EmailRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.MessageID, err)
		}
		batch.Queue(`INSERT INTO invoice_emails (message_id, doc) VALUES ($1, $2)`, rec.MessageID, doc)
	}

	results := b.pool.SendBatch(ctx, batch)
	var inserted int64
	for range records {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("insert invoice batch: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close invoice batch: %w", err)
	}

	if inserted != int64(len(records)) {
		return fmt.Errorf("partial insert: %d of %d records acknowledged", inserted, len(records))
	}
	return nil
}

// ListAll returns every stored record in insertion order.
func (b *PostgresBackend) ListAll(ctx context.Context) ([]models.EmailRecord, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT id, doc FROM invoice_emails ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// ListPage uses native OFFSET/LIMIT.
func (b *PostgresBackend) ListPage(ctx context.Context, offset, limit int) ([]models.EmailRecord, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT id, doc FROM invoice_emails ORDER BY id OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoice page: %w", err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// Count returns the stored record total.
func (b *PostgresBackend) Count(ctx context.Context) (int64, error) {
	var count int64
	err := b.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoice_emails`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// Clear removes every stored record. Idempotent.
func (b *PostgresBackend) Clear(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM invoice_emails`); err != nil {
		return fmt.Errorf("clear invoices: %w", err)
	}
	return nil
}

// Close releases the connection pool. Safe to call multiple times.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

// collectDocs scans (id, doc) rows back into records, attaching the row
// id as the opaque storage identifier.
func collectDocs(rows pgx.Rows) ([]models.EmailRecord, error) {
	var records []models.EmailRecord
	for rows.Next() {
		var id int64
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan invoice row: %w", err)
		}

		var rec models.EmailRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal invoice doc %d: %w", id, err)
		}
		rec.StorageID = strconv.FormatInt(id, 10)
		records = append(records, rec)
	}
	return records, rows.Err()
}

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

// Package notify announces freshly persisted batches to a downstream
// collector, so pipeline runs can react to new fixture data without
// polling. Delivery is best-effort: failures are reported to the caller
// and never retried here.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/bcem/invoicemock/internal/models"
)

const requestTimeout = 10 * time.Second

// Config holds the collector endpoint and optional OAuth2 client
// credentials. An empty URL disables the notifier.
type Config struct {
	URL          string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Notifier POSTs batch-saved events to the collector. A nil Notifier is
// valid and does nothing, so callers need no enabled checks.
type Notifier struct {
	url    string
	client *http.Client
}

// New builds a notifier. When client credentials are configured the
// HTTP client obtains and refreshes bearer tokens itself; otherwise
// requests go out unauthenticated.
func New(ctx context.Context, cfg Config) *Notifier {
	if cfg.URL == "" {
		return nil
	}

	base := &http.Client{Timeout: requestTimeout}
	client := base
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = creds.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	}

	return &Notifier{url: cfg.URL, client: client}
}

// batchSavedEvent is the wire format delivered to the collector.
type batchSavedEvent struct {
	EventID    string   `json:"event_id"`
	Source     string   `json:"source"`
	Count      int      `json:"count"`
	MessageIDs []string `json:"message_ids"`
	SavedAt    string   `json:"saved_at"`
}

// BatchSaved announces that records were persisted. Non-2xx responses
// are failures.
func (n *Notifier) BatchSaved(ctx context.Context, records []models.EmailRecord) error {
	if n == nil || len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.MessageID)
	}

	event := batchSavedEvent{
		EventID:    uuid.New().String(),
		Source:     "invoicemock",
		Count:      len(records),
		MessageIDs: ids,
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal batch event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned HTTP %d", resp.StatusCode)
	}
	return nil
}

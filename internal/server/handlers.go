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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bcem/invoicemock/internal/models"
	"github.com/bcem/invoicemock/internal/pagination"
)

// invoiceResponse wraps a generated batch.
type invoiceResponse struct {
	Data        []models.EmailRecord `json:"data"`
	Count       int                  `json:"count"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// storedResponse wraps one page of the stored collection.
type storedResponse struct {
	Data  []models.EmailRecord `json:"data"`
	Count int                  `json:"count"`
	pagination.Window
}

// handleGenerate serves GET /api/v1/invoices. Without an explicit count
// it generates a random batch size within the configured bounds,
// simulating a mail service returning whatever arrived. store=true
// persists the batch.
func (s *Server) handleGenerate(c *gin.Context) {
	count := s.cfg.MinPerRequest + rand.IntN(s.cfg.MaxPerRequest-s.cfg.MinPerRequest+1)
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxGenerateCount {
			badRequest(c, fmt.Sprintf("count must be an integer between 1 and %d", maxGenerateCount))
			return
		}
		count = n
	}

	batch := s.gen.GenerateBatch(count, s.cfg.DuplicateRate)

	if store, _ := strconv.ParseBool(c.DefaultQuery("store", "false")); store {
		if err := s.store.Save(c.Request.Context(), batch); err != nil {
			slog.Error("failed to store generated batch", "count", len(batch), "error", err)
			serverError(c, "failed to store invoices")
			return
		}
		s.notifyAsync(batch)
	}

	c.JSON(http.StatusOK, invoiceResponse{
		Data:        batch,
		Count:       len(batch),
		GeneratedAt: time.Now().UTC(),
	})
}

// handleStored serves GET /api/v1/invoices/stored with page/page_size
// query parameters.
func (s *Server) handleStored(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		badRequest(c, "page must be an integer")
		return
	}
	pageSize, err := intQuery(c, "page_size", 50)
	if err != nil {
		badRequest(c, "page_size must be an integer")
		return
	}

	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		slog.Error("failed to count stored invoices", "error", err)
		serverError(c, "failed to read stored invoices")
		return
	}

	win, err := pagination.Paginate(total, page, pageSize)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	records, err := s.store.ListPage(c.Request.Context(), win.Offset, win.PageSize)
	if err != nil {
		slog.Error("failed to list stored invoices", "error", err)
		serverError(c, "failed to read stored invoices")
		return
	}

	c.JSON(http.StatusOK, storedResponse{
		Data:   records,
		Count:  len(records),
		Window: win,
	})
}

// handleClear serves DELETE /api/v1/invoices/stored.
func (s *Server) handleClear(c *gin.Context) {
	if err := s.store.Clear(c.Request.Context()); err != nil {
		slog.Error("failed to clear stored invoices", "error", err)
		serverError(c, "failed to clear invoices")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "all stored invoices cleared",
		"timestamp": time.Now().UTC(),
	})
}

// handleStats serves GET /api/v1/invoices/stats.
func (s *Server) handleStats(c *gin.Context) {
	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		slog.Error("failed to count stored invoices", "error", err)
		serverError(c, "failed to read invoice stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_invoices": total,
		"database_type":  s.cfg.StorageBackend,
		"timestamp":      time.Now().UTC(),
	})
}

// handleSeed serves POST /api/v1/invoices/seed — generate and persist a
// batch in one call, for quickly populating a fresh deployment.
func (s *Server) handleSeed(c *gin.Context) {
	count := 10
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSeedCount {
			badRequest(c, fmt.Sprintf("count must be an integer between 1 and %d", maxSeedCount))
			return
		}
		count = n
	}

	batch := s.gen.GenerateBatch(count, s.cfg.DuplicateRate)
	if err := s.store.Save(c.Request.Context(), batch); err != nil {
		slog.Error("failed to seed database", "count", count, "error", err)
		serverError(c, "failed to seed database")
		return
	}
	s.notifyAsync(batch)

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("seeded database with %d invoices", count),
		"count":     count,
		"timestamp": time.Now().UTC(),
	})
}

// handleHealth serves GET /health. The backend is probed with a count so
// a dead store surfaces as unhealthy.
func (s *Server) handleHealth(c *gin.Context) {
	if _, err := s.store.Count(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "storage unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"app_name":      AppName,
		"version":       Version,
		"database_type": s.cfg.StorageBackend,
		"timestamp":     time.Now().UTC(),
	})
}

// notifyAsync announces a persisted batch without blocking the request.
func (s *Server) notifyAsync(batch []models.EmailRecord) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.BatchSaved(ctx, batch); err != nil {
			slog.Warn("batch notification failed", "count", len(batch), "error", err)
		}
	}()
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func serverError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
}

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

// Package server exposes the mock invoice-email service over HTTP:
// batch generation, stored-collection reads with pagination, stats,
// clearing, and seeding. Serialization preserves the generator's
// absent-vs-null field semantics end to end.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bcem/invoicemock/internal/auth"
	"github.com/bcem/invoicemock/internal/config"
	"github.com/bcem/invoicemock/internal/generator"
	"github.com/bcem/invoicemock/internal/notify"
	"github.com/bcem/invoicemock/internal/storage"
)

const (
	// AppName and Version identify the service in health responses.
	AppName = "invoicemock"
	Version = "1.0.0"

	// maxGenerateCount bounds a single /invoices request.
	maxGenerateCount = 20

	// maxSeedCount bounds a single seed request.
	maxSeedCount = 100
)

// Server wires the generator, storage backend, and notifier behind the
// HTTP routes.
type Server struct {
	cfg      *config.Config
	gen      *generator.Generator
	store    storage.Backend
	notifier *notify.Notifier
	router   *gin.Engine
}

// New builds the server and its route table.
func New(cfg *config.Config, gen *generator.Generator, store storage.Backend, notifier *notify.Notifier) *Server {
	s := &Server{
		cfg:      cfg,
		gen:      gen,
		store:    store,
		notifier: notifier,
	}

	router := gin.New()
	router.Use(gin.Recovery(), auth.RequestID(), requestLogger())

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	api.Use(auth.RequireAPIKey(cfg.APIKeys, cfg.AuthEnabled))
	{
		api.GET("/invoices", s.handleGenerate)
		api.GET("/invoices/stored", s.handleStored)
		api.DELETE("/invoices/stored", s.handleClear)
		api.GET("/invoices/stats", s.handleStats)
		api.POST("/invoices/seed", s.handleSeed)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler for mounting in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger emits one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(auth.RequestIDHeader),
		)
	}
}

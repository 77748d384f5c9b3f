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

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(keys []string, enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAPIKey(keys, enabled))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

// TestRequireAPIKey covers bearer tokens, the X-API-Key header, bad
// keys, and the disabled mode.
func TestRequireAPIKey(t *testing.T) {
	keys := []string{"demo-key-123", "test-key-456"}

	tests := []struct {
		name       string
		enabled    bool
		header     string
		value      string
		wantStatus int
	}{
		{name: "valid bearer", enabled: true, header: "Authorization", value: "Bearer demo-key-123", wantStatus: http.StatusOK},
		{name: "valid api key header", enabled: true, header: "X-API-Key", value: "test-key-456", wantStatus: http.StatusOK},
		{name: "wrong key", enabled: true, header: "Authorization", value: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "missing key", enabled: true, wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", enabled: true, header: "Authorization", value: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "auth disabled", enabled: false, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(keys, tt.enabled)
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

// TestRequestID verifies a fresh id is issued and a supplied one is
// preserved.
func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("no request id issued")
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "req-abc" {
		t.Errorf("request id = %q, want req-abc", got)
	}
}

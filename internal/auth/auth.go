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

// Package auth provides request middleware: pre-shared API key checks
// and per-request identifiers. The service performs no token issuance —
// keys are static configuration.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps each request with a UUID, reusing one supplied by the
// caller. The id is echoed on the response and exposed to handlers via
// the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDHeader, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequireAPIKey rejects requests whose key is not in the configured set.
// Keys arrive either as "Authorization: Bearer <key>" or in an X-API-Key
// header. A disabled checker passes everything through.
func RequireAPIKey(keys []string, enabled bool) gin.HandlerFunc {
	valid := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			valid[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		key := bearerToken(c.GetHeader("Authorization"))
		if key == "" {
			key = c.GetHeader("X-API-Key")
		}

		if _, ok := valid[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

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

// Package pagination computes page windows over a stored total and
// bounds-checks requests. Validation failures are reported to the
// caller, never retried.
package pagination

import "fmt"

// MaxPageSize caps the number of records a single page may request.
const MaxPageSize = 500

// Window describes one page of a collection.
type Window struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Offset     int   `json:"-"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Paginate validates page and pageSize against the stored total and
// returns the page window. TotalPages is 1 for an empty collection, so
// page 1 is always addressable. Requesting a page past the end of a
// non-empty collection is a validation failure.
func Paginate(total int64, page, pageSize int) (Window, error) {
	if page < 1 {
		return Window{}, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return Window{}, fmt.Errorf("page_size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if total == 0 {
		totalPages = 1
	}

	if total > 0 && page > totalPages {
		return Window{}, fmt.Errorf("page %d out of range: collection has %d pages", page, totalPages)
	}

	return Window{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		Offset:     (page - 1) * pageSize,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

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

// Package models defines the data structures shared across the mock
// invoice-email service.
//
// The schema is deliberately loose: invoice fields may be absent, null,
// or carry a value of a drifting type. Absence and null are distinct
// states and MUST survive JSON round-trips — downstream pipelines are
// expected to handle both, so the serialisation layer cannot be allowed
// to collapse one into the other.
package models

import (
	"encoding/json"
	"fmt"
)

// FieldValue is a dynamically typed invoice field. Present distinguishes
// an absent key from an explicit null (Present with a nil Val).
type FieldValue struct {
	Val     any
	Present bool
}

// Some returns a FieldValue carrying v.
func Some(v any) FieldValue { return FieldValue{Val: v, Present: true} }

// Null returns a present-but-null FieldValue.
func Null() FieldValue { return FieldValue{Present: true} }

// InvoiceFields holds the invoice content extracted from an email.
// The well-known fields are typed; anything else (the schema-drift keys
// such as due_date, project_code, tax_amount, approver, line_items, and
// any keys a future upstream might add) lives in Extra.
//
// date and vendor_name are always present. Every other field is
// conditionally present per the generator's injection policy.
type InvoiceFields struct {
	InvoiceID  *string
	Amount     FieldValue // number, string, null, or absent
	Currency   *string
	Date       string
	VendorName string
	Status     *string
	Extra      map[string]any
}

// LineItem is a single entry of the line_items drift field.
type LineItem struct {
	Item     string  `json:"item"`
	Quantity int     `json:"quantity"`
	Rate     float64 `json:"rate"`
}

// MarshalJSON emits only the keys that are present. A nil pointer or a
// non-present FieldValue produces no key at all, never a null.
func (f InvoiceFields) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 6+len(f.Extra))
	if f.InvoiceID != nil {
		m["invoice_id"] = *f.InvoiceID
	}
	if f.Amount.Present {
		m["amount"] = f.Amount.Val
	}
	if f.Currency != nil {
		m["currency"] = *f.Currency
	}
	m["date"] = f.Date
	m["vendor_name"] = f.VendorName
	if f.Status != nil {
		m["status"] = *f.Status
	}
	for k, v := range f.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits a raw object into the well-known fields and Extra,
// preserving key presence.
func (f *InvoiceFields) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshal invoice fields: %w", err)
	}

	*f = InvoiceFields{}
	for k, v := range m {
		switch k {
		case "invoice_id":
			if s, ok := v.(string); ok {
				f.InvoiceID = &s
			}
		case "amount":
			f.Amount = FieldValue{Val: v, Present: true}
		case "currency":
			if s, ok := v.(string); ok {
				f.Currency = &s
			}
		case "date":
			if s, ok := v.(string); ok {
				f.Date = s
			}
		case "vendor_name":
			if s, ok := v.(string); ok {
				f.VendorName = s
			}
		case "status":
			if s, ok := v.(string); ok {
				f.Status = &s
			}
		default:
			if f.Extra == nil {
				f.Extra = make(map[string]any)
			}
			f.Extra[k] = v
		}
	}
	return nil
}

// EmailRecord represents a single synthetic invoice email.
//
// Records are immutable once emitted. A duplicated record shares all
// field values with its source, including the message id — duplication
// models a mail-service redelivery, not a new message.
type EmailRecord struct {
	// StorageID is the backend-assigned document identifier, surfaced as
	// an opaque string on reads from document stores. Empty on freshly
	// generated records.
	StorageID string `json:"_id,omitempty"`

	MessageID string `json:"message_id"`
	Subject   string `json:"subject"`
	Sender    string `json:"sender"`

	// ReceivedAt is a timestamp string in one of several (possibly
	// malformed) formats, or nil. The key is always serialised.
	ReceivedAt any `json:"received_at"`

	Body    string         `json:"body"`
	Invoice *InvoiceFields `json:"invoice_data,omitempty"`
}

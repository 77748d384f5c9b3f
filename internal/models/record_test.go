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

package models

import (
	"encoding/json"
	"testing"
)

// TestInvoiceFields_AbsentVsNull verifies that an absent amount emits no
// key while a null amount emits an explicit null.
func TestInvoiceFields_AbsentVsNull(t *testing.T) {
	absent := InvoiceFields{Date: "2026-01-15", VendorName: "Acme Inc."}

	data, err := json.Marshal(absent)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["amount"]; ok {
		t.Errorf("absent amount serialised as a key: %s", data)
	}
	if _, ok := m["invoice_id"]; ok {
		t.Errorf("absent invoice_id serialised as a key: %s", data)
	}

	null := InvoiceFields{Amount: Null(), Date: "2026-01-15", VendorName: "Acme Inc."}
	data, err = json.Marshal(null)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m = nil
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, ok := m["amount"]
	if !ok {
		t.Fatalf("null amount dropped entirely: %s", data)
	}
	if v != nil {
		t.Errorf("null amount = %v, want null", v)
	}
}

// TestInvoiceFields_RoundTrip verifies presence, null, and drift keys all
// survive marshal → unmarshal.
func TestInvoiceFields_RoundTrip(t *testing.T) {
	id := "INV-1001"
	currency := "USD"
	status := "pending"
	in := InvoiceFields{
		InvoiceID:  &id,
		Amount:     Some("$1,234.56"),
		Currency:   &currency,
		Date:       "2026-02-03",
		VendorName: "Globex Corp",
		Status:     &status,
		Extra: map[string]any{
			"project_code": "PROJ-X7",
			"tax_amount":   185.18,
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out InvoiceFields
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.InvoiceID == nil || *out.InvoiceID != id {
		t.Errorf("invoice_id = %v, want %q", out.InvoiceID, id)
	}
	if !out.Amount.Present || out.Amount.Val != "$1,234.56" {
		t.Errorf("amount = %+v, want present %q", out.Amount, "$1,234.56")
	}
	if out.Currency == nil || *out.Currency != currency {
		t.Errorf("currency = %v, want %q", out.Currency, currency)
	}
	if out.Date != in.Date || out.VendorName != in.VendorName {
		t.Errorf("date/vendor = %q/%q, want %q/%q", out.Date, out.VendorName, in.Date, in.VendorName)
	}
	if out.Status == nil || *out.Status != status {
		t.Errorf("status = %v, want %q", out.Status, status)
	}
	if out.Extra["project_code"] != "PROJ-X7" {
		t.Errorf("extra project_code = %v", out.Extra["project_code"])
	}
	if out.Extra["tax_amount"] != 185.18 {
		t.Errorf("extra tax_amount = %v", out.Extra["tax_amount"])
	}
}

// TestEmailRecord_ReceivedAtNull verifies a nil received_at serialises as
// an explicit null, not a dropped key.
func TestEmailRecord_ReceivedAtNull(t *testing.T) {
	rec := EmailRecord{
		MessageID:  "msg_001",
		Subject:    "Invoice INV-1001",
		Sender:     "billing@vendor.example",
		ReceivedAt: nil,
		Body:       "Amount: $100.00",
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["received_at"]; !ok || v != nil {
		t.Errorf("received_at = %v (present=%v), want explicit null", v, ok)
	}
	if _, ok := m["_id"]; ok {
		t.Errorf("empty storage id serialised: %s", data)
	}
	if _, ok := m["invoice_data"]; ok {
		t.Errorf("nil invoice_data serialised: %s", data)
	}
}

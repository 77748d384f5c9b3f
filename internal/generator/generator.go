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

// Package generator produces synthetic invoice-email records with
// deliberate data-quality defects: missing fields, type drift, malformed
// timestamps, schema drift, and exact duplicates. Downstream pipelines
// use the output to exercise their robustness against dirty upstream
// feeds.
//
// Defect rates are approximate probabilities, not guaranteed
// distributions, and runs are not reproducible across restarts.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/bcem/invoicemock/internal/models"
)

// DefaultHistorySize bounds the duplicate pool when no size is configured.
const DefaultHistorySize = 1000

// firstInvoiceNumber is where the invoice id sequence starts.
const firstInvoiceNumber = 1001

var invoiceStatuses = []string{"paid", "pending", "due", "overdue"}

var projectLetters = []string{"X", "Y", "Z"}

// Config controls a Generator instance.
type Config struct {
	// InconsistencyRate is the per-field probability in [0,1] that a
	// value deviates from its canonical type or format.
	InconsistencyRate float64

	// HistorySize caps the duplicate pool. Oldest records are evicted
	// first. Zero selects DefaultHistorySize.
	HistorySize int
}

// Generator assembles invoice-email records and batches. It owns the
// message and invoice id sequences plus a bounded history of emitted
// records used as the duplicate pool. All state is guarded by a single
// mutex, so one instance tolerates concurrent requests; independent
// instances (e.g. in tests) are fully isolated.
type Generator struct {
	mu    sync.Mutex
	rate  float64
	synth *FieldSynthesizer
	rng   *rand.Rand
	faker *gofakeit.Faker

	msgSeq     int
	invoiceSeq int

	// history is a fixed-capacity ring buffer. histNext is the slot the
	// next record lands in, histSize the number of occupied slots.
	history  []models.EmailRecord
	histNext int
	histSize int
}

// New creates a generator with fresh sequences and an empty history.
func New(cfg Config) *Generator {
	size := cfg.HistorySize
	if size <= 0 {
		size = DefaultHistorySize
	}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	faker := gofakeit.New(0)

	return &Generator{
		rate:       cfg.InconsistencyRate,
		synth:      NewFieldSynthesizer(rng, faker),
		rng:        rng,
		faker:      faker,
		msgSeq:     1,
		invoiceSeq: firstInvoiceNumber,
		history:    make([]models.EmailRecord, size),
	}
}

// GenerateBatch produces exactly count records in call order. Each slot
// is, with probability duplicateRate (and a non-empty history), an exact
// copy of a uniformly chosen prior record — same field values, same
// message id, modeling a mail-service redelivery. Otherwise a fresh
// record is assembled. count must be validated positive by the caller;
// non-positive counts yield an empty batch.
//
// Pure computation: no I/O, cannot fail at runtime.
func (g *Generator) GenerateBatch(count int, duplicateRate float64) []models.EmailRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	batch := make([]models.EmailRecord, 0, max(count, 0))
	for i := 0; i < count; i++ {
		if g.histSize > 0 && g.rng.Float64() < duplicateRate {
			batch = append(batch, g.history[g.rng.IntN(g.histSize)])
			continue
		}
		batch = append(batch, g.assemble())
	}
	return batch
}

// assemble builds one fresh record and appends it to the duplicate pool.
// Caller must hold g.mu.
func (g *Generator) assemble() models.EmailRecord {
	messageID := fmt.Sprintf("msg_%03d", g.msgSeq)
	g.msgSeq++

	inv := g.invoiceFields(false)

	// Templates tolerate defects: absent references degrade to literal
	// placeholders rather than failing.
	invoiceID := "UNKNOWN"
	if inv.InvoiceID != nil {
		invoiceID = *inv.InvoiceID
	}
	amount := "N/A"
	if inv.Amount.Present && inv.Amount.Val != nil {
		amount = fmt.Sprintf("%v", inv.Amount.Val)
	}

	rec := models.EmailRecord{
		MessageID:  messageID,
		Subject:    g.subject(invoiceID),
		Sender:     g.faker.Email(),
		ReceivedAt: g.synth.DateTime(g.rate),
		Body:       g.body(invoiceID, amount, inv.Date),
		Invoice:    &inv,
	}

	g.remember(rec)
	return rec
}

// invoiceFields synthesizes one invoice payload. The id sequences advance
// even when the field ends up omitted, so gaps appear downstream — that
// is part of the simulated mess. Caller must hold g.mu.
func (g *Generator) invoiceFields(forceExtra bool) models.InvoiceFields {
	invoiceID := fmt.Sprintf("INV-%d", g.invoiceSeq)
	g.invoiceSeq++

	amount := g.synth.Amount(g.rate)
	status := invoiceStatuses[g.rng.IntN(len(invoiceStatuses))]

	inv := models.InvoiceFields{
		Date:       time.Now().UTC().AddDate(0, 0, -g.rng.IntN(31)).Format("2006-01-02"),
		VendorName: g.synth.VendorName(),
		Currency:   g.synth.Currency(g.rate),
	}

	if g.rng.Float64() > g.rate*0.3 {
		inv.InvoiceID = &invoiceID
	}
	if g.rng.Float64() > g.rate*0.2 {
		inv.Amount = amount
	}
	if g.rng.Float64() > 0.3 {
		inv.Status = &status
	}

	// Schema drift: extra keys appear from call to call, simulating an
	// evolving upstream contract.
	if forceExtra || g.rng.Float64() < 0.3 {
		extra := make(map[string]any)
		if g.rng.Float64() < 0.4 {
			extra["due_date"] = time.Now().UTC().AddDate(0, 0, g.rng.IntN(61)).Format("2006-01-02")
		}
		if g.rng.Float64() < 0.4 {
			extra["project_code"] = fmt.Sprintf("PROJ-%s%d", projectLetters[g.rng.IntN(len(projectLetters))], 1+g.rng.IntN(9))
		}
		if g.rng.Float64() < 0.3 {
			// 15% of the drawn amount when numeric, else of a fallback 100.
			base := 100.0
			if v, ok := amount.Val.(float64); ok && amount.Present {
				base = v
			}
			extra["tax_amount"] = round2(base * 0.15)
		}
		if g.rng.Float64() < 0.2 {
			extra["approver"] = g.faker.Email()
		}
		if g.rng.Float64() < 0.15 {
			items := make([]models.LineItem, 1+g.rng.IntN(3))
			for i := range items {
				items[i] = models.LineItem{
					Item:     capitalize(g.faker.Word()),
					Quantity: 1 + g.rng.IntN(20),
					Rate:     round2(10 + g.rng.Float64()*490),
				}
			}
			extra["line_items"] = items
		}
		if len(extra) > 0 {
			inv.Extra = extra
		}
	}

	return inv
}

func (g *Generator) subject(invoiceID string) string {
	switch g.rng.IntN(6) {
	case 0:
		return "Invoice " + invoiceID
	case 1:
		return "Invoice #" + invoiceID
	case 2:
		return "URGENT: Invoice " + invoiceID
	case 3:
		return invoiceID + " Payment Request"
	case 4:
		return fmt.Sprintf("%s for Project %s", invoiceID, projectLetters[g.rng.IntN(len(projectLetters))])
	default:
		return "Invoice Notification"
	}
}

func (g *Generator) body(invoiceID, amount, date string) string {
	switch g.rng.IntN(6) {
	case 0:
		return fmt.Sprintf("Please find invoice %s for $%s dated %s", invoiceID, amount, date)
	case 1:
		return fmt.Sprintf("Invoice %s Amount: $%s", invoiceID, amount)
	case 2:
		return fmt.Sprintf("Invoice details: %s for $%s", invoiceID, amount)
	case 3:
		return "Here's our invoice for services"
	case 4:
		return "Amount: $" + amount
	default:
		return "Final invoice for project completion"
	}
}

// remember appends rec to the ring buffer, evicting the oldest entry
// once the buffer is full. Caller must hold g.mu.
func (g *Generator) remember(rec models.EmailRecord) {
	g.history[g.histNext] = rec
	g.histNext = (g.histNext + 1) % len(g.history)
	if g.histSize < len(g.history) {
		g.histSize++
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

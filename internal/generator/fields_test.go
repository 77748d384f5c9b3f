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

package generator

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

func newTestSynth() *FieldSynthesizer {
	rng := rand.New(rand.NewPCG(7, 13))
	return NewFieldSynthesizer(rng, gofakeit.New(42))
}

// TestAmount_CleanAtZeroRate verifies rate 0 always yields a numeric
// amount in the base range.
func TestAmount_CleanAtZeroRate(t *testing.T) {
	s := newTestSynth()
	for i := 0; i < 500; i++ {
		v := s.Amount(0)
		if !v.Present {
			t.Fatal("amount absent at rate 0")
		}
		f, ok := v.Val.(float64)
		if !ok {
			t.Fatalf("amount type = %T, want float64", v.Val)
		}
		if f < 100 || f > 10000 {
			t.Fatalf("amount %v outside [100, 10000]", f)
		}
	}
}

// TestAmount_DefectClassesAtFullRate verifies every defect class shows up
// when the rate forces a defect on each draw.
func TestAmount_DefectClassesAtFullRate(t *testing.T) {
	s := newTestSynth()

	var sawSymbol, sawNumericString, sawPlaceholder, sawNull, sawNegative bool
	for i := 0; i < 1000; i++ {
		v := s.Amount(1)
		if !v.Present {
			t.Fatal("amount absent: omission is the assembler's job, not the synthesizer's")
		}
		switch val := v.Val.(type) {
		case nil:
			sawNull = true
		case float64:
			if val >= 0 {
				t.Fatalf("positive numeric amount %v at rate 1", val)
			}
			sawNegative = true
		case string:
			switch {
			case strings.HasPrefix(val, "$"):
				sawSymbol = true
			default:
				if _, err := strconv.ParseFloat(val, 64); err == nil {
					sawNumericString = true
				} else {
					sawPlaceholder = true
				}
			}
		default:
			t.Fatalf("unexpected amount type %T", v.Val)
		}
	}

	if !sawSymbol || !sawNumericString || !sawPlaceholder || !sawNull || !sawNegative {
		t.Errorf("missing defect classes: symbol=%v numstr=%v placeholder=%v null=%v negative=%v",
			sawSymbol, sawNumericString, sawPlaceholder, sawNull, sawNegative)
	}
}

// TestDateTime_CanonicalAtZeroRate verifies rate 0 yields parseable
// ISO-8601 UTC strings within the past 30 days.
func TestDateTime_CanonicalAtZeroRate(t *testing.T) {
	s := newTestSynth()
	for i := 0; i < 200; i++ {
		v := s.DateTime(0)
		str, ok := v.(string)
		if !ok {
			t.Fatalf("datetime type = %T, want string", v)
		}
		ts, err := time.Parse("2006-01-02T15:04:05Z", str)
		if err != nil {
			t.Fatalf("datetime %q not canonical: %v", str, err)
		}
		if age := time.Since(ts); age < 0 || age > 31*24*time.Hour {
			t.Fatalf("datetime %q outside the past 30 days", str)
		}
	}
}

// TestDateTime_DefectsAtFullRate verifies the malformed variants appear.
func TestDateTime_DefectsAtFullRate(t *testing.T) {
	s := newTestSynth()

	var sawAmbiguous, sawNoZone, sawPlaceholder, sawNull bool
	for i := 0; i < 500; i++ {
		switch v := s.DateTime(1).(type) {
		case nil:
			sawNull = true
		case string:
			switch {
			case v == "invalid_datetime":
				sawPlaceholder = true
			case strings.Contains(v, "/"):
				sawAmbiguous = true
			case strings.Contains(v, "T") && !strings.HasSuffix(v, "Z"):
				sawNoZone = true
			default:
				t.Fatalf("unexpected defect datetime %q", v)
			}
		default:
			t.Fatalf("unexpected datetime type %T", v)
		}
	}

	if !sawAmbiguous || !sawNoZone || !sawPlaceholder || !sawNull {
		t.Errorf("missing datetime defects: ambiguous=%v nozone=%v placeholder=%v null=%v",
			sawAmbiguous, sawNoZone, sawPlaceholder, sawNull)
	}
}

// TestCurrency verifies codes come from the fixed set and absence tracks
// half the inconsistency rate.
func TestCurrency(t *testing.T) {
	s := newTestSynth()

	valid := make(map[string]bool)
	for _, c := range currencyCodes {
		valid[c] = true
	}

	absent := 0
	for i := 0; i < 1000; i++ {
		c := s.Currency(1)
		if c == nil {
			absent++
			continue
		}
		if !valid[*c] {
			t.Fatalf("currency %q not in fixed set", *c)
		}
	}
	// rate 1 → absent with p=0.5; allow a wide band.
	if absent < 350 || absent > 650 {
		t.Errorf("absent currencies = %d of 1000, want ~500", absent)
	}

	for i := 0; i < 200; i++ {
		if s.Currency(0) == nil {
			t.Fatal("currency absent at rate 0")
		}
	}
}

// TestVendorName verifies the legal-entity suffix vocabulary.
func TestVendorName(t *testing.T) {
	s := newTestSynth()
	for i := 0; i < 100; i++ {
		name := s.VendorName()
		if name == "" {
			t.Fatal("empty vendor name")
		}
		found := false
		for _, suffix := range vendorSuffixes {
			if strings.HasSuffix(name, " "+suffix) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("vendor name %q lacks a known suffix", name)
		}
	}
}

// TestDollarString verifies thousands separators.
func TestDollarString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "$100.00"},
		{1234.5, "$1,234.50"},
		{9999.99, "$9,999.99"},
		{1000000, "$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := dollarString(tt.in); got != tt.want {
			t.Errorf("dollarString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

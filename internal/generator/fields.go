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
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/bcem/invoicemock/internal/models"
)

// amountPlaceholders are the non-numeric tokens an amount can degrade to.
var amountPlaceholders = []string{"TWO THOUSAND", "invalid_amount", "TBD", "N/A"}

// currencyCodes is the fixed ISO currency vocabulary.
var currencyCodes = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

// vendorSuffixes are the legal-entity suffixes appended to company names.
var vendorSuffixes = []string{
	"Inc.", "Corp", "LLC", "Services", "Technologies",
	"Global", "Co.", "Solutions", "Innovations",
}

// FieldSynthesizer produces individual invoice field values, each with
// its own defect-injection policy driven by an inconsistency rate in
// [0,1]. It holds no state beyond the shared randomness source and is
// NOT safe for concurrent use — the owning Generator serialises calls.
type FieldSynthesizer struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewFieldSynthesizer creates a synthesizer drawing from the given
// randomness source and faker.
func NewFieldSynthesizer(rng *rand.Rand, faker *gofakeit.Faker) *FieldSynthesizer {
	return &FieldSynthesizer{rng: rng, faker: faker}
}

// Amount draws a base magnitude in [100, 10000) rounded to 2 decimals.
// With probability rate the value is replaced by one of five defects,
// chosen uniformly: a $-prefixed string with thousands separators, a
// plain numeric string, a placeholder token, null, or the negated
// magnitude.
func (s *FieldSynthesizer) Amount(rate float64) models.FieldValue {
	base := round2(100 + s.rng.Float64()*9900)

	if s.rng.Float64() < rate {
		switch s.rng.IntN(5) {
		case 0:
			return models.Some(dollarString(base))
		case 1:
			return models.Some(strconv.FormatFloat(base, 'f', 2, 64))
		case 2:
			return models.Some(amountPlaceholders[s.rng.IntN(len(amountPlaceholders))])
		case 3:
			return models.Null()
		case 4:
			return models.Some(-base)
		}
	}

	return models.Some(base)
}

// DateTime picks a moment 1–30 days in the past. The canonical form is
// ISO-8601 with a Z suffix; with probability rate it degrades to a
// locale-ambiguous DD/MM/YYYY HH:MM string, an ISO string missing its
// timezone marker, a non-parseable placeholder, or nil.
func (s *FieldSynthesizer) DateTime(rate float64) any {
	base := time.Now().UTC().AddDate(0, 0, -(1 + s.rng.IntN(30)))

	if s.rng.Float64() < rate {
		switch s.rng.IntN(4) {
		case 0:
			return base.Format("02/01/2006 15:04")
		case 1:
			return base.Format("2006-01-02T15:04:05")
		case 2:
			return "invalid_datetime"
		case 3:
			return nil
		}
	}

	return base.Format("2006-01-02T15:04:05Z")
}

// Currency returns one of the fixed ISO codes, or nil (absent) with
// probability rate/2.
func (s *FieldSynthesizer) Currency(rate float64) *string {
	if s.rng.Float64() < rate*0.5 {
		return nil
	}
	code := currencyCodes[s.rng.IntN(len(currencyCodes))]
	return &code
}

// VendorName concatenates a generated company name with a legal-entity
// suffix. Always present; no defect injection.
func (s *FieldSynthesizer) VendorName() string {
	return s.faker.Company() + " " + vendorSuffixes[s.rng.IntN(len(vendorSuffixes))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dollarString formats v as $N,NNN.NN.
func dollarString(v float64) string {
	str := strconv.FormatFloat(v, 'f', 2, 64)
	dot := strings.IndexByte(str, '.')
	intPart, frac := str[:dot], str[dot:]
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}
	return "$" + intPart + frac
}

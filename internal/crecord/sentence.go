package crecord

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// #region quantity
// Quantity is the textual amount of a sentence bound. It decodes from either a
// JSON string or a JSON number.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*q = Quantity(n.String())
		return nil
	}
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	if s == nil {
		*q = ""
		return nil
	}
	*q = Quantity(*s)
	return nil
}

// #endregion quantity

// #region sentence-length
var (
	dayUnit   = regexp.MustCompile(`(?i)^day`)
	monthUnit = regexp.MustCompile(`(?i)^month`)
	yearUnit  = regexp.MustCompile(`(?i)^year`)
)

const (
	daysPerMonth = 30.42
	daysPerYear  = 365
)

// ParseLength converts a (quantity, unit) pair into days. An empty quantity is
// zero days. Absent results (nil) come back with ErrUnparseableQuantity or
// ErrUnknownUnit, which callers report as diagnostics.
func ParseLength(quantity, unit string) (*float64, error) {
	quantity = strings.TrimSpace(quantity)
	unit = strings.TrimSpace(unit)
	if quantity == "" {
		zero := 0.0
		return &zero, nil
	}
	var factor float64
	switch {
	case dayUnit.MatchString(unit):
		factor = 1
	case monthUnit.MatchString(unit):
		factor = daysPerMonth
	case yearUnit.MatchString(unit):
		factor = daysPerYear
	case unit == "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	n, err := strconv.ParseFloat(quantity, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnparseableQuantity, quantity)
	}
	days := n * factor
	return &days, nil
}

// SentenceLength is a minimum/maximum range as recorded on the docket.
type SentenceLength struct {
	MinTime Quantity `json:"min_time"`
	MinUnit string   `json:"min_unit"`
	MaxTime Quantity `json:"max_time"`
	MaxUnit string   `json:"max_unit"`
}

func (l SentenceLength) MinDays() (*float64, error) {
	return ParseLength(string(l.MinTime), l.MinUnit)
}

func (l SentenceLength) MaxDays() (*float64, error) {
	return ParseLength(string(l.MaxTime), l.MaxUnit)
}

// #endregion sentence-length

// #region sentence
// Sentence is one sentence imposed on a charge.
type Sentence struct {
	SentenceDate   Date           `json:"sentence_date"`
	SentenceType   string         `json:"sentence_type"`
	SentencePeriod string         `json:"sentence_period"`
	SentenceLength SentenceLength `json:"sentence_length"`
}

// IsConfinement reports whether the sentence type names a confinement.
func (s Sentence) IsConfinement() bool {
	return strings.Contains(s.SentenceType, "onfine")
}

// CompleteDate is the sentence date plus the maximum length. ok is false when
// either piece is missing.
func (s Sentence) CompleteDate() (Date, bool, error) {
	days, err := s.SentenceLength.MaxDays()
	if err != nil || days == nil || s.SentenceDate.IsZero() {
		return Date{}, false, err
	}
	return s.SentenceDate.AddDays(*days), true, nil
}

// #endregion sentence

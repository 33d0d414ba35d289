package crecord

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// #region validate
var recordValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects records missing identifying fields: a person's name, a
// docket number on every case, an offense on every charge, and unique dockets.
func Validate(r Record) error {
	if err := recordValidate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	seen := make(map[string]bool, len(r.Cases))
	for _, c := range r.Cases {
		if strings.TrimSpace(c.DocketNumber) == "" {
			return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrMissingDocket)
		}
		if seen[c.DocketNumber] {
			return fmt.Errorf("%w: %w %s", ErrInvalidRecord, ErrDuplicateCase, c.DocketNumber)
		}
		seen[c.DocketNumber] = true
	}
	return nil
}

// #endregion validate

// #region data-issues
// DataIssues lists non-fatal data-quality problems: unparseable dates, unknown
// grade codes, unreadable sentence lengths, missing dispositions and cases
// with no arrest or disposition date.
func (r Record) DataIssues() []error {
	var issues []error
	badDate := func(where string, d Date) {
		if d.bad != "" {
			issues = append(issues, fmt.Errorf("%s: %w: %q", where, ErrBadDate, d.bad))
		}
	}
	badDate("person date_of_birth", r.Person.DateOfBirth)
	badDate("person date_of_death", r.Person.DateOfDeath)
	for _, c := range r.Cases {
		badDate(c.DocketNumber+" arrest_date", c.ArrestDate)
		badDate(c.DocketNumber+" disposition_date", c.DispositionDate)
		badDate(c.DocketNumber+" complaint_date", c.ComplaintDate)
		if _, ok := c.LastAction(); !ok {
			issues = append(issues, fmt.Errorf("%s: %w, treating last action as the far past", c.DocketNumber, ErrNoLastAction))
		}
		for _, ch := range c.Charges {
			where := c.DocketNumber + " charge " + ch.Sequence
			badDate(where+" disposition_date", ch.DispositionDate)
			if _, known := GradeRank(ch.Grade); !known {
				issues = append(issues, fmt.Errorf("%s: %w %q, treated as least severe", where, ErrUnknownGrade, ch.Grade))
			}
			if ch.IsUnresolved() {
				issues = append(issues, fmt.Errorf("%s: %w", where, ErrMissingDisposition))
			}
			for _, s := range ch.Sentences {
				badDate(where+" sentence_date", s.SentenceDate)
				if _, err := s.SentenceLength.MinDays(); err != nil {
					issues = append(issues, fmt.Errorf("%s min length: %w", where, err))
				}
				if _, err := s.SentenceLength.MaxDays(); err != nil {
					issues = append(issues, fmt.Errorf("%s max length: %w", where, err))
				}
			}
		}
	}
	return issues
}

// #endregion data-issues

// #region interchange
// Decode reads a Record from its JSON interchange form.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// Encode writes a Record in its JSON interchange form.
func Encode(r Record) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}

// #endregion interchange

package crecord

import (
	"fmt"
	"slices"
	"strings"
)

// #region case
// Case is a docket and the charges filed on it. DocketNumber is unique within
// a Record. TotalFines and FinesPaid are nil when the source did not say.
type Case struct {
	DocketNumber           string   `json:"docket_number" validate:"required"`
	County                 string   `json:"county"`
	Status                 string   `json:"status"`
	OTN                    string   `json:"otn"`
	DC                     string   `json:"dc"`
	Charges                []Charge `json:"charges" validate:"dive"`
	TotalFines             *float64 `json:"total_fines"`
	FinesPaid              *float64 `json:"fines_paid"`
	ComplaintDate          Date     `json:"complaint_date"`
	ArrestDate             Date     `json:"arrest_date"`
	DispositionDate        Date     `json:"disposition_date"`
	Judge                  string   `json:"judge,omitempty"`
	JudgeAddress           string   `json:"judge_address,omitempty"`
	Affiant                string   `json:"affiant,omitempty"`
	ArrestingAgency        string   `json:"arresting_agency,omitempty"`
	ArrestingAgencyAddress string   `json:"arresting_agency_address,omitempty"`
	RelatedCases           []string `json:"related_cases"`
}

// PartialCopy returns the case with every non-charge field and no charges.
// Rules build their slices of a record from partial copies.
func (c Case) PartialCopy() Case {
	out := c
	out.Charges = nil
	out.TotalFines = copyFloat(c.TotalFines)
	out.FinesPaid = copyFloat(c.FinesPaid)
	out.RelatedCases = append([]string(nil), c.RelatedCases...)
	return out
}

// WithCharges is a partial copy carrying the given charges.
func (c Case) WithCharges(charges []Charge) Case {
	out := c.PartialCopy()
	out.Charges = make([]Charge, 0, len(charges))
	for _, ch := range charges {
		out.Charges = append(out.Charges, ch.clone())
	}
	return out
}

// Clone is a deep copy.
func (c Case) Clone() Case {
	return c.WithCharges(c.Charges)
}

// #endregion case

// #region derived
// LastAction is the later of the arrest and disposition dates. When neither is
// known it returns the zero Date (the far past) and ok=false.
func (c Case) LastAction() (Date, bool) {
	if c.ArrestDate.IsZero() && c.DispositionDate.IsZero() {
		return Date{}, false
	}
	return MaxDate(c.ArrestDate, c.DispositionDate), true
}

// YearsPassedDisposition is the calendar years since the case disposition, or
// 0 when the disposition date is absent.
func (c Case) YearsPassedDisposition(asOf Date) int {
	if c.DispositionDate.IsZero() {
		return 0
	}
	return YearsBetween(c.DispositionDate, asOf)
}

// WasConfined reports any confinement sentence on any charge.
func (c Case) WasConfined() bool {
	for _, ch := range c.Charges {
		for _, s := range ch.Sentences {
			if s.IsConfinement() {
				return true
			}
		}
	}
	return false
}

// EndOfConfinement is the latest sentence completion date across the case.
// ok is false when the case had no confinement or no computable end.
// Unreadable sentence lengths are skipped and returned as issues.
func (c Case) EndOfConfinement() (end Date, ok bool, issues []error) {
	if !c.WasConfined() {
		return Date{}, false, nil
	}
	for _, ch := range c.Charges {
		for _, s := range ch.Sentences {
			done, known, err := s.CompleteDate()
			if err != nil {
				issues = append(issues, fmt.Errorf("%s charge %s: %w", c.DocketNumber, ch.Sequence, err))
			}
			if known {
				end = MaxDate(end, done)
				ok = true
			}
		}
	}
	return end, ok, issues
}

// FinesRemaining is total minus paid. known is false when the total is unset.
func (c Case) FinesRemaining() (remaining float64, known bool) {
	if c.TotalFines == nil {
		return 0, false
	}
	paid := 0.0
	if c.FinesPaid != nil {
		paid = *c.FinesPaid
	}
	return *c.TotalFines - paid, true
}

// HasConviction reports whether any charge on the case is a conviction.
func (c Case) HasConviction() bool {
	for _, ch := range c.Charges {
		if ch.IsConviction() {
			return true
		}
	}
	return false
}

// IsActive reports an "Active" case status.
func (c Case) IsActive() bool {
	return strings.Contains(c.Status, "Active")
}

// #endregion derived

// #region merge
// Merge combines two parsings of the same docket: empty fields are filled from
// other and charges are merged by sequence.
func (c Case) Merge(other Case) Case {
	out := c.Clone()
	out.County = pickString(c.County, other.County)
	out.Status = pickString(c.Status, other.Status)
	out.OTN = pickString(c.OTN, other.OTN)
	out.DC = pickString(c.DC, other.DC)
	out.Judge = pickString(c.Judge, other.Judge)
	out.JudgeAddress = pickString(c.JudgeAddress, other.JudgeAddress)
	out.Affiant = pickString(c.Affiant, other.Affiant)
	out.ArrestingAgency = pickString(c.ArrestingAgency, other.ArrestingAgency)
	out.ArrestingAgencyAddress = pickString(c.ArrestingAgencyAddress, other.ArrestingAgencyAddress)
	if out.TotalFines == nil {
		out.TotalFines = copyFloat(other.TotalFines)
	}
	if out.FinesPaid == nil {
		out.FinesPaid = copyFloat(other.FinesPaid)
	}
	if out.ComplaintDate.IsZero() {
		out.ComplaintDate = other.ComplaintDate
	}
	if out.ArrestDate.IsZero() {
		out.ArrestDate = other.ArrestDate
	}
	if out.DispositionDate.IsZero() {
		out.DispositionDate = other.DispositionDate
	}
	for _, dkt := range other.RelatedCases {
		if !slices.Contains(out.RelatedCases, dkt) {
			out.RelatedCases = append(out.RelatedCases, dkt)
		}
	}
	out.Charges = ReduceMerge(append(out.Charges, other.Charges...))
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// #endregion merge

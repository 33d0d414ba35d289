package crecord

import (
	"math"
	"regexp"
	"slices"
	"sort"
)

var heldForCourt = regexp.MustCompile(`(?i)held for court`)

// #region record
// Record is a person and their cases, unique by docket number.
type Record struct {
	Person Person `json:"person"`
	Cases  []Case `json:"cases" validate:"dive"`
}

// Clone is a deep copy; no slice or pointer is shared with r.
func (r Record) Clone() Record {
	out := Record{Person: r.Person.clone()}
	if r.Cases != nil {
		out.Cases = make([]Case, 0, len(r.Cases))
		for _, c := range r.Cases {
			out.Cases = append(out.Cases, c.Clone())
		}
	}
	return out
}

// WithCases returns a record for the same person holding the given cases.
func (r Record) WithCases(cases []Case) Record {
	out := Record{Person: r.Person.clone(), Cases: make([]Case, 0, len(cases))}
	for _, c := range cases {
		out.Cases = append(out.Cases, c.Clone())
	}
	return out
}

// CaseByDocket finds a case by docket number.
func (r Record) CaseByDocket(docket string) (Case, bool) {
	for _, c := range r.Cases {
		if c.DocketNumber == docket {
			return c, true
		}
	}
	return Case{}, false
}

// ChargeCount is the number of charges across all cases.
func (r Record) ChargeCount() int {
	n := 0
	for _, c := range r.Cases {
		n += len(c.Charges)
	}
	return n
}

// #endregion record

// #region add-case
// AddCase merges c into a case with the same docket when one exists, appends
// it otherwise, then resolves transferred charges.
func (r Record) AddCase(c Case) Record {
	out := r.Clone()
	merged := false
	for i, existing := range out.Cases {
		if existing.DocketNumber == c.DocketNumber {
			out.Cases[i] = existing.Merge(c)
			merged = true
			break
		}
	}
	if !merged {
		out.Cases = append(out.Cases, c.Clone())
	}
	return out.HandleTransferredCases()
}

// FindCasesByOTN returns dockets (other than those excluded) where the case
// or one of its charges carries otn.
func (r Record) FindCasesByOTN(otn string, except ...string) []string {
	if otn == "" {
		return nil
	}
	var found []string
	for _, c := range r.Cases {
		if slices.Contains(except, c.DocketNumber) {
			continue
		}
		if c.OTN == otn {
			found = append(found, c.DocketNumber)
			continue
		}
		for _, ch := range c.Charges {
			if ch.OTN == otn {
				found = append(found, c.DocketNumber)
				break
			}
		}
	}
	return found
}

// HandleTransferredCases removes "held for court" charges whose OTN matches
// another case, links that case back via RelatedCases, and drops cases left
// without charges by the move.
func (r Record) HandleTransferredCases() Record {
	out := r.Clone()
	emptied := map[string]bool{}
	for i := range out.Cases {
		c := &out.Cases[i]
		kept := make([]Charge, 0, len(c.Charges))
		moved := false
		for _, ch := range c.Charges {
			if !heldForCourt.MatchString(ch.Disposition) {
				kept = append(kept, ch)
				continue
			}
			otn := c.OTN
			if otn == "" {
				otn = ch.OTN
			}
			targets := out.FindCasesByOTN(otn, c.DocketNumber)
			if len(targets) == 0 {
				kept = append(kept, ch)
				continue
			}
			for j := range out.Cases {
				if out.Cases[j].DocketNumber == targets[0] && !slices.Contains(out.Cases[j].RelatedCases, c.DocketNumber) {
					out.Cases[j].RelatedCases = append(out.Cases[j].RelatedCases, c.DocketNumber)
				}
			}
			moved = true
		}
		c.Charges = kept
		if moved && len(kept) == 0 {
			emptied[c.DocketNumber] = true
		}
	}
	if len(emptied) == 0 {
		return out
	}
	cases := make([]Case, 0, len(out.Cases))
	for _, c := range out.Cases {
		if !emptied[c.DocketNumber] {
			cases = append(cases, c)
		}
	}
	out.Cases = cases
	return out
}

// #endregion add-case

// #region cross-case
// YearsSinceLastArrestOrProsecution is +Inf with no cases, 0 when any case is
// Active, and otherwise the calendar years since the latest last action.
func (r Record) YearsSinceLastArrestOrProsecution(asOf Date) float64 {
	if len(r.Cases) == 0 {
		return math.Inf(1)
	}
	var last Date
	for _, c := range r.Cases {
		if c.IsActive() {
			return 0
		}
		la, _ := c.LastAction()
		last = MaxDate(last, la)
	}
	return float64(YearsBetween(last, asOf))
}

// YearsSinceFinalRelease is +Inf if the person was never confined, otherwise
// the non-negative calendar years since the latest end of confinement.
func (r Record) YearsSinceFinalRelease(asOf Date) (float64, []error) {
	var (
		latest   Date
		confined bool
		issues   []error
	)
	for _, c := range r.Cases {
		end, ok, errs := c.EndOfConfinement()
		issues = append(issues, errs...)
		if ok {
			latest = MaxDate(latest, end)
			confined = true
		}
	}
	if !confined {
		return math.Inf(1), issues
	}
	years := YearsBetween(latest, asOf)
	if years < 0 {
		years = 0
	}
	return float64(years), issues
}

// YearsBetweenConvictions is the calendar years from the disposition of
// charge (in the case with docket) to the last action of the next other case
// with a conviction, or to asOf when no later conviction exists.
func (r Record) YearsBetweenConvictions(docket string, charge Charge, asOf Date) int {
	start := charge.DispositionDate
	if start.IsZero() {
		if c, ok := r.CaseByDocket(docket); ok {
			start = c.DispositionDate
		}
	}

	var convicted []Case
	for _, c := range r.Cases {
		if c.DocketNumber != docket && c.HasConviction() {
			convicted = append(convicted, c)
		}
	}
	sort.SliceStable(convicted, func(i, j int) bool {
		a, _ := convicted[i].LastAction()
		b, _ := convicted[j].LastAction()
		return a.Before(b)
	})
	for _, c := range convicted {
		la, _ := c.LastAction()
		if la.After(start) {
			return YearsBetween(start, la)
		}
	}
	return YearsBetween(start, asOf)
}

// #endregion cross-case

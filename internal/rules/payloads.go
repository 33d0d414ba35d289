package rules

import "github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"

// Each composite rule tags its decision with a payload whose fields name the
// sub-decisions. The exported reasoning list is derived from Children.

// #region filter
// FilterPayload holds one "is this a traffic case" decision per case.
type FilterPayload struct {
	Cases []decision.Decision
}

func (p FilterPayload) Children() []decision.Decision { return p.Cases }

// #endregion filter

// #region over-70
type OverSeventyPayload struct {
	OverAge    decision.Decision
	ArrestFree decision.Decision
	Released   decision.Decision
}

func (p OverSeventyPayload) Children() []decision.Decision {
	return []decision.Decision{p.OverAge, p.ArrestFree, p.Released}
}

// #endregion over-70

// #region deceased
type DeceasedPayload struct {
	DeceasedLongEnough decision.Decision
}

func (p DeceasedPayload) Children() []decision.Decision {
	return []decision.Decision{p.DeceasedLongEnough}
}

// #endregion deceased

// #region nonconvictions
// NonconvictionCharge wraps "is this a conviction or unresolved". The charge
// is expungeable when that decision is false.
type NonconvictionCharge struct {
	Sequence string
	Decision decision.Decision
}

// Expungeable is true when the charge is neither convicted nor unresolved.
func (c NonconvictionCharge) Expungeable() bool { return !c.Decision.Bool() }

type NonconvictionCase struct {
	Docket   string
	Decision decision.Decision
	Charges  []NonconvictionCharge
}

type NonconvictionPayload struct {
	Cases []NonconvictionCase
}

func (p NonconvictionPayload) Children() []decision.Decision {
	out := make([]decision.Decision, 0, len(p.Cases))
	for _, c := range p.Cases {
		out = append(out, c.Decision)
	}
	return out
}

// #endregion nonconvictions

// #region summary-convictions
// SummaryCharge is expungeable when Decision is true. SummaryConviction is
// kept apart so a charge blocked only by the arrest-free period is visible.
type SummaryCharge struct {
	Sequence          string
	Decision          decision.Decision
	SummaryConviction decision.Decision
}

type SummaryCase struct {
	Docket   string
	Decision decision.Decision
	Charges  []SummaryCharge
}

type SummaryPayload struct {
	ArrestFree decision.Decision
	Cases      []SummaryCase
}

func (p SummaryPayload) Children() []decision.Decision {
	out := []decision.Decision{p.ArrestFree}
	for _, c := range p.Cases {
		out = append(out, c.Decision)
	}
	return out
}

// #endregion summary-convictions

// #region sealing
// SealingRecordChecks are the requirements on the whole record. The time
// check is separate so summaries can tell a waiting period from a bar.
type SealingRecordChecks struct {
	Decision                decision.Decision
	TenYearsSinceConviction decision.Decision
	NoF1OrMurder            decision.Decision
	NoDangerToPerson        decision.Decision
	NoOffenseAgainstFamily  decision.Decision
	NoFirearmsOffense       decision.Decision
	NoSexualOffense         decision.Decision
	PunishableTwoYearsIn20  decision.Decision
	PunishableTwoYearsIn15  decision.Decision
	SingleStatuteExclusions []decision.Decision
}

// Rest lists every record requirement except the time check.
func (r SealingRecordChecks) Rest() []decision.Decision {
	out := []decision.Decision{
		r.NoF1OrMurder,
		r.NoDangerToPerson,
		r.NoOffenseAgainstFamily,
		r.NoFirearmsOffense,
		r.NoSexualOffense,
		r.PunishableTwoYearsIn20,
		r.PunishableTwoYearsIn15,
	}
	return append(out, r.SingleStatuteExclusions...)
}

// SealingCharge holds the per-charge checks. Decision's value is Sealable or
// NotSealable.
type SealingCharge struct {
	Sequence               string
	Decision               decision.Decision
	FinesPaid              decision.Decision
	MisdemeanorOrUngraded  decision.Decision
	NoDangerToPerson       decision.Decision
	NoOffenseAgainstFamily decision.Decision
	NoFirearmsOffense      decision.Decision
	NoSexualOffense        decision.Decision
	NoCorruptionOfMinors   decision.Decision
}

// Others lists every charge check except fines.
func (c SealingCharge) Others() []decision.Decision {
	return []decision.Decision{
		c.MisdemeanorOrUngraded,
		c.NoDangerToPerson,
		c.NoOffenseAgainstFamily,
		c.NoFirearmsOffense,
		c.NoSexualOffense,
		c.NoCorruptionOfMinors,
	}
}

type SealingCase struct {
	Docket   string
	Decision decision.Decision
	Charges  []SealingCharge
}

type SealingPayload struct {
	FullRecord SealingRecordChecks
	Cases      []SealingCase
}

func (p SealingPayload) Children() []decision.Decision {
	out := []decision.Decision{p.FullRecord.Decision}
	for _, c := range p.Cases {
		out = append(out, c.Decision)
	}
	return out
}

// #endregion sealing

// #region autosealing
type AutosealCharge struct {
	Sequence          string
	Decision          decision.Decision
	TenYearsFree      decision.Decision
	FinesPaid         decision.Decision
	Nonconviction     decision.Decision
	SummaryConviction decision.Decision
	GradeBetween      decision.Decision
	NotExcluded       decision.Decision
	NoM1InCase        decision.Decision
	RecordNotExcluded decision.Decision
}

// BlockedOnlyByFines is true when paying fines would make the charge eligible.
func (c AutosealCharge) BlockedOnlyByFines() bool {
	if c.FinesPaid.Bool() {
		return false
	}
	return c.SummaryConviction.Bool() ||
		decision.All(c.GradeBetween, c.TenYearsFree, c.NotExcluded, c.NoM1InCase, c.RecordNotExcluded)
}

// BlockedOnlyByTime is true when the gap between convictions is the sole bar.
func (c AutosealCharge) BlockedOnlyByTime() bool {
	if c.TenYearsFree.Bool() {
		return false
	}
	return decision.All(c.FinesPaid, c.GradeBetween, c.NotExcluded, c.NoM1InCase, c.RecordNotExcluded)
}

type AutosealCase struct {
	Docket   string
	Decision decision.Decision
	Charges  []AutosealCharge
}

type AutosealPayload struct {
	RecordNotExcluded decision.Decision
	Cases             []AutosealCase
}

func (p AutosealPayload) Children() []decision.Decision {
	out := []decision.Decision{p.RecordNotExcluded}
	for _, c := range p.Cases {
		out = append(out, c.Decision)
	}
	return out
}

// #endregion autosealing

package decision

import "github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"

// #region rule-id
// RuleID tags a top-level decision with the rule that produced it.
// Summaries dispatch on this tag; Name is for display only.
type RuleID string

const (
	RuleNone                      RuleID = ""
	RuleFilterTrafficCases        RuleID = "filter_traffic_cases"
	RuleExpungeDeceased           RuleID = "expunge_deceased"
	RuleExpungeOver70             RuleID = "expunge_over_70"
	RuleExpungeNonconvictions     RuleID = "expunge_nonconvictions"
	RuleExpungeSummaryConvictions RuleID = "expunge_summary_convictions"
	RuleSealConvictions           RuleID = "seal_convictions"
	RuleAutosealingEligibility    RuleID = "autosealing_eligibility"
)

// #endregion rule-id

// #region kind
// Kind says what sort of conclusion a decision represents.
type Kind string

const (
	KindPlain       Kind = ""
	KindPetition    Kind = "petition"    // Value is []petition.Petition
	KindEligibility Kind = "eligibility" // Value is Partition
	KindFilter      Kind = "filter"      // Value is []crecord.Case removed
)

// #endregion kind

// #region partition
// Partition splits cases into eligible and ineligible slices. Each slice
// holds partial copies carrying only the charges that fall on that side.
type Partition struct {
	Eligible   []crecord.Case `json:"eligible"`
	Ineligible []crecord.Case `json:"ineligible"`
}

// Truthy is true when anything is eligible.
func (p Partition) Truthy() bool {
	return len(p.Eligible) > 0
}

// #endregion partition

// #region payload
// Payload is the rule-specific structured reasoning of a top-level decision.
// Children flattens it into the generic reasoning list used for export.
type Payload interface {
	Children() []Decision
}

// Truther lets a value define its own truthiness.
type Truther interface {
	Truthy() bool
}

// #endregion payload

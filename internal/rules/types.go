package rules

import (
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
)

// #region rule
// Rule partitions a record. The returned record holds exactly the cases and
// charges the rule did not dispose of; the decision explains what it did.
type Rule func(crecord.Record) (crecord.Record, decision.Decision)

// #endregion rule

// #region config
// Config holds the statutory thresholds the rules compare against.
type Config struct {
	TrafficMarker              string `yaml:"traffic_marker"`
	SeniorAge                  int    `yaml:"senior_age"`                    // strict >
	SeniorArrestFreeYears      int    `yaml:"senior_arrest_free_years"`      // >=
	SeniorReleaseYears         int    `yaml:"senior_release_years"`          // strict >
	DeceasedYears              int    `yaml:"deceased_years"`                // strict >
	SummaryArrestFreeYears     int    `yaml:"summary_arrest_free_years"`     // strict >
	SealingConvictionFreeYears int    `yaml:"sealing_conviction_free_years"` // strict >
	AutosealConvictionGap      int    `yaml:"autoseal_conviction_gap"`       // >=
}

// DefaultConfig returns the thresholds in force under current law.
func DefaultConfig() Config {
	return Config{
		TrafficMarker:              "TR",
		SeniorAge:                  70,
		SeniorArrestFreeYears:      10,
		SeniorReleaseYears:         10,
		DeceasedYears:              3,
		SummaryArrestFreeYears:     5,
		SealingConvictionFreeYears: 10,
		AutosealConvictionGap:      10,
	}
}

// #endregion config

// #region display-names
const (
	NameFilterTraffic      = "Traffic Court cases removed from consideration."
	NameOver70             = "Expungements for a person over 70."
	NameDeceased           = "Expungements for a deceased person, three years after their death."
	NameNonconvictions     = "Expungements of nonconvictions."
	NameSummaryConvictions = "Expungements for summary convictions."
	NameSealConvictions    = "Sealing some convictions under the Clean Slate reforms."
	NameAutosealing        = "Eligibility for Automated Sealing"
)

// Case outcomes for petition sealing.
const (
	Sealable           = "Sealable"
	NotSealable        = "Not sealable"
	AllChargesSealable = "All charges sealable"
	SomeSealable       = "Some charges sealable"
	NoChargesSealable  = "No charges sealable"
)

// #endregion display-names

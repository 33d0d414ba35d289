package crecord

import (
	"regexp"
	"strings"
)

var (
	convictionPattern  = regexp.MustCompile(`^Guilty`)
	finalDispositionRe = regexp.MustCompile(`(?i)nolle|guilt|dismiss|withdraw`)
)

// #region charge
// Charge is one count within a case. Sequence identifies it within its case.
type Charge struct {
	Offense         string     `json:"offense" validate:"required"`
	Grade           string     `json:"grade"`
	Statute         string     `json:"statute"`
	Sequence        string     `json:"sequence"`
	Disposition     string     `json:"disposition"`
	DispositionDate Date       `json:"disposition_date"`
	Sentences       []Sentence `json:"sentences"`
	OTN             string     `json:"otn,omitempty"`
}

// IsConviction is true only when the trimmed disposition starts with "Guilty".
func (c Charge) IsConviction() bool {
	d := strings.TrimSpace(c.Disposition)
	if d == "" {
		return false
	}
	return convictionPattern.MatchString(d)
}

// IsUnresolved reports a charge with no disposition recorded.
func (c Charge) IsUnresolved() bool {
	return strings.TrimSpace(c.Disposition) == ""
}

// IsFinalDisposition reports whether a disposition text states a final outcome.
func IsFinalDisposition(disposition string) bool {
	return finalDispositionRe.MatchString(disposition)
}

func (c Charge) clone() Charge {
	out := c
	out.Sentences = append([]Sentence(nil), c.Sentences...)
	return out
}

// #endregion charge

// #region merge
// CombineWith returns c with empty fields filled from other. The disposition
// (and its date) is replaced only when other's disposition is final.
func (c Charge) CombineWith(other Charge) Charge {
	out := c.clone()
	out.Offense = pickString(c.Offense, other.Offense)
	out.Grade = pickString(c.Grade, other.Grade)
	out.Statute = pickString(c.Statute, other.Statute)
	out.Sequence = pickString(c.Sequence, other.Sequence)
	out.OTN = pickString(c.OTN, other.OTN)
	if len(out.Sentences) == 0 && len(other.Sentences) > 0 {
		out.Sentences = append([]Sentence(nil), other.Sentences...)
	}

	switch {
	case strings.TrimSpace(c.Disposition) == "" && strings.TrimSpace(other.Disposition) != "":
		out.Disposition = other.Disposition
		out.DispositionDate = other.DispositionDate
	case IsFinalDisposition(other.Disposition):
		out.Disposition = other.Disposition
		out.DispositionDate = other.DispositionDate
	case out.DispositionDate.IsZero():
		out.DispositionDate = other.DispositionDate
	}
	return out
}

// ReduceMerge collapses charges sharing a non-blank sequence into one charge,
// keeping first-seen order.
func ReduceMerge(charges []Charge) []Charge {
	out := make([]Charge, 0, len(charges))
	index := make(map[string]int)
	for _, ch := range charges {
		seq := strings.TrimSpace(ch.Sequence)
		if seq == "" {
			out = append(out, ch.clone())
			continue
		}
		if i, ok := index[seq]; ok {
			out[i] = out[i].CombineWith(ch)
			continue
		}
		index[seq] = len(out)
		out = append(out, ch.clone())
	}
	return out
}

func pickString(a, b string) string {
	if strings.TrimSpace(a) == "" {
		return b
	}
	return a
}

// #endregion merge

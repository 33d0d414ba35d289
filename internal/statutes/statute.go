package statutes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// statuteRef reads "18 § 3126 (a)(1)" style references. The section may be
// dotted ("4915.1"); subsections are optional and may follow "§§".
var statuteRef = regexp.MustCompile(`^(\d+)\s*§\s*(\d+(?:\.\d+)?)\s*(?:§§)?\s*([\(\)A-Za-z0-9\.\*]*)`)

// ErrUnreadable is returned when a statute reference cannot be parsed.
var ErrUnreadable = fmt.Errorf("unreadable statute")

// Statute is a parsed statute reference.
type Statute struct {
	Raw         string
	Chapter     int
	Section     float64
	SectionText string
	Subsections string
}

// Parse reads a statute reference such as "18 § 3127" or "18 § 3126 §§ A1".
func Parse(raw string) (Statute, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "&sect;", "§"))
	m := statuteRef.FindStringSubmatch(s)
	if m == nil {
		return Statute{Raw: raw}, fmt.Errorf("%q: %w", raw, ErrUnreadable)
	}
	chapter, err := strconv.Atoi(m[1])
	if err != nil {
		return Statute{Raw: raw}, fmt.Errorf("%q chapter: %w", raw, ErrUnreadable)
	}
	section, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Statute{Raw: raw}, fmt.Errorf("%q section: %w", raw, ErrUnreadable)
	}
	return Statute{
		Raw:         raw,
		Chapter:     chapter,
		Section:     section,
		SectionText: m[2],
		Subsections: m[3],
	}, nil
}

// Key is the section followed by its subsections with parentheses removed
// and letters lowered, e.g. "3126a1".
func (s Statute) Key() string {
	subs := strings.NewReplacer("(", "", ")", "", "*", "").Replace(s.Subsections)
	return s.SectionText + strings.ToLower(subs)
}

// InTitle18Between reports chapter 18 with above < section < below.
func (s Statute) InTitle18Between(above, below float64) bool {
	return s.Chapter == 18 && s.Section > above && s.Section < below
}

func (s Statute) String() string {
	if s.SectionText == "" {
		return s.Raw
	}
	return strings.TrimSpace(fmt.Sprintf("%d § %s %s", s.Chapter, s.SectionText, s.Subsections))
}

package crecord

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// #region date
// dateLayouts are the accepted interchange formats, tried in order.
var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// Date is a calendar day with no time-of-day component. The zero Date means
// "absent" and compares as the far past.
type Date struct {
	t   time.Time
	bad string // unparseable input kept for data-quality reporting
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate reads s using the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// MustDate parses s or panics. Intended for fixtures and tests.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool    { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// AddDays shifts the date by a possibly fractional number of days, rounding
// down to whole days.
func (d Date) AddDays(days float64) Date {
	return DateOf(d.t.Add(time.Duration(days * float64(24*time.Hour))))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayouts[0])
}

// MaxDate returns the later of two dates; an absent date never wins.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// #endregion date

// #region calendar-years
// YearsBetween is the whole number of calendar years from `from` to `to`,
// birthday-aware, and negative when `to` is earlier than `from`.
func YearsBetween(from, to Date) int {
	if to.Before(from) {
		return -YearsBetween(to, from)
	}
	years := to.t.Year() - from.t.Year()
	if to.t.Month() < from.t.Month() || (to.t.Month() == from.t.Month() && to.t.Day() < from.t.Day()) {
		years--
	}
	return years
}

// #endregion calendar-years

// #region json
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails on bad dates; the raw text is kept so
// Record.DataIssues can report it and the date is treated as absent.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		*d = Date{bad: *s}
		return nil
	}
	*d = parsed
	return nil
}

// #endregion json

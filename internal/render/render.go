// Package render formats screening results for terminals.
package render

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/screening"
)

// Width is the box width used for case panels.
const Width = 76

// Palette.
var (
	colorTitle   = lipgloss.Color("#2CD7C7")
	colorBorder  = lipgloss.Color("#16858E")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
)

// #region styles
type styles struct {
	title   lipgloss.Style
	bold    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	box     lipgloss.Style
}

// newStyles binds styles to w so color is only emitted to terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		bold:    r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(Width),
	}
}

// #endregion styles

// #region summary
// Summary writes a case-by-case view of s: one panel per docket, charges in
// sequence order, then any summarization errors.
func Summary(w io.Writer, s analysis.Summary) error {
	st := newStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s %s\n",
		st.success.Render(fmt.Sprint(s.ClearableCases)), st.muted.Render("clearable cases"),
		st.success.Render(fmt.Sprint(s.ClearableCharges)), st.muted.Render("clearable charges"),
	)

	for _, docket := range slices.Sorted(maps.Keys(s.Cases)) {
		b.WriteString(st.box.Render(casePanel(st, docket, s.Cases[docket])))
		b.WriteString("\n")
	}

	for _, e := range s.Errors {
		fmt.Fprintf(&b, "%s %s\n", st.err.Render("✗"), e)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func casePanel(st styles, docket string, cs *analysis.CaseSummary) string {
	var b strings.Builder
	b.WriteString(st.title.Render(docket))
	if steps := strings.TrimSpace(cs.NextSteps); steps != "" {
		b.WriteString("\n" + steps)
	}
	for _, seq := range slices.Sorted(maps.Keys(cs.Charges)) {
		ch := cs.Charges[seq]
		line := fmt.Sprintf("%s. %s", seq, ch.Offense)
		if ch.Grade != "" {
			line += " (" + ch.Grade + ")"
		}
		b.WriteString("\n\n" + st.bold.Render(line))
		detail := ch.Disposition
		if !ch.DispositionDate.IsZero() {
			detail += ", " + ch.DispositionDate.String()
		}
		b.WriteString("\n" + st.muted.Render(detail))
		if steps := strings.TrimSpace(ch.NextSteps); steps != "" {
			b.WriteString("\n→ " + steps)
		}
	}
	return b.String()
}

// #endregion summary

// #region report
// Report writes the header, summary, proposed petitions, diagnostics and
// consistency result of one screening.
func Report(w io.Writer, r screening.Report) error {
	st := newStyles(w)

	header := fmt.Sprintf("%s %s\n", st.title.Render("Screening "+r.RunID), st.muted.Render("as of "+r.AsOf.String()))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if err := Summary(w, r.Summary); err != nil {
		return err
	}

	var b strings.Builder
	if len(r.Petitions) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.bold.Render(fmt.Sprintf("Petitions (%d)", len(r.Petitions))))
		for _, p := range r.Petitions {
			dockets := make([]string, 0, len(p.Cases))
			for _, c := range p.Cases {
				dockets = append(dockets, c.DocketNumber)
			}
			label := string(p.Kind)
			if p.Type != "" {
				label = string(p.Type)
			}
			if p.Procedure != "" {
				label += " " + string(p.Procedure)
			}
			fmt.Fprintf(&b, "• %s: %s\n", label, strings.Join(dockets, ", "))
		}
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.bold.Render("Data issues"))
		for _, d := range r.Diagnostics {
			b.WriteString(diagnostic(st, d) + "\n")
		}
	}

	if r.Eval.Passed {
		fmt.Fprintf(&b, "\n%s %s\n", st.success.Render("✓"), "consistency checks passed")
	} else {
		fmt.Fprintf(&b, "\n%s %s\n", st.err.Render("✗"), "consistency: "+r.Eval.Reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func diagnostic(st styles, e logging.Entry) string {
	icon := st.warning.Render("⚠")
	if e.Level == logging.LevelError {
		icon = st.err.Render("✗")
	}
	subject := ""
	if e.Subject != "" {
		subject = " " + st.muted.Render("["+e.Subject+"]")
	}
	return fmt.Sprintf("%s %s%s %s", icon, e.Code, subject, e.Message)
}

// #endregion report

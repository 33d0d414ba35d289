package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/render"
	"github.com/spf13/cobra"
)

var errNoAuditDB = errors.New("no audit database: set --db or audit_db")

// #region views
type runView struct {
	RunID     string              `json:"run_id"`
	AsOf      string              `json:"as_of"`
	Person    string              `json:"person"`
	Passed    bool                `json:"passed"`
	Petitions []petition.Petition `json:"petitions"`
	CreatedAt string              `json:"created_at"`
	Record    json.RawMessage     `json:"record,omitempty"`
	Summary   json.RawMessage     `json:"summary,omitempty"`
	Eval      json.RawMessage     `json:"eval,omitempty"`
	Decisions []decisionView      `json:"decisions,omitempty"`
}

type decisionView struct {
	Rule     string          `json:"rule"`
	Name     string          `json:"name"`
	Truthy   bool            `json:"truthy"`
	Decision json.RawMessage `json:"decision,omitempty"`
}

func newRunView(run audit.Run, entries []logging.ProvenanceEntry, full bool) runView {
	v := runView{
		RunID:     run.RunID,
		AsOf:      run.AsOf.String(),
		Person:    run.Person,
		Passed:    run.Passed,
		Petitions: run.Petitions,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if v.Petitions == nil {
		v.Petitions = []petition.Petition{}
	}
	if full {
		v.Record = raw(run.RecordJSON)
		v.Summary = raw(run.SummaryJSON)
		v.Eval = raw(run.EvalJSON)
	}
	for _, e := range entries {
		v.Decisions = append(v.Decisions, decisionView{
			Rule:     e.Rule,
			Name:     e.DecisionName,
			Truthy:   e.Truthy,
			Decision: raw(e.DecisionJSON),
		})
	}
	return v
}

func raw(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

// #endregion views

// #region commands
func newAuditCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the screening audit trail",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent screening runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditList(cmd, g)
		},
	}
	list.Flags().IntP("limit", "l", 20, "Max runs")
	list.Flags().StringP("format", "f", "text", "Output format: text or json")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one screening run with its decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditShow(cmd, g, args[0])
		},
	}
	show.Flags().StringP("format", "f", "text", "Output format: text or json")

	export := &cobra.Command{
		Use:   "export",
		Short: "Export runs and decisions as newline-delimited JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuditExport(cmd, g)
		},
	}
	export.Flags().IntP("limit", "l", 0, "Max runs (0 = all)")

	cmd.AddCommand(list, show, export)
	return cmd
}

func openAudit(g *globals) (*audit.Store, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errNoAuditDB
	}
	return store, nil
}

func runAuditList(cmd *cobra.Command, g *globals) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	store, err := openAudit(g)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run, nil, false))
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no runs found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tAS OF\tPERSON\tPETITIONS\tPASSED\tCREATED")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n", v.RunID, v.AsOf, v.Person, len(v.Petitions), v.Passed, v.CreatedAt)
	}
	return tw.Flush()
}

func runAuditShow(cmd *cobra.Command, g *globals, id string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	store, err := openAudit(g)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	entries, err := store.Decisions(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, newRunView(run, entries, true))
	}
	return showText(out, run, entries)
}

func showText(w io.Writer, run audit.Run, entries []logging.ProvenanceEntry) error {
	fmt.Fprintf(w, "Run %s for %s as of %s\n", run.RunID, run.Person, run.AsOf)

	var sum analysis.Summary
	if err := json.Unmarshal([]byte(run.SummaryJSON), &sum); err != nil {
		return fmt.Errorf("decode stored summary: %w", err)
	}
	if err := render.Summary(w, sum); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nDecisions")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%t\n", e.Rule, e.DecisionName, e.Truthy)
	}
	return tw.Flush()
}

func runAuditExport(cmd *cobra.Command, g *globals) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	store, err := openAudit(g)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, run := range runs {
		entries, err := store.Decisions(run.RunID)
		if err != nil {
			return err
		}
		if err := enc.Encode(newRunView(run, entries, true)); err != nil {
			return fmt.Errorf("encode run %s: %w", run.RunID, err)
		}
	}
	return nil
}

// #endregion commands

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/render"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/screening"
	"github.com/spf13/cobra"
)

func newScreenCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen a record file",
		Long:  "Screen the record in a JSON file (\"-\" reads stdin). A file holding a JSON array is screened as a batch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd, g)
		},
	}

	cmd.Flags().StringP("record", "r", "", "Record JSON file, or - for stdin")
	cmd.Flags().String("as-of", "", "Evaluation date (default: as_of from config, else today)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func runScreen(cmd *cobra.Command, g *globals) error {
	path, _ := cmd.Flags().GetString("record")
	asOfStr, _ := cmd.Flags().GetString("as-of")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	var asOf crecord.Date
	if asOfStr != "" {
		d, err := crecord.ParseDate(asOfStr)
		if err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
		asOf = d
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := []screening.Option{screening.WithLogger(logger)}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, screening.WithStore(store))
	}
	svc := screening.New(cfg, opts...)
	out := cmd.OutOrStdout()

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []crecord.Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return fmt.Errorf("decode records: %w", err)
		}
		items, err := svc.ScreenBatchAt(cmd.Context(), recs, asOf)
		if err != nil {
			return err
		}
		return writeBatch(out, items, format)
	}

	rec, err := crecord.Decode(data)
	if err != nil {
		return err
	}
	report, err := svc.ScreenAt(cmd.Context(), rec, asOf)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(out, report)
	}
	return render.Report(out, report)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return data, nil
}

func writeBatch(w io.Writer, items []screening.BatchItem, format string) error {
	if format == "json" {
		return writeJSON(w, items)
	}
	for _, item := range items {
		if item.Report == nil {
			fmt.Fprintf(w, "record %d: %s\n\n", item.Index, item.Error)
			continue
		}
		if err := render.Report(w, *item.Report); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

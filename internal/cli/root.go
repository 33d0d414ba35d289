// Package cli implements the screener commands.
package cli

import (
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/config"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the top-level command.
var RootCmd = NewRootCmd()

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	auditDB    string
	debug      bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "screener",
		Short:        "Screen criminal records for expungement and sealing",
		Long:         "Screens a criminal record against expungement and sealing rules and explains which cases and charges may be cleared.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (YAML)")
	root.PersistentFlags().StringVar(&g.auditDB, "db", "", "Audit database path (default: audit_db from config)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Development logging at debug level")

	root.AddCommand(newScreenCmd(g), newServeCmd(g), newAuditCmd(g))
	return root
}

func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.auditDB != "" {
		cfg.AuditDB = g.auditDB
	}
	if g.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

// openStore opens the configured audit store, or returns nil when none is set.
func openStore(cfg config.Config) (*audit.Store, error) {
	if cfg.AuditDB == "" {
		return nil, nil
	}
	store, err := audit.OpenStore(cfg.AuditDB, cfg.AuditKeyFile)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return store, nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

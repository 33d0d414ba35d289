package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "CLEANSLATE_"

// #region config
// Config is the runtime configuration of the screener binaries.
type Config struct {
	AsOf          string            `yaml:"as_of"` // empty = today
	TrafficMarker string            `yaml:"traffic_marker"`
	Autosealing   bool              `yaml:"autosealing"`
	Rules         []string          `yaml:"rules"`
	Thresholds    rules.Config      `yaml:"thresholds"`
	Attorney      petition.Attorney `yaml:"attorney"`
	HTTPAddr      string            `yaml:"http_addr"`
	GRPCAddr      string            `yaml:"grpc_addr"`
	AuditDB       string            `yaml:"audit_db"`       // empty = no audit trail
	AuditKeyFile  string            `yaml:"audit_key_file"` // empty = personal data stored in plaintext
	LogLevel      string            `yaml:"log_level"`
	BatchWorkers  int               `yaml:"batch_workers"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TrafficMarker: "TR",
		Autosealing:   true,
		Rules:         analysis.DefaultRuleNames(),
		Thresholds:    rules.DefaultConfig(),
		HTTPAddr:      ":8080",
		GRPCAddr:      ":50061",
		LogLevel:      "info",
		BatchWorkers:  4,
	}
}

// #endregion config

// #region load
// Load reads an optional YAML file over the defaults, then applies
// CLEANSLATE_* environment overrides. envFiles are loaded with godotenv
// first; with none given, a .env in the working directory is tried. Missing
// files are skipped, and variables already set win over .env entries.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if err := loadDotenv(envFiles); err != nil {
		return Config{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	str("AS_OF", &c.AsOf)
	str("TRAFFIC_MARKER", &c.TrafficMarker)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("GRPC_ADDR", &c.GRPCAddr)
	str("AUDIT_DB", &c.AuditDB)
	str("AUDIT_KEY_FILE", &c.AuditKeyFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("ATTORNEY_NAME", &c.Attorney.FullName)
	str("ATTORNEY_ORGANIZATION", &c.Attorney.Organization)
	str("ATTORNEY_BAR_ID", &c.Attorney.BarID)

	if v, ok := os.LookupEnv(EnvPrefix + "AUTOSEALING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTOSEALING=%q: %w", EnvPrefix, v, ErrInvalid)
		}
		c.Autosealing = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "BATCH_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBATCH_WORKERS=%q: %w", EnvPrefix, v, ErrInvalid)
		}
		c.BatchWorkers = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "RULES"); ok {
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		c.Rules = names
	}
	return nil
}

// #endregion load

// #region validate
// Validate checks every field that could otherwise fail later at screening
// time.
func (c Config) Validate() error {
	if c.AsOf != "" {
		if _, err := crecord.ParseDate(c.AsOf); err != nil {
			return fmt.Errorf("as_of %q: %w", c.AsOf, ErrInvalid)
		}
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("rules: empty sequence: %w", ErrInvalid)
	}
	if _, err := rules.NewEvaluator(crecord.Date{}).Sequence(c.Rules); err != nil {
		return fmt.Errorf("rules: %v: %w", err, ErrInvalid)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers %d: must be at least 1: %w", c.BatchWorkers, ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalid)
	}
	return nil
}

// #endregion validate

// #region accessors
// AsOfDate is the evaluation date: the configured as_of, or now's date.
func (c Config) AsOfDate(now time.Time) crecord.Date {
	if c.AsOf != "" {
		if d, err := crecord.ParseDate(c.AsOf); err == nil {
			return d
		}
	}
	return crecord.DateOf(now)
}

// RuleConfig returns the thresholds with the configured traffic marker.
func (c Config) RuleConfig() rules.Config {
	rc := c.Thresholds
	rc.TrafficMarker = c.TrafficMarker
	return rc
}

// #endregion accessors

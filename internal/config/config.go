// Package config loads CLI-level run configuration: the policy to
// schedule with, the spec file to read, and output preferences. Values
// come from flags and environment variables (DAGSCHED_ prefix), in that
// precedence order via viper; no config file is read.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved set of options a run invocation needs.
type Config struct {
	SpecFile    string
	Policy      string
	HistoryJSON string
	Debug       bool
	LogFormat   string
	// Deserialize selects the `deserialize=true` construction path:
	// SpecFile is read as a specfile.SnapshotDocument (a cluster plus
	// per-user DAG snapshots) instead of an original specfile.Document.
	// The --history-json output is a different shape and is not accepted.
	Deserialize bool
}

// Load resolves a Config from viper's merged sources. v is expected to
// have already had its flags bound by the caller (the cobra command).
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		SpecFile:    v.GetString("spec-file"),
		Policy:      v.GetString("policy"),
		HistoryJSON: v.GetString("history-json"),
		Debug:       v.GetBool("debug"),
		LogFormat:   v.GetString("log-format"),
		Deserialize: v.GetBool("deserialize"),
	}
	if cfg.SpecFile == "" {
		return nil, errors.New("config: spec-file is required")
	}
	if cfg.Policy == "" {
		cfg.Policy = "fcfs"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	return cfg, nil
}

// NewViper builds a viper.Viper pre-configured to read DAGSCHED_
// prefixed environment variables alongside bound flags.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("dagsched")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

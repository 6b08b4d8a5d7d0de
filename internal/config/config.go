// Copyright 2026 The streamdiff Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines streamdiff's typed configuration and binds it
// to command-line flags, STREAMDIFF_* environment variables, and an
// optional YAML config file, in that order of precedence.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved, validated set of options a streamdiff
// invocation runs with.
type Config struct {
	Old              string   `yaml:"old"`
	New              string   `yaml:"new"`
	Subvolume        string   `yaml:"subvolume"`
	Output           string   `yaml:"output"`
	VerifyCRC        bool     `yaml:"verify-crc" mapstructure:"verify-crc"`
	Strict           bool     `yaml:"strict"`
	EmitMetadataOnly bool     `yaml:"emit-metadata-only" mapstructure:"emit-metadata-only"`
	Validate         bool     `yaml:"validate"`
	Ignore           []string `yaml:"ignore"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the ambient logger every layer above the core
// writes through.
type LoggingConfig struct {
	Severity string `yaml:"severity"`
	Format   string `yaml:"format"`
}

// Defaults returns the configuration a bare invocation runs with before
// flags, environment, or a config file are applied.
func Defaults() Config {
	return Config{
		Output: "table",
		Logging: LoggingConfig{
			Severity: "INFO",
			Format:   "text",
		},
	}
}

// BindFlags registers every Config field on flagSet and binds it into
// viper under the same dotted key its yaml tag names, so flag, env
// (STREAMDIFF_FOO_BAR for foo.bar), and file sources all resolve to one
// value.
func BindFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	d := Defaults()

	flagSet.String("old", d.Old, "Path to the OLD snapshot directory")
	flagSet.String("new", d.New, "Path to the NEW snapshot directory")
	flagSet.String("subvolume", d.Subvolume, "Subvolume path to send with btrfs(8) instead of reading a stream file")
	flagSet.StringP("output", "o", d.Output, "Output format: json, table, or summary")
	flagSet.Bool("verify-crc", d.VerifyCRC, "Verify each command's CRC32C checksum")
	flagSet.Bool("strict", d.Strict, "Treat soft diagnostics as hard errors")
	flagSet.Bool("emit-metadata-only", d.EmitMetadataOnly, "Report inodes touched only by metadata commands")
	flagSet.Bool("validate", d.Validate, "Cross-check the computed changes against the live snapshot trees")
	flagSet.StringSlice("ignore", d.Ignore, "Regex of paths to drop from the output; may be repeated")
	flagSet.String("logging-severity", d.Logging.Severity, "Minimum log severity: trace, debug, info, warn, error")
	flagSet.String("logging-format", d.Logging.Format, "Log record format: text or json")

	binds := map[string]string{
		"old":               "old",
		"new":               "new",
		"subvolume":         "subvolume",
		"output":            "output",
		"verify-crc":        "verify-crc",
		"strict":            "strict",
		"emit-metadata-only": "emit-metadata-only",
		"validate":          "validate",
		"ignore":            "ignore",
		"logging-severity":  "logging.severity",
		"logging-format":    "logging.format",
	}
	for flagName, viperKey := range binds {
		if err := v.BindPFlag(viperKey, flagSet.Lookup(flagName)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix("STREAMDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return nil
}

// Load unmarshals v's resolved values into a Config seeded with Defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

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

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/btrfs-tools/streamdiff/internal/config"
	"github.com/btrfs-tools/streamdiff/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
	bindErr error
)

var rootCmd = &cobra.Command{
	Use:   "streamdiff",
	Short: "Compute canonical file changes between two btrfs snapshots",
	Long: `streamdiff decodes a btrfs incremental send stream (or invokes
btrfs send itself) and reports the set of files created, modified,
deleted, or renamed between the OLD and NEW snapshot.`,
	SilenceUsage: true,
}

// Execute runs the command tree, printing any error to stderr and
// exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	bindErr = config.BindFlags(v, rootCmd.PersistentFlags())

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(validateCmd)
}

func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// Any error reading the file, a missing file included, is
		// discarded and not reported; flags and environment still apply.
		_ = v.ReadInConfig()
	}
}

// loadConfig returns bindErr if flag binding failed; otherwise it returns
// the Config resolved from flags, environment and whatever initConfig
// read from the config file, plus a ready Logger. It does not read the
// config file itself.
func loadConfig() (config.Config, logger.Logger, error) {
	if bindErr != nil {
		return config.Config{}, nil, bindErr
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading configuration: %w", err)
	}

	format := logger.FormatText
	if cfg.Logging.Format == "json" {
		format = logger.FormatJSON
	}
	log := logger.New(os.Stderr, severity(cfg.Logging.Severity), format)
	return cfg, log, nil
}

func severity(s string) slog.Level {
	return logger.ParseSeverity(s)
}

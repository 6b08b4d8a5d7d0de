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
	"encoding/json"
	"fmt"
	"os"

	"github.com/btrfs-tools/streamdiff/internal/diffcore"
	"github.com/btrfs-tools/streamdiff/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-check a previously computed change set against two live snapshots",
	Long: `validate re-walks --old and --new and reports any disagreement with a
change set captured earlier by "streamdiff diff --output json", without
re-running the parser. Useful for auditing a report after the fact.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("changes", "", "Path to a JSON file produced by \"streamdiff diff --output json\"")
	_ = validateCmd.MarkFlagRequired("changes")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Old == "" || cfg.New == "" {
		return fmt.Errorf("--old and --new are both required")
	}

	changesPath, _ := cmd.Flags().GetString("changes")
	f, err := os.Open(changesPath)
	if err != nil {
		return fmt.Errorf("opening changes file: %w", err)
	}
	defer f.Close()

	var changes []diffcore.FileChange
	if err := json.NewDecoder(f).Decode(&changes); err != nil {
		return fmt.Errorf("decoding changes file: %w", err)
	}

	report, err := validator.Validate(cfg.Old, cfg.New, changes)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}
	for _, d := range report.Discrepancies {
		fmt.Fprintln(cmd.OutOrStdout(), d.String())
	}
	if !report.Clean() {
		return fmt.Errorf("validation found %d discrepancies", len(report.Discrepancies))
	}
	fmt.Fprintln(cmd.OutOrStdout(), "no discrepancies found")
	return nil
}

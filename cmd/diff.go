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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/btrfs-tools/streamdiff/internal/btrfsrun"
	"github.com/btrfs-tools/streamdiff/internal/diffcore"
	"github.com/btrfs-tools/streamdiff/internal/oracle"
	"github.com/btrfs-tools/streamdiff/internal/render"
	"github.com/btrfs-tools/streamdiff/internal/validator"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compute the FileChange set between two snapshots",
	Long: `diff feeds a send stream (either produced live via --subvolume
and "btrfs send", or read from the file named by --stream) through the
core parser and reports what changed between --old and --new.

--old/--new must each name one snapshot directory; this command does
not itself walk a lexicographically-ordered batch of snapshots, even
though a single invocation is commonly scripted in a loop over one.`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("stream", "", "Path to a pre-captured send-stream file, instead of invoking btrfs send")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Old == "" || cfg.New == "" {
		return fmt.Errorf("--old and --new are both required")
	}

	streamPath, _ := cmd.Flags().GetString("stream")

	var r io.Reader
	if streamPath != "" {
		f, err := os.Open(streamPath)
		if err != nil {
			return fmt.Errorf("opening stream file: %w", err)
		}
		defer f.Close()
		r = f
	} else {
		if cfg.Subvolume == "" {
			return fmt.Errorf("one of --stream or --subvolume is required")
		}
		send, err := btrfsrun.Send(context.Background(), btrfsrun.SendOptions{
			Subvolume: cfg.Subvolume,
			Parent:    cfg.Old,
			Logger:    log,
		})
		if err != nil {
			return fmt.Errorf("invoking btrfs send: %w", err)
		}
		defer send.Close()
		r = send
	}

	oracles := oracle.Oracles(oracle.New(cfg.Old), oracle.New(cfg.New))

	result, err := diffcore.Parse(r, oracles, diffcore.Options{
		VerifyCRC:               cfg.VerifyCRC,
		EmitMetadataOnlyChanges: cfg.EmitMetadataOnly,
		Strict:                  cfg.Strict,
		Logger:                  log,
	})
	if err != nil {
		return fmt.Errorf("parsing send stream: %w", err)
	}

	filter, err := render.NewFilter(cfg.Ignore)
	if err != nil {
		return err
	}
	changes := filter.Apply(result.Changes)

	format := render.Format(cfg.Output)
	if err := render.Render(cmd.OutOrStdout(), changes, format); err != nil {
		return err
	}

	if cfg.Validate {
		report, err := validator.Validate(cfg.Old, cfg.New, changes)
		if err != nil {
			return fmt.Errorf("validating: %w", err)
		}
		if !report.Clean() {
			for _, d := range report.Discrepancies {
				fmt.Fprintln(cmd.ErrOrStderr(), d.String())
			}
			return fmt.Errorf("validation found %d discrepancies", len(report.Discrepancies))
		}
	}

	return nil
}

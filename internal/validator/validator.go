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

// Package validator re-walks the OLD and NEW snapshot trees and checks
// an already-computed []diffcore.FileChange set against what is
// actually on disk. It is strictly a downstream consumer of
// diffcore.Parse's output — nothing in internal/diffcore imports it.
package validator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btrfs-tools/streamdiff/internal/diffcore"
)

// Discrepancy describes one place the emitted changes disagree with
// what the validator observed directly on disk.
type Discrepancy struct {
	Path   string
	Reason string
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Reason)
}

// Report is the outcome of one Validate call.
type Report struct {
	Discrepancies []Discrepancy
}

// Clean reports whether no discrepancies were found.
func (r Report) Clean() bool { return len(r.Discrepancies) == 0 }

// Validate cross-checks changes against the live OLD and NEW snapshot
// roots: every deleted path must be absent from NEW and present in OLD;
// every modified path and every rename destination must be present in
// NEW, and a rename source absent from it. Beyond that, every path in NEW
// that is neither mentioned in changes (as a path or a rename
// destination) nor present in OLD is reported. Paths present in both
// trees are not compared, and a path that vanished from OLD without a
// record is not detected.
func Validate(oldRoot, newRoot string, changes []diffcore.FileChange) (Report, error) {
	mentioned := make(map[string]diffcore.FileChange, len(changes))
	for _, c := range changes {
		mentioned[c.Path] = c
		if c.Details.PathTo != "" {
			mentioned[c.Details.PathTo] = c
		}
	}

	var report Report

	for _, c := range changes {
		switch c.Action {
		case diffcore.ActionDeleted:
			if exists(filepath.Join(newRoot, c.Path)) {
				report.Discrepancies = append(report.Discrepancies, Discrepancy{
					Path: c.Path, Reason: "reported deleted but still present in NEW",
				})
			}
			if !exists(filepath.Join(oldRoot, c.Path)) {
				report.Discrepancies = append(report.Discrepancies, Discrepancy{
					Path: c.Path, Reason: "reported deleted but was never present in OLD",
				})
			}

		case diffcore.ActionModified:
			if !exists(filepath.Join(newRoot, c.Path)) {
				report.Discrepancies = append(report.Discrepancies, Discrepancy{
					Path: c.Path, Reason: "reported modified but absent from NEW",
				})
			}

		case diffcore.ActionRenamed:
			if !exists(filepath.Join(newRoot, c.Details.PathTo)) {
				report.Discrepancies = append(report.Discrepancies, Discrepancy{
					Path: c.Path, Reason: "reported renamed to " + c.Details.PathTo + " but destination absent from NEW",
				})
			}
			if exists(filepath.Join(newRoot, c.Path)) {
				report.Discrepancies = append(report.Discrepancies, Discrepancy{
					Path: c.Path, Reason: "reported renamed but original path still present in NEW",
				})
			}
		}
	}

	unreported, err := diffTrees(oldRoot, newRoot, mentioned)
	if err != nil {
		return report, err
	}
	report.Discrepancies = append(report.Discrepancies, unreported...)

	return report, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// diffTrees walks NEW looking for paths absent from both OLD and the
// mentioned set — entities the run silently missed.
func diffTrees(oldRoot, newRoot string, mentioned map[string]diffcore.FileChange) ([]Discrepancy, error) {
	var out []Discrepancy

	err := filepath.Walk(newRoot, func(fullPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fullPath == newRoot {
			return nil
		}
		rel, err := filepath.Rel(newRoot, fullPath)
		if err != nil {
			return err
		}
		rel = "/" + filepath.ToSlash(rel)

		if _, ok := mentioned[rel]; ok {
			return nil
		}
		if exists(filepath.Join(oldRoot, rel)) {
			return nil
		}
		out = append(out, Discrepancy{Path: rel, Reason: "new in NEW but no change was reported for it"})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

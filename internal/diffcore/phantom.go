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

package diffcore

import "github.com/btrfs-tools/streamdiff/internal/diag"

// phantomFilter implements spec.md §4.5: drop deletions of paths that
// never existed in OLD, and reclassify-or-drop symlink "modifications"
// that never actually landed in NEW. Both oracles are optional; a nil
// (or failing) oracle call keeps the record (fail-open), per spec.
func phantomFilter(changes []FileChange, oracles Oracles) ([]FileChange, []diag.Diagnostic) {
	var out []FileChange
	var diagnostics []diag.Diagnostic

	for _, c := range changes {
		switch {
		case c.Action == ActionDeleted:
			kept, d := filterDeleted(c, oracles)
			if d != nil {
				diagnostics = append(diagnostics, *d)
			}
			if kept != nil {
				out = append(out, *kept)
			}

		case c.Action == ActionModified && c.Details.Command == "symlink":
			kept, ds := filterSymlinkModification(c, oracles)
			diagnostics = append(diagnostics, ds...)
			if kept != nil {
				out = append(out, *kept)
			}

		default:
			out = append(out, c)
		}
	}

	return out, diagnostics
}

func filterDeleted(c FileChange, oracles Oracles) (*FileChange, *diag.Diagnostic) {
	exists, available := oracles.oldExists(c.Path)
	if !available {
		return &c, nil
	}
	if !exists {
		return nil, &diag.Diagnostic{
			Kind:    diag.KindPhantomDeletion,
			Message: "path did not exist in OLD; dropping spurious deletion",
			Path:    c.Path,
			Offset:  -1,
		}
	}
	return &c, nil
}

func filterSymlinkModification(c FileChange, oracles Oracles) (*FileChange, []diag.Diagnostic) {
	exists, available := oracles.newExists(c.Path)
	if !available || exists {
		return &c, nil
	}

	// Reclassify as deleted and re-apply the first rule.
	reclassified := c
	reclassified.Action = ActionDeleted
	reclassified.Details.Command = "unlink"
	reclassified.Details.PathLink = ""

	d0 := diag.Diagnostic{
		Kind:    diag.KindPhantomModification,
		Message: "symlink never materialized in NEW; reclassified as deletion",
		Path:    c.Path,
		Offset:  -1,
	}

	kept, d1 := filterDeleted(reclassified, oracles)
	ds := []diag.Diagnostic{d0}
	if d1 != nil {
		ds = append(ds, *d1)
	}
	return kept, ds
}

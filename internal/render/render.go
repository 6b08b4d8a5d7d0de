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

// Package render formats a []diffcore.FileChange for human or machine
// consumption: JSON for pipelines, a tab-aligned table and a one-line
// summary for terminals.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"text/tabwriter"

	"github.com/btrfs-tools/streamdiff/internal/diffcore"
)

// Format selects a renderer.
type Format string

const (
	FormatJSON    Format = "json"
	FormatTable   Format = "table"
	FormatSummary Format = "summary"
)

// Filter drops changes whose path matches any of a set of ignore
// regexes, applied before rendering.
type Filter struct {
	Ignore []*regexp.Regexp
}

// NewFilter compiles a list of regex patterns into a Filter.
func NewFilter(patterns []string) (Filter, error) {
	var f Filter
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Filter{}, fmt.Errorf("compiling ignore pattern %q: %w", p, err)
		}
		f.Ignore = append(f.Ignore, re)
	}
	return f, nil
}

// Apply returns changes with every path matching an ignore pattern
// removed.
func (f Filter) Apply(changes []diffcore.FileChange) []diffcore.FileChange {
	if len(f.Ignore) == 0 {
		return changes
	}
	out := make([]diffcore.FileChange, 0, len(changes))
	for _, c := range changes {
		if !f.matches(c.Path) {
			out = append(out, c)
		}
	}
	return out
}

func (f Filter) matches(path string) bool {
	for _, re := range f.Ignore {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Render writes changes to w in the requested format.
func Render(w io.Writer, changes []diffcore.FileChange, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, changes)
	case FormatTable:
		return renderTable(w, changes)
	case FormatSummary:
		return renderSummary(w, changes)
	default:
		return fmt.Errorf("unknown render format %q", format)
	}
}

func renderJSON(w io.Writer, changes []diffcore.FileChange) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(changes)
}

func renderTable(w io.Writer, changes []diffcore.FileChange) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tPATH\tCOMMAND\tDETAIL")
	for _, c := range changes {
		detail := ""
		switch c.Action {
		case diffcore.ActionRenamed:
			detail = "-> " + c.Details.PathTo
		case diffcore.ActionModified:
			if c.Details.Size != nil {
				detail = fmt.Sprintf("size=%d", *c.Details.Size)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Action, c.Path, c.Details.Command, detail)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, changes []diffcore.FileChange) error {
	var modified, deleted, renamed int
	for _, c := range changes {
		switch c.Action {
		case diffcore.ActionModified:
			modified++
		case diffcore.ActionDeleted:
			deleted++
		case diffcore.ActionRenamed:
			renamed++
		}
	}
	_, err := fmt.Fprintf(w, "%d modified, %d deleted, %d renamed (%d total)\n",
		modified, deleted, renamed, len(changes))
	return err
}

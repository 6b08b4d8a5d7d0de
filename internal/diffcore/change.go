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

// Package diffcore implements the Change Aggregator, Phantom Filter, and
// Core API facade from spec.md §4.4–§4.6: it walks the tracker's final
// model, collapses it into canonical FileChange records, drops stream
// artifacts, and exposes the single Parse entry point.
package diffcore

import "github.com/btrfs-tools/streamdiff/internal/tracker"

// Action is the canonical user-level action a FileChange describes.
type Action string

const (
	ActionModified Action = "modified"
	ActionDeleted  Action = "deleted"
	ActionRenamed  Action = "renamed"
)

// actionRank defines the tie-break order from spec.md §4.4: deleted <
// renamed < modified.
var actionRank = map[Action]int{
	ActionDeleted:  0,
	ActionRenamed:  1,
	ActionModified: 2,
}

// ChangeDetails carries the secondary fields of a FileChange.
type ChangeDetails struct {
	// Command is the originating low-level operation that best
	// describes the change (e.g. "update_extent", "mkfile", "rename").
	Command string `json:"command"`
	// Size is set for content changes that carried a known size.
	Size *uint64 `json:"size,omitempty"`
	// PathTo is required when Action == ActionRenamed.
	PathTo string `json:"path_to,omitempty"`
	// PathLink is required when Command == "symlink".
	PathLink string `json:"path_link,omitempty"`
	// Inode is the source inode identifier, when known (synthetic
	// placeholder inodes for paths never created in this delta are
	// also reported, since they still identify the record uniquely).
	Inode *uint64 `json:"inode,omitempty"`
	// IsDirectory is tri-valued: nil means the stream gave no signal
	// and no oracle could resolve it either.
	IsDirectory *bool `json:"is_directory"`
}

// FileChange is one canonical, user-visible change between OLD and NEW.
type FileChange struct {
	Path    string        `json:"path"`
	Action  Action        `json:"action"`
	Details ChangeDetails `json:"details"`
}

func kindToIsDirectory(k tracker.Kind) *bool {
	switch k {
	case tracker.KindDirectory:
		b := true
		return &b
	case tracker.KindRegular, tracker.KindSymlink, tracker.KindSpecial:
		b := false
		return &b
	default:
		return nil
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }

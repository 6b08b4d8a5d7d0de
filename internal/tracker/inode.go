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

// Package tracker maintains the live inode/path model while a send
// stream is being processed: which paths name which inode, which inode
// holds which paths (hard links), and per-inode flags needed to later
// decide what kind of change happened. It has no knowledge of the wire
// format or of output shapes — it only knows allocate/attach/detach/
// rename/mark-dirty, exactly the operations spec.md §4.3 names.
package tracker

import "github.com/btrfs-tools/streamdiff/internal/wire"

// Inode is the stream's 64-bit inode identifier. Synthetic IDs minted
// for paths referenced but never created in the stream (a rename whose
// source pre-dates this delta) live in the upper half of the ID space so
// they can never collide with a real stream-assigned inode number.
type Inode uint64

const syntheticInodeBase Inode = 1 << 63

// Kind classifies what an inode is.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegular
	KindDirectory
	KindSymlink
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// State is the tracker's per-inode record.
type State struct {
	ID               Inode
	Kind             Kind
	PrimaryPath      string
	AllPaths         map[string]struct{}
	CreatedInStream  bool
	Synthetic        bool
	// OriginalPath is the single path this (synthetic, pre-existing)
	// inode was first referenced by — i.e. its path in OLD — set only
	// for Synthetic inodes. Used by the aggregator to recover the
	// OLD-snapshot path set for rename detection (spec.md §4.4 rule 5).
	OriginalPath string
	ContentDirty     bool
	Size             uint64
	HasSize          bool
	SymlinkTarget    []byte
	HasSymlinkTarget bool
	// Command is the highest-priority wire.CommandKind observed for
	// this inode so far, used to label the net FileChange.
	Command    wire.CommandKind
	hasCommand bool
}

// Deleted reports whether the inode currently has no attached paths.
func (s *State) Deleted() bool { return len(s.AllPaths) == 0 }

func newState(id Inode, kind Kind, createdInStream, synthetic bool) *State {
	return &State{
		ID:              id,
		Kind:            kind,
		AllPaths:        make(map[string]struct{}),
		CreatedInStream: createdInStream,
		Synthetic:       synthetic,
	}
}

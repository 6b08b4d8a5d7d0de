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

// Package stream maps raw wire command kinds to the small set of effects
// the tracker needs to apply. It is a static, pure mapping: no state, no
// I/O, just a lookup table plus the priority rule used to choose which
// low-level command best labels a net change.
package stream

import "github.com/btrfs-tools/streamdiff/internal/wire"

// EffectKind is the class of model mutation a command triggers.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectSetRoot
	EffectCreate
	EffectAttach
	EffectDetach
	EffectRename
	EffectDirty
	EffectSymlinkTarget
	EffectMetadataOnly
	EffectEnd
)

// Effect describes how the tracker should react to one command. Kind
// selects the branch; Command is always the originating wire.CommandKind,
// carried through so the aggregator can apply the priority rule in
// commandPriority's doc comment below.
type Effect struct {
	Kind    EffectKind
	Command wire.CommandKind
}

// Classify maps a command kind to its effect. Unknown command kinds
// classify as EffectNone — the caller decides (via strict mode) whether
// that is a skip-with-diagnostic or a hard UnknownCommand error.
func Classify(kind wire.CommandKind) Effect {
	e := Effect{Command: kind}
	switch kind {
	case wire.CmdSubvol, wire.CmdSnapshot:
		e.Kind = EffectSetRoot
	case wire.CmdMkfile, wire.CmdMkdir, wire.CmdMknod, wire.CmdMkfifo, wire.CmdMksock, wire.CmdSymlink:
		e.Kind = EffectCreate
	case wire.CmdLink:
		e.Kind = EffectAttach
	case wire.CmdUnlink, wire.CmdRmdir:
		e.Kind = EffectDetach
	case wire.CmdRename:
		e.Kind = EffectRename
	case wire.CmdWrite, wire.CmdClone, wire.CmdUpdateExtent, wire.CmdTruncate:
		e.Kind = EffectDirty
	case wire.CmdChmod, wire.CmdChown, wire.CmdUtimes, wire.CmdSetXattr, wire.CmdRemoveXattr:
		e.Kind = EffectMetadataOnly
	case wire.CmdEnd:
		e.Kind = EffectEnd
	default:
		e.Kind = EffectNone
	}
	return e
}

// commandPriority orders commands by how strongly they describe the net
// change to an inode, highest first: symlink > create-class >
// update_extent > truncate > write > metadata-only. Ties (e.g. two
// writes) keep whichever was recorded first.
var commandPriority = map[wire.CommandKind]int{
	wire.CmdSymlink:      100,
	wire.CmdMkfile:       90,
	wire.CmdMkdir:        90,
	wire.CmdMknod:        90,
	wire.CmdMkfifo:       90,
	wire.CmdMksock:       90,
	wire.CmdUpdateExtent: 70,
	wire.CmdTruncate:     60,
	wire.CmdWrite:        50,
	wire.CmdClone:        50,
	wire.CmdRename:       40,
	wire.CmdChmod:        10,
	wire.CmdChown:        10,
	wire.CmdUtimes:       10,
	wire.CmdSetXattr:     10,
	wire.CmdRemoveXattr:  10,
}

// HigherPriority reports whether candidate should replace current as the
// label for an inode's net change.
func HigherPriority(candidate, current wire.CommandKind) bool {
	return commandPriority[candidate] > commandPriority[current]
}

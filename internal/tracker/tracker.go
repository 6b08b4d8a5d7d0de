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

package tracker

import (
	"sort"

	"github.com/btrfs-tools/streamdiff/internal/diag"
	"github.com/btrfs-tools/streamdiff/internal/stream"
	"github.com/btrfs-tools/streamdiff/internal/wire"
	"github.com/pkg/errors"
)

// ErrDuplicateInode is returned (wrapped) by Allocate in strict mode when
// the inode ID is already present in the model; otherwise the collision
// is recorded as a diagnostic.
var ErrDuplicateInode = errors.New("duplicate inode")

// Tracker owns the inode→paths and path→inode maps described in
// spec.md §3 and §4.3. It is not safe for concurrent use; per §5 the
// core is a single-threaded streaming computation.
type Tracker struct {
	inodes      map[Inode]*State
	pathToInode map[string]Inode
	nextSynth   Inode
	diagnostics []diag.Diagnostic
	strict      bool
}

// New returns an empty Tracker. strict selects whether invariant
// violations (double-allocate, attach to an unknown inode, content or
// metadata change on an unknown inode) are returned as hard errors or
// recorded as diagnostics and tolerated, per spec.md §7. A rename or
// detach of a path the tracker has never seen is not a violation: it
// mints a synthetic pre-existing inode instead.
func New(strict bool) *Tracker {
	return &Tracker{
		inodes:      make(map[Inode]*State),
		pathToInode: make(map[string]Inode),
		nextSynth:   syntheticInodeBase,
		strict:      strict,
	}
}

// Diagnostics returns the soft-error records accumulated so far.
func (t *Tracker) Diagnostics() []diag.Diagnostic { return t.diagnostics }

func (t *Tracker) violation(msg, path string, offset int64) error {
	if t.strict {
		return errors.Errorf("tracker invariant violation: %s", msg)
	}
	t.diagnostics = append(t.diagnostics, diag.Diagnostic{
		Kind:    diag.KindTrackerInvariant,
		Message: msg,
		Path:    path,
		Offset:  offset,
	})
	return nil
}

// Inodes returns every tracked inode, in no particular order. Callers
// that need a stable order (the aggregator) sort afterwards.
func (t *Tracker) Inodes() []*State {
	out := make([]*State, 0, len(t.inodes))
	for _, s := range t.inodes {
		out = append(out, s)
	}
	return out
}

// InodeAt returns the inode currently holding path, if any.
func (t *Tracker) InodeAt(path string) (Inode, bool) {
	id, ok := t.pathToInode[path]
	return id, ok
}

// State returns the tracked state for id, if any.
func (t *Tracker) State(id Inode) (*State, bool) {
	s, ok := t.inodes[id]
	return s, ok
}

// Ensure returns the inode currently holding path, minting a synthetic
// pre-existing placeholder inode if the stream has not referenced path
// before. Used by the API facade to resolve the inode named by a link
// source or by a content or metadata command, which carry only a path,
// never an inode ID.
func (t *Tracker) Ensure(path string) Inode {
	return t.ensure(path).ID
}

// Allocate installs a brand-new inode created by the stream and attaches
// it to path. kind must already be known (mkfile/mkdir/symlink/... are
// unambiguous about what they create).
func (t *Tracker) Allocate(id Inode, kind Kind, path string, cmd wire.CommandKind, offset int64) error {
	if _, exists := t.inodes[id]; exists {
		if t.strict {
			return errors.Wrapf(ErrDuplicateInode, "allocating inode %d at %q", id, path)
		}
		return t.violation("duplicate inode allocation", path, offset)
	}
	s := newState(id, kind, true, false)
	t.inodes[id] = s
	t.attachTo(s, path, cmd)
	return nil
}

// ensure returns the inode currently at path, minting a synthetic
// pre-existing inode if none is tracked yet — the case of a rename or
// link whose source was never created in this delta.
func (t *Tracker) ensure(path string) *State {
	if id, ok := t.pathToInode[path]; ok {
		return t.inodes[id]
	}
	id := t.nextSynth
	t.nextSynth++
	s := newState(id, KindUnknown, false, true)
	s.OriginalPath = path
	t.inodes[id] = s
	t.pathToInode[path] = id
	s.AllPaths[path] = struct{}{}
	s.PrimaryPath = path
	return s
}

func (t *Tracker) attachTo(s *State, path string, cmd wire.CommandKind) {
	if prevID, ok := t.pathToInode[path]; ok && prevID != s.ID {
		// Implicit detach of whoever previously held this name — some
		// stream producers rely on attach-over-occupied-name instead
		// of an explicit unlink first.
		t.detachFrom(t.inodes[prevID], path)
	}
	t.pathToInode[path] = s.ID
	if _, already := s.AllPaths[path]; !already {
		s.AllPaths[path] = struct{}{}
	}
	if s.PrimaryPath == "" {
		s.PrimaryPath = path
	}
	t.recordCommand(s, cmd)
}

// Attach adds path as an additional name for an existing inode (the
// link command — hard link creation).
func (t *Tracker) Attach(id Inode, path string, cmd wire.CommandKind, offset int64) error {
	s, ok := t.inodes[id]
	if !ok {
		return t.violation("attach to unknown inode", path, offset)
	}
	t.attachTo(s, path, cmd)
	return nil
}

func (t *Tracker) detachFrom(s *State, path string) {
	delete(s.AllPaths, path)
	delete(t.pathToInode, path)
	if s.PrimaryPath == path {
		s.PrimaryPath = choosePrimary(s.AllPaths)
	}
}

func choosePrimary(paths map[string]struct{}) string {
	if len(paths) == 0 {
		return ""
	}
	all := make([]string, 0, len(paths))
	for p := range paths {
		all = append(all, p)
	}
	sort.Strings(all)
	return all[0]
}

// Detach removes path from whichever inode holds it (unlink/rmdir). A
// path the stream never created or renamed into is assumed to name a
// file that pre-existed in OLD; detaching it mints a synthetic
// placeholder so the deletion can still flow through the Phantom
// Filter, which is what actually decides whether it was real.
func (t *Tracker) Detach(path string, cmd wire.CommandKind, offset int64) (Inode, error) {
	s := t.ensure(path)
	t.detachFrom(s, path)
	if cmd == wire.CmdRmdir && s.Kind == KindUnknown {
		s.Kind = KindDirectory
	}
	t.recordCommand(s, cmd)
	return s.ID, nil
}

// Rename moves path from to path to, preserving inode identity. If from
// was the primary path, to becomes primary regardless of lexicographic
// order (the rename is what made it canonical).
func (t *Tracker) Rename(from, to string, cmd wire.CommandKind, offset int64) error {
	s := t.ensure(from)
	wasPrimary := s.PrimaryPath == from
	t.attachTo(s, to, cmd)
	t.detachFrom(s, from)
	if wasPrimary {
		s.PrimaryPath = to
	}
	return nil
}

// MarkDirty records that an inode's content changed, updating size when
// the command supplied one and keeping whichever command label has
// higher priority per stream.HigherPriority.
func (t *Tracker) MarkDirty(id Inode, cmd wire.CommandKind, size *uint64, offset int64) error {
	s, ok := t.inodes[id]
	if !ok {
		return t.violation("content change on unknown inode", "", offset)
	}
	s.ContentDirty = true
	if s.Kind == KindUnknown {
		s.Kind = KindRegular
	}
	if size != nil {
		s.Size = *size
		s.HasSize = true
	}
	t.recordCommand(s, cmd)
	return nil
}

// SetSymlinkTarget records a symlink's target and forces its kind.
func (t *Tracker) SetSymlinkTarget(id Inode, target []byte) error {
	s, ok := t.inodes[id]
	if !ok {
		return errors.New("set symlink target on unknown inode")
	}
	s.Kind = KindSymlink
	s.SymlinkTarget = target
	s.HasSymlinkTarget = true
	return nil
}

// TouchMetadata records a metadata-only command (chmod/chown/utimes/
// xattr) against an inode, without promoting it to content-dirty. It
// only sets a command label when the inode has no stronger one yet, per
// the classifier's priority table.
func (t *Tracker) TouchMetadata(id Inode, cmd wire.CommandKind, offset int64) error {
	s, ok := t.inodes[id]
	if !ok {
		return t.violation("metadata change on unknown inode", "", offset)
	}
	t.recordCommand(s, cmd)
	return nil
}

func (t *Tracker) recordCommand(s *State, cmd wire.CommandKind) {
	if !s.hasCommand || stream.HigherPriority(cmd, s.Command) {
		s.Command = cmd
		s.hasCommand = true
	}
}

// HasCommand reports whether any command label has been recorded for s.
func (s *State) HasCommand() bool { return s.hasCommand }

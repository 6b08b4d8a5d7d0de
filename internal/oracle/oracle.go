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

// Package oracle provides filesystem-backed implementations of the
// diffcore.Oracles callbacks: existence and kind lookups rooted at the
// OLD and NEW snapshot trees, used both by the Phantom Filter and to
// resolve the kind of paths the stream itself never explicitly created.
package oracle

import (
	"os"
	"path/filepath"

	"github.com/btrfs-tools/streamdiff/internal/diffcore"
	"github.com/btrfs-tools/streamdiff/internal/tracker"
	"golang.org/x/sys/unix"
)

// Snapshot roots a set of oracle lookups at one on-disk subvolume
// snapshot. Every path passed to its methods is relative to that root,
// matching the paths a send stream carries.
type Snapshot struct {
	Root string
}

// New returns a Snapshot rooted at root.
func New(root string) *Snapshot {
	return &Snapshot{Root: root}
}

func (s *Snapshot) resolve(path string) string {
	return filepath.Join(s.Root, filepath.Clean("/"+path))
}

// Exists reports whether path is present under this snapshot's root. It
// uses Lstat so a broken or dangling symlink still counts as present.
func (s *Snapshot) Exists(path string) (bool, error) {
	var st unix.Stat_t
	err := unix.Lstat(s.resolve(path), &st)
	if err == nil {
		return true, nil
	}
	if err == unix.ENOENT || err == unix.ENOTDIR {
		return false, nil
	}
	return false, err
}

// Kind reports the tracker.Kind of path under this snapshot's root.
func (s *Snapshot) Kind(path string) (tracker.Kind, error) {
	var st unix.Stat_t
	if err := unix.Lstat(s.resolve(path), &st); err != nil {
		return tracker.KindUnknown, err
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return tracker.KindDirectory, nil
	case unix.S_IFLNK:
		return tracker.KindSymlink, nil
	case unix.S_IFREG:
		return tracker.KindRegular, nil
	default:
		return tracker.KindSpecial, nil
	}
}

// Oracles builds a diffcore.Oracles backed by the OLD and NEW snapshot
// roots. Either may be the zero Snapshot (an empty Root resolves paths
// against the filesystem root "/"); diffcore fails open whenever a lookup
// errors.
func Oracles(oldRoot, newRoot *Snapshot) diffcore.Oracles {
	return diffcore.Oracles{
		OldExists: oldRoot.Exists,
		NewExists: newRoot.Exists,
		NewKind:   newRoot.Kind,
	}
}

// EnsureReadable is a guardrail for the CLI: it fails fast with a clear
// error when a supplied snapshot root does not exist or is not a
// directory, instead of letting every subsequent oracle call silently
// fail open.
func EnsureReadable(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "stat", Path: root, Err: os.ErrInvalid}
	}
	return nil
}

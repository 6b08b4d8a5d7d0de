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

import (
	"sort"

	"github.com/btrfs-tools/streamdiff/internal/tracker"
)

// aggregate walks every tracked inode exactly once and emits the
// canonical FileChange set described by spec.md §4.4, before the
// Phantom Filter runs.
func aggregate(t *tracker.Tracker, emitMetadataOnly bool, resolveKind func(path string) tracker.Kind) []FileChange {
	var out []FileChange

	for _, s := range t.Inodes() {
		switch {
		case s.Deleted() && s.CreatedInStream:
			// Rule 2: created then destroyed within one delta, net no-op.
			continue

		case s.CreatedInStream:
			// Rule 3: survives, always reported modified regardless of
			// whether only metadata touched it afterwards.
			out = append(out, FileChange{
				Path:   s.PrimaryPath,
				Action: ActionModified,
				Details: ChangeDetails{
					Command:     s.Command.Name(),
					Size:        sizeDetail(s),
					PathLink:    symlinkDetail(s),
					Inode:       uint64Ptr(uint64(s.ID)),
					IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
				},
			})

		case s.ContentDirty && !s.Deleted():
			// Rule 4.
			out = append(out, FileChange{
				Path:   s.PrimaryPath,
				Action: ActionModified,
				Details: ChangeDetails{
					Command:     s.Command.Name(),
					Size:        sizeDetail(s),
					Inode:       uint64Ptr(uint64(s.ID)),
					IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
				},
			})

		default:
			out = append(out, pathSetChanges(s, emitMetadataOnly, resolveKind)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return actionRank[out[i].Action] < actionRank[out[j].Action]
	})

	return out
}

func sizeDetail(s *tracker.State) *uint64 {
	if !s.HasSize {
		return nil
	}
	return uint64Ptr(s.Size)
}

func symlinkDetail(s *tracker.State) string {
	if !s.HasSymlinkTarget {
		return ""
	}
	return string(s.SymlinkTarget)
}

func resolveKindFor(s *tracker.State, resolveKind func(path string) tracker.Kind) tracker.Kind {
	if s.Kind != tracker.KindUnknown || resolveKind == nil {
		return s.Kind
	}
	k := resolveKind(s.PrimaryPath)
	s.Kind = k
	return k
}

// pathSetChanges implements rule 5 (and, degenerately when the new path
// set is empty, rule 1): it diffs the inode's OLD path set (its single
// OriginalPath, or none for inodes this stream created) against its
// final AllPaths, pairs removed/added paths lexicographically into
// renames, and reports any leftovers as deleted/modified.
func pathSetChanges(s *tracker.State, emitMetadataOnly bool, resolveKind func(path string) tracker.Kind) []FileChange {
	oldSet := map[string]struct{}{}
	if s.OriginalPath != "" {
		oldSet[s.OriginalPath] = struct{}{}
	}

	if setsEqual(oldSet, s.AllPaths) {
		if !emitMetadataOnly || !s.HasCommand() {
			return nil
		}
		return []FileChange{{
			Path:   s.PrimaryPath,
			Action: ActionModified,
			Details: ChangeDetails{
				Command:     s.Command.Name(),
				Inode:       uint64Ptr(uint64(s.ID)),
				IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
			},
		}}
	}

	removed := sortedDiff(oldSet, s.AllPaths)
	added := sortedDiff(s.AllPaths, oldSet)

	var out []FileChange
	n := len(removed)
	if len(added) < n {
		n = len(added)
	}
	for i := 0; i < n; i++ {
		out = append(out, FileChange{
			Path:   removed[i],
			Action: ActionRenamed,
			Details: ChangeDetails{
				Command:     "rename",
				PathTo:      added[i],
				Inode:       uint64Ptr(uint64(s.ID)),
				IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
			},
		})
	}
	for _, p := range removed[n:] {
		out = append(out, FileChange{
			Path:   p,
			Action: ActionDeleted,
			Details: ChangeDetails{
				Command:     s.Command.Name(),
				Inode:       uint64Ptr(uint64(s.ID)),
				IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
			},
		})
	}
	for _, p := range added[n:] {
		out = append(out, FileChange{
			Path:   p,
			Action: ActionModified,
			Details: ChangeDetails{
				Command:     s.Command.Name(),
				Inode:       uint64Ptr(uint64(s.ID)),
				IsDirectory: kindToIsDirectory(resolveKindFor(s, resolveKind)),
			},
		})
	}
	return out
}

func setsEqual(a map[string]struct{}, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// sortedDiff returns the lexicographically sorted elements of a not in b.
func sortedDiff(a, b map[string]struct{}) []string {
	var out []string
	for p := range a {
		if _, ok := b[p]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

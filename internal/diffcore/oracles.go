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

import "github.com/btrfs-tools/streamdiff/internal/tracker"

// Oracles are the two lightweight, synchronous lookups the Phantom
// Filter and the Path/Inode Tracker consult (spec.md §4.5, §4.3). Any
// field may be left nil, meaning that oracle is unavailable; the filter
// then keeps records it would otherwise have checked (fail-open, per
// spec.md §4.5's "tolerates oracle failure by keeping the record").
type Oracles struct {
	// OldExists reports whether path existed in the OLD snapshot.
	OldExists func(path string) (bool, error)
	// NewExists reports whether path exists in the NEW snapshot.
	NewExists func(path string) (bool, error)
	// NewKind resolves the kind of a pre-existing path by consulting
	// the NEW snapshot tree directly (used only for inodes the stream
	// never explicitly created).
	NewKind func(path string) (tracker.Kind, error)
}

func (o Oracles) oldExists(path string) (bool, bool) {
	if o.OldExists == nil {
		return false, false
	}
	ok, err := o.OldExists(path)
	if err != nil {
		return false, false
	}
	return ok, true
}

func (o Oracles) newExists(path string) (bool, bool) {
	if o.NewExists == nil {
		return false, false
	}
	ok, err := o.NewExists(path)
	if err != nil {
		return false, false
	}
	return ok, true
}

func (o Oracles) newKind(path string) (tracker.Kind, bool) {
	if o.NewKind == nil {
		return tracker.KindUnknown, false
	}
	k, err := o.NewKind(path)
	if err != nil {
		return tracker.KindUnknown, false
	}
	return k, true
}

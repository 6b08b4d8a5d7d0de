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

import "github.com/btrfs-tools/streamdiff/internal/logger"

// Options configures one Parse call. All fields have usable zero
// values; Parse is a pure function of (bytes, oracles, options) per
// spec.md §9 — Logger is the sole ambient exception, and a nil Logger is
// itself a valid no-op, so it does not compromise that purity.
type Options struct {
	// VerifyCRC enables per-command CRC verification in the decoder.
	VerifyCRC bool
	// SupportedVersions overrides the default {1, 2}.
	SupportedVersions map[uint32]bool
	// EmitMetadataOnlyChanges surfaces inodes touched only by
	// chmod/chown/utimes/xattr commands. Off by default, per spec.md
	// §4.4 rule 6.
	EmitMetadataOnlyChanges bool
	// Strict turns every soft diagnostic (unknown command, tracker
	// invariant violation) into a hard error instead of a recorded
	// diagnostic.
	Strict bool
	// Cancel, closed to request cooperative cancellation at the next
	// command boundary.
	Cancel <-chan struct{}
	// Logger receives structured diagnostics as they are produced. A
	// nil Logger is a valid no-op.
	Logger logger.Logger
}

func (o Options) log() logger.Logger {
	if o.Logger == nil {
		return logger.NoOp()
	}
	return o.Logger
}

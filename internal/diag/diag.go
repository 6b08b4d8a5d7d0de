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

// Package diag defines the soft-diagnostic record shared by the tracker
// and the core API facade. Soft diagnostics are collected rather than
// raised so a parse can finish even when a real-world stream violates a
// strict expectation (see spec §7); strict mode turns any one of these
// into a hard error instead.
package diag

// Kind names a class of diagnostic, mirroring the abstract error kinds
// from the specification's error-handling design.
type Kind string

const (
	KindUnknownCommand      Kind = "unknown_command"
	KindTrackerInvariant    Kind = "tracker_invariant_violation"
	KindPhantomDeletion     Kind = "phantom_deletion"
	KindPhantomModification Kind = "phantom_modification"
	KindOracleFailure       Kind = "oracle_failure"
)

// Diagnostic is one soft-error record. Offset is the byte offset of the
// command that produced it, or -1 when not applicable.
type Diagnostic struct {
	Kind    Kind
	Message string
	Path    string
	Offset  int64
}

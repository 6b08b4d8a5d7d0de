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

// ErrorKind is the abstract error taxonomy from spec.md §7, exposed as a
// tagged variant rather than left to string matching on Error().
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindMalformedStream
	ErrKindUnsupportedVersion
	ErrKindCorruptCommand
	ErrKindTrackerInvariant
	ErrKindCancelled
)

// Error wraps an underlying cause with a Kind so callers can branch
// without parsing messages.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return "diffcore error"
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

func wrapErr(kind ErrorKind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: cause}
}

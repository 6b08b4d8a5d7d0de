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

package wire

import "fmt"

// MalformedStreamError reports a structural problem with the envelope or
// command framing: bad magic, a truncated version field, attribute
// lengths that overrun the command's payload, or a duplicate attribute
// tag. A buffer that ends mid-command is reported as TruncatedStreamError.
type MalformedStreamError struct {
	Reason string
	Offset int64
}

func (e *MalformedStreamError) Error() string {
	return fmt.Sprintf("malformed stream at offset %d: %s", e.Offset, e.Reason)
}

// UnsupportedVersionError reports an envelope version outside the
// accepted set.
type UnsupportedVersionError struct {
	Got       uint32
	Supported map[uint32]bool
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported stream version %d (supported: %v)", e.Got, e.Supported)
}

// CorruptCommandError reports a CRC mismatch when CRC verification is
// enabled.
type CorruptCommandError struct {
	Offset   int64
	Expected uint32
	Got      uint32
}

func (e *CorruptCommandError) Error() string {
	return fmt.Sprintf("corrupt command at offset %d: expected crc %08x, got %08x", e.Offset, e.Expected, e.Got)
}

// TruncatedStreamError reports that the buffer was exhausted before an
// END command was seen.
type TruncatedStreamError struct {
	Offset int64
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated stream: no end command found (read %d bytes)", e.Offset)
}

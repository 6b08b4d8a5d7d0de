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

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// CommandRecord is one decoded (kind, attributes) pair. Each call to
// Next returns a freshly allocated record with its own Attributes map;
// the decoder keeps no reference to it afterwards.
type CommandRecord struct {
	Kind       CommandKind
	Attributes Attributes
	Offset     int64
}

// Options configures Decoder behavior.
type Options struct {
	// VerifyCRC enables per-command checksum verification. Off by
	// default: most callers trust the local btrfs subsystem that
	// produced the stream and pay the cost only when diagnosing a
	// corrupt transfer.
	VerifyCRC bool
	// SupportedVersions overrides the default accepted envelope
	// version set ({1, 2}).
	SupportedVersions map[uint32]bool
	// Cancel, if non-nil, is checked at each command boundary (never
	// mid-command). A closed channel aborts the decode with
	// ErrCancelled and no partial output.
	Cancel <-chan struct{}
}

// ErrCancelled is returned by Next when Options.Cancel fires between
// commands.
var ErrCancelled = errors.New("decode cancelled")

// Decoder turns a byte stream into a sequence of CommandRecord values.
// It is a single forward pass: O(1) auxiliary memory per command, no
// backtracking, and it never retains a reference to the input beyond the
// command currently being decoded.
type Decoder struct {
	r       io.Reader
	opts    Options
	offset  int64
	version uint32
	done    bool
}

// NewDecoder validates the envelope (magic + version) and returns a
// Decoder positioned at the first command.
func NewDecoder(r io.Reader, opts Options) (*Decoder, error) {
	if opts.SupportedVersions == nil {
		opts.SupportedVersions = SupportedVersions
	}

	d := &Decoder{r: r, opts: opts}

	magic := make([]byte, len(StreamMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(err, "reading stream magic")
	}
	if string(magic) != StreamMagic {
		return nil, &MalformedStreamError{Reason: "bad magic", Offset: 0}
	}
	d.offset += int64(len(magic))

	verBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, verBuf); err != nil {
		return nil, &MalformedStreamError{Reason: "truncated version field", Offset: d.offset}
	}
	d.offset += 4
	d.version = binary.LittleEndian.Uint32(verBuf)
	if !opts.SupportedVersions[d.version] {
		return nil, &UnsupportedVersionError{Got: d.version, Supported: opts.SupportedVersions}
	}

	return d, nil
}

// Version returns the envelope version that was negotiated.
func (d *Decoder) Version() uint32 { return d.version }

const commandHeaderSize = 10 // length(4) + kind(2) + crc(4)

// Next decodes and returns the next command. It returns io.EOF only when
// the stream is exhausted after an END command has already been
// consumed; a buffer that runs out before END surfaces
// TruncatedStreamError instead.
func (d *Decoder) Next() (*CommandRecord, error) {
	if d.done {
		return nil, io.EOF
	}

	select {
	case <-d.opts.Cancel:
		return nil, ErrCancelled
	default:
	}

	header := make([]byte, commandHeaderSize)
	startOffset := d.offset
	if _, err := io.ReadFull(d.r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, &TruncatedStreamError{Offset: startOffset}
		}
		return nil, errors.Wrap(err, "reading command header")
	}
	d.offset += commandHeaderSize

	length := binary.LittleEndian.Uint32(header[0:4])
	kind := CommandKind(binary.LittleEndian.Uint16(header[4:6]))
	crc := binary.LittleEndian.Uint32(header[6:10])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, &TruncatedStreamError{Offset: startOffset}
		}
	}
	d.offset += int64(length)

	if d.opts.VerifyCRC {
		zeroed := make([]byte, commandHeaderSize)
		copy(zeroed, header)
		zeroed[6], zeroed[7], zeroed[8], zeroed[9] = 0, 0, 0, 0
		h := crc32.New(crcTable)
		h.Write(zeroed)
		h.Write(payload)
		if got := h.Sum32(); got != crc {
			return nil, &CorruptCommandError{Offset: startOffset, Expected: crc, Got: got}
		}
	}

	attrs, err := decodeAttributes(payload, startOffset+commandHeaderSize)
	if err != nil {
		return nil, err
	}

	if kind == CmdEnd {
		d.done = true
	}

	return &CommandRecord{Kind: kind, Attributes: attrs, Offset: startOffset}, nil
}

func decodeAttributes(payload []byte, baseOffset int64) (Attributes, error) {
	attrs := make(Attributes)
	off := 0
	for off < len(payload) {
		if off+4 > len(payload) {
			return nil, &MalformedStreamError{Reason: "truncated attribute header", Offset: baseOffset + int64(off)}
		}
		tag := AttrTag(binary.LittleEndian.Uint16(payload[off : off+2]))
		alen := int(binary.LittleEndian.Uint16(payload[off+2 : off+4]))
		off += 4
		if off+alen > len(payload) {
			return nil, &MalformedStreamError{Reason: "truncated attribute payload", Offset: baseOffset + int64(off)}
		}
		raw := payload[off : off+alen]
		off += alen

		if _, dup := attrs[tag]; dup {
			return nil, &MalformedStreamError{Reason: "duplicate attribute tag " + tag.Name(), Offset: baseOffset + int64(off)}
		}

		val, err := decodeAttrValue(tag, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding attribute at offset %d", baseOffset+int64(off))
		}
		attrs[tag] = Attribute{Tag: tag, Raw: raw, Value: val}
	}
	return attrs, nil
}

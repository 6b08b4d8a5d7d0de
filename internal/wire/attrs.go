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

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Timespec is a decoded ctime/mtime/atime/otime attribute: seconds and
// nanoseconds since the epoch, exactly as the stream encodes them.
type Timespec struct {
	Sec  int64
	Nsec uint32
}

// Attribute is a single decoded TLV entry. Value holds the interpreted
// payload (uint64 or uint32 by encoded width, string, []byte, uuid.UUID,
// or Timespec depending on Tag); Raw always holds the untouched payload bytes so a caller can
// reinterpret an attribute the decoder guessed wrong, or handle a tag it
// does not recognize.
type Attribute struct {
	Tag   AttrTag
	Raw   []byte
	Value any
}

// Attributes is the decoded TLV region of one command, keyed by tag.
// Duplicate tags are rejected by the decoder before an Attributes value
// is ever constructed (see MalformedStreamError), so lookups here are
// always unambiguous.
type Attributes map[AttrTag]Attribute

// Uint64 returns the attribute's value as a uint64, regardless of the
// original encoded width (4 or 8 bytes).
func (a Attributes) Uint64(tag AttrTag) (uint64, bool) {
	attr, ok := a[tag]
	if !ok {
		return 0, false
	}
	switch v := attr.Value.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	}
	return 0, false
}

// String returns the attribute's value as a string (used for path,
// path_to, path_link, xattr_name, clone_path).
func (a Attributes) String(tag AttrTag) (string, bool) {
	attr, ok := a[tag]
	if !ok {
		return "", false
	}
	s, ok := attr.Value.(string)
	return s, ok
}

// Bytes returns the attribute's raw payload (used for data, xattr_data).
func (a Attributes) Bytes(tag AttrTag) ([]byte, bool) {
	attr, ok := a[tag]
	if !ok {
		return nil, false
	}
	return attr.Raw, true
}

// UUID returns the attribute's value as a UUID (used for uuid, clone_uuid).
func (a Attributes) UUID(tag AttrTag) (uuid.UUID, bool) {
	attr, ok := a[tag]
	if !ok {
		return uuid.UUID{}, false
	}
	u, ok := attr.Value.(uuid.UUID)
	return u, ok
}

// Timespec returns the attribute's value as a Timespec (used for ctime,
// mtime, atime, otime).
func (a Attributes) Timespec(tag AttrTag) (Timespec, bool) {
	attr, ok := a[tag]
	if !ok {
		return Timespec{}, false
	}
	ts, ok := attr.Value.(Timespec)
	return ts, ok
}

// decodeAttrValue interprets a raw payload according to tag, falling
// back to leaving Value nil (only Raw set) for tags this package does
// not assign a richer type to — callers can still inspect Raw.
func decodeAttrValue(tag AttrTag, raw []byte) (any, error) {
	switch tag {
	case AttrUUID, AttrCloneUUID:
		if len(raw) != 16 {
			return nil, errors.Errorf("attribute %s: expected 16 bytes, got %d", tag.Name(), len(raw))
		}
		u, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", tag.Name())
		}
		return u, nil

	case AttrCTime, AttrMTime, AttrATime, AttrOTime:
		if len(raw) != 12 {
			return nil, errors.Errorf("attribute %s: expected 12 bytes, got %d", tag.Name(), len(raw))
		}
		return Timespec{
			Sec:  int64(binary.LittleEndian.Uint64(raw[0:8])),
			Nsec: binary.LittleEndian.Uint32(raw[8:12]),
		}, nil

	case AttrPath, AttrPathTo, AttrPathLink, AttrXattrName, AttrClonePath:
		return string(raw), nil

	case AttrData, AttrXattrData:
		return raw, nil

	case AttrCTransID, AttrIno, AttrSize, AttrRdev, AttrFileOffset,
		AttrCloneCTransID, AttrCloneOffset, AttrCloneLen:
		switch len(raw) {
		case 8:
			return binary.LittleEndian.Uint64(raw), nil
		case 4:
			return uint32(binary.LittleEndian.Uint32(raw)), nil
		default:
			return nil, errors.Errorf("attribute %s: unexpected width %d", tag.Name(), len(raw))
		}

	case AttrMode, AttrUID, AttrGID:
		switch len(raw) {
		case 8:
			return binary.LittleEndian.Uint64(raw), nil
		case 4:
			return uint32(binary.LittleEndian.Uint32(raw)), nil
		default:
			return nil, errors.Errorf("attribute %s: unexpected width %d", tag.Name(), len(raw))
		}

	default:
		// Unknown tag: preserved as raw bytes only, per spec — decoder
		// changes are never required just to recognize a new tag.
		return nil, nil
	}
}

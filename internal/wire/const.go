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

// Package wire decodes the binary btrfs send-stream envelope and command
// framing into a lazy sequence of command records. It knows nothing about
// what the commands mean — that is the job of internal/stream and
// internal/tracker.
package wire

// CommandKind is the numeric command code as it appears on the wire.
type CommandKind uint16

const (
	CmdSubvol       CommandKind = 1
	CmdSnapshot     CommandKind = 2
	CmdMkfile       CommandKind = 3
	CmdMkdir        CommandKind = 4
	CmdMknod        CommandKind = 5
	CmdMkfifo       CommandKind = 6
	CmdMksock       CommandKind = 7
	CmdSymlink      CommandKind = 8
	CmdRename       CommandKind = 9
	CmdLink         CommandKind = 10
	CmdUnlink       CommandKind = 11
	CmdRmdir        CommandKind = 12
	CmdSetXattr     CommandKind = 13
	CmdRemoveXattr  CommandKind = 14
	CmdWrite        CommandKind = 15
	CmdClone        CommandKind = 16
	CmdTruncate     CommandKind = 17
	CmdChmod        CommandKind = 18
	CmdChown        CommandKind = 19
	CmdUtimes       CommandKind = 20
	CmdEnd          CommandKind = 21
	CmdUpdateExtent CommandKind = 22
)

var commandNames = map[CommandKind]string{
	CmdSubvol:       "subvol",
	CmdSnapshot:     "snapshot",
	CmdMkfile:       "mkfile",
	CmdMkdir:        "mkdir",
	CmdMknod:        "mknod",
	CmdMkfifo:       "mkfifo",
	CmdMksock:       "mksock",
	CmdSymlink:      "symlink",
	CmdRename:       "rename",
	CmdLink:         "link",
	CmdUnlink:       "unlink",
	CmdRmdir:        "rmdir",
	CmdSetXattr:     "set_xattr",
	CmdRemoveXattr:  "remove_xattr",
	CmdWrite:        "write",
	CmdClone:        "clone",
	CmdTruncate:     "truncate",
	CmdChmod:        "chmod",
	CmdChown:        "chown",
	CmdUtimes:       "utimes",
	CmdEnd:          "end",
	CmdUpdateExtent: "update_extent",
}

// Name returns the canonical lower_snake_case name of the command, or
// "unknown" for a code the decoder does not recognize.
func (k CommandKind) Name() string {
	if n, ok := commandNames[k]; ok {
		return n
	}
	return "unknown"
}

// Known reports whether k is one of the command codes this package
// recognizes.
func (k CommandKind) Known() bool {
	_, ok := commandNames[k]
	return ok
}

// AttrTag is the numeric attribute tag as it appears in a command's TLV
// region.
type AttrTag uint16

const (
	AttrUUID          AttrTag = 1
	AttrCTransID      AttrTag = 2
	AttrIno           AttrTag = 3
	AttrSize          AttrTag = 4
	AttrMode          AttrTag = 5
	AttrUID           AttrTag = 6
	AttrGID           AttrTag = 7
	AttrRdev          AttrTag = 8
	AttrCTime         AttrTag = 9
	AttrMTime         AttrTag = 10
	AttrATime         AttrTag = 11
	AttrOTime         AttrTag = 12
	AttrXattrName     AttrTag = 13
	AttrXattrData     AttrTag = 14
	AttrPath          AttrTag = 15
	AttrPathTo        AttrTag = 16
	AttrPathLink      AttrTag = 17
	AttrFileOffset    AttrTag = 18
	AttrData          AttrTag = 19
	AttrCloneUUID     AttrTag = 20
	AttrCloneCTransID AttrTag = 21
	AttrClonePath     AttrTag = 22
	AttrCloneOffset   AttrTag = 23
	AttrCloneLen      AttrTag = 24
)

var attrNames = map[AttrTag]string{
	AttrUUID:          "uuid",
	AttrCTransID:      "ctransid",
	AttrIno:           "ino",
	AttrSize:          "size",
	AttrMode:          "mode",
	AttrUID:           "uid",
	AttrGID:           "gid",
	AttrRdev:          "rdev",
	AttrCTime:         "ctime",
	AttrMTime:         "mtime",
	AttrATime:         "atime",
	AttrOTime:         "otime",
	AttrXattrName:     "xattr_name",
	AttrXattrData:     "xattr_data",
	AttrPath:          "path",
	AttrPathTo:        "path_to",
	AttrPathLink:      "path_link",
	AttrFileOffset:    "file_offset",
	AttrData:          "data",
	AttrCloneUUID:     "clone_uuid",
	AttrCloneCTransID: "clone_ctransid",
	AttrClonePath:     "clone_path",
	AttrCloneOffset:   "clone_offset",
	AttrCloneLen:      "clone_len",
}

// Name returns the canonical lower_snake_case name of the attribute tag,
// or "unknown" for a tag not in the table above. Unknown tags are still
// decoded (as raw bytes) — only the human-readable name is unavailable.
func (t AttrTag) Name() string {
	if n, ok := attrNames[t]; ok {
		return n
	}
	return "unknown"
}

// StreamMagic is the fixed 13-byte envelope magic every supported stream
// must begin with.
const StreamMagic = "btrfs-stream\x00"

// SupportedVersions is the default set of envelope versions this package
// accepts.
var SupportedVersions = map[uint32]bool{1: true, 2: true}

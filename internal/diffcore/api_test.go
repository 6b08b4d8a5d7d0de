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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btrfs-tools/streamdiff/internal/wire"
	"github.com/stretchr/testify/suite"
)

func TestParse(t *testing.T) { suite.Run(t, new(ParseTest)) }

type ParseTest struct {
	suite.Suite
}

type fakeAttr struct {
	tag     wire.AttrTag
	payload []byte
}

func str(s string) []byte { return []byte(s) }

func u64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

type streamBuilder struct {
	buf bytes.Buffer
}

func newStreamBuilder() *streamBuilder {
	b := &streamBuilder{}
	b.buf.WriteString(wire.StreamMagic)
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], 1)
	b.buf.Write(v[:])
	return b
}

func (b *streamBuilder) command(kind wire.CommandKind, attrs ...fakeAttr) *streamBuilder {
	var payload bytes.Buffer
	for _, a := range attrs {
		var head [4]byte
		binary.LittleEndian.PutUint16(head[0:2], uint16(a.tag))
		binary.LittleEndian.PutUint16(head[2:4], uint16(len(a.payload)))
		payload.Write(head[:])
		payload.Write(a.payload)
	}

	var header [10]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(payload.Len()))
	binary.LittleEndian.PutUint16(header[4:6], uint16(kind))
	b.buf.Write(header[:])
	b.buf.Write(payload.Bytes())
	return b
}

func (b *streamBuilder) end() *bytes.Reader {
	b.command(wire.CmdEnd)
	return bytes.NewReader(b.buf.Bytes())
}

func fixedOracles(oldExists, newExists map[string]bool) Oracles {
	return Oracles{
		OldExists: func(path string) (bool, error) { return oldExists[path], nil },
		NewExists: func(path string) (bool, error) { return newExists[path], nil },
	}
}

// TestS1SingleModification mirrors spec scenario S1: a freshly created
// file that is written to and truncated is reported once, as modified.
func (s *ParseTest) TestS1SingleModification() {
	r := newStreamBuilder().
		command(wire.CmdMkfile, fakeAttr{wire.AttrPath, str("/a")}, fakeAttr{wire.AttrIno, u64(10)}).
		command(wire.CmdWrite, fakeAttr{wire.AttrPath, str("/a")}).
		command(wire.CmdTruncate, fakeAttr{wire.AttrPath, str("/a")}, fakeAttr{wire.AttrSize, u64(4)}).
		end()

	result, err := Parse(r, fixedOracles(nil, map[string]bool{"/a": true}), Options{})
	s.Require().NoError(err)
	s.Require().Len(result.Changes, 1)

	c := result.Changes[0]
	s.Equal("/a", c.Path)
	s.Equal(ActionModified, c.Action)
	s.Equal("mkfile", c.Details.Command)
	s.Require().NotNil(c.Details.Size)
	s.Equal(uint64(4), *c.Details.Size)
	s.Require().NotNil(c.Details.Inode)
	s.Equal(uint64(10), *c.Details.Inode)
}

// TestS3CircularRenameChain mirrors spec scenario S3.
func (s *ParseTest) TestS3CircularRenameChain() {
	r := newStreamBuilder().
		command(wire.CmdRename, fakeAttr{wire.AttrPath, str("/A")}, fakeAttr{wire.AttrPathTo, str("/tmp")}).
		command(wire.CmdRename, fakeAttr{wire.AttrPath, str("/C")}, fakeAttr{wire.AttrPathTo, str("/A")}).
		command(wire.CmdRename, fakeAttr{wire.AttrPath, str("/B")}, fakeAttr{wire.AttrPathTo, str("/C")}).
		command(wire.CmdRename, fakeAttr{wire.AttrPath, str("/tmp")}, fakeAttr{wire.AttrPathTo, str("/B")}).
		end()

	result, err := Parse(r, Oracles{}, Options{})
	s.Require().NoError(err)
	s.Require().Len(result.Changes, 3)

	got := map[string]string{}
	for _, c := range result.Changes {
		s.Equal(ActionRenamed, c.Action)
		got[c.Path] = c.Details.PathTo
	}
	s.Equal(map[string]string{"/A": "/B", "/B": "/C", "/C": "/A"}, got)
}

// TestS4CreateThenDelete mirrors spec scenario S4: net no-op.
func (s *ParseTest) TestS4CreateThenDelete() {
	r := newStreamBuilder().
		command(wire.CmdMkfile, fakeAttr{wire.AttrPath, str("/x")}, fakeAttr{wire.AttrIno, u64(20)}).
		command(wire.CmdUnlink, fakeAttr{wire.AttrPath, str("/x")}).
		end()

	result, err := Parse(r, Oracles{}, Options{})
	s.Require().NoError(err)
	s.Empty(result.Changes)
}

// TestS5PhantomDeletionIsDropped mirrors spec scenario S5.
func (s *ParseTest) TestS5PhantomDeletionIsDropped() {
	r := newStreamBuilder().
		command(wire.CmdUnlink, fakeAttr{wire.AttrPath, str("/ghost")}).
		end()

	result, err := Parse(r, fixedOracles(map[string]bool{"/ghost": false}, nil), Options{})
	s.Require().NoError(err)
	s.Empty(result.Changes)
	s.Require().Len(result.Diagnostics, 1)
}

// TestS6Symlink mirrors spec scenario S6.
func (s *ParseTest) TestS6Symlink() {
	r := newStreamBuilder().
		command(wire.CmdSymlink,
			fakeAttr{wire.AttrPath, str("/lnk")},
			fakeAttr{wire.AttrIno, u64(30)},
			fakeAttr{wire.AttrPathLink, str("../t")}).
		end()

	result, err := Parse(r, fixedOracles(nil, map[string]bool{"/lnk": true}), Options{})
	s.Require().NoError(err)
	s.Require().Len(result.Changes, 1)

	c := result.Changes[0]
	s.Equal("/lnk", c.Path)
	s.Equal(ActionModified, c.Action)
	s.Equal("symlink", c.Details.Command)
	s.Equal("../t", c.Details.PathLink)
	s.Require().NotNil(c.Details.IsDirectory)
	s.False(*c.Details.IsDirectory)
	s.Require().NotNil(c.Details.Inode)
	s.Equal(uint64(30), *c.Details.Inode)
}

func (s *ParseTest) TestEmitMetadataOnlyChangesFlag() {
	r := newStreamBuilder().
		command(wire.CmdChmod, fakeAttr{wire.AttrPath, str("/pre-existing")}, fakeAttr{wire.AttrMode, u64(0644)}).
		end()

	resultOff, err := Parse(r, Oracles{}, Options{})
	s.Require().NoError(err)
	s.Empty(resultOff.Changes)

	r2 := newStreamBuilder().
		command(wire.CmdChmod, fakeAttr{wire.AttrPath, str("/pre-existing")}, fakeAttr{wire.AttrMode, u64(0644)}).
		end()
	resultOn, err := Parse(r2, Oracles{}, Options{EmitMetadataOnlyChanges: true})
	s.Require().NoError(err)
	s.Require().Len(resultOn.Changes, 1)
	s.Equal(ActionModified, resultOn.Changes[0].Action)
	s.Equal("chmod", resultOn.Changes[0].Details.Command)
}

func (s *ParseTest) TestStrictModeSurfacesUnknownCommandAsError() {
	r := newStreamBuilder().
		command(wire.CommandKind(250)).
		end()

	_, err := Parse(r, Oracles{}, Options{Strict: true})
	s.Require().Error(err)
	var diffErr *Error
	s.Require().ErrorAs(err, &diffErr)
}

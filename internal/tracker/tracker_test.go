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

package tracker

import (
	"testing"

	"github.com/btrfs-tools/streamdiff/internal/wire"
	"github.com/stretchr/testify/suite"
)

func TestTracker(t *testing.T) { suite.Run(t, new(TrackerTest)) }

type TrackerTest struct {
	suite.Suite
}

func (s *TrackerTest) TestAllocateThenDetachLeavesEmptyPathSet() {
	tr := New(false)
	s.Require().NoError(tr.Allocate(1, KindRegular, "/a", wire.CmdMkfile, 0))

	st, ok := tr.State(1)
	s.Require().True(ok)
	s.Equal("/a", st.PrimaryPath)
	s.True(st.CreatedInStream)

	_, err := tr.Detach("/a", wire.CmdUnlink, 1)
	s.Require().NoError(err)
	s.True(st.Deleted())
}

func (s *TrackerTest) TestRenamePreservesIdentityAndPrimary() {
	tr := New(false)
	s.Require().NoError(tr.Allocate(1, KindRegular, "/a", wire.CmdMkfile, 0))
	s.Require().NoError(tr.Rename("/a", "/b", wire.CmdRename, 1))

	st, ok := tr.State(1)
	s.Require().True(ok)
	s.Equal("/b", st.PrimaryPath)
	_, hasOld := st.AllPaths["/a"]
	s.False(hasOld)
	_, hasNew := st.AllPaths["/b"]
	s.True(hasNew)
}

func (s *TrackerTest) TestRenameOfUntrackedPathMintsSyntheticInode() {
	tr := New(false)
	s.Require().NoError(tr.Rename("/pre-existing", "/moved", wire.CmdRename, 0))

	id, ok := tr.InodeAt("/moved")
	s.Require().True(ok)
	s.True(id >= syntheticInodeBase)

	st, ok := tr.State(id)
	s.Require().True(ok)
	s.Equal("/pre-existing", st.OriginalPath)
	s.True(st.Synthetic)
}

// TestCircularRenameChain walks spec scenario S3: a circular four-way
// rename (A->tmp, C->A, B->C, tmp->B) should leave three inodes each
// holding exactly the path the chain moved them to, with their
// original (pre-stream) path recoverable via OriginalPath.
func (s *TrackerTest) TestCircularRenameChain() {
	tr := New(false)

	s.Require().NoError(tr.Rename("/A", "/tmp", wire.CmdRename, 0))
	s.Require().NoError(tr.Rename("/C", "/A", wire.CmdRename, 1))
	s.Require().NoError(tr.Rename("/B", "/C", wire.CmdRename, 2))
	s.Require().NoError(tr.Rename("/tmp", "/B", wire.CmdRename, 3))

	idA, ok := tr.InodeAt("/B")
	s.Require().True(ok)
	stA, _ := tr.State(idA)
	s.Equal("/A", stA.OriginalPath)
	s.Equal("/B", stA.PrimaryPath)

	idC, ok := tr.InodeAt("/A")
	s.Require().True(ok)
	stC, _ := tr.State(idC)
	s.Equal("/C", stC.OriginalPath)
	s.Equal("/A", stC.PrimaryPath)

	idB, ok := tr.InodeAt("/C")
	s.Require().True(ok)
	stB, _ := tr.State(idB)
	s.Equal("/B", stB.OriginalPath)
	s.Equal("/C", stB.PrimaryPath)
}

func (s *TrackerTest) TestAttachAddsHardLink() {
	tr := New(false)
	s.Require().NoError(tr.Allocate(1, KindRegular, "/a", wire.CmdMkfile, 0))
	s.Require().NoError(tr.Attach(1, "/b", wire.CmdLink, 1))

	st, ok := tr.State(1)
	s.Require().True(ok)
	s.Len(st.AllPaths, 2)
}

func (s *TrackerTest) TestDetachOfUnknownPathMintsSyntheticPreExistingInode() {
	tr := New(false)
	id, err := tr.Detach("/nope", wire.CmdUnlink, 0)
	s.Require().NoError(err)
	s.True(id >= syntheticInodeBase)

	st, ok := tr.State(id)
	s.Require().True(ok)
	s.Equal("/nope", st.OriginalPath)
	s.True(st.Deleted())
	s.Empty(tr.Diagnostics())
}

func (s *TrackerTest) TestAttachToUnknownInodeIsSoftDiagnosticWhenNotStrict() {
	tr := New(false)
	s.Require().NoError(tr.Attach(99, "/b", wire.CmdLink, 0))
	s.Len(tr.Diagnostics(), 1)
}

func (s *TrackerTest) TestAttachToUnknownInodeIsHardErrorWhenStrict() {
	tr := New(true)
	s.Require().Error(tr.Attach(99, "/b", wire.CmdLink, 0))
}

func (s *TrackerTest) TestMarkDirtySetsSizeAndPromotesUnknownKind() {
	tr := New(false)
	id := tr.Ensure("/pre-existing")
	size := uint64(42)
	s.Require().NoError(tr.MarkDirty(id, wire.CmdWrite, &size, 0))

	st, _ := tr.State(id)
	s.True(st.ContentDirty)
	s.True(st.HasSize)
	s.Equal(uint64(42), st.Size)
	s.Equal(KindRegular, st.Kind)
}

func (s *TrackerTest) TestRmdirInfersDirectoryKind() {
	tr := New(false)
	id := tr.Ensure("/pre-existing-dir")
	_, err := tr.Detach("/pre-existing-dir", wire.CmdRmdir, 0)
	s.Require().NoError(err)

	st, _ := tr.State(id)
	s.Equal(KindDirectory, st.Kind)
}

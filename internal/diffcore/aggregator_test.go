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
	"testing"

	"github.com/btrfs-tools/streamdiff/internal/tracker"
	"github.com/btrfs-tools/streamdiff/internal/wire"
	"github.com/stretchr/testify/suite"
)

func TestAggregate(t *testing.T) { suite.Run(t, new(AggregateTest)) }

type AggregateTest struct {
	suite.Suite
}

// TestCreateThenDeleteIsNoOp exercises rule 2: an inode the stream both
// created and fully detached again contributes nothing to the output.
func (s *AggregateTest) TestCreateThenDeleteIsNoOp() {
	tr := tracker.New(false)
	s.Require().NoError(tr.Allocate(1, tracker.KindRegular, "/x", wire.CmdMkfile, 0))
	_, err := tr.Detach("/x", wire.CmdUnlink, 1)
	s.Require().NoError(err)

	s.Empty(aggregate(tr, false, nil))
}

// TestCreatedInStreamSurvivesAsModifiedEvenWithOnlyMetadataTouches covers
// rule 3: an inode created in this delta is always reported, regardless
// of whether emitMetadataOnly is set.
func (s *AggregateTest) TestCreatedInStreamSurvivesAsModifiedEvenWithOnlyMetadataTouches() {
	tr := tracker.New(false)
	s.Require().NoError(tr.Allocate(1, tracker.KindRegular, "/x", wire.CmdMkfile, 0))
	s.Require().NoError(tr.TouchMetadata(1, wire.CmdChmod, 1))

	out := aggregate(tr, false, nil)
	s.Require().Len(out, 1)
	s.Equal("/x", out[0].Path)
	s.Equal(ActionModified, out[0].Action)
}

// TestContentDirtyIsReportedModified covers rule 4 for a pre-existing
// inode the stream never created but did write to.
func (s *AggregateTest) TestContentDirtyIsReportedModified() {
	tr := tracker.New(false)
	id := tr.Ensure("/pre-existing")
	size := uint64(7)
	s.Require().NoError(tr.MarkDirty(id, wire.CmdWrite, &size, 0))

	out := aggregate(tr, false, nil)
	s.Require().Len(out, 1)
	s.Equal(ActionModified, out[0].Action)
	s.Require().NotNil(out[0].Details.Size)
	s.Equal(uint64(7), *out[0].Details.Size)
}

// TestMetadataOnlyDroppedUnlessRequested covers rule 5's degenerate
// metadata-only case: a pre-existing inode whose path set never
// changed and whose only command was a metadata touch is silently
// dropped, unless the caller opted into EmitMetadataOnlyChanges.
func (s *AggregateTest) TestMetadataOnlyDroppedUnlessRequested() {
	tr := tracker.New(false)
	id := tr.Ensure("/pre-existing")
	s.Require().NoError(tr.TouchMetadata(id, wire.CmdChmod, 0))

	s.Empty(aggregate(tr, false, nil))

	out := aggregate(tr, true, nil)
	s.Require().Len(out, 1)
	s.Equal(ActionModified, out[0].Action)
	s.Equal("chmod", out[0].Details.Command)
}

// TestRenameSwapPairsBothPathsLexicographically covers rule 5's rename
// pairing for two pre-existing inodes that swap names via a temporary.
func (s *AggregateTest) TestRenameSwapPairsBothPathsLexicographically() {
	tr := tracker.New(false)
	s.Require().NoError(tr.Rename("/a", "/tmp", wire.CmdRename, 0))
	s.Require().NoError(tr.Rename("/b", "/a", wire.CmdRename, 1))
	s.Require().NoError(tr.Rename("/tmp", "/b", wire.CmdRename, 2))

	out := aggregate(tr, false, nil)
	s.Require().Len(out, 2)
	for _, c := range out {
		s.Equal(ActionRenamed, c.Action)
	}
	got := map[string]string{out[0].Path: out[0].Details.PathTo, out[1].Path: out[1].Details.PathTo}
	s.Equal(map[string]string{"/a": "/b", "/b": "/a"}, got)
}

// TestHardLinkAdditionIsModifiedNotRename covers the non-degenerate
// path-set-diff case with an added-only name: a new hard link onto a
// pre-existing inode should surface as the new name being modified,
// leaving the untouched original name unreported.
func (s *AggregateTest) TestHardLinkAdditionIsModifiedNotRename() {
	tr := tracker.New(false)
	id := tr.Ensure("/orig")
	s.Require().NoError(tr.Attach(id, "/new", wire.CmdLink, 0))

	out := aggregate(tr, false, nil)
	s.Require().Len(out, 1)
	s.Equal("/new", out[0].Path)
	s.Equal(ActionModified, out[0].Action)
}

// TestOutputOrderedByPathThenActionRank verifies the stable tie-break
// order (deleted < renamed < modified) when two inodes land on the
// same path.
func (s *AggregateTest) TestOutputOrderedByPathThenActionRank() {
	tr := tracker.New(false)
	_, err := tr.Detach("/p", wire.CmdUnlink, 0)
	s.Require().NoError(err)
	s.Require().NoError(tr.Allocate(1, tracker.KindRegular, "/p", wire.CmdMkfile, 1))

	out := aggregate(tr, false, nil)
	s.Require().Len(out, 2)
	s.Equal("/p", out[0].Path)
	s.Equal(ActionDeleted, out[0].Action)
	s.Equal("/p", out[1].Path)
	s.Equal(ActionModified, out[1].Action)
}

// TestResolveKindConsultsOracleOnlyWhenStreamNeverSaidSo verifies that a
// kind the stream already established (e.g. via mkdir) is never
// overridden by the resolveKind callback, which is only consulted for
// KindUnknown inodes.
func (s *AggregateTest) TestResolveKindConsultsOracleOnlyWhenStreamNeverSaidSo() {
	tr := tracker.New(false)
	s.Require().NoError(tr.Allocate(1, tracker.KindDirectory, "/d", wire.CmdMkdir, 0))
	s.Require().NoError(tr.TouchMetadata(1, wire.CmdChmod, 1))

	called := false
	resolveKind := func(string) tracker.Kind {
		called = true
		return tracker.KindRegular
	}

	out := aggregate(tr, false, resolveKind)
	s.Require().Len(out, 1)
	s.False(called)
	s.Require().NotNil(out[0].Details.IsDirectory)
	s.True(*out[0].Details.IsDirectory)
}

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

	"github.com/stretchr/testify/suite"
)

func TestPhantomFilter(t *testing.T) { suite.Run(t, new(PhantomFilterTest)) }

type PhantomFilterTest struct {
	suite.Suite
}

func (s *PhantomFilterTest) TestDropsDeletionOfPathThatNeverExistedInOld() {
	changes := []FileChange{{Path: "/ghost", Action: ActionDeleted}}
	out, diags := phantomFilter(changes, fixedOracles(map[string]bool{"/ghost": false}, nil))
	s.Empty(out)
	s.Require().Len(diags, 1)
	s.Equal("/ghost", diags[0].Path)
}

func (s *PhantomFilterTest) TestKeepsDeletionOfPathThatExistedInOld() {
	changes := []FileChange{{Path: "/real", Action: ActionDeleted}}
	out, diags := phantomFilter(changes, fixedOracles(map[string]bool{"/real": true}, nil))
	s.Require().Len(out, 1)
	s.Empty(diags)
}

// TestFailsOpenWhenOldExistsOracleIsNil verifies the fail-open contract:
// with no oracle available, a deletion is kept rather than dropped.
func (s *PhantomFilterTest) TestFailsOpenWhenOldExistsOracleIsNil() {
	changes := []FileChange{{Path: "/unknown", Action: ActionDeleted}}
	out, diags := phantomFilter(changes, Oracles{})
	s.Require().Len(out, 1)
	s.Empty(diags)
}

func (s *PhantomFilterTest) TestReclassifiesPhantomSymlinkModificationAsDroppedDeletion() {
	changes := []FileChange{{
		Path:   "/lnk",
		Action: ActionModified,
		Details: ChangeDetails{
			Command:  "symlink",
			PathLink: "../t",
		},
	}}
	out, diags := phantomFilter(changes, fixedOracles(map[string]bool{"/lnk": false}, map[string]bool{"/lnk": false}))
	s.Empty(out)
	s.Require().Len(diags, 2)
}

// TestReclassifiedSymlinkKeptWhenItExistedInOldToo covers the case where
// a symlink "modification" never materialized in NEW but the path did
// genuinely exist in OLD: it survives as a deletion, not a drop.
func (s *PhantomFilterTest) TestReclassifiedSymlinkKeptWhenItExistedInOldToo() {
	changes := []FileChange{{
		Path:   "/lnk",
		Action: ActionModified,
		Details: ChangeDetails{
			Command:  "symlink",
			PathLink: "../t",
		},
	}}
	out, diags := phantomFilter(changes, fixedOracles(map[string]bool{"/lnk": true}, map[string]bool{"/lnk": false}))
	s.Require().Len(out, 1)
	s.Equal(ActionDeleted, out[0].Action)
	s.Equal("unlink", out[0].Details.Command)
	s.Empty(out[0].Details.PathLink)
	s.Require().Len(diags, 1)
}

func (s *PhantomFilterTest) TestSymlinkThatDidMaterializeInNewPassesThrough() {
	changes := []FileChange{{
		Path:   "/lnk",
		Action: ActionModified,
		Details: ChangeDetails{
			Command:  "symlink",
			PathLink: "../t",
		},
	}}
	out, diags := phantomFilter(changes, fixedOracles(nil, map[string]bool{"/lnk": true}))
	s.Require().Len(out, 1)
	s.Equal(ActionModified, out[0].Action)
	s.Empty(diags)
}

func (s *PhantomFilterTest) TestNonDeletionNonSymlinkChangesPassThroughUntouched() {
	changes := []FileChange{{Path: "/f", Action: ActionModified, Details: ChangeDetails{Command: "write"}}}
	out, diags := phantomFilter(changes, Oracles{})
	s.Require().Len(out, 1)
	s.Empty(diags)
}

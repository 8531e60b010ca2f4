// Copyright 2025 The refstore Authors.
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

package fetch

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/rserrors"
	"github.com/JedimEmO/refstore/internal/vcs"
)

func TestFetchLocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	dest := t.TempDir()
	f := New(vcs.New(logrus.NewEntry(logrus.StandardLogger())))
	checksum, err := f.Fetch(model.Source{Type: model.SourceLocal, Path: src}, dest, 1)
	require.NoError(t, err)
	assert.Empty(t, checksum)

	data, err := os.ReadFile(filepath.Join(dest, "note.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestFetchLocalDirectory(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.md"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "deep.md"), []byte("deep"), 0o644))

	dest := t.TempDir()
	f := New(vcs.New(logrus.NewEntry(logrus.StandardLogger())))
	checksum, err := f.Fetch(model.Source{Type: model.SourceLocal, Path: src}, dest, 1)
	require.NoError(t, err)
	assert.Empty(t, checksum)

	top, err := os.ReadFile(filepath.Join(dest, "top.md"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(top))

	deep, err := os.ReadFile(filepath.Join(dest, "nested", "deep.md"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(deep))
}

func TestFetchLocalMissingPath(t *testing.T) {
	f := New(vcs.New(logrus.NewEntry(logrus.StandardLogger())))
	_, err := f.Fetch(model.Source{Type: model.SourceLocal, Path: "/does/not/exist"}, t.TempDir(), 1)
	require.Error(t, err)
	assert.True(t, rserrors.Is(err, rserrors.KindInvalidInput))
}

func TestFetchRemoteUnsupported(t *testing.T) {
	f := New(vcs.New(logrus.NewEntry(logrus.StandardLogger())))
	_, err := f.Fetch(model.Source{Type: model.SourceRemote, URL: "https://example.com/x"}, t.TempDir(), 1)
	require.Error(t, err)
	assert.True(t, rserrors.Is(err, rserrors.KindInvalidInput))
}

func TestFetchUnknownSourceType(t *testing.T) {
	f := New(vcs.New(logrus.NewEntry(logrus.StandardLogger())))
	_, err := f.Fetch(model.Source{Type: "bogus"}, t.TempDir(), 1)
	require.Error(t, err)
	assert.True(t, rserrors.Is(err, rserrors.KindInvalidInput))
}

func TestFetchGitStripsDotGitAndReturnsHeadHash(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	g := vcs.New(logrus.NewEntry(logrus.StandardLogger()))
	origin := t.TempDir()
	require.NoError(t, g.Init(origin))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "a.md"), []byte("a"), 0o644))
	require.NoError(t, g.Commit(origin, []string{"a.md"}, "initial"))
	wantHash, err := g.HeadHash(origin)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "clone")
	f := New(g)
	checksum, err := f.Fetch(model.Source{Type: model.SourceGit, URL: "file://" + origin}, dest, 1)
	require.NoError(t, err)
	assert.Equal(t, wantHash, checksum)
	assert.False(t, g.IsGitRepo(dest))
}

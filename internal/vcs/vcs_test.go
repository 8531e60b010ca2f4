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

package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	return New(logrus.NewEntry(logrus.StandardLogger()))
}

func TestInitAndIsGitRepo(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()

	assert.False(t, g.IsGitRepo(dir))
	require.NoError(t, g.Init(dir))
	assert.True(t, g.IsGitRepo(dir))

	// Idempotent: calling Init again on an existing repo must not error.
	require.NoError(t, g.Init(dir))
}

func TestCommitIsNoOpWithoutPaths(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()
	require.NoError(t, g.Init(dir))

	assert.NoError(t, g.Commit(dir, nil, "empty commit"))
	assert.False(t, g.HasCommits(dir))
}

func TestCommitAndHeadHash(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()
	require.NoError(t, g.Init(dir))

	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	require.NoError(t, g.Commit(dir, []string{file}, "add a.txt"))
	assert.True(t, g.HasCommits(dir))

	hash, err := g.HeadHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	// A second commit with nothing staged must be a no-op, not an error.
	require.NoError(t, g.Commit(dir, []string{file}, "no changes"))
	hash2, err := g.HeadHash(dir)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestTagLifecycle(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()
	require.NoError(t, g.Init(dir))
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))
	require.NoError(t, g.Commit(dir, []string{file}, "initial"))

	require.NoError(t, g.CreateTag(dir, "v1", ""))
	require.NoError(t, g.CreateTag(dir, "v2", "annotated release"))

	tags, err := g.ListTags(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, tags)

	assert.True(t, g.RefExists(dir, "v1"))
	assert.False(t, g.RefExists(dir, "v999"))
}

func TestEnsureGitignoreIsUnionAndIdempotent(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()

	require.NoError(t, g.EnsureGitignore(dir, []string{".references/"}))
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".references/\n", string(data))

	// Re-running with the same pattern must not duplicate the line.
	require.NoError(t, g.EnsureGitignore(dir, []string{".references/"}))
	data, err = os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".references/\n", string(data))

	require.NoError(t, g.EnsureGitignore(dir, []string{"*.log"}))
	data, err = os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".references/\n*.log\n", string(data))
}

func TestStripGitDir(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()
	require.NoError(t, g.Init(dir))
	assert.True(t, g.IsGitRepo(dir))

	require.NoError(t, g.StripGitDir(dir))
	assert.False(t, g.IsGitRepo(dir))

	// Stripping an already-stripped directory must not error.
	require.NoError(t, g.StripGitDir(dir))
}

func TestLogPath(t *testing.T) {
	g := requireGit(t)
	dir := t.TempDir()
	require.NoError(t, g.Init(dir))
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))
	require.NoError(t, g.Commit(dir, []string{file}, "first"))
	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))
	require.NoError(t, g.Commit(dir, []string{file}, "second"))

	entries, err := g.LogPath(dir, "a.txt")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Subject)
	assert.Equal(t, "first", entries[1].Subject)
}

func TestCloneShallowAndArchivePathAtRef(t *testing.T) {
	g := requireGit(t)
	origin := t.TempDir()
	require.NoError(t, g.Init(origin))
	require.NoError(t, os.MkdirAll(filepath.Join(origin, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "docs", "readme.md"), []byte("hi"), 0o644))
	require.NoError(t, g.Commit(origin, []string{"docs"}, "add docs"))

	clone := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, g.CloneShallow("file://"+origin, clone, "", 1))
	assert.True(t, g.IsGitRepo(clone))

	dest := t.TempDir()
	require.NoError(t, g.ArchivePathAtRef(origin, "HEAD", "docs", dest))
	data, err := os.ReadFile(filepath.Join(dest, "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestSortTagsNewestFirst(t *testing.T) {
	tags := []string{"v1", "v3", "v2"}
	SortTagsNewestFirst(tags)
	assert.True(t, sort.SliceIsSorted(tags, func(i, j int) bool { return tags[i] > tags[j] }))
}

func TestEnsureGitReflectsPath(t *testing.T) {
	g := New(logrus.NewEntry(logrus.StandardLogger()))
	if _, err := exec.LookPath("git"); err == nil {
		assert.NoError(t, g.EnsureGit())
	} else {
		assert.Error(t, g.EnsureGit())
	}
}

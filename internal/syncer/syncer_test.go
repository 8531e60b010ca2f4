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

package syncer

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/vcs"
)

type stubRepo struct {
	refs    map[string]model.ResolvedReference
	bundles map[string]model.Bundle
	atVer   map[string]string // "name@rev" -> extraction dir
}

func (s *stubRepo) Resolve(name string) (model.ResolvedReference, bool) {
	r, ok := s.refs[name]
	return r, ok
}

func (s *stubRepo) ContentAtVersion(name, rev string) (string, error) {
	if dir, ok := s.atVer[name+"@"+rev]; ok {
		return dir, nil
	}
	return "", os.ErrNotExist
}

func (s *stubRepo) GetBundle(name string) (model.Bundle, bool) {
	b, ok := s.bundles[name]
	return b, ok
}

func initProject(t *testing.T) *project.Store {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	git := vcs.New(logrus.NewEntry(logrus.StandardLogger()))
	s, err := project.Init(t.TempDir(), false, git)
	require.NoError(t, err)
	return s
}

func contentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestSyncMaterializesExplicitReference(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("go-style", model.ManifestEntry{}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"go-style": {
			Reference:   model.Reference{Name: "go-style", Checksum: "abc123"},
			ContentPath: contentDir(t, map[string]string{"guide.md": "hello"}),
		},
	}}

	result, err := New(nil).Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "go-style: synced", result.Entries[0].Message)

	data, err := os.ReadFile(filepath.Join(proj.ReferencesDir(), "go-style", "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSyncSkipsWhenUpToDate(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("doc", model.ManifestEntry{}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"doc": {
			Reference:   model.Reference{Name: "doc", Checksum: "deadbeef"},
			ContentPath: contentDir(t, map[string]string{"a.md": "v1"}),
		},
	}}

	s := New(nil)
	_, err := s.Sync(repo, proj, "", false)
	require.NoError(t, err)

	result, err := s.Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, "doc: up to date (deadbeef)", result.Entries[0].Message)
}

func TestSyncSkipsWhenUpToDateWithoutChecksum(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("sample", model.ManifestEntry{}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"sample": {
			Reference:   model.Reference{Name: "sample"},
			ContentPath: contentDir(t, map[string]string{"a.md": "v1"}),
		},
	}}

	s := New(nil)
	first, err := s.Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, "sample: synced", first.Entries[0].Message)

	second, err := s.Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, "sample: up to date", second.Entries[0].Message)
}

func TestSyncForceBypassesUpToDateSkip(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("doc", model.ManifestEntry{}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"doc": {
			Reference:   model.Reference{Name: "doc", Checksum: "deadbeef"},
			ContentPath: contentDir(t, map[string]string{"a.md": "v1"}),
		},
	}}

	s := New(nil)
	_, err := s.Sync(repo, proj, "", false)
	require.NoError(t, err)

	result, err := s.Sync(repo, proj, "", true)
	require.NoError(t, err)
	assert.Equal(t, "doc: synced", result.Entries[0].Message)
}

func TestSyncReportsMissingReferenceAsFailure(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("ghost", model.ManifestEntry{}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{}}
	result, err := New(nil).Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Entries[0].Message, "not found in central repository")
}

func TestSyncSingleNameErrorsWhenNotInManifest(t *testing.T) {
	proj := initProject(t)
	repo := &stubRepo{refs: map[string]model.ResolvedReference{}}
	_, err := New(nil).Sync(repo, proj, "missing", false)
	require.Error(t, err)
}

func TestSyncAppliesIncludeExcludeFilters(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddReference("docs", model.ManifestEntry{
		Include: []string{"**/*.md"},
		Exclude: []string{"internal/**"},
	}))

	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"docs": {
			Reference: model.Reference{Name: "docs"},
			ContentPath: contentDir(t, map[string]string{
				"readme.md":        "keep",
				"notes.txt":        "drop (not md)",
				"internal/sec.md":  "drop (excluded)",
				"public/guide.md":  "keep",
			}),
		},
	}}

	result, err := New(nil).Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	target := filepath.Join(proj.ReferencesDir(), "docs")
	assert.FileExists(t, filepath.Join(target, "readme.md"))
	assert.FileExists(t, filepath.Join(target, "public", "guide.md"))
	assert.NoFileExists(t, filepath.Join(target, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(target, "internal", "sec.md"))
}

func TestSyncExpandsBundleMembers(t *testing.T) {
	proj := initProject(t)
	require.NoError(t, proj.AddBundle("stack"))

	repo := &stubRepo{
		bundles: map[string]model.Bundle{"stack": {Name: "stack", References: []string{"a", "b"}}},
		refs: map[string]model.ResolvedReference{
			"a": {Reference: model.Reference{Name: "a"}, ContentPath: contentDir(t, map[string]string{"a.md": "a"})},
			"b": {Reference: model.Reference{Name: "b"}, ContentPath: contentDir(t, map[string]string{"b.md": "b"})},
		},
	}

	result, err := New(nil).Sync(repo, proj, "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.ElementsMatch(t, []string{"a", "b"}, []string{result.Entries[0].Name, result.Entries[1].Name})
}

func TestResultSummary(t *testing.T) {
	r := Result{Synced: 2, Failed: 1}
	assert.Equal(t, "Sync complete: 2 synced, 1 failed", r.Summary())
}

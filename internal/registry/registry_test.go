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

package registry

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/vcs"
)

func TestOpenEmptyDirStartsWithEmptyIndex(t *testing.T) {
	reg, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, reg.List("", ""))
	assert.Empty(t, reg.ListBundles(""))
}

func TestPutGetDeleteReference(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	ref := model.Reference{Name: "go-style", Kind: model.KindDirectory, Tags: []string{"go"}}
	reg.Put(ref)

	got, ok := reg.Get("go-style")
	require.True(t, ok)
	assert.Equal(t, ref.Name, got.Name)

	reg.Delete("go-style")
	_, ok = reg.Get("go-style")
	assert.False(t, ok)
}

func TestListFiltersByTagAndKind(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	reg.Put(model.Reference{Name: "a", Kind: model.KindFile, Tags: []string{"go"}})
	reg.Put(model.Reference{Name: "b", Kind: model.KindDirectory, Tags: []string{"rust"}})
	reg.Put(model.Reference{Name: "c", Kind: model.KindDirectory, Tags: []string{"go"}})

	assert.Len(t, reg.List("go", ""), 2)
	assert.Len(t, reg.List("", model.KindDirectory), 2)
	assert.Len(t, reg.List("go", model.KindDirectory), 1)
	assert.Len(t, reg.List("", ""), 3)
}

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	b := model.Bundle{Name: "stack", References: []string{"a", "b"}, Tags: []string{"frontend"}}
	reg.PutBundle(b)

	got, ok := reg.GetBundle("stack")
	require.True(t, ok)
	assert.Equal(t, b.References, got.References)

	assert.Len(t, reg.ListBundles("frontend"), 1)
	assert.Empty(t, reg.ListBundles("backend"))

	reg.DeleteBundle("stack")
	_, ok = reg.GetBundle("stack")
	assert.False(t, ok)
}

func TestSaveIndexAndReopen(t *testing.T) {
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)

	reg.Put(model.Reference{Name: "go-style", Kind: model.KindDirectory, Description: "Go style guide"})
	reg.PutBundle(model.Bundle{Name: "stack", References: []string{"go-style"}})
	require.NoError(t, reg.SaveIndex())

	assert.FileExists(t, filepath.Join(dir, "index.toml"))

	reopened, err := Open(dir)
	require.NoError(t, err)
	ref, ok := reopened.Get("go-style")
	require.True(t, ok)
	assert.Equal(t, "Go style guide", ref.Description)

	b, ok := reopened.GetBundle("stack")
	require.True(t, ok)
	assert.Equal(t, []string{"go-style"}, b.References)
}

func TestInitNew(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	dir := t.TempDir()
	git := vcs.New(logrus.NewEntry(logrus.StandardLogger()))

	reg, err := InitNew(dir, git)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "content"))
	assert.True(t, git.IsGitRepo(dir))
	assert.True(t, git.HasCommits(dir))
	assert.Equal(t, dir, reg.Dir())
}

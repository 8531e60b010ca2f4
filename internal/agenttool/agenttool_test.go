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

package agenttool

import (
	"os/exec"
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
}

func (s *stubRepo) List(tag string, kind model.ReferenceKind) []model.ResolvedReference {
	var out []model.ResolvedReference
	for _, r := range s.refs {
		if tag != "" && !r.Reference.HasTag(tag) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *stubRepo) Resolve(name string) (model.ResolvedReference, bool) {
	r, ok := s.refs[name]
	return r, ok
}

func (s *stubRepo) ListBundles(tag string) []model.Bundle {
	var out []model.Bundle
	for _, b := range s.bundles {
		if tag != "" && !b.HasTag(tag) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *stubRepo) GetBundle(name string) (model.Bundle, bool) {
	b, ok := s.bundles[name]
	return b, ok
}

func TestListReferencesEmpty(t *testing.T) {
	f := New(&stubRepo{}, model.ScopeReadOnly, nil)
	result := f.ListReferences("")
	assert.Equal(t, "No references found.", result.Content[0].Text)
	assert.False(t, result.IsError)
}

func TestListReferencesRendersEntries(t *testing.T) {
	repo := &stubRepo{refs: map[string]model.ResolvedReference{
		"go-style": {
			Reference:    model.Reference{Name: "go-style", Kind: model.KindDirectory, Description: "Go style guide", Tags: []string{"go"}},
			RegistryName: model.LocalRegistryName,
		},
	}}
	f := New(repo, model.ScopeReadOnly, nil)
	result := f.ListReferences("")
	assert.Contains(t, result.Content[0].Text, "go-style [directory] - Go style guide (tags: go)")
}

func TestGetReferenceNotFound(t *testing.T) {
	f := New(&stubRepo{}, model.ScopeReadOnly, nil)
	result := f.GetReference("ghost")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
}

func TestGetBundleFound(t *testing.T) {
	repo := &stubRepo{bundles: map[string]model.Bundle{
		"stack": {Name: "stack", References: []string{"a", "b"}, Description: "frontend stack"},
	}}
	f := New(repo, model.ScopeReadOnly, nil)
	result := f.GetBundle("stack")
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "references: a, b")
}

func TestAddToProjectRequiresReadWriteScope(t *testing.T) {
	f := New(&stubRepo{}, model.ScopeReadOnly, nil)
	result := f.AddToProject("anything")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "read_write scope")
}

func TestAddToProjectRequiresOpenProject(t *testing.T) {
	repo := &stubRepo{refs: map[string]model.ResolvedReference{"doc": {Reference: model.Reference{Name: "doc"}}}}
	f := New(repo, model.ScopeReadWrite, nil)
	result := f.AddToProject("doc")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "no project manifest is open")
}

func TestAddToProjectSucceeds(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	git := vcs.New(logrus.NewEntry(logrus.StandardLogger()))
	proj, err := project.Init(t.TempDir(), false, git)
	require.NoError(t, err)

	repo := &stubRepo{refs: map[string]model.ResolvedReference{"doc": {Reference: model.Reference{Name: "doc"}}}}
	f := New(repo, model.ScopeReadWrite, proj)

	result := f.AddToProject("doc")
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "added \"doc\"")

	result = f.AddToProject("doc")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "already in the project manifest")
}

func TestAddToProjectRejectsUnknownReference(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
	git := vcs.New(logrus.NewEntry(logrus.StandardLogger()))
	proj, err := project.Init(t.TempDir(), false, git)
	require.NoError(t, err)

	f := New(&stubRepo{}, model.ScopeReadWrite, proj)
	result := f.AddToProject("ghost")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
}

func TestGetTutorialMentionsCoreVerbs(t *testing.T) {
	f := New(&stubRepo{}, model.ScopeReadOnly, nil)
	result := f.GetTutorial()
	assert.Contains(t, result.Content[0].Text, "list_references")
	assert.Contains(t, result.Content[0].Text, "add_to_project")
	assert.Contains(t, result.Content[0].Text, "refstore sync")
}

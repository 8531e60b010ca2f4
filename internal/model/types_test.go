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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JedimEmO/refstore/internal/rserrors"
)

func TestSourceString(t *testing.T) {
	testCases := []struct {
		desc   string
		source Source
		want   string
	}{
		{"local", Source{Type: SourceLocal, Path: "/docs/api"}, "/docs/api"},
		{"git no ref", Source{Type: SourceGit, URL: "https://example.com/r.git"}, "https://example.com/r.git"},
		{
			"git with ref",
			Source{Type: SourceGit, URL: "https://example.com/r.git", Ref: "v2"},
			"https://example.com/r.git (ref: v2)",
		},
		{"remote", Source{Type: SourceRemote, URL: "https://example.com/x"}, "https://example.com/x"},
		{"unknown type", Source{Type: "bogus"}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.source.String())
		})
	}
}

func TestReferenceHasTag(t *testing.T) {
	ref := Reference{Tags: []string{"go", "api"}}
	assert.True(t, ref.HasTag("go"))
	assert.False(t, ref.HasTag("rust"))
}

func TestBundleHasTag(t *testing.T) {
	b := Bundle{Tags: []string{"frontend"}}
	assert.True(t, b.HasTag("frontend"))
	assert.False(t, b.HasTag("backend"))
}

func TestNewRegistryIndex(t *testing.T) {
	idx := NewRegistryIndex()
	assert.Equal(t, 1, idx.Version)
	assert.NotNil(t, idx.References)
	assert.NotNil(t, idx.Bundles)
	assert.Empty(t, idx.References)
}

func TestDefaultGlobalConfig(t *testing.T) {
	cfg := DefaultGlobalConfig()
	assert.Equal(t, ScopeReadOnly, cfg.MCPScope)
	assert.Equal(t, 1, cfg.GitDepth)
}

func TestNewManifest(t *testing.T) {
	m := NewManifest(true)
	assert.Equal(t, 1, m.Version)
	assert.True(t, m.GitignoreReferences)
	assert.NotNil(t, m.References)
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name    string
		wantErr bool
	}{
		{"golang-best-practices", false},
		{"go_1.21", false},
		{"", true},
		{"has space", true},
		{"has/slash", true},
		{"emoji😀", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, rserrors.Is(err, rserrors.KindInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

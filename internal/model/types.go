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

// Package model holds the on-disk data shapes of refstore: references,
// bundles, the per-registry index, the global config and the per-project
// manifest. Every type here round-trips through TOML exactly as laid out in
// the central repository's index.toml / config.toml and a project's
// refstore.toml.
package model

import (
	"time"

	"github.com/JedimEmO/refstore/internal/rserrors"
)

// ReferenceKind is the kind of content a Reference points at.
type ReferenceKind string

const (
	KindFile      ReferenceKind = "file"
	KindDirectory ReferenceKind = "directory"
	KindGitRepo   ReferenceKind = "git_repo"
)

// SourceType distinguishes how a Reference's content is obtained.
type SourceType string

const (
	SourceLocal  SourceType = "local"
	SourceGit    SourceType = "git"
	SourceRemote SourceType = "remote" // reserved; fetch always fails, see internal/fetch
)

// Source is the tagged union of where a Reference's content comes from.
// Exactly the fields relevant to Type are populated.
type Source struct {
	Type SourceType `toml:"type"`

	// Local
	Path string `toml:"path,omitempty"`

	// Git
	URL     string `toml:"url,omitempty"`
	Ref     string `toml:"ref,omitempty"`
	Subpath string `toml:"subpath,omitempty"`

	// Remote reuses URL.
}

// String renders a human-readable description of the source, used by CLI
// `info`/`list` rendering.
func (s Source) String() string {
	switch s.Type {
	case SourceLocal:
		return s.Path
	case SourceGit:
		if s.Ref != "" {
			return s.URL + " (ref: " + s.Ref + ")"
		}
		return s.URL
	case SourceRemote:
		return s.URL
	default:
		return ""
	}
}

// Reference is a single named piece of curated content tracked in a
// Registry's index.
type Reference struct {
	Name        string        `toml:"name"`
	Kind        ReferenceKind `toml:"kind"`
	Source      Source        `toml:"source"`
	Description string        `toml:"description,omitempty"`
	Tags        []string      `toml:"tags,omitempty"`
	AddedAt     time.Time     `toml:"added_at"`
	LastSynced  *time.Time    `toml:"last_synced,omitempty"`
	Checksum    string        `toml:"checksum,omitempty"`
}

// HasTag reports whether t is among the Reference's tags.
func (r Reference) HasTag(t string) bool {
	for _, rt := range r.Tags {
		if rt == t {
			return true
		}
	}
	return false
}

// Bundle is a named, ordered group of Reference names.
type Bundle struct {
	Name        string    `toml:"name"`
	Description string    `toml:"description,omitempty"`
	Tags        []string  `toml:"tags,omitempty"`
	References  []string  `toml:"references"`
	CreatedAt   time.Time `toml:"created_at"`
}

// HasTag reports whether t is among the Bundle's tags.
func (b Bundle) HasTag(t string) bool {
	for _, bt := range b.Tags {
		if bt == t {
			return true
		}
	}
	return false
}

// RegistryIndex is the on-disk shape of a registry's index.toml.
type RegistryIndex struct {
	Version    int                  `toml:"version"`
	References map[string]Reference `toml:"references"`
	Bundles    map[string]Bundle    `toml:"bundles"`
}

// NewRegistryIndex returns an empty, schema-version-1 index.
func NewRegistryIndex() RegistryIndex {
	return RegistryIndex{
		Version:    1,
		References: map[string]Reference{},
		Bundles:    map[string]Bundle{},
	}
}

// MCPScope controls whether the agent-tool facade may mutate project state.
type MCPScope string

const (
	ScopeReadOnly  MCPScope = "read_only"
	ScopeReadWrite MCPScope = "read_write"
)

// RegistryRef names a remote registry attached to a Repository's config.
type RegistryRef struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// GlobalConfig is the repository root's config.toml. It is never committed
// to the repository's own git history.
type GlobalConfig struct {
	MCPScope      MCPScope      `toml:"mcp_scope,omitempty"`
	GitDepth      int           `toml:"git_depth"`
	DefaultBranch string        `toml:"default_branch,omitempty"`
	Registries    []RegistryRef `toml:"registries,omitempty"`
}

// DefaultGlobalConfig returns the documented defaults: read-only MCP scope,
// shallow clones of depth 1.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		MCPScope: ScopeReadOnly,
		GitDepth: 1,
	}
}

// ManifestEntry is one project manifest's explicit reference selection.
type ManifestEntry struct {
	Path    string   `toml:"path,omitempty"`
	Version string   `toml:"version,omitempty"`
	Include []string `toml:"include,omitempty"`
	Exclude []string `toml:"exclude,omitempty"`
}

// Manifest is a project's refstore.toml: the explicit references plus
// bundle expansions to materialize into .references/.
type Manifest struct {
	Version              int                      `toml:"version"`
	GitignoreReferences  bool                     `toml:"gitignore_references"`
	References           map[string]ManifestEntry `toml:"references"`
	Bundles              []string                 `toml:"bundles,omitempty"`
}

// NewManifest returns an empty, schema-version-1 manifest.
func NewManifest(gitignoreReferences bool) Manifest {
	return Manifest{
		Version:             1,
		GitignoreReferences: gitignoreReferences,
		References:          map[string]ManifestEntry{},
	}
}

// ResolvedReference is a transient view produced by Repository resolution:
// the underlying Reference plus where it physically lives. It borrows from
// a Repository snapshot and must not outlive it.
type ResolvedReference struct {
	Reference    Reference
	ContentPath  string
	RegistryName string // "local", or the remote registry's configured name
}

// LocalRegistryName is the reserved name of the repository's writable
// local registry. It cannot be used as a remote registry name.
const LocalRegistryName = "local"

// ValidateName enforces the Reference/Bundle identity rule: non-empty,
// [A-Za-z0-9._-]+ only.
func ValidateName(name string) error {
	if name == "" {
		return rserrors.New(rserrors.KindInvalidInput, "name cannot be empty")
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			continue
		case c == '-' || c == '_' || c == '.':
			continue
		default:
			return rserrors.New(rserrors.KindInvalidInput,
				"name %q must contain only alphanumeric characters, hyphens, underscores, or dots", name)
		}
	}
	return nil
}

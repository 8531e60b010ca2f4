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

// Package registry implements a single directory housing index.toml and
// content/<name>/: pure read/write over that layout, with no knowledge of
// git or of other registries. The Repository (internal/repository) composes
// many of these and drives the git commits around them.
package registry

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/rserrors"
	"github.com/JedimEmO/refstore/internal/vcs"
)

// Registry is a directory containing index.toml and content/.
type Registry struct {
	dir   string
	index model.RegistryIndex
}

// Open loads dir's index.toml, if present, or starts from an empty index
// held in memory. Whether the result is treated as writable or read-only
// is a property of how the caller uses it, not of Registry itself.
func Open(dir string) (*Registry, error) {
	idx, err := loadIndex(dir)
	if err != nil {
		return nil, err
	}
	return &Registry{dir: dir, index: idx}, nil
}

// InitNew creates a brand-new, independently git-versioned registry
// directory: index.toml, content/, its own git repository with
// config.toml gitignored, and an "Initialize registry" commit. This is
// for standalone registries meant to be shared (e.g. as the target of
// Repository.Push or attached later via `registry add`), as distinct from
// the repository root's own init flow in internal/repository.
func InitNew(dir string, git *vcs.Git) (*Registry, error) {
	if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
		return nil, rserrors.IO(dir, err, "creating registry directories")
	}
	r := &Registry{dir: dir, index: model.NewRegistryIndex()}
	if err := r.SaveIndex(); err != nil {
		return nil, err
	}
	if err := git.Init(dir); err != nil {
		return nil, err
	}
	if err := git.EnsureGitignore(dir, []string{"config.toml"}); err != nil {
		return nil, err
	}
	if err := git.Commit(dir, []string{"index.toml", "content", ".gitignore"}, "Initialize registry"); err != nil {
		return nil, err
	}
	return r, nil
}

func loadIndex(dir string) (model.RegistryIndex, error) {
	path := filepath.Join(dir, "index.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewRegistryIndex(), nil
		}
		return model.RegistryIndex{}, rserrors.IO(path, err, "reading registry index")
	}
	var idx model.RegistryIndex
	if _, err := toml.Decode(string(data), &idx); err != nil {
		return model.RegistryIndex{}, rserrors.Wrap(rserrors.KindIO, err, "parsing registry index %s", path)
	}
	if idx.References == nil {
		idx.References = map[string]model.Reference{}
	}
	if idx.Bundles == nil {
		idx.Bundles = map[string]model.Bundle{}
	}
	if idx.Version == 0 {
		idx.Version = 1
	}
	return idx, nil
}

// Dir returns the registry's root directory.
func (r *Registry) Dir() string { return r.dir }

// ContentPath returns the content directory for name, whether or not it
// currently exists on disk.
func (r *Registry) ContentPath(name string) string {
	return filepath.Join(r.dir, "content", name)
}

// IndexPath returns the path to index.toml.
func (r *Registry) IndexPath() string {
	return filepath.Join(r.dir, "index.toml")
}

// Get returns the named Reference, if present.
func (r *Registry) Get(name string) (model.Reference, bool) {
	ref, ok := r.index.References[name]
	return ref, ok
}

// GetBundle returns the named Bundle, if present.
func (r *Registry) GetBundle(name string) (model.Bundle, bool) {
	b, ok := r.index.Bundles[name]
	return b, ok
}

// Put inserts or replaces a Reference in the in-memory index. Callers must
// call SaveIndex to persist it.
func (r *Registry) Put(ref model.Reference) {
	r.index.References[ref.Name] = ref
}

// Delete removes a Reference from the in-memory index. Callers must call
// SaveIndex to persist it.
func (r *Registry) Delete(name string) {
	delete(r.index.References, name)
}

// PutBundle inserts or replaces a Bundle in the in-memory index.
func (r *Registry) PutBundle(b model.Bundle) {
	r.index.Bundles[b.Name] = b
}

// DeleteBundle removes a Bundle from the in-memory index.
func (r *Registry) DeleteBundle(name string) {
	delete(r.index.Bundles, name)
}

// List returns References matching the optional tag and kind filters. A
// zero-value filter (empty string) matches everything.
func (r *Registry) List(tag string, kind model.ReferenceKind) []model.Reference {
	var out []model.Reference
	for _, ref := range r.index.References {
		if tag != "" && !ref.HasTag(tag) {
			continue
		}
		if kind != "" && ref.Kind != kind {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// ListBundles returns Bundles matching the optional tag filter.
func (r *Registry) ListBundles(tag string) []model.Bundle {
	var out []model.Bundle
	for _, b := range r.index.Bundles {
		if tag != "" && !b.HasTag(tag) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SaveIndex serializes the in-memory index to index.toml, pretty-printed.
func (r *Registry) SaveIndex() error {
	path := r.IndexPath()
	f, err := os.Create(path)
	if err != nil {
		return rserrors.IO(path, err, "writing registry index")
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(r.index); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding registry index %s", path)
	}
	return nil
}

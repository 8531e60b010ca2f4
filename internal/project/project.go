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

// Package project owns a single project's manifest (refstore.toml) and its
// .references/ working tree.
package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/rserrors"
	"github.com/JedimEmO/refstore/internal/vcs"
)

const manifestFile = "refstore.toml"

// syncStateFile is a small project-local sidecar recording, per reference
// name, the checksum last materialized into .references/. It lives at the
// project root (not inside .references/ itself) so a sync's full-subtree
// replace never wipes it. The Synchronizer uses it to drive the
// up-to-date skip described in spec §4.6 — see SPEC_FULL.md's note on the
// checksum/.git-stripping tension for why this sidecar exists instead of inspecting
// whether the materialized directory is itself a git repository.
const syncStateFile = ".refstore-sync-state.toml"

// SyncState is the sidecar's on-disk shape: the checksum recorded the
// last time each reference was successfully materialized.
type SyncState struct {
	Checksums map[string]string `toml:"checksums"`
}

// ReferencesDirName is the working-tree directory materialized content
// lands in, relative to the project root.
const ReferencesDirName = ".references"

// Store owns one project's manifest and .references/ directory.
type Store struct {
	root     string
	manifest model.Manifest
}

// Open walks upward from startDir (or the current working directory, when
// empty) looking for the nearest refstore.toml.
func Open(startDir string) (*Store, error) {
	dir := startDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, rserrors.New(rserrors.KindMissingInfra, "could not resolve current directory: %v", err)
		}
		dir = wd
	}

	for {
		candidate := filepath.Join(dir, manifestFile)
		if _, err := os.Stat(candidate); err == nil {
			m, err := loadManifest(candidate)
			if err != nil {
				return nil, err
			}
			return &Store{root: dir, manifest: m}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, rserrors.New(rserrors.KindNotFound, "manifest not found")
		}
		dir = parent
	}
}

// Init creates path/refstore.toml (failing if it already exists) and
// path/.references/, gitignoring the latter when gitignoreReferences is
// true. path defaults to the current directory when empty.
func Init(path string, gitignoreReferences bool, git *vcs.Git) (*Store, error) {
	root := path
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, rserrors.New(rserrors.KindMissingInfra, "could not resolve current directory: %v", err)
		}
		root = wd
	}
	manifestPath := filepath.Join(root, manifestFile)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, rserrors.New(rserrors.KindConflict, "manifest already exists at %s", manifestPath)
	}

	if err := os.MkdirAll(filepath.Join(root, ReferencesDirName), 0o755); err != nil {
		return nil, rserrors.IO(root, err, "creating .references directory")
	}

	if gitignoreReferences {
		if err := git.EnsureGitignore(root, []string{ReferencesDirName + "/"}); err != nil {
			return nil, err
		}
	}

	m := model.NewManifest(gitignoreReferences)
	s := &Store{root: root, manifest: m}
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadManifest(path string) (model.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Manifest{}, rserrors.IO(path, err, "reading manifest")
	}
	m := model.NewManifest(true)
	if _, err := toml.Decode(string(data), &m); err != nil {
		return model.Manifest{}, rserrors.Wrap(rserrors.KindIO, err, "parsing manifest %s", path)
	}
	if m.References == nil {
		m.References = map[string]model.ManifestEntry{}
	}
	if m.Version == 0 {
		m.Version = 1
	}
	return m, nil
}

func (s *Store) save() error {
	path := filepath.Join(s.root, manifestFile)
	f, err := os.Create(path)
	if err != nil {
		return rserrors.IO(path, err, "writing manifest")
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(s.manifest); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding manifest %s", path)
	}
	return nil
}

// Root returns the project root directory (the directory containing
// refstore.toml).
func (s *Store) Root() string { return s.root }

// ReferencesDir returns the absolute path to .references/.
func (s *Store) ReferencesDir() string {
	return filepath.Join(s.root, ReferencesDirName)
}

// Manifest returns a copy of the current manifest.
func (s *Store) Manifest() model.Manifest { return s.manifest }

// AddReference inserts name under entry, failing if it already exists.
func (s *Store) AddReference(name string, entry model.ManifestEntry) error {
	if _, exists := s.manifest.References[name]; exists {
		return rserrors.New(rserrors.KindConflict, "reference %q already in manifest", name)
	}
	s.manifest.References[name] = entry
	return s.save()
}

// RemoveReference deletes name, failing if absent.
func (s *Store) RemoveReference(name string) error {
	if _, exists := s.manifest.References[name]; !exists {
		return rserrors.New(rserrors.KindNotFound, "reference %q not in manifest", name)
	}
	delete(s.manifest.References, name)
	return s.save()
}

// AddBundle appends name to the manifest's bundle list, failing if already
// present.
func (s *Store) AddBundle(name string) error {
	for _, b := range s.manifest.Bundles {
		if b == name {
			return rserrors.New(rserrors.KindConflict, "bundle %q already in manifest", name)
		}
	}
	s.manifest.Bundles = append(s.manifest.Bundles, name)
	return s.save()
}

// RemoveBundle removes name from the manifest's bundle list, failing if
// absent.
func (s *Store) RemoveBundle(name string) error {
	idx := -1
	for i, b := range s.manifest.Bundles {
		if b == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rserrors.New(rserrors.KindNotFound, "bundle %q not in manifest", name)
	}
	s.manifest.Bundles = append(s.manifest.Bundles[:idx], s.manifest.Bundles[idx+1:]...)
	return s.save()
}

// LoadSyncState reads the project's sync-state sidecar, returning an
// empty state when it does not yet exist.
func (s *Store) LoadSyncState() (SyncState, error) {
	path := filepath.Join(s.root, syncStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SyncState{Checksums: map[string]string{}}, nil
		}
		return SyncState{}, rserrors.IO(path, err, "reading sync state")
	}
	var st SyncState
	if _, err := toml.Decode(string(data), &st); err != nil {
		return SyncState{}, rserrors.Wrap(rserrors.KindIO, err, "parsing sync state %s", path)
	}
	if st.Checksums == nil {
		st.Checksums = map[string]string{}
	}
	return st, nil
}

// SaveSyncState persists the project's sync-state sidecar.
func (s *Store) SaveSyncState(st SyncState) error {
	path := filepath.Join(s.root, syncStateFile)
	f, err := os.Create(path)
	if err != nil {
		return rserrors.IO(path, err, "writing sync state")
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(st); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding sync state %s", path)
	}
	return nil
}

// BundleResolver is the subset of Repository resolution the manifest
// expander needs.
type BundleResolver interface {
	GetBundle(name string) (model.Bundle, bool)
}

// ResolvedEntry is one entry of ResolveAllReferences's result: the
// effective ManifestEntry plus, when it came from bundle expansion, the
// name of the contributing bundle.
type ResolvedEntry struct {
	Entry      model.ManifestEntry
	ViaBundle  string // empty when the entry is explicit
}

// ResolveAllReferences expands the manifest's bundle names against repo,
// merging into the explicit entries: explicit entries always win over
// bundle-contributed ones; when multiple bundles contribute the same
// name, the first bundle listed wins. The result is ordered by name for
// reproducible output.
func ResolveAllReferences(m model.Manifest, repo BundleResolver) (map[string]ResolvedEntry, []string) {
	out := map[string]ResolvedEntry{}

	for _, bundleName := range m.Bundles {
		b, ok := repo.GetBundle(bundleName)
		if !ok {
			continue // dangling bundle reference; tolerated, reported elsewhere
		}
		for _, refName := range b.References {
			if _, already := out[refName]; already {
				continue // first bundle listed wins among bundle contributions
			}
			out[refName] = ResolvedEntry{Entry: model.ManifestEntry{}, ViaBundle: bundleName}
		}
	}

	for name, entry := range m.References {
		out[name] = ResolvedEntry{Entry: entry} // explicit always wins
	}

	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Strings(names)
	return out, names
}

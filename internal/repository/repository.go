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

// Package repository implements the multi-registry federator: one local,
// writable Registry plus N read-only remote Registries attached as git
// submodules under registries/<name>/, with a deterministic name resolution
// order (local first, then remotes ascending by name).
package repository

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/JedimEmO/refstore/internal/fetch"
	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/registry"
	"github.com/JedimEmO/refstore/internal/rserrors"
	"github.com/JedimEmO/refstore/internal/vcs"
)

type remoteRegistry struct {
	name string
	reg  *registry.Registry
}

// Repository is the composite object: one local Registry, N remote
// Registries, and the global config governing both.
type Repository struct {
	root    string
	git     *vcs.Git
	fetcher *fetch.Fetcher
	log     *logrus.Entry

	config  model.GlobalConfig
	local   *registry.Registry
	remotes []remoteRegistry
}

// EnvDataDir is the environment variable overriding the data directory.
const EnvDataDir = "REFSTORE_DATA_DIR"

// DefaultDataDir resolves the platform default data directory: honors
// REFSTORE_DATA_DIR first, then XDG_DATA_HOME, then ~/.local/share.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return filepath.Join(dir), nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "refstore"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", rserrors.New(rserrors.KindMissingInfra, "could not resolve a data directory: %v", err)
	}
	return filepath.Join(home, ".local", "share", "refstore"), nil
}

// Open resolves dataDir (or the platform default when empty), and opens
// (initializing as needed) the repository root: git init, .gitignore,
// config.toml, the local registry, and every registries/<name>/ submodule.
func Open(dataDir string, git *vcs.Git, log *logrus.Entry) (*Repository, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	root := dataDir
	if root == "" {
		var err error
		root, err = DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o755); err != nil {
		return nil, rserrors.IO(root, err, "creating repository directories")
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	if err := git.Init(root); err != nil {
		return nil, err
	}
	if err := git.EnsureGitignore(root, []string{"config.toml"}); err != nil {
		return nil, err
	}
	if !git.HasCommits(root) {
		local, err := registry.Open(root)
		if err != nil {
			return nil, err
		}
		if err := local.SaveIndex(); err != nil {
			return nil, err
		}
		if err := git.Commit(root, []string{".gitignore", "index.toml", "content"}, "Initialize refstore repository"); err != nil {
			return nil, err
		}
	}

	local, err := registry.Open(root)
	if err != nil {
		return nil, err
	}

	remotes, err := openRemotes(root)
	if err != nil {
		return nil, err
	}

	return &Repository{
		root:    root,
		git:     git,
		fetcher: fetch.New(git),
		log:     log,
		config:  cfg,
		local:   local,
		remotes: remotes,
	}, nil
}

func openRemotes(root string) ([]remoteRegistry, error) {
	registriesDir := filepath.Join(root, "registries")
	entries, err := os.ReadDir(registriesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, rserrors.IO(registriesDir, err, "listing attached registries")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(registriesDir, e.Name(), "index.toml")); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var remotes []remoteRegistry
	for _, name := range names {
		reg, err := registry.Open(filepath.Join(registriesDir, name))
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, remoteRegistry{name: name, reg: reg})
	}
	return remotes, nil
}

func loadConfig(root string) (model.GlobalConfig, error) {
	path := filepath.Join(root, "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultGlobalConfig(), nil
		}
		return model.GlobalConfig{}, rserrors.IO(path, err, "reading global config")
	}
	cfg := model.DefaultGlobalConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return model.GlobalConfig{}, rserrors.Wrap(rserrors.KindIO, err, "parsing global config %s", path)
	}
	if cfg.MCPScope == "" {
		cfg.MCPScope = model.ScopeReadOnly
	}
	return cfg, nil
}

func (r *Repository) saveConfig() error {
	path := filepath.Join(r.root, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return rserrors.IO(path, err, "writing global config")
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(r.config); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding global config %s", path)
	}
	return nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string { return r.root }

// Config returns the current global configuration.
func (r *Repository) Config() model.GlobalConfig { return r.config }

// SetConfigValue updates one recognized config.toml key (mcp_scope,
// git_depth, default_branch) and persists the result. Unknown keys and
// unparseable values are rejected as invalid input, never silently
// ignored.
func (r *Repository) SetConfigValue(key, value string) error {
	switch key {
	case "mcp_scope":
		switch model.MCPScope(value) {
		case model.ScopeReadOnly, model.ScopeReadWrite:
			r.config.MCPScope = model.MCPScope(value)
		default:
			return rserrors.New(rserrors.KindInvalidInput, "mcp_scope must be %q or %q", model.ScopeReadOnly, model.ScopeReadWrite)
		}
	case "git_depth":
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 0 {
			return rserrors.New(rserrors.KindInvalidInput, "git_depth must be a non-negative integer")
		}
		r.config.GitDepth = depth
	case "default_branch":
		r.config.DefaultBranch = value
	default:
		return rserrors.New(rserrors.KindInvalidInput, "unknown config key %q", key)
	}
	return r.saveConfig()
}

// relToRoot returns path relative to the repository root, for passing to
// git add/commit which run with root as their working directory.
func (r *Repository) relToRoot(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return rel
}

// commitLocal commits the given absolute content/index paths at the
// repository root.
func (r *Repository) commitLocal(message string, removal bool, paths ...string) error {
	rels := make([]string, len(paths))
	for i, p := range paths {
		rels[i] = r.relToRoot(p)
	}
	if removal {
		return r.git.CommitRemovals(r.root, rels, message)
	}
	return r.git.Commit(r.root, rels, message)
}

// Resolve searches local first, then remotes in ascending name order, and
// returns the first matching Reference as a ResolvedReference.
func (r *Repository) Resolve(name string) (model.ResolvedReference, bool) {
	if ref, ok := r.local.Get(name); ok {
		return model.ResolvedReference{
			Reference:    ref,
			ContentPath:  r.local.ContentPath(name),
			RegistryName: model.LocalRegistryName,
		}, true
	}
	for _, rr := range r.remotes {
		if ref, ok := rr.reg.Get(name); ok {
			return model.ResolvedReference{
				Reference:    ref,
				ContentPath:  rr.reg.ContentPath(name),
				RegistryName: rr.name,
			}, true
		}
	}
	return model.ResolvedReference{}, false
}

// Get is the Reference projection of Resolve.
func (r *Repository) Get(name string) (model.Reference, bool) {
	resolved, ok := r.Resolve(name)
	return resolved.Reference, ok
}

// ResolveContentPath is the content-path projection of Resolve.
func (r *Repository) ResolveContentPath(name string) (string, bool) {
	resolved, ok := r.Resolve(name)
	return resolved.ContentPath, ok
}

// List returns References from local first, then remotes (in registry name
// order), each registry's hits sorted by reference name, deduplicated by
// name (first occurrence wins), matching the optional tag/kind filters.
func (r *Repository) List(tag string, kind model.ReferenceKind) []model.ResolvedReference {
	seen := map[string]bool{}
	var out []model.ResolvedReference
	localRefs := r.local.List(tag, kind)
	sort.Slice(localRefs, func(i, j int) bool { return localRefs[i].Name < localRefs[j].Name })
	for _, ref := range localRefs {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		out = append(out, model.ResolvedReference{
			Reference:    ref,
			ContentPath:  r.local.ContentPath(ref.Name),
			RegistryName: model.LocalRegistryName,
		})
	}
	for _, rr := range r.remotes {
		remoteRefs := rr.reg.List(tag, kind)
		sort.Slice(remoteRefs, func(i, j int) bool { return remoteRefs[i].Name < remoteRefs[j].Name })
		for _, ref := range remoteRefs {
			if seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			out = append(out, model.ResolvedReference{
				Reference:    ref,
				ContentPath:  rr.reg.ContentPath(ref.Name),
				RegistryName: rr.name,
			})
		}
	}
	return out
}

// ResolveBundle is Resolve's analogue for bundles.
func (r *Repository) ResolveBundle(name string) (model.Bundle, string, bool) {
	if b, ok := r.local.GetBundle(name); ok {
		return b, model.LocalRegistryName, true
	}
	for _, rr := range r.remotes {
		if b, ok := rr.reg.GetBundle(name); ok {
			return b, rr.name, true
		}
	}
	return model.Bundle{}, "", false
}

// GetBundle is the value-only projection of ResolveBundle.
func (r *Repository) GetBundle(name string) (model.Bundle, bool) {
	b, _, ok := r.ResolveBundle(name)
	return b, ok
}

// ListBundles is List's analogue for bundles.
func (r *Repository) ListBundles(tag string) []model.Bundle {
	seen := map[string]bool{}
	var out []model.Bundle
	localBundles := r.local.ListBundles(tag)
	sort.Slice(localBundles, func(i, j int) bool { return localBundles[i].Name < localBundles[j].Name })
	for _, b := range localBundles {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
	}
	for _, rr := range r.remotes {
		remoteBundles := rr.reg.ListBundles(tag)
		sort.Slice(remoteBundles, func(i, j int) bool { return remoteBundles[i].Name < remoteBundles[j].Name })
		for _, b := range remoteBundles {
			if seen[b.Name] {
				continue
			}
			seen[b.Name] = true
			out = append(out, b)
		}
	}
	return out
}

// resolveAnywhere reports whether name resolves in local or any remote,
// used to validate bundle membership.
func (r *Repository) resolveAnywhere(name string) bool {
	_, ok := r.Resolve(name)
	return ok
}

// Add fetches content for ref and inserts it into the local registry,
// committing both the content directory and index.toml.
func (r *Repository) Add(ref model.Reference) error {
	if err := model.ValidateName(ref.Name); err != nil {
		return err
	}
	if _, exists := r.local.Get(ref.Name); exists {
		return rserrors.New(rserrors.KindConflict, "reference %q already exists", ref.Name)
	}

	contentDir := r.local.ContentPath(ref.Name)
	checksum, err := r.fetcher.Fetch(ref.Source, contentDir, r.config.GitDepth)
	if err != nil {
		return err
	}
	if checksum != "" {
		ref.Checksum = checksum
	}

	if ref.AddedAt.IsZero() {
		ref.AddedAt = time.Now().UTC()
	}
	r.local.Put(ref)
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Add reference: "+ref.Name, false, contentDir, r.local.IndexPath())
}

// Remove deletes name from the local registry's index and content
// directory, committing the removal.
func (r *Repository) Remove(name string) error {
	if _, exists := r.local.Get(name); !exists {
		return rserrors.New(rserrors.KindNotFound, "reference %q not found", name)
	}
	contentDir := r.local.ContentPath(name)
	r.local.Delete(name)
	if err := os.RemoveAll(contentDir); err != nil {
		return rserrors.IO(contentDir, err, "removing reference content")
	}
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Remove reference: "+name, true, contentDir, r.local.IndexPath())
}

// Update re-fetches name's content, refreshing last_synced (and, for git
// sources, checksum — see DESIGN.md for the deliberate resolution of the
// checksum/.git-stripping tension spec §9 flags as an open question).
func (r *Repository) Update(name string) error {
	ref, exists := r.local.Get(name)
	if !exists {
		return rserrors.New(rserrors.KindNotFound, "reference %q not found", name)
	}

	contentDir := r.local.ContentPath(name)
	if err := os.RemoveAll(contentDir); err != nil {
		return rserrors.IO(contentDir, err, "removing stale reference content")
	}
	checksum, err := r.fetcher.Fetch(ref.Source, contentDir, r.config.GitDepth)
	if err != nil {
		return err
	}
	if checksum != "" {
		ref.Checksum = checksum
	}

	now := time.Now().UTC()
	ref.LastSynced = &now
	r.local.Put(ref)
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Update reference: "+name, false, contentDir, r.local.IndexPath())
}

// AddBundle validates every member reference resolves somewhere, then
// inserts b into the local registry.
func (r *Repository) AddBundle(b model.Bundle) error {
	if err := model.ValidateName(b.Name); err != nil {
		return err
	}
	if _, exists := r.local.GetBundle(b.Name); exists {
		return rserrors.New(rserrors.KindConflict, "bundle %q already exists", b.Name)
	}
	for _, member := range b.References {
		if !r.resolveAnywhere(member) {
			return rserrors.New(rserrors.KindInvalidInput, "bundle %q references unknown reference %q", b.Name, member)
		}
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	r.local.PutBundle(b)
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Add bundle: "+b.Name, false, r.local.IndexPath())
}

// UpdateBundle unions add and differences remove into name's member list,
// validating every added name resolves somewhere, and optionally replaces
// the description.
func (r *Repository) UpdateBundle(name string, add, remove []string, description *string) error {
	b, exists := r.local.GetBundle(name)
	if !exists {
		return rserrors.New(rserrors.KindNotFound, "bundle %q not found", name)
	}
	for _, m := range add {
		if !r.resolveAnywhere(m) {
			return rserrors.New(rserrors.KindInvalidInput, "bundle %q references unknown reference %q", name, m)
		}
	}

	members := map[string]bool{}
	var ordered []string
	for _, m := range b.References {
		if !members[m] {
			members[m] = true
			ordered = append(ordered, m)
		}
	}
	for _, m := range add {
		if !members[m] {
			members[m] = true
			ordered = append(ordered, m)
		}
	}
	removeSet := map[string]bool{}
	for _, m := range remove {
		removeSet[m] = true
	}
	var final []string
	for _, m := range ordered {
		if !removeSet[m] {
			final = append(final, m)
		}
	}
	b.References = final
	if description != nil {
		b.Description = *description
	}

	r.local.PutBundle(b)
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Update bundle: "+name, false, r.local.IndexPath())
}

// RemoveBundle deletes name from the local registry's index.
func (r *Repository) RemoveBundle(name string) error {
	if _, exists := r.local.GetBundle(name); !exists {
		return rserrors.New(rserrors.KindNotFound, "bundle %q not found", name)
	}
	r.local.DeleteBundle(name)
	if err := r.local.SaveIndex(); err != nil {
		return err
	}
	return r.commitLocal("Remove bundle: "+name, false, r.local.IndexPath())
}

// AddRegistry attaches url as a remote registry named name, as a git
// submodule under registries/<name>/.
func (r *Repository) AddRegistry(name, url string) error {
	if name == model.LocalRegistryName {
		return rserrors.New(rserrors.KindConflict, "registry name %q is reserved", name)
	}
	regDir := filepath.Join(r.root, "registries", name)
	if _, err := os.Stat(regDir); err == nil {
		return rserrors.New(rserrors.KindConflict, "registry %q already attached", name)
	}
	if err := os.MkdirAll(filepath.Join(r.root, "registries"), 0o755); err != nil {
		return rserrors.IO(filepath.Join(r.root, "registries"), err, "creating registries directory")
	}
	if err := r.git.SubmoduleAdd(r.root, url, filepath.Join("registries", name)); err != nil {
		return err
	}
	if err := r.commitLocal("Add registry: "+name, false,
		filepath.Join(r.root, ".gitmodules"), regDir); err != nil {
		return err
	}

	reg, err := registry.Open(regDir)
	if err != nil {
		return err
	}
	r.remotes = append(r.remotes, remoteRegistry{name: name, reg: reg})
	sort.Slice(r.remotes, func(i, j int) bool { return r.remotes[i].name < r.remotes[j].name })

	r.config.Registries = append(r.config.Registries, model.RegistryRef{Name: name, URL: url})
	return r.saveConfig()
}

// RemoveRegistry detaches name's submodule and config entry.
func (r *Repository) RemoveRegistry(name string) error {
	idx := -1
	for i, rr := range r.remotes {
		if rr.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rserrors.New(rserrors.KindNotFound, "registry %q not attached", name)
	}
	regPath := filepath.Join("registries", name)
	if err := r.git.SubmoduleRemove(r.root, regPath); err != nil {
		return err
	}
	if err := r.commitLocal("Remove registry: "+name, false, filepath.Join(r.root, ".gitmodules")); err != nil {
		return err
	}

	r.remotes = append(r.remotes[:idx], r.remotes[idx+1:]...)

	var kept []model.RegistryRef
	for _, ref := range r.config.Registries {
		if ref.Name != name {
			kept = append(kept, ref)
		}
	}
	r.config.Registries = kept
	return r.saveConfig()
}

// UpdateRegistry updates the named submodule, or every attached submodule
// when name is empty, then reopens the affected registry/registries.
func (r *Repository) UpdateRegistry(name string) error {
	if name == "" {
		if err := r.git.SubmoduleUpdate(r.root, ""); err != nil {
			return err
		}
		var paths []string
		for i, rr := range r.remotes {
			reg, err := registry.Open(rr.reg.Dir())
			if err != nil {
				return err
			}
			r.remotes[i].reg = reg
			paths = append(paths, rr.reg.Dir())
		}
		return r.commitLocal("Update registries", false, paths...)
	}

	idx := -1
	for i, rr := range r.remotes {
		if rr.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rserrors.New(rserrors.KindNotFound, "registry %q not attached", name)
	}
	regPath := filepath.Join("registries", name)
	if err := r.git.SubmoduleUpdate(r.root, regPath); err != nil {
		return err
	}
	reg, err := registry.Open(r.remotes[idx].reg.Dir())
	if err != nil {
		return err
	}
	r.remotes[idx].reg = reg
	return r.commitLocal("Update registry: "+name, false, r.remotes[idx].reg.Dir())
}

// Versions returns the commit history touching name's content directory,
// after verifying name resolves somewhere.
func (r *Repository) Versions(name string) ([]vcs.LogEntry, error) {
	if !r.resolveAnywhere(name) {
		return nil, rserrors.New(rserrors.KindNotFound, "reference %q not found", name)
	}
	return r.git.LogPath(r.root, filepath.Join("content", name))
}

// ContentAtVersion verifies rev exists in the root's git history and
// extracts content/<name> at rev into <root>/.tmp-version-extract,
// clearing any prior extraction first. The caller owns cleanup of the
// returned path.
func (r *Repository) ContentAtVersion(name, rev string) (string, error) {
	if !r.git.RefExists(r.root, rev) {
		return "", rserrors.New(rserrors.KindNotFound, "revision %q not found", rev)
	}
	dest := filepath.Join(r.root, ".tmp-version-extract")
	if err := os.RemoveAll(dest); err != nil {
		return "", rserrors.IO(dest, err, "clearing previous version extraction")
	}
	if err := r.git.ArchivePathAtRef(r.root, rev, filepath.Join("content", name), dest); err != nil {
		return "", err
	}
	return dest, nil
}

// ListTags returns the repository root's tags, newest first.
func (r *Repository) ListTags() ([]string, error) {
	return r.git.ListTags(r.root)
}

// CreateTag tags the repository root's current HEAD.
func (r *Repository) CreateTag(name, message string) error {
	return r.git.CreateTag(r.root, name, message)
}

// Push copies a local reference's content into an external, already
// initialized registry directory and inserts it into that registry's
// index. It does not commit in the target; the registry's own author
// commits according to their workflow.
func (r *Repository) Push(name, targetDir string) error {
	ref, exists := r.local.Get(name)
	if !exists {
		return rserrors.New(rserrors.KindNotFound, "reference %q not found locally", name)
	}
	if _, err := os.Stat(filepath.Join(targetDir, "index.toml")); err != nil {
		return rserrors.New(rserrors.KindInvalidInput, "target registry %q is not initialized", targetDir)
	}

	target, err := registry.Open(targetDir)
	if err != nil {
		return err
	}
	if _, exists := target.Get(name); exists {
		return rserrors.New(rserrors.KindConflict, "reference %q already exists in target registry", name)
	}

	srcDir := r.local.ContentPath(name)
	dstDir := target.ContentPath(name)
	if err := copyTree(srcDir, dstDir); err != nil {
		return err
	}

	target.Put(ref)
	return target.SaveIndex()
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return rserrors.IO(path, err, "walking reference content")
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return rserrors.IO(path, relErr, "computing relative path")
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return rserrors.IO(path, err, "reading reference content")
		}
		defer in.Close()
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return rserrors.IO(filepath.Dir(target), err, "creating target directory")
		}
		out, err := os.Create(target)
		if err != nil {
			return rserrors.IO(target, err, "creating target file")
		}
		defer out.Close()
		if _, err := io.Copy(out, in); err != nil {
			return rserrors.IO(target, err, "writing target file")
		}
		return nil
	})
}

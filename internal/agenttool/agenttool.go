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

// Package agenttool is the stateful facade the JSON-RPC adapter drives: a
// Repository snapshot, a scope, and an optional mutex-guarded Project.
// Every method renders a ToolResult, the same success-with-text or
// error-with-text envelope used by the pack's standalone MCP git server
// (see other_examples/5248e933_soyeahso-hunter3__cmd-mcp-git-main.go.go).
package agenttool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/rserrors"
)

// Repository is the subset of *repository.Repository the facade reads.
type Repository interface {
	List(tag string, kind model.ReferenceKind) []model.ResolvedReference
	Resolve(name string) (model.ResolvedReference, bool)
	ListBundles(tag string) []model.Bundle
	GetBundle(name string) (model.Bundle, bool)
}

// ToolResult is the JSON-RPC tool-call result envelope: either
// success-with-text, or error-with-text when IsError is set.
type ToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is one piece of a ToolResult's content; refstore only ever
// produces the "text" variant.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string) ToolResult {
	return ToolResult{Content: []ContentItem{{Type: "text", Text: text}}}
}

func errorResult(format string, args ...interface{}) ToolResult {
	return ToolResult{
		Content: []ContentItem{{Type: "text", Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// Facade is bound once per agent session: a Repository snapshot, the
// session's scope, and an optional Project store for add_to_project.
// Its methods are safe to call concurrently; the Project store is guarded
// by projMu, the only suspension point besides the transport itself.
type Facade struct {
	repo  Repository
	scope model.MCPScope
	proj  *project.Store

	projMu sync.Mutex
}

// New binds a Facade. proj may be nil when no project manifest is open in
// the agent's working directory; add_to_project then always fails.
func New(repo Repository, scope model.MCPScope, proj *project.Store) *Facade {
	return &Facade{repo: repo, scope: scope, proj: proj}
}

// ListReferences renders every Reference visible to the Repository
// snapshot, optionally filtered by tag. Entries resolved from a remote
// registry are prefixed "<registry>: " whenever any remote is attached.
func (f *Facade) ListReferences(tag string) ToolResult {
	refs := f.repo.List(tag, "")
	if len(refs) == 0 {
		return textResult("No references found.")
	}

	anyRemote := false
	for _, r := range refs {
		if r.RegistryName != model.LocalRegistryName {
			anyRemote = true
			break
		}
	}

	var b strings.Builder
	for _, r := range refs {
		if anyRemote && r.RegistryName != model.LocalRegistryName {
			fmt.Fprintf(&b, "%s: ", r.RegistryName)
		}
		fmt.Fprintf(&b, "%s [%s]", r.Reference.Name, r.Reference.Kind)
		if r.Reference.Description != "" {
			fmt.Fprintf(&b, " - %s", r.Reference.Description)
		}
		if len(r.Reference.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(r.Reference.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return textResult(strings.TrimRight(b.String(), "\n"))
}

// GetReference renders one Reference's resolved details.
func (f *Facade) GetReference(name string) ToolResult {
	resolved, ok := f.repo.Resolve(name)
	if !ok {
		return errorResult("reference %q not found", name)
	}
	ref := resolved.Reference
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", ref.Name)
	fmt.Fprintf(&b, "kind: %s\n", ref.Kind)
	fmt.Fprintf(&b, "registry: %s\n", resolved.RegistryName)
	fmt.Fprintf(&b, "source: %s\n", ref.Source.String())
	if ref.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", ref.Description)
	}
	if len(ref.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(ref.Tags, ", "))
	}
	if ref.Checksum != "" {
		fmt.Fprintf(&b, "checksum: %s\n", ref.Checksum)
	}
	return textResult(strings.TrimRight(b.String(), "\n"))
}

// ListBundles renders every Bundle visible to the Repository snapshot,
// optionally filtered by tag.
func (f *Facade) ListBundles(tag string) ToolResult {
	bundles := f.repo.ListBundles(tag)
	if len(bundles) == 0 {
		return textResult("No bundles found.")
	}
	var b strings.Builder
	for _, bundle := range bundles {
		fmt.Fprintf(&b, "%s: %s\n", bundle.Name, strings.Join(bundle.References, ", "))
	}
	return textResult(strings.TrimRight(b.String(), "\n"))
}

// GetBundle renders one Bundle's member list.
func (f *Facade) GetBundle(name string) ToolResult {
	bundle, ok := f.repo.GetBundle(name)
	if !ok {
		return errorResult("bundle %q not found", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", bundle.Name)
	if bundle.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", bundle.Description)
	}
	fmt.Fprintf(&b, "references: %s\n", strings.Join(bundle.References, ", "))
	if len(bundle.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(bundle.Tags, ", "))
	}
	return textResult(strings.TrimRight(b.String(), "\n"))
}

// AddToProject adds name as an empty-entry mapping to the open project's
// manifest. Gated by scope = read_write; fails if name resolves nowhere,
// or if no project manifest is open.
func (f *Facade) AddToProject(name string) ToolResult {
	if f.scope != model.ScopeReadWrite {
		return errorResult("add_to_project requires read_write scope, session is %s", f.scope)
	}
	if f.proj == nil {
		return errorResult("no project manifest is open")
	}
	if _, ok := f.repo.Resolve(name); !ok {
		return errorResult("reference %q not found", name)
	}

	f.projMu.Lock()
	defer f.projMu.Unlock()

	if err := f.proj.AddReference(name, model.ManifestEntry{}); err != nil {
		if rserrors.Is(err, rserrors.KindConflict) {
			return errorResult("%q is already in the project manifest", name)
		}
		return errorResult("%v", err)
	}
	return textResult(fmt.Sprintf("added %q to the project manifest", name))
}

// Tutorial is get_tutorial's fixed narrative: a short discovery → add →
// sync walkthrough naming the tool calls it uses in order.
const Tutorial = `refstore keeps a central store of curated reference material and lets a
project pull a subset of it into .references/ for you to read.

1. Discover what is available: call list_references (optionally with a
   tag) to see what's in the store, or list_bundles to see curated
   groups of references. Use get_reference/get_bundle on a name that
   looks relevant to read its description and tags before committing to
   it.
2. Add what you need: call add_to_project with a reference's name to
   record it in the current project's manifest. This only updates the
   manifest; it does not yet touch the filesystem.
3. Materialize it: run "refstore sync" (outside this tool session, from
   a shell) to copy the added reference's content into .references/<name>
   so you can read it directly.

Repeat step 1-2 as your needs change; step 3 is idempotent and only
replaces what is actually out of date.`

// GetTutorial returns the fixed narrative above.
func (f *Facade) GetTutorial() ToolResult {
	return textResult(Tutorial)
}

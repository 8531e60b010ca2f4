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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/repository"
	"github.com/JedimEmO/refstore/internal/syncer"
)

var cmdStatus = &cobra.Command{
	Use:   "status",
	Short: "Report the materialization status of the project manifest's entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		proj, err := project.Open("")
		if err != nil {
			return err
		}
		state, err := proj.LoadSyncState()
		if err != nil {
			return err
		}

		m := proj.Manifest()
		resolved, _ := project.ResolveAllReferences(m, repo)

		out := cmd.OutOrStdout()
		printed := map[string]bool{}

		for _, bundleName := range m.Bundles {
			b, ok := repo.GetBundle(bundleName)
			if !ok {
				fmt.Fprintf(out, "@%s: bundle not found\n", bundleName)
				continue
			}
			fmt.Fprintf(out, "@%s: %d references\n", bundleName, len(b.References))
			for _, refName := range b.References {
				re, ok := resolved[refName]
				if !ok || re.ViaBundle != bundleName || printed[refName] {
					continue
				}
				printed[refName] = true
				fmt.Fprintf(out, "  %s: %s (via bundle: %s)\n",
					refName, statusOf(repo, proj, state, refName, re.Entry), bundleName)
			}
		}

		for name, re := range resolved {
			if printed[name] || re.ViaBundle != "" {
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", name, statusOf(repo, proj, state, name, re.Entry))
		}
		return nil
	},
}

// statusOf reports one entry's materialization status without performing
// any sync work: "not synced" if the target does not exist yet, "not
// found in central repository" if the name no longer resolves, "synced
// (pinned: <version>)" for a version-pinned entry whose target exists,
// "synced" if the sync-state sidecar's recorded marker matches what a
// sync pass would record for the currently resolved Reference (its
// checksum, or syncer.LocalSyncMarker for a checksum-less local source),
// "out of date" otherwise.
func statusOf(repo *repository.Repository, proj *project.Store, state project.SyncState, name string, entry model.ManifestEntry) string {
	target := entry.Path
	if target == "" {
		target = name
	}
	targetDir := filepath.Join(proj.ReferencesDir(), target)
	if _, err := os.Stat(targetDir); err != nil {
		return "not synced"
	}

	resolved, ok := repo.Resolve(name)
	if !ok {
		return "not found in central repository"
	}
	if entry.Version != "" {
		return "synced (pinned: " + entry.Version + ")"
	}

	expected := resolved.Reference.Checksum
	if expected == "" {
		expected = syncer.LocalSyncMarker
	}
	if state.Checksums[name] == expected {
		return "synced"
	}
	return "out of date"
}

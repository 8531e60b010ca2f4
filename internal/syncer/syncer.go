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

// Package syncer drives one materialization pass: resolve the project's
// manifest entries and bundle expansions against the central repository,
// fetch each entry's content (optionally at a pinned revision), apply
// include/exclude glob filters, and replace the corresponding subtree of
// .references/.
package syncer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/rserrors"
)

// Repository is the subset of *repository.Repository the Synchronizer
// needs. Declared here (rather than imported directly) so tests can stub
// it without standing up a full git-backed repository.
type Repository interface {
	Resolve(name string) (model.ResolvedReference, bool)
	ContentAtVersion(name, rev string) (string, error)
	GetBundle(name string) (model.Bundle, bool)
}

// LocalSyncMarker is the sentinel recorded in the sync-state sidecar for
// an entry whose resolved Reference carries no checksum (a local file or
// directory source, per internal/fetch's fetchLocal). It lets both the
// syncer's up-to-date skip and "refstore status" treat "materialized and
// recorded this pass" as synced even without a real checksum to compare.
const LocalSyncMarker = "local"

// EntryResult reports the per-entry outcome of a sync pass.
type EntryResult struct {
	Name    string
	Ok      bool
	Message string
}

// Result summarizes a sync pass.
type Result struct {
	Synced  int
	Failed  int
	Entries []EntryResult
}

// Summary renders the fixed "Sync complete: N synced, N failed" line.
func (r Result) Summary() string {
	return fmt.Sprintf("Sync complete: %d synced, %d failed", r.Synced, r.Failed)
}

// Syncer drives materialization passes for one project against one
// repository.
type Syncer struct {
	log *logrus.Entry
}

// New returns a Syncer. A nil logger defaults to logrus's standard logger.
func New(log *logrus.Entry) *Syncer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Syncer{log: log}
}

// Sync resolves proj's manifest against repo and materializes the result
// into proj's .references/ directory. When name is non-empty, only that
// single resolved entry is processed (an error, not a per-entry failure,
// if it does not resolve in the manifest). force disables the up-to-date
// skip.
func (s *Syncer) Sync(repo Repository, proj *project.Store, name string, force bool) (Result, error) {
	if err := os.MkdirAll(proj.ReferencesDir(), 0o755); err != nil {
		return Result{}, rserrors.IO(proj.ReferencesDir(), err, "creating .references directory")
	}

	resolved, order := project.ResolveAllReferences(proj.Manifest(), repo)
	if name != "" {
		entry, ok := resolved[name]
		if !ok {
			return Result{}, rserrors.New(rserrors.KindNotFound, "reference %q not found in manifest", name)
		}
		resolved = map[string]project.ResolvedEntry{name: entry}
		order = []string{name}
	}

	state, err := proj.LoadSyncState()
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, refName := range order {
		entry := resolved[refName].Entry
		msg, ok := s.syncOne(repo, proj, state, refName, entry, force)
		result.Entries = append(result.Entries, EntryResult{Name: refName, Ok: ok, Message: msg})
		if ok {
			result.Synced++
		} else {
			result.Failed++
		}
		s.log.Info(msg)
	}

	if err := proj.SaveSyncState(state); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Syncer) syncOne(repo Repository, proj *project.Store, state project.SyncState, refName string, entry model.ManifestEntry, force bool) (string, bool) {
	resolvedRef, ok := repo.Resolve(refName)
	if !ok {
		return fmt.Sprintf("%s: not found in central repository, skipping", refName), false
	}

	targetName := entry.Path
	if targetName == "" {
		targetName = refName
	}
	target := filepath.Join(proj.ReferencesDir(), targetName)

	var sourceDir string
	var cleanupTemp string
	if entry.Version != "" {
		tmp, err := repo.ContentAtVersion(refName, entry.Version)
		if err != nil {
			return fmt.Sprintf("%s: %v", refName, err), false
		}
		sourceDir = tmp
		cleanupTemp = tmp
		defer os.RemoveAll(cleanupTemp)
	} else {
		if _, err := os.Stat(resolvedRef.ContentPath); err != nil {
			return fmt.Sprintf("%s: content missing on disk, skipping", refName), false
		}
		sourceDir = resolvedRef.ContentPath
	}

	checksum := resolvedRef.Reference.Checksum
	recordedChecksum := checksum
	if recordedChecksum == "" {
		recordedChecksum = LocalSyncMarker
	}

	if entry.Version == "" && !force {
		if _, targetErr := os.Stat(target); targetErr == nil && state.Checksums[refName] == recordedChecksum {
			if checksum == "" {
				return fmt.Sprintf("%s: up to date", refName), true
			}
			prefix := checksum
			if len(prefix) > 8 {
				prefix = prefix[:8]
			}
			return fmt.Sprintf("%s: up to date (%s)", refName, prefix), true
		}
	}

	if _, err := os.Stat(target); err == nil {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Sprintf("%s: %v", refName, err), false
		}
	}

	copied, err := copyFiltered(sourceDir, target, entry.Include, entry.Exclude)
	if err != nil {
		return fmt.Sprintf("%s: %v", refName, err), false
	}
	s.log.WithField("reference", refName).Debugf("copied %d files", copied)

	if entry.Version == "" {
		state.Checksums[refName] = recordedChecksum
	}

	return fmt.Sprintf("%s: synced", refName), true
}

// copyFiltered copies source into target and returns the count of files
// copied. When source is a regular file, it is copied directly
// (include/exclude only apply to directory sources). When source is a
// directory, every file under it is walked; non-empty include lists
// restrict to matching relative paths, and any exclude match skips a
// file regardless. Empty directories are only materialized when neither
// filter is set.
func copyFiltered(source, target string, include, exclude []string) (int, error) {
	info, err := os.Stat(source)
	if err != nil {
		return 0, rserrors.IO(source, err, "reading sync source")
	}

	if info.Mode().IsRegular() {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return 0, rserrors.IO(filepath.Dir(target), err, "creating sync target directory")
		}
		if err := copyFile(source, target); err != nil {
			return 0, err
		}
		return 1, nil
	}

	hasFilters := len(include) > 0 || len(exclude) > 0
	if !hasFilters {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return 0, rserrors.IO(target, err, "creating sync target directory")
		}
	}

	copied := 0
	walkErr := filepath.Walk(source, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return rserrors.IO(path, err, "walking sync source")
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return rserrors.IO(path, err, "computing relative sync path")
		}
		if fi.IsDir() {
			if !hasFilters {
				dirPath := filepath.Join(target, rel)
				if err := os.MkdirAll(dirPath, 0o755); err != nil {
					return rserrors.IO(dirPath, err, "creating sync target directory")
				}
			}
			return nil
		}

		if len(include) > 0 {
			matched := false
			for _, pattern := range include {
				ok, mErr := doublestar.Match(pattern, rel)
				if mErr != nil {
					return rserrors.New(rserrors.KindInvalidInput, "invalid include glob %q: %v", pattern, mErr)
				}
				if ok {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}
		for _, pattern := range exclude {
			ok, mErr := doublestar.Match(pattern, rel)
			if mErr != nil {
				return rserrors.New(rserrors.KindInvalidInput, "invalid exclude glob %q: %v", pattern, mErr)
			}
			if ok {
				return nil
			}
		}

		destPath := filepath.Join(target, rel)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return rserrors.IO(filepath.Dir(destPath), err, "creating sync target directory")
		}
		if err := copyFile(path, destPath); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, walkErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return rserrors.IO(src, err, "reading sync source file")
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return rserrors.IO(dst, err, "creating sync target file")
	}
	defer out.Close()
	if _, err := copyBuf(out, in); err != nil {
		return rserrors.IO(dst, err, "copying sync target file")
	}
	return nil
}

func copyBuf(dst *os.File, src *os.File) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return total, nil
			}
			return total, rerr
		}
	}
}

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

// Package vcs shells out to the system git and tar binaries. It is the
// only package in refstore that forks subprocesses for version control;
// every other package talks to it through this interface rather than
// calling os/exec directly, the same separation gangplank draws between
// its cmd/ entry points and internal/spec's clone helper.
package vcs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JedimEmO/refstore/internal/rserrors"
)

// Git wraps the system git (and tar) binaries for one process lifetime.
// It carries no repository state of its own; every method takes the
// working directory it should operate in.
type Git struct {
	log *logrus.Entry
}

// New returns a Git adapter. A nil logger defaults to logrus's standard
// logger, mirroring how gangplank treats logrus as ambient but overridable.
func New(log *logrus.Entry) *Git {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Git{log: log}
}

// LogEntry is one line of `git log --format=%H|%aI|%s`.
type LogEntry struct {
	Hash    string
	Date    string // RFC3339 (%aI)
	Subject string
}

func (g *Git) run(dir string, args ...string) (stdout []byte, err error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	g.log.WithField("args", args).Debug("running git")
	runErr := cmd.Run()
	if runErr != nil {
		if _, ok := runErr.(*exec.Error); ok {
			return nil, rserrors.New(rserrors.KindMissingInfra, "git is not installed")
		}
		return nil, rserrors.New(rserrors.KindVCSFailure, "git command failed: %s", strings.TrimSpace(errBuf.String()))
	}
	return outBuf.Bytes(), nil
}

// EnsureGit verifies git is reachable on $PATH.
func (g *Git) EnsureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return rserrors.New(rserrors.KindMissingInfra, "git is not installed")
	}
	return nil
}

// Init idempotently initializes a git repository at root and sets a local
// user.name/user.email so commits succeed in any environment (CI, a fresh
// container, a throwaway test dir).
func (g *Git) Init(root string) error {
	if !g.IsGitRepo(root) {
		if _, err := g.run(root, "init"); err != nil {
			return err
		}
		if _, err := g.run(root, "config", "user.name", "refstore"); err != nil {
			return err
		}
		if _, err := g.run(root, "config", "user.email", "refstore@localhost"); err != nil {
			return err
		}
	}
	return nil
}

// IsGitRepo reports whether path/.git exists.
func (g *Git) IsGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// EnsureGitignore union-appends any pattern in patterns missing from
// root/.gitignore, preserving trailing-newline discipline. Idempotent.
func (g *Git) EnsureGitignore(root string, patterns []string) error {
	path := filepath.Join(root, ".gitignore")
	existing := map[string]bool{}
	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		for _, l := range strings.Split(string(data), "\n") {
			if l == "" {
				continue
			}
			lines = append(lines, l)
			existing[l] = true
		}
	} else if !os.IsNotExist(err) {
		return rserrors.IO(path, err, "reading .gitignore")
	}

	changed := false
	for _, p := range patterns {
		if !existing[p] {
			lines = append(lines, p)
			existing[p] = true
			changed = true
		}
	}
	if !changed && len(lines) > 0 {
		return nil
	}

	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return rserrors.IO(path, err, "writing .gitignore")
	}
	return nil
}

// staged reports whether anything is staged for commit.
func (g *Git) staged(root string) (bool, error) {
	cmd := exec.Command("git", "diff", "--cached", "--quiet")
	cmd.Dir = root
	err := cmd.Run()
	if err == nil {
		return false, nil // quiet exits 0 when there's no diff
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, rserrors.New(rserrors.KindVCSFailure, "git command failed: %v", err)
}

// Commit stages paths (via `add`) and commits message if anything changed.
// A no-op when nothing is staged.
func (g *Git) Commit(root string, paths []string, message string) error {
	return g.commit(root, paths, message, false)
}

// CommitRemovals stages paths via `add -A` (to pick up deletions) and
// commits message if anything changed.
func (g *Git) CommitRemovals(root string, paths []string, message string) error {
	return g.commit(root, paths, message, true)
}

func (g *Git) commit(root string, paths []string, message string, all bool) error {
	if len(paths) == 0 {
		return nil
	}
	args := []string{"add"}
	if all {
		args = append(args, "-A")
	}
	args = append(args, paths...)
	if _, err := g.run(root, args...); err != nil {
		return err
	}
	has, err := g.staged(root)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	if _, err := g.run(root, "commit", "-m", message); err != nil {
		return err
	}
	return nil
}

// SubmoduleAdd attaches url as a submodule at path, allowing file:// URLs
// (required for tests and for locally hosted shared registries).
func (g *Git) SubmoduleAdd(root, url, path string) error {
	_, err := g.run(root, "-c", "protocol.file.allow=always", "submodule", "add", url, path)
	return err
}

// SubmoduleRemove deinitializes and removes the submodule at path.
func (g *Git) SubmoduleRemove(root, path string) error {
	if _, err := g.run(root, "submodule", "deinit", "-f", path); err != nil {
		return err
	}
	if _, err := g.run(root, "rm", "-f", path); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(root, ".git", "modules", path)); err != nil && !os.IsNotExist(err) {
		return rserrors.IO(path, err, "removing submodule git metadata")
	}
	return nil
}

// SubmoduleUpdate updates the submodule at path, or every submodule when
// path is empty.
func (g *Git) SubmoduleUpdate(root, path string) error {
	args := []string{"-c", "protocol.file.allow=always", "submodule", "update", "--init", "--remote"}
	if path != "" {
		args = append(args, path)
	}
	_, err := g.run(root, args...)
	return err
}

// CloneShallow clones url into target. depth 0 omits --depth (full clone);
// gitRef, if non-empty, is passed as --branch.
func (g *Git) CloneShallow(url, target, gitRef string, depth int) error {
	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	args = append(args, "--single-branch")
	if gitRef != "" {
		args = append(args, "--branch", gitRef)
	}
	args = append(args, url, target)
	_, err := g.run("", args...)
	return err
}

// StripGitDir removes path/.git so a cloned reference does not become a
// nested repository inside the registry's own git history.
func (g *Git) StripGitDir(path string) error {
	dotGit := filepath.Join(path, ".git")
	if err := os.RemoveAll(dotGit); err != nil {
		return rserrors.IO(dotGit, err, "stripping nested .git directory")
	}
	return nil
}

// HeadHash returns the current HEAD commit hash at root.
func (g *Git) HeadHash(root string) (string, error) {
	out, err := g.run(root, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RefExists reports whether ref resolves to a commit at root.
func (g *Git) RefExists(root, ref string) bool {
	_, err := g.run(root, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// HasCommits reports whether root's HEAD resolves to a commit, i.e.
// whether the repository has at least one commit.
func (g *Git) HasCommits(root string) bool {
	_, err := g.run(root, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// ListTags returns tags at root, sorted newest first.
func (g *Git) ListTags(root string) ([]string, error) {
	out, err := g.run(root, "tag", "--sort=-creatordate")
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, l := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if l != "" {
			tags = append(tags, l)
		}
	}
	return tags, nil
}

// CreateTag creates a tag at root's HEAD. It is annotated iff message is
// non-empty.
func (g *Git) CreateTag(root, name, message string) error {
	args := []string{"tag"}
	if message != "" {
		args = append(args, "-a", name, "-m", message)
	} else {
		args = append(args, name)
	}
	_, err := g.run(root, args...)
	return err
}

// LogPath returns the commit history touching path under root, newest
// first.
func (g *Git) LogPath(root, path string) ([]LogEntry, error) {
	out, err := g.run(root, "log", "--format=%H|%aI|%s", "--", path)
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	for _, l := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if l == "" {
			continue
		}
		parts := strings.SplitN(l, "|", 3)
		if len(parts) != 3 {
			continue
		}
		entries = append(entries, LogEntry{Hash: parts[0], Date: parts[1], Subject: parts[2]})
	}
	return entries, nil
}

// ArchivePathAtRef extracts contentPath as it existed at ref into dest,
// via `git archive ref -- contentPath | tar x --strip-components=N`. N is
// the path-component count of contentPath (e.g. "content/foo" -> 2).
// Creates dest.
func (g *Git) ArchivePathAtRef(root, ref, contentPath, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return rserrors.IO(dest, err, "creating extraction directory")
	}

	archiveCmd := exec.Command("git", "archive", ref, "--", contentPath)
	archiveCmd.Dir = root
	pipe, err := archiveCmd.StdoutPipe()
	if err != nil {
		return rserrors.New(rserrors.KindVCSFailure, "git command failed: %v", err)
	}
	var archiveErr bytes.Buffer
	archiveCmd.Stderr = &archiveErr

	components := strings.Count(filepath.Clean(contentPath), string(filepath.Separator)) + 1
	tarCmd := exec.Command("tar", "x", fmt.Sprintf("--strip-components=%d", components))
	tarCmd.Dir = dest
	tarCmd.Stdin = pipe
	var tarErr bytes.Buffer
	tarCmd.Stderr = &tarErr

	if err := archiveCmd.Start(); err != nil {
		return rserrors.New(rserrors.KindVCSFailure, "git command failed: %v", err)
	}
	if err := tarCmd.Run(); err != nil {
		_ = archiveCmd.Wait()
		return rserrors.New(rserrors.KindVCSFailure, "tar extraction failed: %s", strings.TrimSpace(tarErr.String()))
	}
	if err := archiveCmd.Wait(); err != nil {
		return rserrors.New(rserrors.KindVCSFailure, "git command failed: %s", strings.TrimSpace(archiveErr.String()))
	}
	return nil
}

// SortTagsNewestFirst orders tags lexicographically descending as a
// fallback when callers already have a tag list in hand (e.g. from a
// cached index). This matches ListTags's creation-date order only when
// tag names sort in the order the tags were created.
func SortTagsNewestFirst(tags []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(tags)))
}

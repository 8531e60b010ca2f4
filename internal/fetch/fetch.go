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

// Package fetch turns an abstract model.Source into a populated content
// directory. It is invoked by the Repository (internal/repository) on
// add/update, the way gangplank's internal/spec.JobSpecFromRepo turns a
// git URL into a checked-out jobspec directory.
package fetch

import (
	"io"
	"os"
	"path/filepath"

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/rserrors"
	"github.com/JedimEmO/refstore/internal/vcs"
)

// Fetcher populates a content directory from a model.Source.
type Fetcher struct {
	git *vcs.Git
}

// New returns a Fetcher that shells out to git through the given adapter.
func New(git *vcs.Git) *Fetcher {
	return &Fetcher{git: git}
}

// Fetch populates dest from src according to src.Type. gitDepth governs
// shallow clones for git sources (0 means full clone). It returns an
// advisory checksum: for git sources, the cloned commit's HEAD hash,
// captured before the .git directory is stripped (see DESIGN.md for why
// this happens before, not instead of, stripping); empty for local and
// (on the error path) remote sources.
func (f *Fetcher) Fetch(src model.Source, dest string, gitDepth int) (string, error) {
	switch src.Type {
	case model.SourceLocal:
		return "", f.fetchLocal(src.Path, dest)
	case model.SourceGit:
		if err := f.git.EnsureGit(); err != nil {
			return "", err
		}
		if err := f.git.CloneShallow(src.URL, dest, src.Ref, gitDepth); err != nil {
			return "", err
		}
		checksum, err := f.git.HeadHash(dest)
		if err != nil {
			return "", err
		}
		if err := f.git.StripGitDir(dest); err != nil {
			return "", err
		}
		return checksum, nil
	case model.SourceRemote:
		return "", rserrors.New(rserrors.KindInvalidInput, "remote sources not yet supported: %s", src.URL)
	default:
		return "", rserrors.New(rserrors.KindInvalidInput, "unknown source type %q", src.Type)
	}
}

func (f *Fetcher) fetchLocal(path, dest string) error {
	info, err := os.Stat(path)
	if err != nil {
		return rserrors.New(rserrors.KindInvalidInput, "source path does not exist: %s", path)
	}

	if info.Mode().IsRegular() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return rserrors.IO(dest, err, "creating content directory")
		}
		target := filepath.Join(dest, filepath.Base(path))
		return copyFile(path, target)
	}

	if info.IsDir() {
		return copyDirRecursive(path, dest)
	}

	return rserrors.New(rserrors.KindInvalidInput, "source path does not exist: %s", path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return rserrors.IO(src, err, "reading source file")
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return rserrors.IO(filepath.Dir(dst), err, "creating destination directory")
	}

	out, err := os.Create(dst)
	if err != nil {
		return rserrors.IO(dst, err, "creating destination file")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return rserrors.IO(dst, err, "copying file")
	}
	return nil
}

func copyDirRecursive(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return rserrors.IO(dst, err, "creating destination directory")
	}
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return rserrors.IO(path, err, "walking source directory")
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return rserrors.IO(path, err, "computing relative path")
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

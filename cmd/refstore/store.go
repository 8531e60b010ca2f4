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
	"strings"

	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/model"
)

var cmdStore = &cobra.Command{
	Use:   "store",
	Short: "Manage the central repository's local registry",
}

var (
	storeAddKind        string
	storeAddDescription string
	storeAddTags        []string
	storeAddGitRef      string
	storeAddSubpath     string
	storeAddAsGit       bool
)

var cmdStoreAdd = &cobra.Command{
	Use:   "add <name> <source>",
	Short: "Fetch source into the local registry under name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		name, source := args[0], args[1]

		src := model.Source{Type: model.SourceLocal, Path: source}
		if storeAddAsGit || looksLikeGitURL(source) {
			src = model.Source{Type: model.SourceGit, URL: source, Ref: storeAddGitRef, Subpath: storeAddSubpath}
		}

		kind := model.ReferenceKind(storeAddKind)
		if kind == "" {
			kind = model.KindDirectory
		}

		ref := model.Reference{
			Name:        name,
			Kind:        kind,
			Source:      src,
			Description: storeAddDescription,
			Tags:        storeAddTags,
		}
		if err := repo.Add(ref); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added reference %q\n", name)
		return nil
	},
}

func looksLikeGitURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "git@") || strings.HasSuffix(s, ".git")
}

var cmdStoreRemove = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a reference from the local registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed reference %q\n", args[0])
		return nil
	},
}

var cmdStoreUpdate = &cobra.Command{
	Use:   "update <name>",
	Short: "Re-fetch a reference's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.Update(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated reference %q\n", args[0])
		return nil
	},
}

var storeTagMessage string

var cmdStoreTag = &cobra.Command{
	Use:   "tag <name>",
	Short: "Tag the repository root's current HEAD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.CreateTag(args[0], storeTagMessage); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created tag %q\n", args[0])
		return nil
	},
}

var cmdStoreTags = &cobra.Command{
	Use:   "tags",
	Short: "List the repository root's tags, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		tags, err := repo.ListTags()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(tags) == 0 {
			fmt.Fprintln(out, "no tags")
			return nil
		}
		for _, t := range tags {
			fmt.Fprintln(out, t)
		}
		return nil
	},
}

var cmdStorePush = &cobra.Command{
	Use:   "push <name> <target-dir>",
	Short: "Copy a local reference's content into an external, already-initialized registry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.Push(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pushed %q into %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	cmdStoreAdd.Flags().StringVar(&storeAddKind, "kind", "", "file|directory|git_repo (default inferred as directory)")
	cmdStoreAdd.Flags().StringVar(&storeAddDescription, "description", "", "human-readable description")
	cmdStoreAdd.Flags().StringArrayVar(&storeAddTags, "tag", nil, "tag (repeatable)")
	cmdStoreAdd.Flags().StringVar(&storeAddGitRef, "ref", "", "git ref to clone (branch/tag)")
	cmdStoreAdd.Flags().StringVar(&storeAddSubpath, "subpath", "", "subpath within the cloned repository")
	cmdStoreAdd.Flags().BoolVar(&storeAddAsGit, "git", false, "treat source as a git URL even if it doesn't look like one")

	cmdStoreTag.Flags().StringVar(&storeTagMessage, "message", "", "annotated tag message (omit for a lightweight tag)")

	cmdStore.AddCommand(cmdStoreAdd)
	cmdStore.AddCommand(cmdStoreRemove)
	cmdStore.AddCommand(cmdStoreUpdate)
	cmdStore.AddCommand(cmdStoreTag)
	cmdStore.AddCommand(cmdStoreTags)
	cmdStore.AddCommand(cmdStorePush)
}

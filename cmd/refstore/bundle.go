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
	"github.com/JedimEmO/refstore/internal/rserrors"
)

var cmdBundle = &cobra.Command{
	Use:   "bundle",
	Short: "Manage named groups of references in the local registry",
}

var (
	bundleCreateRefs        []string
	bundleCreateDescription string
	bundleCreateTags        []string
)

var cmdBundleCreate = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a bundle from one or more --ref members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(bundleCreateRefs) == 0 {
			return rserrors.New(rserrors.KindInvalidInput, "bundle create requires at least one --ref")
		}
		repo, err := openRepository()
		if err != nil {
			return err
		}
		b := model.Bundle{
			Name:        args[0],
			Description: bundleCreateDescription,
			Tags:        bundleCreateTags,
			References:  bundleCreateRefs,
		}
		if err := repo.AddBundle(b); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created bundle %q\n", args[0])
		return nil
	},
}

var bundleListTag string

var cmdBundleList = &cobra.Command{
	Use:   "list",
	Short: "List bundles across the local registry and every attached remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		bundles := repo.ListBundles(bundleListTag)
		out := cmd.OutOrStdout()
		if len(bundles) == 0 {
			fmt.Fprintln(out, "no bundles found")
			return nil
		}
		for _, b := range bundles {
			fmt.Fprintf(out, "%s: %s\n", b.Name, strings.Join(b.References, ", "))
		}
		return nil
	},
}

var cmdBundleInfo = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a bundle's full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		b, ok := repo.GetBundle(args[0])
		if !ok {
			return rserrors.New(rserrors.KindNotFound, "bundle %q not found", args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", b.Name)
		if b.Description != "" {
			fmt.Fprintf(out, "description: %s\n", b.Description)
		}
		fmt.Fprintf(out, "references: %s\n", strings.Join(b.References, ", "))
		if len(b.Tags) > 0 {
			fmt.Fprintf(out, "tags: %s\n", strings.Join(b.Tags, ", "))
		}
		return nil
	},
}

var (
	bundleUpdateAddRefs    []string
	bundleUpdateRemoveRefs []string
	bundleUpdateDesc       string
)

var cmdBundleUpdate = &cobra.Command{
	Use:   "update <name>",
	Short: "Add/remove members or replace the description of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		var desc *string
		if cmd.Flags().Changed("description") {
			desc = &bundleUpdateDesc
		}
		if err := repo.UpdateBundle(args[0], bundleUpdateAddRefs, bundleUpdateRemoveRefs, desc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated bundle %q\n", args[0])
		return nil
	},
}

var cmdBundleRemove = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a bundle from the local registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.RemoveBundle(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed bundle %q\n", args[0])
		return nil
	},
}

func init() {
	cmdBundleCreate.Flags().StringArrayVar(&bundleCreateRefs, "ref", nil, "member reference name (repeatable)")
	cmdBundleCreate.Flags().StringVar(&bundleCreateDescription, "description", "", "human-readable description")
	cmdBundleCreate.Flags().StringArrayVar(&bundleCreateTags, "tag", nil, "tag (repeatable)")

	cmdBundleList.Flags().StringVar(&bundleListTag, "tag", "", "filter by tag")

	cmdBundleUpdate.Flags().StringArrayVar(&bundleUpdateAddRefs, "add-ref", nil, "member to add (repeatable)")
	cmdBundleUpdate.Flags().StringArrayVar(&bundleUpdateRemoveRefs, "remove-ref", nil, "member to remove (repeatable)")
	cmdBundleUpdate.Flags().StringVar(&bundleUpdateDesc, "description", "", "replace the bundle's description")

	cmdBundle.AddCommand(cmdBundleCreate)
	cmdBundle.AddCommand(cmdBundleList)
	cmdBundle.AddCommand(cmdBundleInfo)
	cmdBundle.AddCommand(cmdBundleUpdate)
	cmdBundle.AddCommand(cmdBundleRemove)
}

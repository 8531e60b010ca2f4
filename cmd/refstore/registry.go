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

	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/registry"
	"github.com/JedimEmO/refstore/internal/rserrors"
)

var cmdRegistry = &cobra.Command{
	Use:   "registry",
	Short: "Manage remote registries attached to the central repository",
}

var cmdRegistryList = &cobra.Command{
	Use:   "list",
	Short: "List attached remote registries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		regs := repo.Config().Registries
		out := cmd.OutOrStdout()
		if len(regs) == 0 {
			fmt.Fprintln(out, "no registries attached")
			return nil
		}
		for _, r := range regs {
			fmt.Fprintf(out, "%s: %s\n", r.Name, r.URL)
		}
		return nil
	},
}

var cmdRegistryAdd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Attach a remote registry as a git submodule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.AddRegistry(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "attached registry %q\n", args[0])
		return nil
	},
}

var registryRemoveForce bool

var cmdRegistryRemove = &cobra.Command{
	Use:   "remove <name>",
	Short: "Detach a remote registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !registryRemoveForce {
			return rserrors.New(rserrors.KindInvalidInput, "registry remove requires --force")
		}
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.RemoveRegistry(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "detached registry %q\n", args[0])
		return nil
	},
}

var cmdRegistryUpdate = &cobra.Command{
	Use:   "update [name]",
	Short: "Pull the latest commit for one or every attached registry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := repo.UpdateRegistry(name); err != nil {
			return err
		}
		if name == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "updated all registries")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "updated registry %q\n", name)
		}
		return nil
	},
}

var cmdRegistryInit = &cobra.Command{
	Use:   "init <dir>",
	Short: "Initialize an empty directory as a standalone, shareable registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := registry.InitNew(args[0], git); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized registry at %s\n", args[0])
		return nil
	},
}

func init() {
	cmdRegistryRemove.Flags().BoolVar(&registryRemoveForce, "force", false, "confirm removal")

	cmdRegistry.AddCommand(cmdRegistryList)
	cmdRegistry.AddCommand(cmdRegistryAdd)
	cmdRegistry.AddCommand(cmdRegistryRemove)
	cmdRegistry.AddCommand(cmdRegistryUpdate)
	cmdRegistry.AddCommand(cmdRegistryInit)
}

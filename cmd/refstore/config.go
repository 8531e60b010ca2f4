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

	"github.com/JedimEmO/refstore/internal/rserrors"
)

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the central repository's global configuration",
}

var cmdConfigShow = &cobra.Command{
	Use:   "show",
	Short: "Print every global configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		cfg := repo.Config()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mcp_scope: %s\n", cfg.MCPScope)
		fmt.Fprintf(out, "git_depth: %d\n", cfg.GitDepth)
		fmt.Fprintf(out, "default_branch: %s\n", cfg.DefaultBranch)
		fmt.Fprintf(out, "registries: %d\n", len(cfg.Registries))
		return nil
	},
}

var cmdConfigGet = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a single global configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		cfg := repo.Config()
		out := cmd.OutOrStdout()
		switch args[0] {
		case "mcp_scope":
			fmt.Fprintln(out, cfg.MCPScope)
		case "git_depth":
			fmt.Fprintln(out, cfg.GitDepth)
		case "default_branch":
			fmt.Fprintln(out, cfg.DefaultBranch)
		default:
			return rserrors.New(rserrors.KindInvalidInput, "unknown config key %q", args[0])
		}
		return nil
	},
}

var cmdConfigSet = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single global configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		if err := repo.SetConfigValue(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	cmdConfig.AddCommand(cmdConfigShow)
	cmdConfig.AddCommand(cmdConfigGet)
	cmdConfig.AddCommand(cmdConfigSet)
}

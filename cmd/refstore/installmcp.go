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
	"strings"

	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/mcpconfig"
	"github.com/JedimEmO/refstore/internal/selfref"
)

var cmdInstallMCP = &cobra.Command{
	Use:   "install-mcp",
	Short: "Wire refstore's MCP server into this project's agent configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var targets []string
		for _, name := range []string{"AGENTS.md", "CLAUDE.md"} {
			if _, err := os.Stat(name); err == nil {
				targets = append(targets, name)
			}
		}
		if len(targets) == 0 {
			// Neither file exists yet in this project; AGENTS.md is the
			// more broadly recognized convention of the two, so it is
			// the default single target rather than creating both.
			targets = []string{"AGENTS.md"}
		}

		for _, target := range targets {
			if err := selfref.Install(target); err != nil {
				return err
			}
		}
		if err := mcpconfig.Install(filepath.Join(".", ".mcp.json"), "refstore", []string{"mcp"}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed refstore's MCP server into %s and .mcp.json\n", strings.Join(targets, ", "))
		return nil
	},
}

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

	"github.com/JedimEmO/refstore/internal/project"
)

var initGitignoreReferences bool

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Create a refstore.toml manifest and .references/ in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := project.Init("", initGitignoreReferences, git); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "initialized refstore.toml and .references/")
		return nil
	},
}

func init() {
	cmdInit.Flags().BoolVar(&initGitignoreReferences, "gitignore-references", true,
		"add .references/ to .gitignore")
}

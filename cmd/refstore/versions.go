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
)

var cmdVersions = &cobra.Command{
	Use:   "versions <name>",
	Short: "List the commit history touching a reference's content directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		entries, err := repo.Versions(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "no history")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %s  %s\n", e.Hash[:minInt(8, len(e.Hash))], e.Date, e.Subject)
		}
		return nil
	},
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

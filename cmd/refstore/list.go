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

var listTag string

var cmdList = &cobra.Command{
	Use:   "list",
	Short: "List references across the local registry and every attached remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		refs := repo.List(listTag, "")
		if len(refs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no references found")
			return nil
		}

		anyRemote := false
		for _, r := range refs {
			if r.RegistryName != model.LocalRegistryName {
				anyRemote = true
				break
			}
		}

		out := cmd.OutOrStdout()
		for _, r := range refs {
			prefix := ""
			if anyRemote && r.RegistryName != model.LocalRegistryName {
				prefix = r.RegistryName + ": "
			}
			line := fmt.Sprintf("%s%s [%s]", prefix, r.Reference.Name, r.Reference.Kind)
			if r.Reference.Description != "" {
				line += " - " + r.Reference.Description
			}
			if len(r.Reference.Tags) > 0 {
				line += " (tags: " + strings.Join(r.Reference.Tags, ", ") + ")"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	cmdList.Flags().StringVar(&listTag, "tag", "", "filter by tag")
}

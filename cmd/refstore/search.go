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

var cmdSearch = &cobra.Command{
	Use:   "search <query>",
	Short: "Search reference names, descriptions and tags for a substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		query := strings.ToLower(args[0])

		out := cmd.OutOrStdout()
		found := 0
		for _, r := range repo.List("", "") {
			if !matches(r.Reference, query) {
				continue
			}
			found++
			prefix := ""
			if r.RegistryName != model.LocalRegistryName {
				prefix = r.RegistryName + ": "
			}
			fmt.Fprintf(out, "%s%s [%s] - %s\n", prefix, r.Reference.Name, r.Reference.Kind, r.Reference.Description)
		}
		if found == 0 {
			fmt.Fprintln(out, "no matches")
		}
		return nil
	},
}

func matches(ref model.Reference, query string) bool {
	if strings.Contains(strings.ToLower(ref.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(ref.Description), query) {
		return true
	}
	for _, t := range ref.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

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

	"github.com/JedimEmO/refstore/internal/rserrors"
)

var cmdInfo = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a resolved reference's full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		resolved, ok := repo.Resolve(args[0])
		if !ok {
			return rserrors.New(rserrors.KindNotFound, "reference %q not found", args[0])
		}

		ref := resolved.Reference
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", ref.Name)
		fmt.Fprintf(out, "kind: %s\n", ref.Kind)
		fmt.Fprintf(out, "registry: %s\n", resolved.RegistryName)
		fmt.Fprintf(out, "source: %s\n", ref.Source.String())
		if ref.Description != "" {
			fmt.Fprintf(out, "description: %s\n", ref.Description)
		}
		if len(ref.Tags) > 0 {
			fmt.Fprintf(out, "tags: %s\n", strings.Join(ref.Tags, ", "))
		}
		fmt.Fprintf(out, "added_at: %s\n", ref.AddedAt.Format("2006-01-02T15:04:05Z07:00"))
		if ref.LastSynced != nil {
			fmt.Fprintf(out, "last_synced: %s\n", ref.LastSynced.Format("2006-01-02T15:04:05Z07:00"))
		}
		if ref.Checksum != "" {
			fmt.Fprintf(out, "checksum: %s\n", ref.Checksum)
		}
		fmt.Fprintf(out, "content_path: %s\n", resolved.ContentPath)
		return nil
	},
}

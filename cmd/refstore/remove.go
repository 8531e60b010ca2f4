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
	"github.com/JedimEmO/refstore/internal/rserrors"
)

var removeBundle string

var cmdRemove = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a reference (or, with --bundle, a bundle) from the project manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := project.Open("")
		if err != nil {
			return err
		}

		if removeBundle != "" {
			if err := proj.RemoveBundle(removeBundle); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed bundle %q from the project manifest\n", removeBundle)
			return nil
		}

		if len(args) != 1 {
			return rserrors.New(rserrors.KindInvalidInput, "remove requires a reference name, or --bundle NAME")
		}
		if err := proj.RemoveReference(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %q from the project manifest\n", args[0])
		return nil
	},
}

func init() {
	cmdRemove.Flags().StringVar(&removeBundle, "bundle", "", "remove a bundle by name instead of a single reference")
}

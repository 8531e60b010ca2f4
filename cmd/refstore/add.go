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

	"github.com/JedimEmO/refstore/internal/model"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/rserrors"
)

var (
	addBundle  string
	addPath    string
	addPin     string
	addInclude []string
	addExclude []string
)

var cmdAdd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a reference (or, with --bundle, a bundle) to the project manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj, err := project.Open("")
		if err != nil {
			return err
		}

		if addBundle != "" {
			if err := proj.AddBundle(addBundle); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added bundle %q to the project manifest\n", addBundle)
			return nil
		}

		if len(args) != 1 {
			return rserrors.New(rserrors.KindInvalidInput, "add requires a reference name, or --bundle NAME")
		}
		name := args[0]

		repo, err := openRepository()
		if err != nil {
			return err
		}
		if _, ok := repo.Resolve(name); !ok {
			return rserrors.New(rserrors.KindNotFound, "reference %q not found", name)
		}

		entry := model.ManifestEntry{
			Path:    addPath,
			Version: addPin,
			Include: addInclude,
			Exclude: addExclude,
		}
		if err := proj.AddReference(name, entry); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %q to the project manifest\n", name)
		return nil
	},
}

func init() {
	cmdAdd.Flags().StringVar(&addBundle, "bundle", "", "add a bundle by name instead of a single reference")
	cmdAdd.Flags().StringVar(&addPath, "path", "", "materialize under .references/<path> instead of .references/<name>")
	cmdAdd.Flags().StringVar(&addPin, "pin", "", "pin to a tag or commit in the local registry's history")
	cmdAdd.Flags().StringArrayVar(&addInclude, "include", nil, "include glob (repeatable)")
	cmdAdd.Flags().StringArrayVar(&addExclude, "exclude", nil, "exclude glob (repeatable)")
}

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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/syncer"
)

var syncForce bool

var cmdSync = &cobra.Command{
	Use:   "sync [name]",
	Short: "Materialize the project manifest's references into .references/",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		proj, err := project.Open("")
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		s := syncer.New(log.StandardLogger().WithField("component", "syncer"))
		result, err := s.Sync(repo, proj, name, syncForce)
		if err != nil {
			return err
		}
		for _, e := range result.Entries {
			fmt.Fprintln(cmd.OutOrStdout(), e.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
		if result.Failed > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	cmdSync.Flags().BoolVar(&syncForce, "force", false, "disable the up-to-date skip and re-materialize everything")
}

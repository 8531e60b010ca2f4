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

/*
refstore manages a developer's central store of curated reference
documentation and materializes a project's chosen subset of it into
.references/.
*/
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/repository"
	"github.com/JedimEmO/refstore/internal/vcs"
)

var (
	version = "devel"

	dataDir string
	verbose bool

	git *vcs.Git

	cmdRoot = &cobra.Command{
		Use:   "refstore",
		Short: "Curated reference-documentation manager for coding agents",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			log.SetLevel(level)
			log.SetFormatter(&log.TextFormatter{})
			log.SetOutput(os.Stderr)
			git = vcs.New(log.StandardLogger().WithField("component", "vcs"))
		},
	}

	cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Print the version number and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "refstore version %s\n", version)
		},
	}
)

func init() {
	cmdRoot.PersistentFlags().StringVar(&dataDir, "data-dir", os.Getenv(repository.EnvDataDir),
		"central repository data directory (default: REFSTORE_DATA_DIR or the platform data directory)")
	cmdRoot.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmdRoot.AddCommand(cmdVersion)
	cmdRoot.AddCommand(cmdInit)
	cmdRoot.AddCommand(cmdAdd)
	cmdRoot.AddCommand(cmdRemove)
	cmdRoot.AddCommand(cmdSync)
	cmdRoot.AddCommand(cmdStatus)
	cmdRoot.AddCommand(cmdList)
	cmdRoot.AddCommand(cmdSearch)
	cmdRoot.AddCommand(cmdInfo)
	cmdRoot.AddCommand(cmdVersions)
	cmdRoot.AddCommand(cmdStore)
	cmdRoot.AddCommand(cmdBundle)
	cmdRoot.AddCommand(cmdRegistry)
	cmdRoot.AddCommand(cmdConfig)
	cmdRoot.AddCommand(cmdMCP)
	cmdRoot.AddCommand(cmdInstallMCP)
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openRepository opens (and, on first run, initializes) the central
// repository at the resolved --data-dir.
func openRepository() (*repository.Repository, error) {
	return repository.Open(dataDir, git, log.StandardLogger().WithField("component", "repository"))
}

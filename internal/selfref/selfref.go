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

// Package selfref installs a short marker section into a project's
// AGENTS.md or CLAUDE.md, the way EnsureGitignore (internal/vcs) unions
// missing lines into .gitignore: idempotently, appending at most once.
package selfref

import (
	"os"
	"strings"

	"github.com/JedimEmO/refstore/internal/rserrors"
)

// Marker opens the section this package owns and appears once in it.
// Install never appends a second marker if one is already present,
// matching §8's installation invariant.
const Marker = "<!-- refstore -->"

const section = Marker + `
This project uses refstore to manage curated reference documentation.
Run ` + "`refstore sync`" + ` after adding or updating references, and look under
` + "`.references/`" + ` for material already pulled in. An MCP tool session
(` + "`refstore mcp`" + `) exposes list_references, get_reference, list_bundles,
get_bundle, add_to_project and get_tutorial for discovering and adding
references without leaving the agent session.
`

// Install ensures path (an AGENTS.md or CLAUDE.md) contains the refstore
// marker section, appending it once if absent. The file is created if it
// does not yet exist.
func Install(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return rserrors.IO(path, err, "reading %s", path)
		}
		return writeFile(path, strings.TrimLeft(section, "\n"))
	}

	content := string(data)
	if strings.Contains(content, Marker) {
		return nil
	}

	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	if content != "" {
		content += "\n"
	}
	content += section

	return writeFile(path, content)
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return rserrors.IO(path, err, "writing %s", path)
	}
	return nil
}

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

// Package mcpconfig edits a project's .mcp.json, the file most MCP-aware
// agent clients read to learn which tool servers to launch.
package mcpconfig

import (
	"encoding/json"
	"os"

	"github.com/JedimEmO/refstore/internal/rserrors"
)

// ServerName is the key this package installs itself under in
// .mcp.json's "mcpServers" map.
const ServerName = "refstore"

// Server is one entry of .mcp.json's "mcpServers" map. Install and Remove
// keep every other entry as raw JSON, so touching refstore's entry never
// clobbers a hand-edited neighbor's shape.
type Server struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Install ensures path's "mcpServers" map has a "refstore" entry running
// "refstore mcp" via command, creating the file if absent. Re-running
// Install is idempotent: an existing "refstore" entry is overwritten with
// the same shape rather than duplicated, and every other entry is left
// untouched.
func Install(path, command string, args []string) error {
	raw := map[string]json.RawMessage{}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &raw); err != nil {
			return rserrors.Wrap(rserrors.KindIO, err, "parsing %s", path)
		}
	} else if !os.IsNotExist(err) {
		return rserrors.IO(path, err, "reading %s", path)
	}

	servers := map[string]json.RawMessage{}
	if existing, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(existing, &servers); err != nil {
			return rserrors.Wrap(rserrors.KindIO, err, "parsing %s mcpServers", path)
		}
	}

	entry, err := json.Marshal(Server{Command: command, Args: args})
	if err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding refstore mcp server entry")
	}
	servers[ServerName] = entry

	serversRaw, err := json.Marshal(servers)
	if err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding mcpServers")
	}
	raw["mcpServers"] = serversRaw

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding %s", path)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return rserrors.IO(path, err, "writing %s", path)
	}
	return nil
}

// Remove deletes the "refstore" entry from path's "mcpServers" map, if
// present. A missing file or missing entry is not an error.
func Remove(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return rserrors.IO(path, err, "reading %s", path)
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "parsing %s", path)
	}
	existing, ok := raw["mcpServers"]
	if !ok {
		return nil
	}
	servers := map[string]json.RawMessage{}
	if err := json.Unmarshal(existing, &servers); err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "parsing %s mcpServers", path)
	}
	if _, ok := servers[ServerName]; !ok {
		return nil
	}
	delete(servers, ServerName)

	serversRaw, err := json.Marshal(servers)
	if err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding mcpServers")
	}
	raw["mcpServers"] = serversRaw

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return rserrors.Wrap(rserrors.KindIO, err, "encoding %s", path)
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JedimEmO/refstore/internal/agenttool"
	"github.com/JedimEmO/refstore/internal/project"
	"github.com/JedimEmO/refstore/internal/rserrors"
)

// JSON-RPC envelope, matching the pack's standalone MCP git server wire
// format (other_examples/5248e933_soyeahso-hunter3__cmd-mcp-git-main.go.go).
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type mcpTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema mcpInputSchema `json:"inputSchema"`
}

type mcpInputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]mcpProperty `json:"properties"`
	Required   []string               `json:"required,omitempty"`
}

type mcpProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type initializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
}

type mcpCapabilities struct {
	Tools map[string]interface{} `json:"tools"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listToolsResult struct {
	Tools []mcpTool `json:"tools"`
}

type callToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

var mcpTools = []mcpTool{
	{
		Name:        "list_references",
		Description: "List every reference visible to the central repository, optionally filtered by tag.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{
			"tag": {Type: "string", Description: "optional tag filter"},
		}},
	},
	{
		Name:        "get_reference",
		Description: "Show a single reference's resolved details.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{
			"name": {Type: "string", Description: "reference name"},
		}, Required: []string{"name"}},
	},
	{
		Name:        "list_bundles",
		Description: "List every bundle visible to the central repository, optionally filtered by tag.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{
			"tag": {Type: "string", Description: "optional tag filter"},
		}},
	},
	{
		Name:        "get_bundle",
		Description: "Show a single bundle's member list.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{
			"name": {Type: "string", Description: "bundle name"},
		}, Required: []string{"name"}},
	},
	{
		Name:        "add_to_project",
		Description: "Record a reference in the current project's manifest. Requires read_write scope.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{
			"name": {Type: "string", Description: "reference name"},
		}, Required: []string{"name"}},
	},
	{
		Name:        "get_tutorial",
		Description: "Show a short discovery / add / sync walkthrough for using refstore from an agent session.",
		InputSchema: mcpInputSchema{Type: "object", Properties: map[string]mcpProperty{}},
	},
}

var cmdMCP = &cobra.Command{
	Use:   "mcp",
	Short: "Run the JSON-RPC MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return err
		}
		proj, err := project.Open("")
		if err != nil && !rserrors.Is(err, rserrors.KindNotFound) {
			return err
		}
		facade := agenttool.New(repo, repo.Config().MCPScope, proj)
		runMCPServer(facade, os.Stdin, os.Stdout)
		return nil
	},
}

func runMCPServer(facade *agenttool.Facade, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		handleMCPRequest(facade, out, line)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.WithError(err).Error("reading mcp request stream")
	}
}

func handleMCPRequest(facade *agenttool.Facade, out io.Writer, line []byte) {
	var req jsonRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		writeMCPError(out, nil, -32700, "Parse error", err.Error())
		return
	}

	switch req.Method {
	case "initialize":
		writeMCPResponse(out, req.ID, initializeResult{
			ProtocolVersion: "2024-11-05",
			Capabilities:    mcpCapabilities{Tools: map[string]interface{}{}},
			ServerInfo:      mcpServerInfo{Name: "refstore", Version: version},
		})
	case "tools/list":
		writeMCPResponse(out, req.ID, listToolsResult{Tools: mcpTools})
	case "tools/call":
		handleMCPCallTool(facade, out, req)
	case "notifications/initialized":
		// no response expected
	default:
		writeMCPError(out, req.ID, -32601, "Method not found", req.Method)
	}
}

func handleMCPCallTool(facade *agenttool.Facade, out io.Writer, req jsonRPCRequest) {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		writeMCPError(out, req.ID, -32602, "Invalid params", err.Error())
		return
	}

	arg := func(key string) string {
		if v, ok := params.Arguments[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}

	var result agenttool.ToolResult
	switch params.Name {
	case "list_references":
		result = facade.ListReferences(arg("tag"))
	case "get_reference":
		result = facade.GetReference(arg("name"))
	case "list_bundles":
		result = facade.ListBundles(arg("tag"))
	case "get_bundle":
		result = facade.GetBundle(arg("name"))
	case "add_to_project":
		result = facade.AddToProject(arg("name"))
	case "get_tutorial":
		result = facade.GetTutorial()
	default:
		writeMCPError(out, req.ID, -32601, "Unknown tool", params.Name)
		return
	}
	writeMCPResponse(out, req.ID, result)
}

func writeMCPResponse(out io.Writer, id interface{}, result interface{}) {
	data, err := json.Marshal(jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
	if err != nil {
		log.WithError(err).Error("marshaling mcp response")
		return
	}
	fmt.Fprintln(out, string(data))
}

func writeMCPError(out io.Writer, id interface{}, code int, message string, data interface{}) {
	data2, err := json.Marshal(jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message, Data: data}})
	if err != nil {
		log.WithError(err).Error("marshaling mcp error response")
		return
	}
	fmt.Fprintln(out, string(data2))
}

// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package client implements MCP client tools support.
package client

import (
	"context"
	"fmt"

	"github.com/teradata-labs/mcp-go/protocol"
)

// ListTools fetches one page of the server's tool set. Pass the previous
// result's NextCursor as cursor to continue; an empty cursor starts from
// the beginning.
func (c *Client) ListTools(ctx context.Context, cursor string) (*protocol.ToolListResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Tools != nil, "tools"); err != nil {
		return nil, err
	}

	var result protocol.ToolListResult
	params := protocol.ToolListParams{ListParams: protocol.ListParams{Cursor: cursor}}
	if err := c.session.SendRequest(ctx, protocol.MethodToolsList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool invokes a tool by name with the given arguments. Argument
// validation against the tool's input schema is not performed here — call
// protocol.ValidateArguments explicitly first if that is wanted.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.CallToolResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Tools != nil, "tools"); err != nil {
		return nil, err
	}

	var result protocol.CallToolResult
	params := protocol.CallToolParams{Name: name, Arguments: arguments}
	if err := c.session.SendRequest(ctx, protocol.MethodToolsCall, params, &result); err != nil {
		return nil, err
	}

	if result.IsError {
		if len(result.Content) > 0 && result.Content[0].Type == "text" {
			return &result, fmt.Errorf("tool error: %s", result.Content[0].Text)
		}
		return &result, fmt.Errorf("tool returned error")
	}

	return &result, nil
}

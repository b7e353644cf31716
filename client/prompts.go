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
// Package client implements MCP client prompts support.
package client

import (
	"context"

	"github.com/teradata-labs/mcp-go/protocol"
)

// ListPrompts fetches one page of the server's prompt set.
func (c *Client) ListPrompts(ctx context.Context, cursor string) (*protocol.PromptListResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Prompts != nil, "prompts"); err != nil {
		return nil, err
	}

	var result protocol.PromptListResult
	params := protocol.PromptListParams{ListParams: protocol.ListParams{Cursor: cursor}}
	if err := c.session.SendRequest(ctx, protocol.MethodPromptsList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrompt retrieves a prompt rendered with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.GetPromptResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Prompts != nil, "prompts"); err != nil {
		return nil, err
	}

	var result protocol.GetPromptResult
	params := protocol.GetPromptParams{Name: name, Arguments: arguments}
	if err := c.session.SendRequest(ctx, protocol.MethodPromptsGet, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetLoggingLevel requests the server only emit notifications/message
// records at or above the given severity.
func (c *Client) SetLoggingLevel(ctx context.Context, level protocol.LoggingLevel) error {
	if err := c.requireServerCapability(c.serverCapabilities.Logging != nil, "logging"); err != nil {
		return err
	}
	return c.session.SendRequest(ctx, protocol.MethodLoggingSetLevel, protocol.SetLevelParams{Level: level}, nil)
}

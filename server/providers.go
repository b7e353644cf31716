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

package server

import (
	"context"

	"github.com/teradata-labs/mcp-go/protocol"
)

// ToolProvider lets a host bind a static, read-mostly tool set at
// construction time via WithToolProvider, as an alternative to registering
// tools one at a time through AddTool/RemoveTool.
type ToolProvider interface {
	ListTools(ctx context.Context) ([]protocol.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error)
}

// ResourceProvider is ToolProvider's counterpart for a static resource set,
// bound via WithResourceProvider.
type ResourceProvider interface {
	ListResources(ctx context.Context) ([]protocol.Resource, error)
	ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)
}

// PromptProvider is ToolProvider's counterpart for a static prompt set,
// bound via WithPromptProvider. The teacher has no prompt equivalent of
// ToolProvider/ResourceProvider; this extends the same pattern to prompts
// for symmetry across all three registries.
type PromptProvider interface {
	ListPrompts(ctx context.Context) ([]protocol.Prompt, error)
	GetPrompt(ctx context.Context, name string, args map[string]interface{}) (*protocol.GetPromptResult, error)
}

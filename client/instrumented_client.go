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
package client

import (
	"context"
	"time"

	"github.com/teradata-labs/mcp-go/protocol"
	"go.uber.org/zap"
)

// LoggingClient wraps a Client and emits a structured log record — method,
// duration, and outcome — around each MCP operation it wraps (Initialize
// and the tool, resource and prompt operations below). Ping, Close,
// IsInitialized and SetSamplingHandler delegate without logging. It is
// transparent and can wrap any Client.
type LoggingClient struct {
	client     *Client
	logger     *zap.Logger
	serverName string
}

// NewLoggingClient wraps client, tagging every emitted record with
// serverName so a single process talking to several servers can tell their
// logs apart.
func NewLoggingClient(client *Client, logger *zap.Logger, serverName string) *LoggingClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingClient{client: client, logger: logger, serverName: serverName}
}

func (lc *LoggingClient) finish(op string, start time.Time, err error, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("mcp.server", lc.serverName),
		zap.String("mcp.operation", op),
		zap.Duration("mcp.duration", time.Since(start)),
	}, extra...)

	if err != nil {
		lc.logger.Warn("mcp operation failed", append(fields, zap.Error(err))...)
		return
	}
	lc.logger.Debug("mcp operation completed", fields...)
}

// Initialize performs the MCP handshake, logging its outcome.
func (lc *LoggingClient) Initialize(ctx context.Context, clientInfo protocol.Implementation) error {
	start := time.Now()
	err := lc.client.Initialize(ctx, clientInfo)
	lc.finish("initialize", start, err, zap.String("mcp.client.name", clientInfo.Name))
	return err
}

// ListTools lists tools, logging its outcome.
func (lc *LoggingClient) ListTools(ctx context.Context, cursor string) (*protocol.ToolListResult, error) {
	start := time.Now()
	result, err := lc.client.ListTools(ctx, cursor)
	if err == nil {
		lc.finish("tools.list", start, nil, zap.Int("mcp.tools.count", len(result.Tools)))
	} else {
		lc.finish("tools.list", start, err)
	}
	return result, err
}

// CallTool calls a tool, logging its outcome.
func (lc *LoggingClient) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.CallToolResult, error) {
	start := time.Now()
	result, err := lc.client.CallTool(ctx, name, arguments)
	lc.finish("tools.call", start, err, zap.String("mcp.tool.name", name))
	return result, err
}

// ListResources lists resources, logging its outcome.
func (lc *LoggingClient) ListResources(ctx context.Context, cursor string) (*protocol.ResourceListResult, error) {
	start := time.Now()
	result, err := lc.client.ListResources(ctx, cursor)
	if err == nil {
		lc.finish("resources.list", start, nil, zap.Int("mcp.resources.count", len(result.Resources)))
	} else {
		lc.finish("resources.list", start, err)
	}
	return result, err
}

// ReadResource reads a resource, logging its outcome.
func (lc *LoggingClient) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	start := time.Now()
	result, err := lc.client.ReadResource(ctx, uri)
	lc.finish("resources.read", start, err, zap.String("mcp.resource.uri", uri))
	return result, err
}

// SubscribeResource subscribes to a resource, logging its outcome.
func (lc *LoggingClient) SubscribeResource(ctx context.Context, uri string) error {
	start := time.Now()
	err := lc.client.SubscribeResource(ctx, uri)
	lc.finish("resources.subscribe", start, err, zap.String("mcp.resource.uri", uri))
	return err
}

// UnsubscribeResource unsubscribes from a resource, logging its outcome.
func (lc *LoggingClient) UnsubscribeResource(ctx context.Context, uri string) error {
	start := time.Now()
	err := lc.client.UnsubscribeResource(ctx, uri)
	lc.finish("resources.unsubscribe", start, err, zap.String("mcp.resource.uri", uri))
	return err
}

// ListPrompts lists prompts, logging its outcome.
func (lc *LoggingClient) ListPrompts(ctx context.Context, cursor string) (*protocol.PromptListResult, error) {
	start := time.Now()
	result, err := lc.client.ListPrompts(ctx, cursor)
	if err == nil {
		lc.finish("prompts.list", start, nil, zap.Int("mcp.prompts.count", len(result.Prompts)))
	} else {
		lc.finish("prompts.list", start, err)
	}
	return result, err
}

// GetPrompt gets a prompt, logging its outcome.
func (lc *LoggingClient) GetPrompt(ctx context.Context, name string, arguments map[string]interface{}) (*protocol.GetPromptResult, error) {
	start := time.Now()
	result, err := lc.client.GetPrompt(ctx, name, arguments)
	lc.finish("prompts.get", start, err, zap.String("mcp.prompt.name", name))
	return result, err
}

// IsInitialized delegates to the underlying client.
func (lc *LoggingClient) IsInitialized() bool {
	return lc.client.IsInitialized()
}

// Close delegates to the underlying client.
func (lc *LoggingClient) Close() error {
	return lc.client.Close()
}

// Ping delegates to the underlying client.
func (lc *LoggingClient) Ping(ctx context.Context) error {
	return lc.client.Ping(ctx)
}

// SetSamplingHandler delegates to the underlying client.
func (lc *LoggingClient) SetSamplingHandler(handler SamplingHandler) {
	lc.client.SetSamplingHandler(handler)
}

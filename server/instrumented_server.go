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
	"time"

	"github.com/teradata-labs/mcp-go/protocol"
	"go.uber.org/zap"
)

// LoggingServer wraps a Server and emits a structured log record — method,
// duration, and outcome — around each registry mutation and client-facing
// request it wraps (tools, resources, prompts, resource updates, sampling
// and roots), mirroring client.LoggingClient on the other role. Resource
// templates and LogMessage are not wrapped, and the delegating methods
// below do not log. It is transparent and can wrap any Server.
type LoggingServer struct {
	server     *Server
	logger     *zap.Logger
	serverName string
}

// NewLoggingServer wraps server, tagging every emitted record with
// serverName so a host running several servers can tell their logs apart.
func NewLoggingServer(server *Server, logger *zap.Logger, serverName string) *LoggingServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingServer{server: server, logger: logger, serverName: serverName}
}

func (ls *LoggingServer) finish(op string, start time.Time, err error, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("mcp.server", ls.serverName),
		zap.String("mcp.operation", op),
		zap.Duration("mcp.duration", time.Since(start)),
	}, extra...)

	if err != nil {
		ls.logger.Warn("mcp operation failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Debug("mcp operation completed", fields...)
}

// AddTool registers tool, logging its outcome.
func (ls *LoggingServer) AddTool(ctx context.Context, tool protocol.Tool, handler ToolHandlerFunc) error {
	start := time.Now()
	err := ls.server.AddTool(ctx, tool, handler)
	ls.finish("tools.add", start, err, zap.String("mcp.tool.name", tool.Name))
	return err
}

// RemoveTool removes a tool, logging its outcome.
func (ls *LoggingServer) RemoveTool(ctx context.Context, name string) error {
	start := time.Now()
	err := ls.server.RemoveTool(ctx, name)
	ls.finish("tools.remove", start, err, zap.String("mcp.tool.name", name))
	return err
}

// AddResource registers a resource, logging its outcome.
func (ls *LoggingServer) AddResource(ctx context.Context, resource protocol.Resource, handler ResourceReadFunc) error {
	start := time.Now()
	err := ls.server.AddResource(ctx, resource, handler)
	ls.finish("resources.add", start, err, zap.String("mcp.resource.uri", resource.URI))
	return err
}

// RemoveResource removes a resource, logging its outcome.
func (ls *LoggingServer) RemoveResource(ctx context.Context, uri string) error {
	start := time.Now()
	err := ls.server.RemoveResource(ctx, uri)
	ls.finish("resources.remove", start, err, zap.String("mcp.resource.uri", uri))
	return err
}

// NotifyResourceUpdated announces a resource update, logging its outcome.
func (ls *LoggingServer) NotifyResourceUpdated(ctx context.Context, uri string) error {
	start := time.Now()
	err := ls.server.NotifyResourceUpdated(ctx, uri)
	ls.finish("resources.updated", start, err, zap.String("mcp.resource.uri", uri))
	return err
}

// AddPrompt registers a prompt, logging its outcome.
func (ls *LoggingServer) AddPrompt(ctx context.Context, prompt protocol.Prompt, handler PromptGetFunc) error {
	start := time.Now()
	err := ls.server.AddPrompt(ctx, prompt, handler)
	ls.finish("prompts.add", start, err, zap.String("mcp.prompt.name", prompt.Name))
	return err
}

// RemovePrompt removes a prompt, logging its outcome.
func (ls *LoggingServer) RemovePrompt(ctx context.Context, name string) error {
	start := time.Now()
	err := ls.server.RemovePrompt(ctx, name)
	ls.finish("prompts.remove", start, err, zap.String("mcp.prompt.name", name))
	return err
}

// RequestSampling asks the client to sample a completion, logging its
// outcome.
func (ls *LoggingServer) RequestSampling(ctx context.Context, params protocol.SamplingParams) (*protocol.SamplingResult, error) {
	start := time.Now()
	result, err := ls.server.RequestSampling(ctx, params)
	ls.finish("sampling.request", start, err)
	return result, err
}

// RequestRoots fetches the client's root set, logging its outcome.
func (ls *LoggingServer) RequestRoots(ctx context.Context) ([]protocol.Root, error) {
	start := time.Now()
	roots, err := ls.server.RequestRoots(ctx)
	if err == nil {
		ls.finish("roots.request", start, nil, zap.Int("mcp.roots.count", len(roots)))
	} else {
		ls.finish("roots.request", start, err)
	}
	return roots, err
}

// OnRootsChanged delegates to the underlying server.
func (ls *LoggingServer) OnRootsChanged(consumer RootsChangeConsumer) {
	ls.server.OnRootsChanged(consumer)
}

// ClientInfo delegates to the underlying server.
func (ls *LoggingServer) ClientInfo() protocol.Implementation {
	return ls.server.ClientInfo()
}

// ClientCapabilities delegates to the underlying server.
func (ls *LoggingServer) ClientCapabilities() protocol.ClientCapabilities {
	return ls.server.ClientCapabilities()
}

// Close delegates to the underlying server.
func (ls *LoggingServer) Close() error {
	return ls.server.Close()
}

// CloseGracefully delegates to the underlying server.
func (ls *LoggingServer) CloseGracefully(ctx context.Context) error {
	return ls.server.CloseGracefully(ctx)
}

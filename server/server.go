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

// Package server implements the server side of the Model Context Protocol:
// an initialization handler that validates the client's protocol version
// and rejects a repeated handshake, dynamic tool/resource/resource-template/
// prompt registries that emit list-changed notifications on mutation,
// level-filtered logging emission, client-gated sampling requests, and
// roots consumption.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/teradata-labs/mcp-go/protocol"
	"github.com/teradata-labs/mcp-go/session"
	"github.com/teradata-labs/mcp-go/transport"
	"go.uber.org/zap"
)

// ToolHandlerFunc executes a registered tool.
type ToolHandlerFunc func(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error)

// ResourceReadFunc reads a registered resource's contents.
type ResourceReadFunc func(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)

// PromptGetFunc renders a registered prompt.
type PromptGetFunc func(ctx context.Context, args map[string]interface{}) (*protocol.GetPromptResult, error)

// RootsChangeConsumer is invoked with the client's refreshed root set
// whenever it sends notifications/roots/list_changed.
type RootsChangeConsumer func(roots []protocol.Root)

type toolEntry struct {
	tool    protocol.Tool
	handler ToolHandlerFunc
}

type resourceEntry struct {
	resource protocol.Resource
	handler  ResourceReadFunc
}

type promptEntry struct {
	prompt  protocol.Prompt
	handler PromptGetFunc
}

// Server is an MCP server bound to a single client session.
type Server struct {
	session *session.Session
	logger  *zap.Logger

	info                      protocol.Implementation
	capabilities              protocol.ServerCapabilities
	extensions                map[string]interface{}
	supportedProtocolVersions []string

	mu                 sync.RWMutex
	initialized        bool
	clientInfo         protocol.Implementation
	clientCapabilities protocol.ClientCapabilities

	toolsMu sync.RWMutex
	tools   map[string]*toolEntry

	resourcesMu       sync.RWMutex
	resources         map[string]*resourceEntry
	resourceTemplates map[string]protocol.ResourceTemplate
	subscribedURIs    map[string]bool

	promptsMu sync.RWMutex
	prompts   map[string]*promptEntry

	loggingMu       sync.RWMutex
	minLoggingLevel protocol.LoggingLevel

	rootsMu        sync.Mutex
	roots          []protocol.Root
	rootsConsumers []RootsChangeConsumer
}

// Config configures a Server.
type Config struct {
	Transport transport.Transport
	Logger    *zap.Logger

	Name    string
	Version string

	// ProtocolVersions is the set of protocol versions this server
	// supports, newest first. Default: []string{protocol.ProtocolVersion}.
	ProtocolVersions []string

	Extensions map[string]interface{}

	EnableTools          bool
	ToolsListChanged     bool
	EnableResources      bool
	ResourcesListChanged bool
	ResourcesSubscribe   bool
	EnablePrompts        bool
	PromptsListChanged   bool
	EnableLogging        bool

	// MinLoggingLevel is the initial threshold below which LogMessage is a
	// no-op. Its zero value is protocol.LogDebug, so with EnableLogging set
	// every level is emitted until logging/setLevel raises the threshold.
	MinLoggingLevel protocol.LoggingLevel
}

// Option mutates a freshly constructed Server before its session starts.
type Option func(*Server)

// WithToolProvider registers every tool a static ToolProvider exposes at
// construction time and enables the tools capability.
func WithToolProvider(p ToolProvider) Option {
	return func(s *Server) {
		s.capabilities.Tools = &protocol.ToolsCapability{ListChanged: true}
		tools, err := p.ListTools(context.Background())
		if err != nil {
			s.logger.Error("tool provider failed to list tools at startup", zap.Error(err))
			return
		}
		for _, tool := range tools {
			name := tool.Name
			s.tools[name] = &toolEntry{
				tool: tool,
				handler: func(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
					return p.CallTool(ctx, name, args)
				},
			}
		}
	}
}

// WithResourceProvider registers every resource a static ResourceProvider
// exposes at construction time and enables the resources capability.
func WithResourceProvider(p ResourceProvider) Option {
	return func(s *Server) {
		if s.capabilities.Resources == nil {
			s.capabilities.Resources = &protocol.ResourcesCapability{}
		}
		s.capabilities.Resources.ListChanged = true
		resources, err := p.ListResources(context.Background())
		if err != nil {
			s.logger.Error("resource provider failed to list resources at startup", zap.Error(err))
			return
		}
		for _, resource := range resources {
			s.resources[resource.URI] = &resourceEntry{
				resource: resource,
				handler:  p.ReadResource,
			}
		}
	}
}

// WithPromptProvider registers every prompt a static PromptProvider exposes
// at construction time and enables the prompts capability.
func WithPromptProvider(p PromptProvider) Option {
	return func(s *Server) {
		s.capabilities.Prompts = &protocol.PromptsCapability{ListChanged: true}
		prompts, err := p.ListPrompts(context.Background())
		if err != nil {
			s.logger.Error("prompt provider failed to list prompts at startup", zap.Error(err))
			return
		}
		for _, prompt := range prompts {
			name := prompt.Name
			s.prompts[name] = &promptEntry{
				prompt: prompt,
				handler: func(ctx context.Context, args map[string]interface{}) (*protocol.GetPromptResult, error) {
					return p.GetPrompt(ctx, name, args)
				},
			}
		}
	}
}

// WithExtensions sets the server's initialize-response extensions (e.g. MCP Apps).
func WithExtensions(ext map[string]interface{}) Option {
	return func(s *Server) { s.extensions = ext }
}

// New constructs an MCP server bound to config.Transport and starts its
// session. Options run before the session starts, so they populate
// registries without triggering list-changed notifications for state the
// client has not observed yet.
func New(config Config, opts ...Option) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	versions := config.ProtocolVersions
	if len(versions) == 0 {
		versions = []string{protocol.ProtocolVersion}
	}

	minLevel := config.MinLoggingLevel
	if minLevel == 0 && !config.EnableLogging {
		minLevel = protocol.LogInfo
	}

	s := &Server{
		logger:                    logger,
		info:                      protocol.Implementation{Name: config.Name, Version: config.Version},
		extensions:                config.Extensions,
		supportedProtocolVersions: versions,
		tools:                     make(map[string]*toolEntry),
		resources:                 make(map[string]*resourceEntry),
		resourceTemplates:         make(map[string]protocol.ResourceTemplate),
		subscribedURIs:            make(map[string]bool),
		prompts:                   make(map[string]*promptEntry),
		minLoggingLevel:           minLevel,
	}

	if config.EnableTools {
		s.capabilities.Tools = &protocol.ToolsCapability{ListChanged: config.ToolsListChanged}
	}
	if config.EnableResources {
		s.capabilities.Resources = &protocol.ResourcesCapability{
			ListChanged: config.ResourcesListChanged,
			Subscribe:   config.ResourcesSubscribe,
		}
	}
	if config.EnablePrompts {
		s.capabilities.Prompts = &protocol.PromptsCapability{ListChanged: config.PromptsListChanged}
	}
	if config.EnableLogging {
		s.capabilities.Logging = &protocol.LoggingCapability{}
	}

	for _, opt := range opts {
		opt(s)
	}

	s.session = session.New(session.Config{Transport: config.Transport, Logger: logger})

	s.session.RegisterRequestHandler(protocol.MethodInitialize, s.handleInitialize)
	s.session.RegisterRequestHandler(protocol.MethodPing, s.handlePing)
	s.session.RegisterRequestHandler(protocol.MethodToolsList, s.handleToolsList)
	s.session.RegisterRequestHandler(protocol.MethodToolsCall, s.handleToolsCall)
	s.session.RegisterRequestHandler(protocol.MethodResourcesList, s.handleResourcesList)
	s.session.RegisterRequestHandler(protocol.MethodResourcesRead, s.handleResourcesRead)
	s.session.RegisterRequestHandler(protocol.MethodResourceTemplatesList, s.handleResourceTemplatesList)
	s.session.RegisterRequestHandler(protocol.MethodResourcesSubscribe, s.handleResourcesSubscribe)
	s.session.RegisterRequestHandler(protocol.MethodResourcesUnsubscribe, s.handleResourcesUnsubscribe)
	s.session.RegisterRequestHandler(protocol.MethodPromptsList, s.handlePromptsList)
	s.session.RegisterRequestHandler(protocol.MethodPromptsGet, s.handlePromptsGet)
	s.session.RegisterRequestHandler(protocol.MethodLoggingSetLevel, s.handleLoggingSetLevel)

	s.session.RegisterNotificationHandler(protocol.MethodNotificationInitialized, s.handleNotificationsInitialized)
	s.session.RegisterNotificationHandler(protocol.MethodNotificationRootsListChanged, s.handleRootsListChanged)

	if err := s.session.Start(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Close forces an immediate shutdown of the underlying session.
func (s *Server) Close() error { return s.session.Close() }

// CloseGracefully flushes outbound state and shuts the session down.
func (s *Server) CloseGracefully(ctx context.Context) error { return s.session.CloseGracefully(ctx) }

// ClientInfo returns the connected client's implementation info, valid
// after initialize.
func (s *Server) ClientInfo() protocol.Implementation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientInfo
}

// ClientCapabilities returns the connected client's capabilities, valid
// after initialize.
func (s *Server) ClientCapabilities() protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil, &protocol.StateError{Reason: "initialize called more than once"}
	}
	s.mu.Unlock()

	var initParams protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid initialize params: %v", err), nil)
		}
	}

	chosenVersion := s.supportedProtocolVersions[0]
	for _, v := range s.supportedProtocolVersions {
		if v == initParams.ProtocolVersion {
			chosenVersion = v
			break
		}
	}
	if initParams.ProtocolVersion != "" && chosenVersion != initParams.ProtocolVersion {
		s.logger.Warn("client requested unsupported protocol version, proposing server's own",
			zap.String("requested", initParams.ProtocolVersion),
			zap.String("proposed", chosenVersion))
	}

	s.mu.Lock()
	s.initialized = true
	s.clientCapabilities = initParams.Capabilities
	s.clientInfo = initParams.ClientInfo
	s.mu.Unlock()

	if initParams.ClientInfo.Name != "" {
		s.logger.Info("client connected",
			zap.String("client_name", initParams.ClientInfo.Name),
			zap.String("client_version", initParams.ClientInfo.Version),
			zap.Bool("supports_sampling", initParams.Capabilities.Sampling != nil),
			zap.Bool("supports_roots", initParams.Capabilities.Roots != nil))
	}

	return protocol.InitializeResult{
		ProtocolVersion: chosenVersion,
		Capabilities:    s.capabilities,
		ServerInfo:      s.info,
		Extensions:      s.extensions,
	}, nil
}

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return struct{}{}, nil
}

func (s *Server) handleNotificationsInitialized(_ context.Context, _ json.RawMessage) error {
	s.logger.Debug("client sent initialized notification")
	return nil
}

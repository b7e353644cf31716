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

// Package client implements the client side of the Model Context
// Protocol: initialization and protocol-version negotiation, typed
// capability-gated operations, roots management, and dispatch of
// server-initiated requests (roots/list, sampling/createMessage) and
// change notifications.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/teradata-labs/mcp-go/protocol"
	"github.com/teradata-labs/mcp-go/session"
	"github.com/teradata-labs/mcp-go/transport"
	"go.uber.org/zap"
)

// SamplingHandler answers a server's sampling/createMessage request by
// running an LLM completion and returning its result.
type SamplingHandler func(ctx context.Context, params protocol.SamplingParams) (*protocol.SamplingResult, error)

// ToolsChangeConsumer is invoked with the freshly-listed tool set whenever
// the server sends notifications/tools/list_changed.
type ToolsChangeConsumer func(tools []protocol.Tool)

// ResourcesChangeConsumer is invoked with the freshly-listed resource set
// whenever the server sends notifications/resources/list_changed.
type ResourcesChangeConsumer func(resources []protocol.Resource)

// PromptsChangeConsumer is invoked with the freshly-listed prompt set
// whenever the server sends notifications/prompts/list_changed.
type PromptsChangeConsumer func(prompts []protocol.Prompt)

// ResourceUpdateConsumer is invoked when the subscribed resource URI
// changes server-side.
type ResourceUpdateConsumer func(uri string)

// LoggingConsumer receives every log record the server emits.
type LoggingConsumer func(record protocol.LogNotification)

// Client is an MCP client connection to a server.
type Client struct {
	session *session.Session
	logger  *zap.Logger

	supportedProtocolVersions []string
	clientCapabilities        protocol.ClientCapabilities
	samplingHandler           SamplingHandler

	mu                 sync.RWMutex
	initialized        bool
	serverInfo         protocol.Implementation
	serverCapabilities protocol.ServerCapabilities
	negotiatedVersion  string

	rootsMu sync.Mutex
	roots   []protocol.Root

	consumersMu              sync.Mutex
	toolsChangeConsumers     []ToolsChangeConsumer
	resourcesChangeConsumers []ResourcesChangeConsumer
	promptsChangeConsumers   []PromptsChangeConsumer
	loggingConsumers         []LoggingConsumer
	resourceUpdateConsumers  map[string][]ResourceUpdateConsumer
}

// Config configures the MCP client.
type Config struct {
	Transport transport.Transport
	Logger    *zap.Logger

	// RequestTimeout bounds every outbound request. Default: 10s.
	RequestTimeout time.Duration

	// ProtocolVersions is the list of protocol versions the client is
	// willing to speak, newest first. Default: []string{protocol.ProtocolVersion}.
	ProtocolVersions []string

	// SupportsRoots advertises the roots capability.
	SupportsRoots     bool
	RootsListChanged  bool

	// SupportsSampling advertises the sampling capability. SamplingHandler
	// is required when this is true — its absence is a construction-time
	// error.
	SupportsSampling bool
	SamplingHandler  SamplingHandler
}

// New creates an MCP client bound to the given transport and starts its
// session. Handlers for every inbound method the client's advertised
// capabilities imply are registered before the session begins reading,
// satisfying the "routing tables populated before inbound read" invariant.
func New(config Config) (*Client, error) {
	if config.SupportsSampling && config.SamplingHandler == nil {
		return nil, &protocol.StateError{Reason: "sampling capability advertised without a SamplingHandler"}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	versions := config.ProtocolVersions
	if len(versions) == 0 {
		versions = []string{protocol.ProtocolVersion}
	}

	caps := protocol.ClientCapabilities{}
	if config.SupportsRoots {
		caps.Roots = &protocol.RootsCapability{ListChanged: config.RootsListChanged}
	}
	if config.SupportsSampling {
		caps.Sampling = &protocol.SamplingCapability{}
	}

	c := &Client{
		logger:                    logger,
		supportedProtocolVersions: versions,
		clientCapabilities:        caps,
		samplingHandler:           config.SamplingHandler,
		resourceUpdateConsumers:   make(map[string][]ResourceUpdateConsumer),
	}

	c.session = session.New(session.Config{
		Transport:      config.Transport,
		Logger:         logger,
		RequestTimeout: config.RequestTimeout,
	})

	if config.SupportsRoots {
		c.session.RegisterRequestHandler(protocol.MethodRootsList, c.handleRootsList)
	}
	if config.SupportsSampling {
		c.session.RegisterRequestHandler(protocol.MethodSamplingCreateMessage, c.handleSampling)
	}

	c.session.RegisterNotificationHandler(protocol.MethodNotificationToolsListChanged, c.handleToolsListChanged)
	c.session.RegisterNotificationHandler(protocol.MethodNotificationResourcesListChanged, c.handleResourcesListChanged)
	c.session.RegisterNotificationHandler(protocol.MethodNotificationPromptsListChanged, c.handlePromptsListChanged)
	c.session.RegisterNotificationHandler(protocol.MethodNotificationResourcesUpdated, c.handleResourceUpdated)
	c.session.RegisterNotificationHandler(protocol.MethodNotificationMessage, c.handleLogMessage)

	if err := c.session.Start(context.Background()); err != nil {
		return nil, err
	}

	return c, nil
}

// Initialize performs the MCP handshake: sends initialize with the
// client's newest supported protocol version, verifies the server's
// chosen version is among the client's supported set, records server
// info/capabilities, and sends notifications/initialized.
func (c *Client) Initialize(ctx context.Context, clientInfo protocol.Implementation) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return &protocol.StateError{Reason: "client already initialized"}
	}
	c.mu.Unlock()

	params := protocol.InitializeParams{
		ProtocolVersion: c.supportedProtocolVersions[0],
		Capabilities:    c.clientCapabilities,
		ClientInfo:      clientInfo,
	}

	var result protocol.InitializeResult
	if err := c.session.SendRequest(ctx, protocol.MethodInitialize, params, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if !contains(c.supportedProtocolVersions, result.ProtocolVersion) {
		return &protocol.VersionError{Offered: fmt.Sprint(c.supportedProtocolVersions), Selected: result.ProtocolVersion}
	}

	c.mu.Lock()
	c.initialized = true
	c.negotiatedVersion = result.ProtocolVersion
	c.serverInfo = result.ServerInfo
	c.serverCapabilities = result.Capabilities
	c.mu.Unlock()

	c.logger.Info("mcp client initialized",
		zap.String("server", result.ServerInfo.Name),
		zap.String("version", result.ServerInfo.Version),
		zap.String("protocolVersion", result.ProtocolVersion))

	if err := c.session.SendNotification(ctx, protocol.MethodNotificationInitialized, nil); err != nil {
		return fmt.Errorf("send initialized notification: %w", err)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ping checks connection health.
func (c *Client) Ping(ctx context.Context) error {
	return c.session.SendRequest(ctx, protocol.MethodPing, nil, nil)
}

// ServerInfo returns the server implementation info learned at initialize.
func (c *Client) ServerInfo() protocol.Implementation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// ServerCapabilities returns the server capabilities learned at initialize.
func (c *Client) ServerCapabilities() protocol.ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCapabilities
}

// NegotiatedProtocolVersion returns the protocol version chosen during
// initialize.
func (c *Client) NegotiatedProtocolVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.negotiatedVersion
}

// IsInitialized reports whether initialize has completed successfully.
func (c *Client) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Close forces an immediate shutdown of the underlying session.
func (c *Client) Close() error {
	return c.session.Close()
}

// CloseGracefully flushes outbound state and shuts the session down.
func (c *Client) CloseGracefully(ctx context.Context) error {
	return c.session.CloseGracefully(ctx)
}

// SetSamplingHandler replaces the handler invoked for inbound
// sampling/createMessage requests.
func (c *Client) SetSamplingHandler(handler SamplingHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samplingHandler = handler
}

func (c *Client) requireServerCapability(ok bool, name string) error {
	if !ok {
		return protocol.NewCapabilityError("server", name)
	}
	return nil
}

// --- inbound server-initiated requests ---

func (c *Client) handleRootsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	c.rootsMu.Lock()
	snapshot := append([]protocol.Root(nil), c.roots...)
	c.rootsMu.Unlock()
	return protocol.RootsListResult{Roots: snapshot}, nil
}

func (c *Client) handleSampling(ctx context.Context, params json.RawMessage) (interface{}, error) {
	c.mu.RLock()
	handler := c.samplingHandler
	c.mu.RUnlock()

	if handler == nil {
		return nil, protocol.NewError(protocol.MethodNotFound, "sampling not supported", nil)
	}

	var samplingParams protocol.SamplingParams
	if err := json.Unmarshal(params, &samplingParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid sampling params: %v", err), nil)
	}

	samplingCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	result, err := handler(samplingCtx, samplingParams)
	if err != nil {
		return nil, fmt.Errorf("sampling handler: %w", err)
	}
	return result, nil
}

// --- inbound server notifications ---

func (c *Client) handleToolsListChanged(ctx context.Context, _ json.RawMessage) error {
	var result protocol.ToolListResult
	if err := c.session.SendRequest(ctx, protocol.MethodToolsList, protocol.ToolListParams{}, &result); err != nil {
		return fmt.Errorf("refresh tools after list_changed: %w", err)
	}

	c.consumersMu.Lock()
	consumers := append([]ToolsChangeConsumer(nil), c.toolsChangeConsumers...)
	c.consumersMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer c.recoverConsumer("tools change consumer")
			consumer(result.Tools)
		}()
	}
	return nil
}

func (c *Client) handleResourcesListChanged(ctx context.Context, _ json.RawMessage) error {
	var result protocol.ResourceListResult
	if err := c.session.SendRequest(ctx, protocol.MethodResourcesList, protocol.ResourceListParams{}, &result); err != nil {
		return fmt.Errorf("refresh resources after list_changed: %w", err)
	}

	c.consumersMu.Lock()
	consumers := append([]ResourcesChangeConsumer(nil), c.resourcesChangeConsumers...)
	c.consumersMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer c.recoverConsumer("resources change consumer")
			consumer(result.Resources)
		}()
	}
	return nil
}

func (c *Client) handlePromptsListChanged(ctx context.Context, _ json.RawMessage) error {
	var result protocol.PromptListResult
	if err := c.session.SendRequest(ctx, protocol.MethodPromptsList, protocol.PromptListParams{}, &result); err != nil {
		return fmt.Errorf("refresh prompts after list_changed: %w", err)
	}

	c.consumersMu.Lock()
	consumers := append([]PromptsChangeConsumer(nil), c.promptsChangeConsumers...)
	c.consumersMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer c.recoverConsumer("prompts change consumer")
			consumer(result.Prompts)
		}()
	}
	return nil
}

func (c *Client) handleResourceUpdated(_ context.Context, params json.RawMessage) error {
	var note protocol.ResourceUpdatedNotification
	if err := json.Unmarshal(params, &note); err != nil {
		return fmt.Errorf("invalid resources/updated params: %w", err)
	}

	c.consumersMu.Lock()
	consumers := append([]ResourceUpdateConsumer(nil), c.resourceUpdateConsumers[note.URI]...)
	c.consumersMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer c.recoverConsumer("resource update consumer")
			consumer(note.URI)
		}()
	}
	return nil
}

func (c *Client) handleLogMessage(_ context.Context, params json.RawMessage) error {
	var note protocol.LogNotification
	if err := json.Unmarshal(params, &note); err != nil {
		return fmt.Errorf("invalid notifications/message params: %w", err)
	}

	c.consumersMu.Lock()
	consumers := append([]LoggingConsumer(nil), c.loggingConsumers...)
	c.consumersMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer c.recoverConsumer("logging consumer")
			consumer(note)
		}()
	}
	return nil
}

func (c *Client) recoverConsumer(what string) {
	if r := recover(); r != nil {
		c.logger.Error("change consumer panicked", zap.String("consumer", what), zap.Any("panic", r))
	}
}

// --- change-consumer registration ---

// OnToolsChanged registers a consumer invoked after every
// notifications/tools/list_changed.
func (c *Client) OnToolsChanged(consumer ToolsChangeConsumer) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	c.toolsChangeConsumers = append(c.toolsChangeConsumers, consumer)
}

// OnResourcesChanged registers a consumer invoked after every
// notifications/resources/list_changed.
func (c *Client) OnResourcesChanged(consumer ResourcesChangeConsumer) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	c.resourcesChangeConsumers = append(c.resourcesChangeConsumers, consumer)
}

// OnPromptsChanged registers a consumer invoked after every
// notifications/prompts/list_changed.
func (c *Client) OnPromptsChanged(consumer PromptsChangeConsumer) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	c.promptsChangeConsumers = append(c.promptsChangeConsumers, consumer)
}

// OnResourceUpdated registers a consumer invoked whenever the server
// reports the given URI updated. Used together with SubscribeResource.
func (c *Client) OnResourceUpdated(uri string, consumer ResourceUpdateConsumer) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	c.resourceUpdateConsumers[uri] = append(c.resourceUpdateConsumers[uri], consumer)
}

// OnLogMessage registers a consumer invoked for every log record the
// server emits via notifications/message.
func (c *Client) OnLogMessage(consumer LoggingConsumer) {
	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()
	c.loggingConsumers = append(c.loggingConsumers, consumer)
}

// --- roots management ---

// AddRoot adds a root, enforcing uniqueness by URI. If the client
// advertised roots.listChanged, a notifications/roots/list_changed
// notification is sent on success.
func (c *Client) AddRoot(ctx context.Context, root protocol.Root) error {
	c.rootsMu.Lock()
	for _, r := range c.roots {
		if r.URI == root.URI {
			c.rootsMu.Unlock()
			return &protocol.RegistryError{Kind: "root", Key: root.URI, Dup: true}
		}
	}
	c.roots = append(c.roots, root)
	c.rootsMu.Unlock()

	return c.notifyRootsListChangedIfDeclared(ctx)
}

// RemoveRoot removes a root by URI. If the client advertised
// roots.listChanged, a notifications/roots/list_changed notification is
// sent on success.
func (c *Client) RemoveRoot(ctx context.Context, uri string) error {
	c.rootsMu.Lock()
	idx := -1
	for i, r := range c.roots {
		if r.URI == uri {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.rootsMu.Unlock()
		return &protocol.RegistryError{Kind: "root", Key: uri}
	}
	c.roots = append(c.roots[:idx], c.roots[idx+1:]...)
	c.rootsMu.Unlock()

	return c.notifyRootsListChangedIfDeclared(ctx)
}

// Roots returns a snapshot of the client's current root set.
func (c *Client) Roots() []protocol.Root {
	c.rootsMu.Lock()
	defer c.rootsMu.Unlock()
	return append([]protocol.Root(nil), c.roots...)
}

func (c *Client) notifyRootsListChangedIfDeclared(ctx context.Context) error {
	if c.clientCapabilities.Roots == nil || !c.clientCapabilities.Roots.ListChanged {
		return nil
	}
	return c.NotifyRootsListChanged(ctx)
}

// NotifyRootsListChanged manually sends notifications/roots/list_changed.
func (c *Client) NotifyRootsListChanged(ctx context.Context) error {
	return c.session.SendNotification(ctx, protocol.MethodNotificationRootsListChanged, nil)
}

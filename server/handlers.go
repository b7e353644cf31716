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
	"encoding/json"
	"fmt"

	"github.com/teradata-labs/mcp-go/protocol"
	"go.uber.org/zap"
)

// --- tools/* ---

func (s *Server) handleToolsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()

	tools := make([]protocol.Tool, 0, len(s.tools))
	for _, entry := range s.tools {
		tools = append(tools, entry.tool)
	}
	return protocol.ToolListResult{Tools: tools}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var callParams protocol.CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid tool call params: %v", err), nil)
	}
	if callParams.Name == "" {
		return nil, protocol.NewError(protocol.InvalidParams, "tool name is required", nil)
	}

	s.toolsMu.RLock()
	entry, ok := s.tools[callParams.Name]
	s.toolsMu.RUnlock()
	if !ok {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("unknown tool: %s", callParams.Name), nil)
	}

	result, err := entry.handler(ctx, callParams.Arguments)
	if err != nil {
		return &protocol.CallToolResult{
			Content: []protocol.Content{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	return result, nil
}

// AddTool registers a tool, rejecting a duplicate name. If the tools
// capability advertises listChanged, a notifications/tools/list_changed is
// sent (skipped if the session has not started yet, e.g. during an Option).
func (s *Server) AddTool(ctx context.Context, tool protocol.Tool, handler ToolHandlerFunc) error {
	if s.capabilities.Tools == nil {
		return protocol.NewCapabilityError("server", "tools")
	}

	s.toolsMu.Lock()
	if _, dup := s.tools[tool.Name]; dup {
		s.toolsMu.Unlock()
		return &protocol.RegistryError{Kind: "tool", Key: tool.Name, Dup: true}
	}
	s.tools[tool.Name] = &toolEntry{tool: tool, handler: handler}
	s.toolsMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Tools.ListChanged, protocol.MethodNotificationToolsListChanged)
}

// RemoveTool unregisters a tool by name.
func (s *Server) RemoveTool(ctx context.Context, name string) error {
	s.toolsMu.Lock()
	if _, ok := s.tools[name]; !ok {
		s.toolsMu.Unlock()
		return &protocol.RegistryError{Kind: "tool", Key: name}
	}
	delete(s.tools, name)
	s.toolsMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Tools != nil && s.capabilities.Tools.ListChanged, protocol.MethodNotificationToolsListChanged)
}

// --- resources/* ---

func (s *Server) handleResourcesList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.resourcesMu.RLock()
	defer s.resourcesMu.RUnlock()

	resources := make([]protocol.Resource, 0, len(s.resources))
	for _, entry := range s.resources {
		resources = append(resources, entry.resource)
	}
	return protocol.ResourceListResult{Resources: resources}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var readParams protocol.ReadResourceParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid resource read params: %v", err), nil)
	}
	if readParams.URI == "" {
		return nil, protocol.NewError(protocol.InvalidParams, "resource URI is required", nil)
	}

	s.resourcesMu.RLock()
	entry, ok := s.resources[readParams.URI]
	s.resourcesMu.RUnlock()
	if !ok {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("unknown resource: %s", readParams.URI), nil)
	}

	result, err := entry.handler(ctx, readParams.URI)
	if err != nil {
		return nil, fmt.Errorf("read resource %q: %w", readParams.URI, err)
	}
	return result, nil
}

func (s *Server) handleResourceTemplatesList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.resourcesMu.RLock()
	defer s.resourcesMu.RUnlock()

	templates := make([]protocol.ResourceTemplate, 0, len(s.resourceTemplates))
	for _, tmpl := range s.resourceTemplates {
		templates = append(templates, tmpl)
	}
	return protocol.ResourceTemplateListResult{ResourceTemplates: templates}, nil
}

func (s *Server) handleResourcesSubscribe(_ context.Context, params json.RawMessage) (interface{}, error) {
	if s.capabilities.Resources == nil || !s.capabilities.Resources.Subscribe {
		return nil, protocol.NewError(protocol.MethodNotFound, "resource subscriptions not supported", nil)
	}

	var subParams protocol.SubscribeParams
	if err := json.Unmarshal(params, &subParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid subscribe params: %v", err), nil)
	}

	s.resourcesMu.Lock()
	s.subscribedURIs[subParams.URI] = true
	s.resourcesMu.Unlock()

	return struct{}{}, nil
}

func (s *Server) handleResourcesUnsubscribe(_ context.Context, params json.RawMessage) (interface{}, error) {
	var subParams protocol.SubscribeParams
	if err := json.Unmarshal(params, &subParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid unsubscribe params: %v", err), nil)
	}

	s.resourcesMu.Lock()
	delete(s.subscribedURIs, subParams.URI)
	s.resourcesMu.Unlock()

	return struct{}{}, nil
}

// AddResource registers a resource, rejecting a duplicate URI.
func (s *Server) AddResource(ctx context.Context, resource protocol.Resource, handler ResourceReadFunc) error {
	if s.capabilities.Resources == nil {
		return protocol.NewCapabilityError("server", "resources")
	}

	s.resourcesMu.Lock()
	if _, dup := s.resources[resource.URI]; dup {
		s.resourcesMu.Unlock()
		return &protocol.RegistryError{Kind: "resource", Key: resource.URI, Dup: true}
	}
	s.resources[resource.URI] = &resourceEntry{resource: resource, handler: handler}
	s.resourcesMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Resources.ListChanged, protocol.MethodNotificationResourcesListChanged)
}

// RemoveResource unregisters a resource by URI.
func (s *Server) RemoveResource(ctx context.Context, uri string) error {
	s.resourcesMu.Lock()
	if _, ok := s.resources[uri]; !ok {
		s.resourcesMu.Unlock()
		return &protocol.RegistryError{Kind: "resource", Key: uri}
	}
	delete(s.resources, uri)
	delete(s.subscribedURIs, uri)
	s.resourcesMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Resources != nil && s.capabilities.Resources.ListChanged, protocol.MethodNotificationResourcesListChanged)
}

// AddResourceTemplate registers a resource template, rejecting a duplicate
// URI template.
func (s *Server) AddResourceTemplate(tmpl protocol.ResourceTemplate) error {
	if s.capabilities.Resources == nil {
		return protocol.NewCapabilityError("server", "resources")
	}

	s.resourcesMu.Lock()
	defer s.resourcesMu.Unlock()
	if _, dup := s.resourceTemplates[tmpl.URITemplate]; dup {
		return &protocol.RegistryError{Kind: "resourceTemplate", Key: tmpl.URITemplate, Dup: true}
	}
	s.resourceTemplates[tmpl.URITemplate] = tmpl
	return nil
}

// RemoveResourceTemplate unregisters a resource template by URI template.
func (s *Server) RemoveResourceTemplate(uriTemplate string) error {
	s.resourcesMu.Lock()
	defer s.resourcesMu.Unlock()
	if _, ok := s.resourceTemplates[uriTemplate]; !ok {
		return &protocol.RegistryError{Kind: "resourceTemplate", Key: uriTemplate}
	}
	delete(s.resourceTemplates, uriTemplate)
	return nil
}

// NotifyResourceUpdated sends notifications/resources/updated for uri, but
// only if the client has an active subscription for it.
func (s *Server) NotifyResourceUpdated(ctx context.Context, uri string) error {
	s.resourcesMu.RLock()
	subscribed := s.subscribedURIs[uri]
	s.resourcesMu.RUnlock()

	if !subscribed || !s.session.IsRunning() {
		return nil
	}
	return s.session.SendNotification(ctx, protocol.MethodNotificationResourcesUpdated, protocol.ResourceUpdatedNotification{URI: uri})
}

// --- prompts/* ---

func (s *Server) handlePromptsList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.promptsMu.RLock()
	defer s.promptsMu.RUnlock()

	prompts := make([]protocol.Prompt, 0, len(s.prompts))
	for _, entry := range s.prompts {
		prompts = append(prompts, entry.prompt)
	}
	return protocol.PromptListResult{Prompts: prompts}, nil
}

func (s *Server) handlePromptsGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var getParams protocol.GetPromptParams
	if err := json.Unmarshal(params, &getParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid prompt get params: %v", err), nil)
	}
	if getParams.Name == "" {
		return nil, protocol.NewError(protocol.InvalidParams, "prompt name is required", nil)
	}

	s.promptsMu.RLock()
	entry, ok := s.prompts[getParams.Name]
	s.promptsMu.RUnlock()
	if !ok {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("unknown prompt: %s", getParams.Name), nil)
	}

	result, err := entry.handler(ctx, getParams.Arguments)
	if err != nil {
		return nil, fmt.Errorf("get prompt %q: %w", getParams.Name, err)
	}
	return result, nil
}

// AddPrompt registers a prompt, rejecting a duplicate name.
func (s *Server) AddPrompt(ctx context.Context, prompt protocol.Prompt, handler PromptGetFunc) error {
	if s.capabilities.Prompts == nil {
		return protocol.NewCapabilityError("server", "prompts")
	}

	s.promptsMu.Lock()
	if _, dup := s.prompts[prompt.Name]; dup {
		s.promptsMu.Unlock()
		return &protocol.RegistryError{Kind: "prompt", Key: prompt.Name, Dup: true}
	}
	s.prompts[prompt.Name] = &promptEntry{prompt: prompt, handler: handler}
	s.promptsMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Prompts.ListChanged, protocol.MethodNotificationPromptsListChanged)
}

// RemovePrompt unregisters a prompt by name.
func (s *Server) RemovePrompt(ctx context.Context, name string) error {
	s.promptsMu.Lock()
	if _, ok := s.prompts[name]; !ok {
		s.promptsMu.Unlock()
		return &protocol.RegistryError{Kind: "prompt", Key: name}
	}
	delete(s.prompts, name)
	s.promptsMu.Unlock()

	return s.notifyIfRunning(ctx, s.capabilities.Prompts != nil && s.capabilities.Prompts.ListChanged, protocol.MethodNotificationPromptsListChanged)
}

func (s *Server) notifyIfRunning(ctx context.Context, shouldNotify bool, method string) error {
	if !shouldNotify || s.session == nil || !s.session.IsRunning() {
		return nil
	}
	return s.session.SendNotification(ctx, method, nil)
}

// --- logging ---

func (s *Server) handleLoggingSetLevel(_ context.Context, params json.RawMessage) (interface{}, error) {
	if s.capabilities.Logging == nil {
		return nil, protocol.NewError(protocol.MethodNotFound, "logging not supported", nil)
	}

	var levelParams protocol.SetLevelParams
	if err := json.Unmarshal(params, &levelParams); err != nil {
		return nil, protocol.NewError(protocol.InvalidParams, fmt.Sprintf("invalid setLevel params: %v", err), nil)
	}

	s.loggingMu.Lock()
	s.minLoggingLevel = levelParams.Level
	s.loggingMu.Unlock()

	return struct{}{}, nil
}

// LogMessage emits a notifications/message record if level meets the
// current threshold set by logging/setLevel.
func (s *Server) LogMessage(ctx context.Context, level protocol.LoggingLevel, loggerName string, data interface{}) error {
	if s.capabilities.Logging == nil {
		return protocol.NewCapabilityError("server", "logging")
	}

	s.loggingMu.RLock()
	threshold := s.minLoggingLevel
	s.loggingMu.RUnlock()

	if level < threshold || !s.session.IsRunning() {
		return nil
	}

	return s.session.SendNotification(ctx, protocol.MethodNotificationMessage, protocol.LogNotification{
		Level:  level,
		Logger: loggerName,
		Data:   data,
	})
}

// --- sampling ---

// RequestSampling asks the client to run an LLM completion via
// sampling/createMessage. Requires the client to have advertised the
// sampling capability.
func (s *Server) RequestSampling(ctx context.Context, params protocol.SamplingParams) (*protocol.SamplingResult, error) {
	s.mu.RLock()
	ok := s.clientCapabilities.Sampling != nil
	s.mu.RUnlock()
	if !ok {
		return nil, protocol.NewCapabilityError("client", "sampling")
	}

	var result protocol.SamplingResult
	if err := s.session.SendRequest(ctx, protocol.MethodSamplingCreateMessage, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- roots ---

// OnRootsChanged registers a consumer invoked with the client's refreshed
// root set after every notifications/roots/list_changed.
func (s *Server) OnRootsChanged(consumer RootsChangeConsumer) {
	s.rootsMu.Lock()
	defer s.rootsMu.Unlock()
	s.rootsConsumers = append(s.rootsConsumers, consumer)
}

// RequestRoots fetches the client's current root set via roots/list.
// Requires the client to have advertised the roots capability.
func (s *Server) RequestRoots(ctx context.Context) ([]protocol.Root, error) {
	s.mu.RLock()
	ok := s.clientCapabilities.Roots != nil
	s.mu.RUnlock()
	if !ok {
		return nil, protocol.NewCapabilityError("client", "roots")
	}

	var result protocol.RootsListResult
	if err := s.session.SendRequest(ctx, protocol.MethodRootsList, nil, &result); err != nil {
		return nil, err
	}

	s.rootsMu.Lock()
	s.roots = result.Roots
	s.rootsMu.Unlock()

	return result.Roots, nil
}

func (s *Server) handleRootsListChanged(ctx context.Context, _ json.RawMessage) error {
	roots, err := s.RequestRoots(ctx)
	if err != nil {
		return fmt.Errorf("refresh roots after list_changed: %w", err)
	}

	s.rootsMu.Lock()
	consumers := append([]RootsChangeConsumer(nil), s.rootsConsumers...)
	s.rootsMu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("roots change consumer panicked", zap.Any("panic", r))
				}
			}()
			consumer(roots)
		}()
	}
	return nil
}

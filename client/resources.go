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
// Package client implements MCP client resources support.
package client

import (
	"context"

	"github.com/teradata-labs/mcp-go/protocol"
)

// ListResources fetches one page of the server's resource set.
func (c *Client) ListResources(ctx context.Context, cursor string) (*protocol.ResourceListResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Resources != nil, "resources"); err != nil {
		return nil, err
	}

	var result protocol.ResourceListResult
	params := protocol.ResourceListParams{ListParams: protocol.ListParams{Cursor: cursor}}
	if err := c.session.SendRequest(ctx, protocol.MethodResourcesList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResourceTemplates fetches one page of the server's resource template set.
func (c *Client) ListResourceTemplates(ctx context.Context, cursor string) (*protocol.ResourceTemplateListResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Resources != nil, "resources"); err != nil {
		return nil, err
	}

	var result protocol.ResourceTemplateListResult
	params := protocol.ResourceTemplateListParams{ListParams: protocol.ListParams{Cursor: cursor}}
	if err := c.session.SendRequest(ctx, protocol.MethodResourceTemplatesList, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource reads a resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	if err := c.requireServerCapability(c.serverCapabilities.Resources != nil, "resources"); err != nil {
		return nil, err
	}

	var result protocol.ReadResourceResult
	params := protocol.ReadResourceParams{URI: uri}
	if err := c.session.SendRequest(ctx, protocol.MethodResourcesRead, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) requireResourceSubscribeCapability() error {
	c.mu.RLock()
	ok := c.serverCapabilities.Resources != nil && c.serverCapabilities.Resources.Subscribe
	c.mu.RUnlock()
	if !ok {
		return protocol.NewCapabilityError("server", "resources.subscribe")
	}
	return nil
}

// SubscribeResource subscribes to change notifications for a resource URI.
func (c *Client) SubscribeResource(ctx context.Context, uri string) error {
	if err := c.requireResourceSubscribeCapability(); err != nil {
		return err
	}
	return c.session.SendRequest(ctx, protocol.MethodResourcesSubscribe, protocol.SubscribeParams{URI: uri}, nil)
}

// UnsubscribeResource cancels a prior subscription for a resource URI. Like
// SubscribeResource, this requires the server's resources.subscribe
// capability.
func (c *Client) UnsubscribeResource(ctx context.Context, uri string) error {
	if err := c.requireResourceSubscribeCapability(); err != nil {
		return err
	}
	return c.session.SendRequest(ctx, protocol.MethodResourcesUnsubscribe, protocol.SubscribeParams{URI: uri}, nil)
}

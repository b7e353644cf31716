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
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/mcp-go/protocol"
	"go.uber.org/zap/zaptest"
)

// pipeTransport is an in-memory Transport backed by a pair of buffered
// channels, used to drive a Server without a real process or socket.
type pipeTransport struct {
	out    chan []byte
	in     chan []byte
	closed chan struct{}
}

func newPipePair() (*pipeTransport, *pipeTransport) {
	a := make(chan []byte, 32)
	b := make(chan []byte, 32)
	closed := make(chan struct{})
	return &pipeTransport{out: a, in: b, closed: closed}, &pipeTransport{out: b, in: a, closed: closed}
}

func (p *pipeTransport) Send(ctx context.Context, msg []byte) error {
	select {
	case p.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeTransport) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

// fakeClient drives a Server's session from the other end of a pipeTransport:
// it can send requests/notifications and read back whatever the server sends.
type fakeClient struct {
	t    *testing.T
	conn *pipeTransport
	seq  int
}

func newFakeClient(t *testing.T, conn *pipeTransport) *fakeClient {
	return &fakeClient{t: t, conn: conn}
}

func (fc *fakeClient) request(ctx context.Context, method string, params interface{}) protocol.Response {
	fc.t.Helper()
	fc.seq++
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		require.NoError(fc.t, err)
		raw = b
	}
	req := protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      protocol.NewNumericRequestID(int64(fc.seq)),
		Method:  method,
		Params:  raw,
	}
	reqBytes, err := json.Marshal(req)
	require.NoError(fc.t, err)
	require.NoError(fc.t, fc.conn.Send(ctx, reqBytes))

	respBytes, err := fc.conn.Receive(ctx)
	require.NoError(fc.t, err)
	var resp protocol.Response
	require.NoError(fc.t, json.Unmarshal(respBytes, &resp))
	return resp
}

func (fc *fakeClient) rawRequest(ctx context.Context, method string, rawParams json.RawMessage) protocol.Response {
	fc.t.Helper()
	fc.seq++
	req := protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      protocol.NewNumericRequestID(int64(fc.seq)),
		Method:  method,
		Params:  rawParams,
	}
	reqBytes, err := json.Marshal(req)
	require.NoError(fc.t, err)
	require.NoError(fc.t, fc.conn.Send(ctx, reqBytes))

	respBytes, err := fc.conn.Receive(ctx)
	require.NoError(fc.t, err)
	var resp protocol.Response
	require.NoError(fc.t, json.Unmarshal(respBytes, &resp))
	return resp
}

func (fc *fakeClient) notify(ctx context.Context, method string, params interface{}) {
	fc.t.Helper()
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		require.NoError(fc.t, err)
		raw = b
	}
	note := protocol.Request{JSONRPC: protocol.JSONRPCVersion, Method: method, Params: raw}
	noteBytes, err := json.Marshal(note)
	require.NoError(fc.t, err)
	require.NoError(fc.t, fc.conn.Send(ctx, noteBytes))
}

// recvNotification blocks for the next server-sent envelope with no id and
// returns its raw form (used to observe list_changed/updated pushes).
func (fc *fakeClient) recvNotification(ctx context.Context) rawEnvelope {
	fc.t.Helper()
	raw, err := fc.conn.Receive(ctx)
	require.NoError(fc.t, err)
	var env rawEnvelope
	require.NoError(fc.t, json.Unmarshal(raw, &env))
	return env
}

type rawEnvelope struct {
	ID     *protocol.RequestID `json:"id,omitempty"`
	Method string              `json:"method,omitempty"`
	Params json.RawMessage     `json:"params,omitempty"`
}

func newTestServer(t *testing.T, config Config, opts ...Option) (*Server, *fakeClient) {
	t.Helper()
	serverSide, clientSide := newPipePair()
	config.Transport = serverSide
	if config.Logger == nil {
		config.Logger = zaptest.NewLogger(t)
	}
	s, err := New(config, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, newFakeClient(t, clientSide)
}

// mockToolProvider implements ToolProvider for testing.
type mockToolProvider struct {
	tools    []protocol.Tool
	callFunc func(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error)
}

func (m *mockToolProvider) ListTools(_ context.Context) ([]protocol.Tool, error) {
	return m.tools, nil
}

func (m *mockToolProvider) CallTool(ctx context.Context, name string, args map[string]interface{}) (*protocol.CallToolResult, error) {
	if m.callFunc != nil {
		return m.callFunc(ctx, name, args)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{{Type: "text", Text: "mock result"}},
	}, nil
}

// mockResourceProvider implements ResourceProvider for testing.
type mockResourceProvider struct {
	resources []protocol.Resource
	readFunc  func(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)
}

func (m *mockResourceProvider) ListResources(_ context.Context) ([]protocol.Resource, error) {
	return m.resources, nil
}

func (m *mockResourceProvider) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	if m.readFunc != nil {
		return m.readFunc(ctx, uri)
	}
	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{{URI: uri, Text: "mock content"}},
	}, nil
}

// mockPromptProvider implements PromptProvider for testing.
type mockPromptProvider struct {
	prompts []protocol.Prompt
	getFunc func(ctx context.Context, name string, args map[string]interface{}) (*protocol.GetPromptResult, error)
}

func (m *mockPromptProvider) ListPrompts(_ context.Context) ([]protocol.Prompt, error) {
	return m.prompts, nil
}

func (m *mockPromptProvider) GetPrompt(ctx context.Context, name string, args map[string]interface{}) (*protocol.GetPromptResult, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, name, args)
	}
	return &protocol.GetPromptResult{Messages: []protocol.PromptMessage{}}, nil
}

func TestInitialize_NegotiatesVersionAndCapabilities(t *testing.T) {
	s, fc := newTestServer(t, Config{Name: "test", Version: "1.0.0", EnableTools: true})

	resp := fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ProtocolVersion: protocol.ProtocolVersion,
		ClientInfo:      protocol.Implementation{Name: "fake-client", Version: "1.0.0"},
	})
	require.Nil(t, resp.Error)

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, protocol.ProtocolVersion, result.ProtocolVersion)
	require.NotNil(t, result.Capabilities.Tools)
	require.Equal(t, "test", s.info.Name)
	require.Equal(t, "fake-client", s.ClientInfo().Name)
}

func TestInitialize_FallsBackOnUnsupportedVersion(t *testing.T) {
	_, fc := newTestServer(t, Config{Name: "test"})

	resp := fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ProtocolVersion: "1999-01-01",
		ClientInfo:      protocol.Implementation{Name: "fake-client"},
	})
	require.Nil(t, resp.Error)

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, protocol.ProtocolVersion, result.ProtocolVersion)
}

func TestInitialize_TwiceIsRejected(t *testing.T) {
	_, fc := newTestServer(t, Config{Name: "test"})

	resp := fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ClientInfo: protocol.Implementation{Name: "fake-client"},
	})
	require.Nil(t, resp.Error)

	resp = fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ClientInfo: protocol.Implementation{Name: "fake-client"},
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, protocol.InternalError, resp.Error.Code)
}

func TestPing(t *testing.T) {
	_, fc := newTestServer(t, Config{Name: "test"})

	resp := fc.request(context.Background(), protocol.MethodPing, nil)
	require.Nil(t, resp.Error)
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	_, fc := newTestServer(t, Config{Name: "test"})

	resp := fc.request(context.Background(), "nope/nope", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, protocol.MethodNotFound, resp.Error.Code)
}

func TestWithToolProvider_RegistersToolsAndEnablesCapability(t *testing.T) {
	provider := &mockToolProvider{tools: []protocol.Tool{{Name: "test_tool", Description: "a test tool"}}}
	s, fc := newTestServer(t, Config{Name: "test"}, WithToolProvider(provider))

	require.NotNil(t, s.capabilities.Tools)

	resp := fc.request(context.Background(), protocol.MethodToolsList, nil)
	require.Nil(t, resp.Error)
	var result protocol.ToolListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	require.Equal(t, "test_tool", result.Tools[0].Name)
}

func TestWithResourceProvider_RegistersResourcesAndEnablesCapability(t *testing.T) {
	provider := &mockResourceProvider{resources: []protocol.Resource{{URI: "ui://test/resource", Name: "test"}}}
	s, fc := newTestServer(t, Config{Name: "test"}, WithResourceProvider(provider))

	require.NotNil(t, s.capabilities.Resources)

	resp := fc.request(context.Background(), protocol.MethodResourcesList, nil)
	require.Nil(t, resp.Error)
	var result protocol.ResourceListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Resources, 1)
	require.Equal(t, "ui://test/resource", result.Resources[0].URI)
}

func TestWithPromptProvider_RegistersPromptsAndEnablesCapability(t *testing.T) {
	provider := &mockPromptProvider{prompts: []protocol.Prompt{{Name: "greeting"}}}
	s, fc := newTestServer(t, Config{Name: "test"}, WithPromptProvider(provider))

	require.NotNil(t, s.capabilities.Prompts)

	resp := fc.request(context.Background(), protocol.MethodPromptsList, nil)
	require.Nil(t, resp.Error)
	var result protocol.PromptListResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Prompts, 1)
	require.Equal(t, "greeting", result.Prompts[0].Name)
}

func TestAddTool_RejectsDuplicateAndNotifiesListChanged(t *testing.T) {
	s, fc := newTestServer(t, Config{Name: "test", EnableTools: true, ToolsListChanged: true})

	handler := func(_ context.Context, _ map[string]interface{}) (*protocol.CallToolResult, error) {
		return &protocol.CallToolResult{Content: []protocol.Content{{Type: "text", Text: "ok"}}}, nil
	}
	require.NoError(t, s.AddTool(context.Background(), protocol.Tool{Name: "echo"}, handler))

	env := fc.recvNotification(context.Background())
	require.Equal(t, protocol.MethodNotificationToolsListChanged, env.Method)

	err := s.AddTool(context.Background(), protocol.Tool{Name: "echo"}, handler)
	require.Error(t, err)
	var regErr *protocol.RegistryError
	require.ErrorAs(t, err, &regErr)
	require.True(t, regErr.Dup)
}

func TestRemoveTool_UnknownNameErrors(t *testing.T) {
	s, _ := newTestServer(t, Config{Name: "test", EnableTools: true})

	err := s.RemoveTool(context.Background(), "nonexistent")
	require.Error(t, err)
	var regErr *protocol.RegistryError
	require.ErrorAs(t, err, &regErr)
	require.False(t, regErr.Dup)
}

func TestAddTool_WithoutCapabilityIsRejected(t *testing.T) {
	s, _ := newTestServer(t, Config{Name: "test"})

	err := s.AddTool(context.Background(), protocol.Tool{Name: "echo"}, nil)
	require.Error(t, err)
}

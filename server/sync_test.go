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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/mcp-go/protocol"
)

// respondToRootsList reads the server's outstanding roots/list request off
// fc's connection and answers it with roots.
func respondToRootsList(t *testing.T, fc *fakeClient, roots []protocol.Root) {
	t.Helper()
	raw, err := fc.conn.Receive(context.Background())
	require.NoError(t, err)

	var env rawEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, protocol.MethodRootsList, env.Method)

	resultJSON, err := json.Marshal(protocol.RootsListResult{Roots: roots})
	require.NoError(t, err)
	resp := protocol.Response{JSONRPC: protocol.JSONRPCVersion, ID: env.ID, Result: resultJSON}
	respBytes, err := json.Marshal(resp)
	require.NoError(t, err)
	require.NoError(t, fc.conn.Send(context.Background(), respBytes))
}

func TestSync_OnRootsChangedDeliversOffDispatchGoroutine(t *testing.T) {
	s, fc := newTestServer(t, Config{Name: "test"})

	resp := fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ClientInfo:   protocol.Implementation{Name: "fake-client"},
		Capabilities: protocol.ClientCapabilities{Roots: &protocol.RootsCapability{ListChanged: true}},
	})
	require.Nil(t, resp.Error)

	sync := NewSync(s, 0)
	t.Cleanup(func() { _ = sync.Close() })

	received := make(chan []protocol.Root, 1)
	sync.OnRootsChanged(func(roots []protocol.Root) {
		received <- roots
	})

	fc.notify(context.Background(), protocol.MethodNotificationRootsListChanged, nil)
	respondToRootsList(t, fc, []protocol.Root{{URI: "file:///tmp", Name: "tmp"}})

	select {
	case roots := <-received:
		require.Len(t, roots, 1)
		require.Equal(t, "file:///tmp", roots[0].URI)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync roots consumer delivery")
	}
}

func TestSync_CloseStopsDeliveryWithoutPanicking(t *testing.T) {
	s, _ := newTestServer(t, Config{Name: "test"})
	sync := NewSync(s, 0)

	require.NoError(t, sync.Close())
	require.NoError(t, sync.Close()) // idempotent
}

func TestSync_EmbedsServerOperations(t *testing.T) {
	s, fc := newTestServer(t, Config{Name: "test"})
	sync := NewSync(s, 0)
	t.Cleanup(func() { _ = sync.Close() })

	resp := fc.request(context.Background(), protocol.MethodInitialize, protocol.InitializeParams{
		ClientInfo: protocol.Implementation{Name: "fake-client"},
	})
	require.Nil(t, resp.Error)

	require.Equal(t, "fake-client", sync.ClientInfo().Name)
}

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

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolUIMeta(t *testing.T) {
	t.Run("nil meta map", func(t *testing.T) {
		assert.Nil(t, ToolUIMeta(Tool{Name: "t"}))
	})

	t.Run("meta map without ui key", func(t *testing.T) {
		tool := Tool{Name: "t", Meta: map[string]interface{}{"other": "data"}}
		assert.Nil(t, ToolUIMeta(tool))
	})

	t.Run("populated ui entry", func(t *testing.T) {
		tool := Tool{Meta: map[string]interface{}{
			"ui": map[string]interface{}{
				"resourceUri": "ui://demo/conversation-viewer",
				"visibility":  []interface{}{"model", "app"},
			},
		}}
		meta := ToolUIMeta(tool)
		require.NotNil(t, meta)
		assert.Equal(t, "ui://demo/conversation-viewer", meta.ResourceURI)
		assert.Equal(t, []string{"model", "app"}, meta.Visibility)
	})

	t.Run("empty ui entry still decodes", func(t *testing.T) {
		tool := Tool{Meta: map[string]interface{}{"ui": map[string]interface{}{}}}
		meta := ToolUIMeta(tool)
		require.NotNil(t, meta)
		assert.Empty(t, meta.ResourceURI)
	})
}

func TestSetToolUIMeta(t *testing.T) {
	t.Run("creates meta map when absent", func(t *testing.T) {
		tool := Tool{Name: "t"}
		SetToolUIMeta(&tool, &UIToolMeta{ResourceURI: "ui://demo/viewer", Visibility: []string{"model"}})

		require.NotNil(t, tool.Meta)
		stored, ok := tool.Meta["ui"].(*UIToolMeta)
		require.True(t, ok)
		assert.Equal(t, "ui://demo/viewer", stored.ResourceURI)
	})

	t.Run("preserves unrelated meta keys", func(t *testing.T) {
		tool := Tool{Meta: map[string]interface{}{"other": "preserved"}}
		SetToolUIMeta(&tool, &UIToolMeta{ResourceURI: "ui://demo/viewer"})

		assert.Equal(t, "preserved", tool.Meta["other"])
		assert.NotNil(t, tool.Meta["ui"])
	})
}

func TestResourceUIMeta(t *testing.T) {
	t.Run("nil map", func(t *testing.T) {
		assert.Nil(t, ResourceUIMeta(nil))
	})

	t.Run("decodes csp and permissions", func(t *testing.T) {
		meta := ResourceUIMeta(map[string]interface{}{
			"ui": map[string]interface{}{
				"domain": "example.com",
				"csp":    map[string]interface{}{"connectDomains": []interface{}{"https://api.example.com"}},
			},
		})
		require.NotNil(t, meta)
		assert.Equal(t, "example.com", meta.Domain)
		require.NotNil(t, meta.CSP)
		assert.Equal(t, []string{"https://api.example.com"}, meta.CSP.ConnectDomains)
	})
}

func TestPeerSupportsApps(t *testing.T) {
	cases := []struct {
		name string
		ext  map[string]interface{}
		want bool
	}{
		{"nil extensions", nil, false},
		{"empty extensions", map[string]interface{}{}, false},
		{"unrelated extension", map[string]interface{}{"other": true}, false},
		{"apps extension present", map[string]interface{}{AppsExtensionID: map[string]interface{}{}}, true},
		{"apps extension with data", map[string]interface{}{AppsExtensionID: map[string]interface{}{"version": "1"}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PeerSupportsApps(tc.ext))
		})
	}
}

func TestAppsExtensionAdvertisement(t *testing.T) {
	ext := AppsExtensionAdvertisement()
	_, ok := ext[AppsExtensionID]
	assert.True(t, ok)
	assert.True(t, PeerSupportsApps(ext))
}

func TestUIToolMeta_JSONRoundTrip(t *testing.T) {
	meta := UIToolMeta{ResourceURI: "ui://demo/conversation-viewer", Visibility: []string{"model", "app"}}

	encoded, err := json.Marshal(meta)
	require.NoError(t, err)

	var decoded UIToolMeta
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, meta, decoded)
}

func TestUIResourceMeta_JSONRoundTrip(t *testing.T) {
	prefersBorder := true
	meta := UIResourceMeta{
		CSP: &UIResourceCSP{
			ConnectDomains:  []string{"https://api.example.com"},
			ResourceDomains: []string{"https://cdn.example.com"},
		},
		Permissions:   &UIResourcePermissions{ClipboardWrite: &struct{}{}},
		Domain:        "example.com",
		PrefersBorder: &prefersBorder,
	}

	encoded, err := json.Marshal(meta)
	require.NoError(t, err)

	var decoded UIResourceMeta
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	require.NotNil(t, decoded.CSP)
	assert.Equal(t, meta.CSP.ConnectDomains, decoded.CSP.ConnectDomains)
	require.NotNil(t, decoded.Permissions)
	assert.NotNil(t, decoded.Permissions.ClipboardWrite)
	assert.Nil(t, decoded.Permissions.Camera)
	assert.Equal(t, "example.com", decoded.Domain)
	require.NotNil(t, decoded.PrefersBorder)
	assert.True(t, *decoded.PrefersBorder)
}

func TestUIResourceCSP_OmitsEmptyFields(t *testing.T) {
	encoded, err := json.Marshal(UIResourceCSP{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(encoded))
}

func TestUIResourcePermissions_OmitsEmptyFields(t *testing.T) {
	encoded, err := json.Marshal(UIResourcePermissions{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(encoded))
}

func TestToolAnnotations_JSONRoundTrip(t *testing.T) {
	readOnly, destructive := true, false
	annotations := ToolAnnotations{Title: "My Tool", ReadOnlyHint: &readOnly, DestructiveHint: &destructive}

	encoded, err := json.Marshal(annotations)
	require.NoError(t, err)

	var decoded ToolAnnotations
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "My Tool", decoded.Title)
	require.NotNil(t, decoded.ReadOnlyHint)
	assert.True(t, *decoded.ReadOnlyHint)
	require.NotNil(t, decoded.DestructiveHint)
	assert.False(t, *decoded.DestructiveHint)
	assert.Nil(t, decoded.IdempotentHint)
}

func TestTool_AnnotationsAndUIMeta_JSONRoundTrip(t *testing.T) {
	readOnly := true
	tool := Tool{
		Name:        "demo_weave",
		Description: "Execute a weave request",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"prompt": map[string]interface{}{"type": "string"}},
		},
		Annotations: &ToolAnnotations{ReadOnlyHint: &readOnly},
		Meta: map[string]interface{}{
			"ui": map[string]interface{}{
				"resourceUri": "ui://demo/conversation-viewer",
				"visibility":  []interface{}{"model", "app"},
			},
		},
	}

	encoded, err := json.Marshal(tool)
	require.NoError(t, err)

	var decoded Tool
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, tool.Name, decoded.Name)
	assert.Equal(t, tool.Description, decoded.Description)
	require.NotNil(t, decoded.Annotations)
	require.NotNil(t, decoded.Annotations.ReadOnlyHint)
	assert.True(t, *decoded.Annotations.ReadOnlyHint)
	require.NotNil(t, ToolUIMeta(decoded))
}

func TestInitializeParams_ExtensionsRoundTrip(t *testing.T) {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ClientCapabilities{},
		ClientInfo:      Implementation{Name: "demo-client", Version: "1.0.0"},
		Extensions:      map[string]interface{}{AppsExtensionID: map[string]interface{}{}},
	}

	encoded, err := json.Marshal(params)
	require.NoError(t, err)

	var decoded InitializeParams
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, PeerSupportsApps(decoded.Extensions))
}

func TestInitializeResult_ExtensionsRoundTrip(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}, Resources: &ResourcesCapability{}},
		ServerInfo:      Implementation{Name: "demo-host", Version: "1.0.0"},
		Extensions:      AppsExtensionAdvertisement(),
	}

	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded InitializeResult
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, PeerSupportsApps(decoded.Extensions))
}

func TestCallToolResult_StructuredContentRoundTrip(t *testing.T) {
	result := CallToolResult{
		Content: []Content{{Type: "text", Text: "result data"}},
		StructuredContent: map[string]interface{}{
			"type":    "table",
			"headers": []interface{}{"col1", "col2"},
			"rows":    []interface{}{[]interface{}{"a", "b"}},
		},
	}

	encoded, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded CallToolResult
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.NotNil(t, decoded.StructuredContent)
	assert.Equal(t, "table", decoded.StructuredContent["type"])
}

func TestResourceContents_UIMetaRoundTrip(t *testing.T) {
	contents := ResourceContents{
		URI:      "ui://demo/conversation-viewer",
		MimeType: AppsResourceMIME,
		Text:     "<html>...</html>",
		Meta: map[string]interface{}{
			"ui": map[string]interface{}{
				"csp": map[string]interface{}{"connectDomains": []interface{}{"https://api.example.com"}},
			},
		},
	}

	encoded, err := json.Marshal(contents)
	require.NoError(t, err)

	var decoded ResourceContents
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, contents.URI, decoded.URI)
	assert.Equal(t, AppsResourceMIME, decoded.MimeType)
	uiMeta := ResourceUIMeta(decoded.Meta)
	require.NotNil(t, uiMeta)
	assert.Equal(t, []string{"https://api.example.com"}, uiMeta.CSP.ConnectDomains)
}

func TestAppsExtensionConstants(t *testing.T) {
	assert.Equal(t, "io.modelcontextprotocol/ui", AppsExtensionID)
	assert.Equal(t, "text/html;profile=mcp-app", AppsResourceMIME)
	assert.Equal(t, "ui://", AppsURIScheme)
}

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

import "encoding/json"

// MCP Apps (interactive UI) extension identifiers.
const (
	AppsExtensionID  = "io.modelcontextprotocol/ui"
	AppsResourceMIME = "text/html;profile=mcp-app"
	AppsURIScheme    = "ui://"
)

// UIToolMeta is a tool's "_meta.ui" entry: it marks the tool as having an
// associated interactive UI resource, and who is allowed to see it.
type UIToolMeta struct {
	ResourceURI string   `json:"resourceUri,omitempty"`
	Visibility  []string `json:"visibility,omitempty"` // e.g. "model", "app"
}

// UIResourceMeta is a resource's "_meta.ui" entry: the security and
// display policy the host should apply when it renders the resource.
type UIResourceMeta struct {
	CSP           *UIResourceCSP         `json:"csp,omitempty"`
	Permissions   *UIResourcePermissions `json:"permissions,omitempty"`
	Domain        string                 `json:"domain,omitempty"`
	PrefersBorder *bool                  `json:"prefersBorder,omitempty"`
}

// UIResourceCSP lists the domains a rendered UI resource is allowed to
// reach for each Content-Security-Policy directive the host enforces.
type UIResourceCSP struct {
	ConnectDomains  []string `json:"connectDomains,omitempty"`
	ResourceDomains []string `json:"resourceDomains,omitempty"`
	FrameDomains    []string `json:"frameDomains,omitempty"`
	BaseURIDomains  []string `json:"baseUriDomains,omitempty"`
}

// UIResourcePermissions are opt-in browser capabilities a UI resource may
// request; a non-nil field means the capability is requested.
type UIResourcePermissions struct {
	Camera         *struct{} `json:"camera,omitempty"`
	Microphone     *struct{} `json:"microphone,omitempty"`
	Geolocation    *struct{} `json:"geolocation,omitempty"`
	ClipboardWrite *struct{} `json:"clipboardWrite,omitempty"`
}

// metaRoundTrip decodes meta[key] into dst via a JSON round trip, since
// _meta fields arrive as map[string]interface{} rather than a concrete
// Go type. Returns false if the key is absent or doesn't decode into dst.
func metaRoundTrip(meta map[string]interface{}, key string, dst interface{}) bool {
	if meta == nil {
		return false
	}
	raw, ok := meta[key]
	if !ok {
		return false
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(encoded, dst) == nil
}

// ToolUIMeta extracts the UI metadata attached to a tool, or nil if the
// tool carries none.
func ToolUIMeta(tool Tool) *UIToolMeta {
	var meta UIToolMeta
	if !metaRoundTrip(tool.Meta, "ui", &meta) {
		return nil
	}
	return &meta
}

// SetToolUIMeta attaches UI metadata to a tool, creating its Meta map if
// necessary.
func SetToolUIMeta(tool *Tool, meta *UIToolMeta) {
	if tool.Meta == nil {
		tool.Meta = make(map[string]interface{})
	}
	tool.Meta["ui"] = meta
}

// ResourceUIMeta extracts the UI metadata attached to a resource's _meta
// map, or nil if none is present.
func ResourceUIMeta(meta map[string]interface{}) *UIResourceMeta {
	var out UIResourceMeta
	if !metaRoundTrip(meta, "ui", &out) {
		return nil
	}
	return &out
}

// PeerSupportsApps reports whether a negotiated extensions map advertises
// MCP Apps support.
func PeerSupportsApps(extensions map[string]interface{}) bool {
	if extensions == nil {
		return false
	}
	_, ok := extensions[AppsExtensionID]
	return ok
}

// AppsExtensionAdvertisement builds the extensions map a server includes
// in its initialize reply to advertise MCP Apps support.
func AppsExtensionAdvertisement() map[string]interface{} {
	return map[string]interface{}{
		AppsExtensionID: map[string]interface{}{},
	}
}

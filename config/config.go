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

// Package config loads a YAML roster of MCP server connections a host
// application should establish, plus the tool-visibility filter applied to
// each one once connected.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster is the top-level configuration for a host that connects to a set
// of MCP servers.
type Roster struct {
	Servers    map[string]ServerConfig `yaml:"servers" json:"servers"`
	ClientInfo ClientInfo              `yaml:"client_info" json:"client_info"`
}

// ServerConfig describes how to reach and filter a single MCP server.
type ServerConfig struct {
	// Enabled controls whether the host connects to this server at all.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Transport selects the wire transport: "stdio", "sse", or "http".
	Transport string `yaml:"transport" json:"transport"`

	// Command and Args launch a stdio child process.
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args" json:"args"`
	Env     map[string]string `yaml:"env" json:"env"`

	// URL addresses an sse/http server.
	URL string `yaml:"url" json:"url"`

	// TimeoutSeconds bounds request round trips to this server. 0 means
	// the client's own default applies.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	Tools ToolFilter `yaml:"tools" json:"tools"`
}

// ToolFilter controls which of a server's tools the host actually exposes.
type ToolFilter struct {
	All     bool     `yaml:"all" json:"all"`
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// ClientInfo is sent to every server this roster connects to during
// initialize.
type ClientInfo struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Load reads and validates a roster from a YAML file, expanding
// ${VAR}/$VAR references against the process environment first so secrets
// need not be committed to the file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	var roster Roster
	if err := yaml.Unmarshal([]byte(expanded), &roster); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := roster.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &roster, nil
}

// Validate checks the roster and every enabled server's configuration.
func (r *Roster) Validate() error {
	for name, server := range r.Servers {
		if err := server.Validate(); err != nil {
			return fmt.Errorf("server %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks a single server's configuration. Disabled servers are
// never validated, so a roster can carry entries for servers that are
// temporarily turned off without breaking Load.
func (s *ServerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}

	if s.Transport == "" {
		s.Transport = "stdio"
	}

	switch s.Transport {
	case "stdio":
		if s.Command == "" {
			return fmt.Errorf("command required for stdio transport")
		}
	case "sse", "http":
		if s.URL == "" {
			return fmt.Errorf("url required for %s transport", s.Transport)
		}
	default:
		return fmt.Errorf("invalid transport: %s (must be stdio, sse, or http)", s.Transport)
	}

	return nil
}

// Allows reports whether toolName should be exposed to the host given this
// filter. With no Include list, All must be set for anything to pass;
// Exclude always wins over Include.
func (f *ToolFilter) Allows(toolName string) bool {
	if contains(f.Exclude, toolName) {
		return false
	}
	if len(f.Include) > 0 {
		return contains(f.Include, toolName)
	}
	return f.All
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Default returns an empty roster with sane client-info defaults.
func Default() Roster {
	return Roster{
		Servers:    make(map[string]ServerConfig),
		ClientInfo: ClientInfo{Name: "mcp-go-client", Version: "0.1.0"},
	}
}

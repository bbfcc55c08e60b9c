package mcp

import (
	"encoding/json"
	"maps"
	"slices"
)

// Server transport types.
const (
	// TypeStdio indicates local process communication via stdin/stdout.
	TypeStdio = "stdio"

	// TypeSSE indicates remote communication via Server-Sent Events.
	// Deprecated in the MCP spec in favor of streamable HTTP but still
	// accepted and preserved.
	TypeSSE = "sse"

	// TypeHTTP indicates remote communication via streamable HTTP.
	TypeHTTP = "http"
)

// Types lists all recognized transport types.
var Types = []string{TypeStdio, TypeSSE, TypeHTTP}

// ValidType reports whether t is a recognized transport type.
func ValidType(t string) bool {
	return slices.Contains(Types, t)
}

// Server is one named MCP server descriptor. The name itself is the
// map key in Config, not a field of the descriptor.
type Server struct {
	// Type is the transport type: "stdio", "sse", or "http".
	Type string `json:"type"`

	// Command is the executable for stdio servers.
	// Required for stdio, empty otherwise.
	Command string `json:"command,omitempty"`

	// Args are command-line arguments passed to Command, in order.
	Args []string `json:"args,omitempty"`

	// Env contains environment variables passed to the server process.
	Env map[string]string `json:"env,omitempty"`

	// URL is the endpoint for http/sse servers.
	// Required for http and sse, empty otherwise.
	URL string `json:"url,omitempty"`

	// Headers contains HTTP headers for http/sse connections.
	Headers map[string]string `json:"headers,omitempty"`

	// Disabled marks the server as temporarily disabled.
	Disabled bool `json:"disabled,omitempty"`

	// unknownFields stores JSON fields not defined in this struct so
	// that fields owned by other tools survive a round trip.
	unknownFields map[string]json.RawMessage
}

// IsLocal returns true if this server uses stdio transport.
func (s *Server) IsLocal() bool {
	return s.Type == TypeStdio
}

// IsRemote returns true if this server uses http or sse transport.
func (s *Server) IsRemote() bool {
	return s.Type == TypeHTTP || s.Type == TypeSSE
}

// Clone returns a deep copy of the server.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	out := &Server{
		Type:     s.Type,
		Command:  s.Command,
		URL:      s.URL,
		Disabled: s.Disabled,
	}
	out.Args = slices.Clone(s.Args)
	if s.Env != nil {
		out.Env = maps.Clone(s.Env)
	}
	if s.Headers != nil {
		out.Headers = maps.Clone(s.Headers)
	}
	if s.unknownFields != nil {
		out.unknownFields = make(map[string]json.RawMessage, len(s.unknownFields))
		for k, v := range s.unknownFields {
			out.unknownFields[k] = slices.Clone(v)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler to include unknown fields.
func (s *Server) MarshalJSON() ([]byte, error) {
	// Unknown fields first so known fields take precedence.
	result := make(map[string]any)
	for k, v := range s.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}

	result["type"] = s.Type
	if s.Command != "" {
		result["command"] = s.Command
	}
	if len(s.Args) > 0 {
		result["args"] = s.Args
	}
	if len(s.Env) > 0 {
		result["env"] = s.Env
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if len(s.Headers) > 0 {
		result["headers"] = s.Headers
	}
	if s.Disabled {
		result["disabled"] = s.Disabled
	}

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	known := map[string]any{
		"type":     &s.Type,
		"command":  &s.Command,
		"args":     &s.Args,
		"env":      &s.Env,
		"url":      &s.URL,
		"headers":  &s.Headers,
		"disabled": &s.Disabled,
	}
	for field, dst := range known {
		v, ok := raw[field]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, field)
	}

	if len(raw) > 0 {
		s.unknownFields = raw
	}

	return nil
}

// Config is the full managed content of one scope's configuration
// file: the server registry plus any top-level fields owned by other
// tools, which are preserved verbatim across load/save.
type Config struct {
	// Servers maps server names to their descriptors.
	Servers map[string]*Server `json:"mcpServers"`

	// unknownFields stores top-level JSON fields not defined in this
	// struct.
	unknownFields map[string]json.RawMessage
}

// serversField is the recognized top-level registry key.
const serversField = "mcpServers"

// NewConfig creates an empty Config with an initialized server map.
func NewConfig() *Config {
	return &Config{
		Servers: make(map[string]*Server),
	}
}

// Clone returns a deep copy of the config, suitable for snapshotting.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := NewConfig()
	for name, srv := range c.Servers {
		out.Servers[name] = srv.Clone()
	}
	if c.unknownFields != nil {
		out.unknownFields = make(map[string]json.RawMessage, len(c.unknownFields))
		for k, v := range c.unknownFields {
			out.unknownFields[k] = slices.Clone(v)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler to include unknown fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)
	for k, v := range c.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}

	servers := c.Servers
	if servers == nil {
		servers = map[string]*Server{}
	}
	result[serversField] = servers

	return json.Marshal(result)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if serversData, ok := raw[serversField]; ok {
		if err := json.Unmarshal(serversData, &c.Servers); err != nil {
			return err
		}
		delete(raw, serversField)
	}
	if c.Servers == nil {
		c.Servers = make(map[string]*Server)
	}

	if len(raw) > 0 {
		c.unknownFields = raw
	}

	return nil
}

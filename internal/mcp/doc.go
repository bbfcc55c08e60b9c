// Package mcp defines the data model for MCP server configuration:
// the [Server] descriptor and the [Config] document.
//
// Both types round-trip unknown JSON fields. Configuration files such
// as ~/.claude.json carry many top-level keys owned by other tools;
// Config parses only the mcpServers registry and stores every other
// key as raw JSON, merging it back on serialization so a save never
// drops another tool's data. Server does the same at descriptor level
// for forward compatibility with new MCP fields.
//
// Unknown-field capture follows the custom Marshal/Unmarshal pattern
// over map[string]json.RawMessage; known fields always take precedence
// over a stale unknown entry of the same name.
package mcp

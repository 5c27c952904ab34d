package types

// Version is the canonical project version, shared by the CLI, the
// MCP server, and anything that reports build identity.
const Version = "0.1.0"

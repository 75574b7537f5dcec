package mcp

// Version is the server version reported during MCP initialization.
const Version = "1.0.2"

// probeWaitMs bounds the empty-command exchange used right after connect to
// surface the device's current prompt.
const probeWaitMs = 1000

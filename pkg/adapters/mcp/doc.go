// Package mcp exposes the booking assistant as a Model Context Protocol
// server with send_message and get_session tools.
package mcp

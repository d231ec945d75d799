// Package mcp implements the Model Context Protocol (MCP) server for
// kitref using the mcp-go library.
//
// The server exposes the read-only starter-kit catalog to AI coding
// assistants over stdio (JSON-RPC 2.0): component sources, pattern
// write-ups, library integration docs, the full reference document with
// excerpt search, and template recommendations.
//
// # Security
//
// Every caller-supplied identifier passes through pkg/pathsafe before a
// path is built, and every resolved path is re-checked against the
// content directory. Validation failures describe the violated rule
// without echoing raw input; internal failures surface as a generic
// message that never leaks paths or system error details.
//
// # Usage
//
// The server is typically started as a subprocess by an MCP-capable
// assistant, or manually for testing:
//
//	kitref serve
//
// Stdout carries the protocol stream; logs go to stderr (or a file in
// debug mode).
package mcp

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp implements a Model Context Protocol server that exposes
// droidbridge commands as MCP tools over newline-delimited JSON-RPC 2.0
// on stdin/stdout.
//
// The server walks the CLI command tree and collects every command with
// a [cli.Command.ToolName] and a Run function. The tool's inputSchema is
// generated from the command's parameter struct via [cli.ParamsSchema].
//
// Requests are handled one at a time, in arrival order. A tool call
// runs to completion before the next line is read.
//
// Failed tool calls are reported as tool results, not JSON-RPC errors:
// isError is set, the text carries "Error: <message>" and errorInfo
// carries the category and code. JSON-RPC errors are reserved for
// protocol misuse (unknown method, unknown tool, malformed params).
package mcp

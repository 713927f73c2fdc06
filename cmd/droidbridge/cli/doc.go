// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the droidbridge binary.
//
// A [Command] is one node in a tree dispatched by the first positional
// argument. Leaf commands declare a typed parameter struct through
// Params; the same struct tags drive both surfaces a command is reachable
// from:
//
//   - flag:"name,n" and desc:"..." bind spf13/pflag flags for the
//     terminal ([FlagsFromParams]).
//   - json:"name", desc, required:"true", default and enum tags produce
//     the JSON Schema an MCP client sees as the tool's inputSchema
//     ([ParamsSchema]).
//
// Errors returned by Run that carry a [ToolError] are surfaced to MCP
// clients with their category and code; everything else is reported as
// internal.
package cli

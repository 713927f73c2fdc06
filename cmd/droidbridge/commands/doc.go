// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the droidbridge command tree: one command
// per device operation (each also an MCP tool under its snake_case tool
// name), plus serve and version.
//
// Tool commands translate library failures into categorized tool errors
// (see categorize), so MCP clients receive a category and the failure
// kind as the error code.
package commands

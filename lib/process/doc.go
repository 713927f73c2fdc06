// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for droidbridge.
// It centralizes the one raw I/O pattern that exists before the
// structured logger is configured: reporting a fatal startup error
// (unreadable config, missing adb) to stderr and exiting.
//
// stdout is reserved for the MCP protocol stream, so nothing here ever
// writes to it.
package process

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the droidbridge binary.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected with
// -ldflags -X. When the commit was not injected, [Current] falls back to
// the VCS stamp the Go toolchain records in the binary, so "go install"
// builds still identify their revision.
//
// [Short] is reported as the MCP serverInfo version; [Full] backs
// "droidbridge version".
package version

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for droidbridge.
//
// Configuration is loaded from a single file specified by either the
// --config flag or the DROIDBRIDGE_CONFIG environment variable (via
// [Load]). There is no ~/.config discovery and no automatic file
// search. Unlike long-running services, droidbridge is usually spawned
// by an agent host with no arguments, so when neither source names a
// file [Load] returns [Default].
//
// Files ending in .yaml or .yml are parsed as YAML. Files ending in
// .json or .jsonc are parsed as JSON with comments and trailing commas
// allowed.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Bridge, Screenshot, Clipboard,
//     Automation and Log sections
//   - [Default] -- returns a Config with working defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other droidbridge packages.
package config

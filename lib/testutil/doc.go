// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for droidbridge packages.
//
// [FakeBinary] writes a throwaway shell script into a test temp
// directory and returns its path. Bridge, clipboard and end-to-end tests
// use it to stand in for adb, xclip and friends so no Android device or
// desktop session is needed. Tests that call FakeBinary are skipped on
// Windows, where there is no /bin/sh.
//
// [PNG] and [WritePNG] produce small encoded fixture images with a known
// size, for screenshot and conversion tests. [Entries] lists a
// directory so tests can assert no staging files were left behind.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no droidbridge-internal dependencies.
package testutil

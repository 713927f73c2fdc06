// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FakeBinary writes body as an executable /bin/sh script named name in
// a fresh temp directory and returns the script's absolute path. The
// shebang line is added automatically.
//
//	adb := testutil.FakeBinary(t, "adb", `echo "List of devices attached"`)
func FakeBinary(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are shell scripts")
	}

	path := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake binary %s: %v", name, err)
	}
	return path
}

// Entries returns the names in directory, failing the test if it cannot
// be read. Used to assert that no staging files were left behind.
func Entries(t *testing.T, directory string) []string {
	t.Helper()
	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("reading %s: %v", directory, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

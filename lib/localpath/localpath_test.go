// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/testutil"
)

func TestResolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("cases use unix-style absolute paths")
	}
	t.Parallel()

	home := "/home/agent"
	tests := []struct {
		name     string
		userPath string
		want     string
	}{
		{name: "absolute kept", userPath: "/tmp/shot.png", want: "/tmp/shot.png"},
		{name: "absolute cleaned", userPath: "/tmp//a/../shot.png", want: "/tmp/shot.png"},
		{name: "tilde alone", userPath: "~", want: "/home/agent"},
		{name: "tilde slash", userPath: "~/shots/a.png", want: "/home/agent/shots/a.png"},
		{name: "bare relative", userPath: "shots/a.png", want: "/home/agent/shots/a.png"},
		{name: "dot relative", userPath: "./a.png", want: "/home/agent/a.png"},
		{name: "tilde in the middle is literal", userPath: "a~/b", want: "/home/agent/a~/b"},
		{name: "tilde user form is not expanded", userPath: "~other/x", want: "/home/agent/~other/x"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(home, testCase.userPath)
			if got != testCase.want {
				t.Errorf("Resolve(%q) = %q, want %q", testCase.userPath, got, testCase.want)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("Resolve(%q) = %q is not absolute", testCase.userPath, got)
			}
			if again := Resolve(home, got); again != got {
				t.Errorf("Resolve is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestResolve_WindowsBackslashMarker(t *testing.T) {
	t.Parallel()
	if got := resolve("/home/agent", `~\shot.png`, false); !strings.HasSuffix(got, `~\shot.png`) {
		t.Errorf("on non-windows the backslash marker is literal, got %q", got)
	}
	if got := resolve("/home/agent", `~\shot.png`, true); got != filepath.Join("/home/agent", "shot.png") {
		t.Errorf("on windows the backslash marker expands, got %q", got)
	}
}

func TestEnsureWritableParent_CreatesMissingTree(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	resolver := NewResolver(home)

	target := resolver.Resolve("deep/nested/dir/shot.png")
	if err := resolver.EnsureWritableParent(target); err != nil {
		t.Fatalf("EnsureWritableParent: %v", err)
	}

	info, err := os.Stat(filepath.Dir(target))
	if err != nil || !info.IsDir() {
		t.Fatalf("parent directory not created: %v", err)
	}
	if entries := testutil.Entries(t, filepath.Dir(target)); len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("target itself should not be created, stat err = %v", err)
	}
}

func TestEnsureWritableParent_ParentIsAFile(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	blocker := filepath.Join(home, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := NewResolver(home).EnsureWritableParent(filepath.Join(blocker, "shot.png"))
	if failure.KindOf(err) != failure.DirectoryNotWritable {
		t.Fatalf("error = %v, want DirectoryNotWritable", err)
	}
	if !strings.Contains(err.Error(), blocker) {
		t.Errorf("message should name the directory: %q", err)
	}
}

func TestRequireExisting(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	resolver := NewResolver(home)

	present := filepath.Join(home, "app.apk")
	if err := os.WriteFile(present, []byte("apk"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := resolver.RequireExisting(present); err != nil {
		t.Errorf("RequireExisting(present) = %v", err)
	}

	missing := filepath.Join(home, "missing.apk")
	err := resolver.RequireExisting(missing)
	if failure.KindOf(err) != failure.LocalFileMissing {
		t.Errorf("RequireExisting(missing) = %v, want LocalFileMissing", err)
	}
}

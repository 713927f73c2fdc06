// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package localpath turns caller-supplied host paths into absolute
// paths anchored at the user's home directory.
//
// The server's working directory is whatever the launching agent
// happened to use, often "/" or a read-only install location, so
// relative paths are interpreted against the home directory rather than
// the process cwd:
//
//	/abs/shot.png   -> /abs/shot.png
//	~/shots/a.png   -> $HOME/shots/a.png
//	shots/a.png     -> $HOME/shots/a.png
//
// [Resolver.EnsureWritableParent] then creates and probes the parent
// directory. The probe is advisory: the directory can change between
// the check and the real write.
package localpath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// probePrefix names the marker file written by EnsureWritableParent.
const probePrefix = ".droidbridge-probe-"

// Resolve maps userPath to an absolute path under home. It performs no
// I/O. Resolve is idempotent on its own output.
func Resolve(home, userPath string) string {
	return resolve(home, userPath, runtime.GOOS == "windows")
}

func resolve(home, userPath string, windows bool) string {
	if filepath.IsAbs(userPath) {
		return filepath.Clean(userPath)
	}
	if userPath == "~" {
		return filepath.Clean(home)
	}
	if rest, found := strings.CutPrefix(userPath, "~/"); found {
		return filepath.Join(home, rest)
	}
	if windows {
		if rest, found := strings.CutPrefix(userPath, `~\`); found {
			return filepath.Join(home, rest)
		}
	}
	return filepath.Join(home, userPath)
}

// Resolver resolves and checks paths relative to a fixed home directory.
type Resolver struct {
	home string
}

// NewResolver returns a Resolver anchored at home. home should be
// absolute.
func NewResolver(home string) *Resolver {
	return &Resolver{home: filepath.Clean(home)}
}

// FromEnvironment returns a Resolver anchored at the invoking user's home
// directory.
func FromEnvironment() (*Resolver, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	return NewResolver(home), nil
}

// Home returns the anchor directory.
func (r *Resolver) Home() string {
	return r.home
}

// Resolve maps userPath to an absolute path. See the package-level
// Resolve.
func (r *Resolver) Resolve(userPath string) string {
	return Resolve(r.home, userPath)
}

// EnsureWritableParent creates path's parent directory tree if absent
// and verifies it accepts a new file by creating, writing and removing
// a uniquely named probe. Any failure is DirectoryNotWritable carrying
// the OS diagnostic.
func (r *Resolver) EnsureWritableParent(path string) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return notWritable(directory, err)
	}

	probe := filepath.Join(directory, probePrefix+uuid.NewString())
	file, err := os.OpenFile(probe, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return notWritable(directory, err)
	}
	_, writeErr := file.WriteString("probe")
	closeErr := file.Close()
	removeErr := os.Remove(probe)
	for _, err := range []error{writeErr, closeErr, removeErr} {
		if err != nil {
			return notWritable(directory, err)
		}
	}
	return nil
}

// RequireExisting returns LocalFileMissing when nothing exists at path.
func (r *Resolver) RequireExisting(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return failure.New(failure.LocalFileMissing, "Local file does not exist: %s", path)
		}
		return failure.New(failure.LocalFileMissing, "Local file is not accessible: %s: %v", path, err)
	}
	return nil
}

func notWritable(directory string, err error) error {
	return failure.New(failure.DirectoryNotWritable,
		"Directory is not writable: %s (%v). Try using an absolute path or a path in your home directory.", directory, err)
}

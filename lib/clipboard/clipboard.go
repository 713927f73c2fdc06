// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clipboard places an image file on the host clipboard by
// invoking the platform's clipboard utility: osascript on macOS,
// PowerShell on Windows, xclip on Linux.
//
// [New] is the single platform switch. An unsupported platform is an
// UnsupportedPlatform error; there is no fallback backend.
package clipboard

import (
	"context"
	"runtime"

	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/imageconv"
)

// Platform is a host operating system name as reported by
// runtime.GOOS.
type Platform string

const (
	Darwin  Platform = "darwin"
	Windows Platform = "windows"
	Linux   Platform = "linux"
)

// HostPlatform returns the platform this binary is running on.
func HostPlatform() Platform {
	return Platform(runtime.GOOS)
}

// Copier copies an image file to the clipboard.
type Copier interface {
	// CopyImage places the image at path on the clipboard, tagged as
	// format. One external process per call. A failing utility is
	// ClipboardFailed with the utility's diagnostic.
	CopyImage(ctx context.Context, path string, format imageconv.Format) error
}

// New returns the Copier for platform. Empty selects HostPlatform.
func New(platform Platform, runner Runner) (Copier, error) {
	if platform == "" {
		platform = HostPlatform()
	}
	switch platform {
	case Darwin:
		return &darwinCopier{runner: runner}, nil
	case Windows:
		return &windowsCopier{runner: runner}, nil
	case Linux:
		return &linuxCopier{runner: runner}, nil
	default:
		return nil, failure.New(failure.UnsupportedPlatform,
			"Clipboard operations not supported on platform: %s", platform)
	}
}

// copyFailed wraps a utility error as ClipboardFailed.
func copyFailed(err error) error {
	return failure.Wrap(failure.ClipboardFailed, err, "Failed to copy image to clipboard")
}

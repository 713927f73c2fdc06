// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clipboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/imageconv"
)

// darwinCopier reads the file through AppleScript so the clipboard gets
// a typed image, not a file reference.
type darwinCopier struct {
	runner Runner
}

func (c *darwinCopier) CopyImage(ctx context.Context, path string, format imageconv.Format) error {
	script := fmt.Sprintf(`set the clipboard to (read (POSIX file "%s") as %s)`,
		appleScriptEscape(path), appleScriptClass(format))
	return copyFailed(c.runner.Run(ctx, "osascript", "-e", script))
}

// appleScriptClass returns the clipboard class for format. Formats
// AppleScript has no native class for are offered as TIFF, which macOS
// converts from any image file it can read.
func appleScriptClass(format imageconv.Format) string {
	switch {
	case format == imageconv.PNG:
		return "«class PNGf»"
	case format.IsJPEG():
		return "JPEG picture"
	default:
		return "TIFF picture"
	}
}

func appleScriptEscape(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
}

type windowsCopier struct {
	runner Runner
}

func (c *windowsCopier) CopyImage(ctx context.Context, path string, _ imageconv.Format) error {
	script := "Add-Type -AssemblyName System.Windows.Forms; " +
		"Add-Type -AssemblyName System.Drawing; " +
		"[System.Windows.Forms.Clipboard]::SetImage([System.Drawing.Image]::FromFile('" +
		strings.ReplaceAll(path, "'", "''") + "'))"
	return copyFailed(c.runner.Run(ctx, "powershell", "-NoProfile", "-Command", script))
}

type linuxCopier struct {
	runner Runner
}

func (c *linuxCopier) CopyImage(ctx context.Context, path string, format imageconv.Format) error {
	return copyFailed(c.runner.Run(ctx, "xclip",
		"-selection", "clipboard",
		"-t", format.MIMEType(),
		"-i", path,
	))
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imageconv names the screenshot output formats and converts
// captured PNG images into them.
//
// Decoding accepts PNG, JPEG, GIF, BMP and WebP. Encoding uses the
// standard library for PNG, JPEG and GIF, golang.org/x/image/bmp for
// BMP, and nativewebp (lossless) for WebP.
package imageconv

import (
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// Format is a screenshot output format, spelled the way callers pass it.
type Format string

const (
	PNG  Format = "png"
	JPG  Format = "jpg"
	JPEG Format = "jpeg"
	WebP Format = "webp"
	BMP  Format = "bmp"
	GIF  Format = "gif"
)

// Formats lists every accepted format in schema order.
var Formats = []Format{PNG, JPG, JPEG, WebP, BMP, GIF}

// imageExtensions is the set of extensions treated as "an image
// extension" when deciding whether to replace a caller's suffix.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// Parse returns the Format named by name, case-insensitively. An empty
// name selects PNG.
func Parse(name string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(name)))
	if normalized == "" {
		return PNG, nil
	}
	for _, format := range Formats {
		if format == normalized {
			return format, nil
		}
	}
	return "", failure.New(failure.InvalidParameters,
		"Invalid parameters: unsupported image format %q (expected one of png, jpg, jpeg, webp, bmp, gif)", name)
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the media type for f.
func (f Format) MIMEType() string {
	switch f {
	case JPG, JPEG:
		return "image/jpeg"
	default:
		return "image/" + string(f)
	}
}

// IsJPEG reports whether f is either spelling of JPEG.
func (f Format) IsJPEG() bool {
	return f == JPG || f == JPEG
}

// MatchesExtension reports whether ext (with dot, any case) is a valid
// extension for f. ".jpg" and ".jpeg" are interchangeable.
func (f Format) MatchesExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if f.IsJPEG() {
		return ext == ".jpg" || ext == ".jpeg"
	}
	return ext == f.Extension()
}

// IsImageExtension reports whether ext (with dot, any case) is a known
// image file extension.
func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// OutputPath adjusts path so its extension agrees with format: a
// mismatched image extension is replaced, a missing extension is
// appended, and any other extension is left alone.
func OutputPath(path string, format Format) string {
	ext := filepath.Ext(path)
	switch {
	case ext == "":
		return path + format.Extension()
	case format.MatchesExtension(ext):
		return path
	case IsImageExtension(ext):
		return strings.TrimSuffix(path, ext) + format.Extension()
	default:
		return path
	}
}

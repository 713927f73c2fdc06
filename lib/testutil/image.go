// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// PNG returns an encoded width x height PNG with a deterministic
// gradient, so that decoders have real pixel data to chew on.
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			canvas.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width, 1)),
				G: uint8(y * 255 / max(height, 1)),
				B: 0x80,
				A: 0xff,
			})
		}
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, canvas); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
	return buffer.Bytes()
}

// WritePNG writes PNG(t, width, height) to path.
func WritePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	if err := os.WriteFile(path, PNG(t, width, height), 0o644); err != nil {
		t.Fatalf("writing fixture png %s: %v", path, err)
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageconv

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// Options tunes encoders.
type Options struct {
	// JPEGQuality is 1..100. Zero selects DefaultJPEGQuality.
	JPEGQuality int
}

// Convert decodes the image at source and writes it to destination in
// format. destination is created or truncated. Failures are
// ConversionFailed; on failure destination may hold partial data and
// the caller owns its removal.
func Convert(source, destination string, format Format, options Options) error {
	input, err := os.Open(source)
	if err != nil {
		return failure.Wrap(failure.ConversionFailed, err, "Failed to convert image")
	}
	defer input.Close()

	decoded, _, err := image.Decode(bufio.NewReader(input))
	if err != nil {
		return failure.Wrap(failure.ConversionFailed, err, "Failed to convert image: decoding "+source)
	}

	output, err := os.OpenFile(destination, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return failure.Wrap(failure.ConversionFailed, err, "Failed to convert image")
	}
	writer := bufio.NewWriter(output)
	encodeErr := Encode(writer, decoded, format, options)
	if encodeErr == nil {
		encodeErr = writer.Flush()
	}
	closeErr := output.Close()
	if encodeErr != nil {
		return failure.Wrap(failure.ConversionFailed, encodeErr, "Failed to convert image: encoding "+string(format))
	}
	if closeErr != nil {
		return failure.Wrap(failure.ConversionFailed, closeErr, "Failed to convert image")
	}
	return nil
}

// Encode writes img to writer in format.
func Encode(writer io.Writer, img image.Image, format Format, options Options) error {
	switch format {
	case PNG:
		return png.Encode(writer, img)
	case JPG, JPEG:
		quality := options.JPEGQuality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case GIF:
		return gif.Encode(writer, img, nil)
	case BMP:
		return bmp.Encode(writer, img)
	case WebP:
		return nativewebp.Encode(writer, img, nil)
	default:
		return fmt.Errorf("no encoder for format %q", format)
	}
}

// Dimensions returns the pixel size of the image at path without
// decoding the pixel data.
func Dimensions(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(bufio.NewReader(file))
	if err != nil {
		return 0, 0, fmt.Errorf("reading image header of %s: %w", path, err)
	}
	return config.Width, config.Height, nil
}

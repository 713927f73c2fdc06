// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"

	"github.com/bureau-foundation/droidbridge/lib/bridge"
	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/imageconv"
)

// Strategy is how the captured PNG travels from device to host.
type Strategy string

const (
	// StrategyStream pipes "adb exec-out screencap -p" straight into the
	// staging file. No device-side file is created.
	StrategyStream Strategy = "stream"

	// StrategyDeviceFile writes the capture to a uniquely named file on
	// the device, pulls it and deletes it. Slower, but works on devices
	// whose exec-out mangles binary output.
	StrategyDeviceFile Strategy = "device-file"
)

// ParseStrategy validates a configured strategy name. Empty selects
// StrategyStream.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyStream:
		return StrategyStream, nil
	case StrategyDeviceFile:
		return StrategyDeviceFile, nil
	default:
		return "", fmt.Errorf("unknown screenshot strategy %q (expected %q or %q)", name, StrategyStream, StrategyDeviceFile)
	}
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// capture writes the device's current screen as PNG into staging.
func (p *Pipeline) capture(ctx context.Context, deviceID, staging string) error {
	switch p.strategy {
	case StrategyDeviceFile:
		return p.captureViaDeviceFile(ctx, deviceID, staging)
	default:
		return p.captureViaStream(ctx, deviceID, staging)
	}
}

func (p *Pipeline) captureViaStream(ctx context.Context, deviceID, staging string) error {
	file, err := os.OpenFile(staging, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot")
	}
	streamErr := p.bridge.Stream(ctx, bridge.Command{
		Args:   []string{"exec-out", "screencap", "-p"},
		Device: deviceID,
	}, file)
	closeErr := file.Close()
	if streamErr != nil {
		return failure.Wrap(failure.CaptureFailed, streamErr, "Failed to take screenshot")
	}
	return failure.Wrap(failure.CaptureFailed, closeErr, "Failed to take screenshot")
}

func (p *Pipeline) captureViaDeviceFile(ctx context.Context, deviceID, staging string) error {
	remote := path.Join(p.deviceDir, "droidbridge-"+uuid.NewString()+".png")

	// The device-side file is removed whether or not screencap got far
	// enough to create it.
	defer func() {
		_, err := p.bridge.Run(ctx, bridge.Command{
			Args:   []string{"shell", "rm", "-f", remote},
			Device: deviceID,
		})
		if err != nil {
			p.logger.Debug("removing device-side screenshot", "device", deviceID, "path", remote, "error", err)
		}
	}()

	if _, err := p.bridge.Run(ctx, bridge.Command{
		Args:   []string{"shell", "screencap", "-p", remote},
		Device: deviceID,
	}); err != nil {
		return failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot")
	}
	if _, err := p.bridge.Run(ctx, bridge.Command{
		Args:   []string{"pull", remote, staging},
		Device: deviceID,
	}); err != nil {
		return failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot: pulling "+remote)
	}
	return nil
}

// verifyPNG checks that staging holds a decodable PNG and returns its
// size.
func verifyPNG(staging string) (width, height int, err error) {
	file, err := os.Open(staging)
	if err != nil {
		return 0, 0, failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot")
	}
	header := make([]byte, len(pngSignature))
	count, readErr := io.ReadFull(file, header)
	file.Close()

	if count == 0 {
		return 0, 0, failure.New(failure.CaptureFailed, "Failed to take screenshot: capture produced no data")
	}
	if readErr != nil || !bytes.Equal(header, pngSignature) {
		return 0, 0, failure.New(failure.CaptureFailed, "Failed to take screenshot: capture is not PNG data (starts with %q)", header[:count])
	}

	width, height, err = imageconv.Dimensions(staging)
	if err != nil {
		return 0, 0, failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot")
	}
	return width, height, nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package screenshot captures a device's screen and delivers the image
// to a host file or the host clipboard.
//
// One [Pipeline.Capture] call runs these steps strictly in order, each
// consuming the previous step's artifact:
//
//  1. resolve the target device
//  2. for file delivery, resolve the destination path and probe its
//     directory
//  3. capture a PNG into a local staging file
//  4. convert to the requested format if it is not PNG
//  5. deliver by renaming into place or handing the file to the
//     clipboard adapter
//
// Every local staging file and every device-side capture file is
// removed on every exit path. Cleanup failures are logged at debug
// level and never change the call's result. Staging files are uniquely
// named per call, so concurrent captures do not collide.
package screenshot

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/droidbridge/lib/bridge"
	"github.com/bureau-foundation/droidbridge/lib/clipboard"
	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/imageconv"
)

// DefaultDeviceDir is where the device-file strategy writes captures.
const DefaultDeviceDir = "/sdcard"

// TargetResolver picks the device a request targets.
type TargetResolver interface {
	Resolve(ctx context.Context, requested string) (string, error)
}

// Bridge runs adb commands. *bridge.Bridge satisfies it.
type Bridge interface {
	Run(ctx context.Context, command bridge.Command) (string, error)
	Stream(ctx context.Context, command bridge.Command, output io.Writer) error
}

// PathResolver normalizes host paths and probes their directories.
// *localpath.Resolver satisfies it.
type PathResolver interface {
	Resolve(userPath string) string
	EnsureWritableParent(path string) error
}

// ClipboardFactory returns the host clipboard adapter. It is called at
// delivery time, so an unsupported platform is reported only after the
// capture has been attempted and its artifacts cleaned up.
type ClipboardFactory func() (clipboard.Copier, error)

// Options configures a Pipeline. Resolver, Bridge and Paths are
// required.
type Options struct {
	Resolver  TargetResolver
	Bridge    Bridge
	Paths     PathResolver
	Clipboard ClipboardFactory

	// Strategy selects how the PNG leaves the device. Defaults to
	// StrategyStream.
	Strategy Strategy

	// TempDir holds staging files for clipboard delivery. Defaults to
	// os.TempDir().
	TempDir string

	// DeviceDir holds device-side captures for StrategyDeviceFile.
	// Defaults to DefaultDeviceDir.
	DeviceDir string

	// JPEGQuality is passed to the JPEG encoder.
	JPEGQuality int

	Logger *slog.Logger
}

// Pipeline captures screenshots.
type Pipeline struct {
	resolver    TargetResolver
	bridge      Bridge
	paths       PathResolver
	clipboard   ClipboardFactory
	strategy    Strategy
	tempDir     string
	deviceDir   string
	jpegQuality int
	logger      *slog.Logger
}

// New returns a Pipeline configured by options.
func New(options Options) *Pipeline {
	pipeline := &Pipeline{
		resolver:    options.Resolver,
		bridge:      options.Bridge,
		paths:       options.Paths,
		clipboard:   options.Clipboard,
		strategy:    options.Strategy,
		tempDir:     options.TempDir,
		deviceDir:   options.DeviceDir,
		jpegQuality: options.JPEGQuality,
		logger:      options.Logger,
	}
	if pipeline.strategy == "" {
		pipeline.strategy = StrategyStream
	}
	if pipeline.tempDir == "" {
		pipeline.tempDir = os.TempDir()
	}
	if pipeline.deviceDir == "" {
		pipeline.deviceDir = DefaultDeviceDir
	}
	if pipeline.clipboard == nil {
		pipeline.clipboard = func() (clipboard.Copier, error) {
			return clipboard.New(clipboard.HostPlatform(), clipboard.ExecRunner{})
		}
	}
	if pipeline.logger == nil {
		pipeline.logger = slog.New(slog.DiscardHandler)
	}
	return pipeline
}

// Destination says where a capture is delivered.
type Destination struct {
	path      string
	clipboard bool
}

// ToFile delivers to a host path. The path is resolved against the
// home directory and its extension adjusted to the format.
func ToFile(path string) Destination {
	return Destination{path: path}
}

// ToClipboard delivers to the host clipboard.
func ToClipboard() Destination {
	return Destination{clipboard: true}
}

// IsClipboard reports whether d targets the clipboard.
func (d Destination) IsClipboard() bool { return d.clipboard }

// Request is one capture.
type Request struct {
	// Device is the requested device id. Empty selects the only
	// connected device.
	Device      string
	Destination Destination
	// Format defaults to imageconv.PNG.
	Format imageconv.Format
}

// Result describes a delivered capture.
type Result struct {
	// Path is the final file for file delivery, empty for the clipboard.
	Path   string
	Format imageconv.Format
	Width  int
	Height int
	// Digest is the hex BLAKE3 digest of the delivered bytes.
	Digest string
	// Device is the device that was captured.
	Device string
}

// Capture runs the pipeline for request.
func (p *Pipeline) Capture(ctx context.Context, request Request) (*Result, error) {
	format := request.Format
	if format == "" {
		format = imageconv.PNG
	}
	if !request.Destination.clipboard && request.Destination.path == "" {
		return nil, failure.New(failure.InvalidParameters,
			"Invalid parameters: output_path is required and must be a string")
	}

	deviceID, err := p.resolver.Resolve(ctx, request.Device)
	if err != nil {
		return nil, err
	}

	stagingDir := p.tempDir
	finalPath := ""
	if !request.Destination.clipboard {
		finalPath = imageconv.OutputPath(p.paths.Resolve(request.Destination.path), format)
		if err := p.paths.EnsureWritableParent(finalPath); err != nil {
			return nil, err
		}
		// Same directory as the destination keeps the final rename on
		// one filesystem.
		stagingDir = filepath.Dir(finalPath)
	}

	var temporaries []string
	defer func() {
		for _, path := range temporaries {
			p.removeLocal(path)
		}
	}()

	staging, err := createStagingFile(stagingDir, imageconv.PNG)
	if err != nil {
		return nil, failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot: creating staging file")
	}
	temporaries = append(temporaries, staging)

	p.logger.Debug("capturing screenshot",
		"device", deviceID,
		"strategy", p.strategy,
		"staging", staging,
	)
	if err := p.capture(ctx, deviceID, staging); err != nil {
		return nil, err
	}

	width, height, err := verifyPNG(staging)
	if err != nil {
		return nil, err
	}

	deliverable := staging
	if format != imageconv.PNG {
		converted, err := createStagingFile(stagingDir, format)
		if err != nil {
			return nil, failure.Wrap(failure.ConversionFailed, err, "Failed to convert image: creating staging file")
		}
		temporaries = append(temporaries, converted)

		if err := imageconv.Convert(staging, converted, format, imageconv.Options{JPEGQuality: p.jpegQuality}); err != nil {
			return nil, err
		}
		deliverable = converted
	}

	digest, err := fileDigest(deliverable)
	if err != nil {
		return nil, failure.Wrap(failure.CaptureFailed, err, "Failed to take screenshot: hashing image")
	}

	result := &Result{
		Format: format,
		Width:  width,
		Height: height,
		Digest: digest,
		Device: deviceID,
	}

	if request.Destination.clipboard {
		copier, err := p.clipboard()
		if err != nil {
			return nil, err
		}
		if err := copier.CopyImage(ctx, deliverable, format); err != nil {
			return nil, err
		}
		p.logger.Info("screenshot copied to clipboard", "device", deviceID, "format", format)
		return result, nil
	}

	if err := os.Rename(deliverable, finalPath); err != nil {
		return nil, failure.Wrap(failure.DirectoryNotWritable, err, "Failed to save screenshot")
	}
	result.Path = finalPath
	p.logger.Info("screenshot saved", "device", deviceID, "path", finalPath, "format", format)
	return result, nil
}

// removeLocal deletes a staging file. Files already renamed into place
// are gone and not an error.
func (p *Pipeline) removeLocal(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Debug("removing screenshot staging file", "path", path, "error", err)
	}
}

// createStagingFile creates an empty, uniquely named hidden file in
// directory with format's extension and returns its path.
func createStagingFile(directory string, format imageconv.Format) (string, error) {
	file, err := os.CreateTemp(directory, ".droidbridge-shot-*"+format.Extension())
	if err != nil {
		return "", err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

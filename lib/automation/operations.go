// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/device"
	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/imageconv"
	"github.com/bureau-foundation/droidbridge/lib/screenshot"
)

// Devices lists every device adb reports, in adb's order. The result
// is never nil.
func (s *Service) Devices(ctx context.Context) ([]device.Device, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []device.Device{}
	}
	return devices, nil
}

// Shell runs command in the device shell and returns its output. The
// command string is interpreted by the device's shell, not the host's.
func (s *Service) Shell(ctx context.Context, deviceID, command string) (string, error) {
	if err := require("command", command); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return s.run(ctx, target, "shell", command)
}

// Install installs an APK. path may name a single APK, a directory of
// APKs or a glob; the latter two become one "install-multiple" (split
// APK) transaction.
func (s *Service) Install(ctx context.Context, deviceID, path string) (string, error) {
	if err := require("path", path); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}

	archives, multiple, err := s.expandArchives(path)
	if err != nil {
		return "", err
	}

	subcommand := "install"
	if multiple {
		subcommand = "install-multiple"
	}
	s.logger.Info("installing", "device", target, "archives", archives)
	return s.run(ctx, target, append([]string{subcommand}, archives...)...)
}

// expandArchives resolves an install path into the APK files it names.
func (s *Service) expandArchives(userPath string) (archives []string, multiple bool, err error) {
	resolved := s.paths.Resolve(userPath)

	if strings.ContainsAny(userPath, "*?[") {
		matches, err := filepath.Glob(resolved)
		if err != nil {
			return nil, false, failure.New(failure.InvalidParameters, "Invalid parameters: bad glob %q: %v", userPath, err)
		}
		if len(matches) == 0 {
			return nil, false, failure.New(failure.LocalFileMissing, "Local file does not exist: no files match %s", resolved)
		}
		return matches, true, nil
	}

	if err := s.paths.RequireExisting(resolved); err != nil {
		return nil, false, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, failure.Wrap(failure.LocalFileMissing, err, "Local file is not accessible")
	}
	if !info.IsDir() {
		return []string{resolved}, false, nil
	}

	matches, err := filepath.Glob(filepath.Join(resolved, "*.apk"))
	if err != nil {
		return nil, false, failure.Wrap(failure.LocalFileMissing, err, "listing "+resolved)
	}
	if len(matches) == 0 {
		return nil, false, failure.New(failure.LocalFileMissing, "Local file does not exist: no APK files in %s", resolved)
	}
	return matches, true, nil
}

// Uninstall removes packageName from the device.
func (s *Service) Uninstall(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return s.run(ctx, target, "uninstall", packageName)
}

// ListPackages returns installed package names, optionally narrowed to
// those containing filter (case-insensitive). The result is never nil.
func (s *Service) ListPackages(ctx context.Context, deviceID, filter string) ([]string, error) {
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	output, err := s.run(ctx, target, "shell", "pm", "list", "packages")
	if err != nil {
		return nil, err
	}
	return parsePackages(output, filter), nil
}

// parsePackages extracts names from "pm list packages" output.
func parsePackages(output, filter string) []string {
	needle := strings.ToLower(filter)
	packages := []string{}
	for _, line := range strings.Split(output, "\n") {
		name, found := strings.CutPrefix(strings.TrimSpace(line), "package:")
		if !found || name == "" {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		packages = append(packages, name)
	}
	return packages
}

// Pull copies remotePath from the device to localPath, resolved under
// the home directory.
func (s *Service) Pull(ctx context.Context, deviceID, remotePath, localPath string) (string, error) {
	if err := require("remote_path", remotePath); err != nil {
		return "", err
	}
	if err := require("local_path", localPath); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}

	resolved := s.paths.Resolve(localPath)
	if err := s.paths.EnsureWritableParent(resolved); err != nil {
		return "", err
	}

	output, err := s.run(ctx, target, "pull", remotePath, resolved)
	if err != nil {
		return "", fmt.Errorf("Failed to pull file: %w. Try using an absolute path or a path in your home directory.", err)
	}
	return fmt.Sprintf("File pulled successfully to: %s\n%s", resolved, output), nil
}

// Push copies localPath, resolved under the home directory, to
// remotePath on the device.
func (s *Service) Push(ctx context.Context, deviceID, localPath, remotePath string) (string, error) {
	if err := require("local_path", localPath); err != nil {
		return "", err
	}
	if err := require("remote_path", remotePath); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}

	resolved := s.paths.Resolve(localPath)
	if err := s.paths.RequireExisting(resolved); err != nil {
		return "", err
	}
	return s.run(ctx, target, "push", resolved, remotePath)
}

// SaveScreenshot captures the screen into outputPath in format.
func (s *Service) SaveScreenshot(ctx context.Context, deviceID, outputPath, format string) (*screenshot.Result, error) {
	if err := require("output_path", outputPath); err != nil {
		return nil, err
	}
	parsed, err := imageconv.Parse(format)
	if err != nil {
		return nil, err
	}
	return s.screenshots.Capture(ctx, screenshot.Request{
		Device:      deviceID,
		Destination: screenshot.ToFile(outputPath),
		Format:      parsed,
	})
}

// CopyScreenshot captures the screen onto the host clipboard.
func (s *Service) CopyScreenshot(ctx context.Context, deviceID, format string) (*screenshot.Result, error) {
	parsed, err := imageconv.Parse(format)
	if err != nil {
		return nil, err
	}
	return s.screenshots.Capture(ctx, screenshot.Request{
		Device:      deviceID,
		Destination: screenshot.ToClipboard(),
		Format:      parsed,
	})
}

// SavedMessage is the agent-facing report for SaveScreenshot.
func SavedMessage(result *screenshot.Result) string {
	return fmt.Sprintf("Screenshot saved to: %s in %s format", result.Path, result.Format)
}

// CopiedMessage is the agent-facing report for CopyScreenshot.
func CopiedMessage(result *screenshot.Result) string {
	return fmt.Sprintf("Screenshot copied to clipboard in %s format", result.Format)
}

// ClearAppData wipes packageName's data and cache.
func (s *Service) ClearAppData(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	output, err := s.run(ctx, target, "shell", "pm", "clear", packageName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("App data cleared for %s\n%s", packageName, output), nil
}

// ForceStopApp stops packageName and its background services.
func (s *Service) ForceStopApp(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	output, err := s.run(ctx, target, "shell", "am", "force-stop", packageName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("App force stopped: %s\n%s", packageName, output), nil
}

// GoToHome presses the home key.
func (s *Service) GoToHome(ctx context.Context, deviceID string) (string, error) {
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	output, err := s.run(ctx, target, "shell", "input", "keyevent", "KEYCODE_HOME")
	if err != nil {
		return "", err
	}
	return "Navigated to home screen\n" + output, nil
}

// OpenSettings starts the system Settings app.
func (s *Service) OpenSettings(ctx context.Context, deviceID string) (string, error) {
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	output, err := s.run(ctx, target, "shell", "am", "start", "-a", "android.settings.SETTINGS")
	if err != nil {
		return "", err
	}
	return "Settings app opened\n" + output, nil
}

// FormatNames returns the accepted screenshot format names in schema
// order.
func FormatNames() []string {
	names := make([]string, 0, len(imageconv.Formats))
	for _, format := range imageconv.Formats {
		names = append(names, string(format))
	}
	return names
}

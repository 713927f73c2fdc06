// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package automation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

const (
	launcherCategory = "android.intent.category.LAUNCHER"
	mainAction       = "android.intent.action.MAIN"
)

// componentPattern matches "package/ActivityClass" names in dumpsys
// output, including inner classes ("$") and the ".Relative" shorthand.
var componentPattern = regexp.MustCompile(`[a-zA-Z0-9_.]+/[a-zA-Z0-9_.$]+`)

// monkeyFailureMarkers are monkey diagnostics printed on stdout with a
// zero exit status when nothing was launched.
var monkeyFailureMarkers = []string{"monkey aborted", "No activities found"}

// LaunchApp starts packageName. It first injects a single launcher
// event with monkey; if monkey cannot launch anything it reads the
// package's MAIN activity from dumpsys and starts it with am. When both
// fail the error carries monkey's diagnostic.
func (s *Service) LaunchApp(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return s.launch(ctx, target, packageName)
}

// launch runs the launch sequence against an already-resolved target.
func (s *Service) launch(ctx context.Context, target, packageName string) (string, error) {
	output, defaultErr := s.tryDefaultLaunch(ctx, target, packageName)
	if defaultErr == nil {
		return fmt.Sprintf("App launched: %s\n%s", packageName, output), nil
	}
	s.logger.Debug("default launch failed, discovering main activity",
		"device", target,
		"package", packageName,
		"error", defaultErr,
	)

	component, output, err := s.tryActivityDiscovery(ctx, target, packageName)
	if err == nil {
		return fmt.Sprintf("App launched with activity: %s\n%s", component, output), nil
	}
	s.logger.Debug("activity discovery failed", "device", target, "package", packageName, "error", err)

	return "", failure.Wrap(failure.BridgeCommandFailed, defaultErr, "Failed to launch app")
}

// tryDefaultLaunch fires the package's launcher intent through monkey.
func (s *Service) tryDefaultLaunch(ctx context.Context, target, packageName string) (string, error) {
	output, err := s.run(ctx, target, "shell", "monkey", "-p", packageName, "-c", launcherCategory, "1")
	if err != nil {
		return "", err
	}
	for _, marker := range monkeyFailureMarkers {
		if strings.Contains(output, marker) {
			return "", errors.New(output)
		}
	}
	return output, nil
}

// tryActivityDiscovery finds the MAIN activity in dumpsys output and
// starts it explicitly.
func (s *Service) tryActivityDiscovery(ctx context.Context, target, packageName string) (component, output string, err error) {
	dump, err := s.run(ctx, target, "shell", "dumpsys", "package", packageName)
	if err != nil {
		return "", "", err
	}
	component, found := mainActivity(dump, packageName)
	if !found {
		return "", "", fmt.Errorf("could not determine main activity of %s", packageName)
	}

	output, err = s.run(ctx, target, "shell", "am", "start", "-n", component)
	if err != nil {
		return "", "", err
	}
	if strings.Contains(output, "Error:") {
		return "", "", errors.New(output)
	}
	return component, output, nil
}

// mainActivity scans dumpsys package output for the component listed
// under a MAIN intent filter: the line carrying the action and the one
// after it. Components belonging to packageName win over others (a
// dumpsys of one package can mention activities of another through
// shared resolvers).
func mainActivity(dump, packageName string) (string, bool) {
	lines := strings.Split(dump, "\n")
	var fallback string
	for index, line := range lines {
		if !strings.Contains(line, mainAction) {
			continue
		}
		window := line
		if index+1 < len(lines) {
			window += "\n" + lines[index+1]
		}
		for _, candidate := range componentPattern.FindAllString(window, -1) {
			if strings.HasPrefix(candidate, packageName+"/") {
				return candidate, true
			}
			if fallback == "" {
				fallback = candidate
			}
		}
	}
	return fallback, fallback != ""
}

// ClearCacheAndRestart clears packageName's data, waits the restart
// delay, then launches it. A failed launch is reported in the result
// text rather than as an error.
func (s *Service) ClearCacheAndRestart(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}

	clearOutput, err := s.run(ctx, target, "shell", "pm", "clear", packageName)
	if err != nil {
		return "", err
	}
	s.pause()
	return fmt.Sprintf("App data cleared and restarted: %s\nClear: %s\nStart: %s",
		packageName, clearOutput, s.restartReport(ctx, target, packageName)), nil
}

// ForceRestartApp force-stops packageName, waits the restart delay,
// then launches it. A failed launch is reported in the result text.
func (s *Service) ForceRestartApp(ctx context.Context, deviceID, packageName string) (string, error) {
	if err := require("package_name", packageName); err != nil {
		return "", err
	}
	target, err := s.target(ctx, deviceID)
	if err != nil {
		return "", err
	}

	stopOutput, err := s.run(ctx, target, "shell", "am", "force-stop", packageName)
	if err != nil {
		return "", err
	}
	s.pause()
	return fmt.Sprintf("App force restarted: %s\nStop: %s\nStart: %s",
		packageName, stopOutput, s.restartReport(ctx, target, packageName)), nil
}

// restartReport launches packageName and describes the outcome.
func (s *Service) restartReport(ctx context.Context, target, packageName string) string {
	report, err := s.launch(ctx, target, packageName)
	if err != nil {
		return fmt.Sprintf("Failed to restart app: %v", err)
	}
	return report
}

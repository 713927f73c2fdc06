// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/droidbridge/lib/automation"
	"github.com/bureau-foundation/droidbridge/lib/bridge"
	"github.com/bureau-foundation/droidbridge/lib/clipboard"
	"github.com/bureau-foundation/droidbridge/lib/clock"
	"github.com/bureau-foundation/droidbridge/lib/config"
	"github.com/bureau-foundation/droidbridge/lib/device"
	"github.com/bureau-foundation/droidbridge/lib/localpath"
	"github.com/bureau-foundation/droidbridge/lib/screenshot"
)

// Environment holds the wired components every command runs against.
type Environment struct {
	Bridge  *bridge.Bridge
	Service *automation.Service
	Paths   *localpath.Resolver
	Logger  *slog.Logger

	// Input is read by serve. Defaults to os.Stdin.
	Input io.Reader
}

// EnvironmentOptions overrides parts of the wiring for tests.
type EnvironmentOptions struct {
	// Home anchors relative host paths. Empty means the user's home
	// directory.
	Home string

	// Clipboard replaces the host clipboard runner.
	Clipboard clipboard.Runner

	Clock clock.Clock
	Input io.Reader
}

// NewEnvironment wires the bridge, device discovery, path resolution,
// the screenshot pipeline and the automation service from cfg. cfg must
// have passed Validate.
func NewEnvironment(cfg *config.Config, logger *slog.Logger, options EnvironmentOptions) (*Environment, error) {
	paths, err := homeResolver(options.Home)
	if err != nil {
		return nil, err
	}

	adb := bridge.New(bridge.Options{
		Binary:       cfg.Bridge.Binary,
		Timeout:      cfg.BridgeTimeout(),
		BenignStderr: cfg.Bridge.BenignStderr,
		Logger:       logger.With("component", "bridge"),
	})
	directory := device.NewDirectory(adb)
	resolver := device.NewResolver(directory)

	runner := options.Clipboard
	if runner == nil {
		runner = clipboard.ExecRunner{}
	}
	platform := clipboard.Platform(cfg.Clipboard.Platform)

	strategy, err := screenshot.ParseStrategy(cfg.Screenshot.Strategy)
	if err != nil {
		return nil, err
	}
	pipeline := screenshot.New(screenshot.Options{
		Resolver: resolver,
		Bridge:   adb,
		Paths:    paths,
		Clipboard: func() (clipboard.Copier, error) {
			return clipboard.New(platform, runner)
		},
		Strategy:    strategy,
		TempDir:     cfg.Screenshot.TempDir,
		DeviceDir:   cfg.Screenshot.DeviceDir,
		JPEGQuality: cfg.Screenshot.JPEGQuality,
		Logger:      logger.With("component", "screenshot"),
	})

	restartDelay := cfg.RestartDelay()
	if restartDelay == 0 {
		restartDelay = -1
	}
	service := automation.New(automation.Options{
		Bridge:       adb,
		Devices:      directory,
		Resolver:     resolver,
		Paths:        paths,
		Screenshots:  pipeline,
		Clock:        options.Clock,
		RestartDelay: restartDelay,
		Logger:       logger.With("component", "automation"),
	})

	input := options.Input
	if input == nil {
		input = os.Stdin
	}
	return &Environment{
		Bridge:  adb,
		Service: service,
		Paths:   paths,
		Logger:  logger,
		Input:   input,
	}, nil
}

func homeResolver(home string) (*localpath.Resolver, error) {
	if home != "" {
		return localpath.NewResolver(home), nil
	}
	return localpath.FromEnvironment()
}

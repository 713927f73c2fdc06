// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package automation implements the device operations droidbridge
// exposes: shell passthrough, package management, file transfer, app
// lifecycle and screenshots.
//
// Every device-scoped operation first resolves its target with a fresh
// device snapshot and then pins each adb command to that device with
// "-s", even when only one device is attached. Steps within one
// operation run strictly in sequence; nothing is retried.
package automation

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/droidbridge/lib/bridge"
	"github.com/bureau-foundation/droidbridge/lib/clock"
	"github.com/bureau-foundation/droidbridge/lib/device"
	"github.com/bureau-foundation/droidbridge/lib/failure"
	"github.com/bureau-foundation/droidbridge/lib/screenshot"
)

// DefaultRestartDelay is the pause between stopping an app and starting
// it again.
const DefaultRestartDelay = time.Second

// Runner executes one adb command. *bridge.Bridge satisfies it.
type Runner interface {
	Run(ctx context.Context, command bridge.Command) (string, error)
}

// Lister returns the connected devices. *device.Directory satisfies it.
type Lister interface {
	List(ctx context.Context) ([]device.Device, error)
}

// TargetResolver picks the device an operation targets.
// *device.Resolver satisfies it.
type TargetResolver interface {
	Resolve(ctx context.Context, requested string) (string, error)
}

// PathResolver normalizes host paths. *localpath.Resolver satisfies it.
type PathResolver interface {
	Resolve(userPath string) string
	EnsureWritableParent(path string) error
	RequireExisting(path string) error
}

// Capturer runs the screenshot pipeline. *screenshot.Pipeline
// satisfies it.
type Capturer interface {
	Capture(ctx context.Context, request screenshot.Request) (*screenshot.Result, error)
}

// Options configures a Service. Bridge, Devices, Resolver, Paths and
// Screenshots are required.
type Options struct {
	Bridge      Runner
	Devices     Lister
	Resolver    TargetResolver
	Paths       PathResolver
	Screenshots Capturer

	// Clock paces restart operations. Defaults to clock.Real().
	Clock clock.Clock

	// RestartDelay is the pause between the stop or clear step and the
	// launch step of the restart operations. Zero selects
	// DefaultRestartDelay; use a negative value for no pause.
	RestartDelay time.Duration

	Logger *slog.Logger
}

// Service runs device operations.
type Service struct {
	bridge       Runner
	devices      Lister
	resolver     TargetResolver
	paths        PathResolver
	screenshots  Capturer
	clock        clock.Clock
	restartDelay time.Duration
	logger       *slog.Logger
}

// New returns a Service configured by options.
func New(options Options) *Service {
	service := &Service{
		bridge:       options.Bridge,
		devices:      options.Devices,
		resolver:     options.Resolver,
		paths:        options.Paths,
		screenshots:  options.Screenshots,
		clock:        options.Clock,
		restartDelay: options.RestartDelay,
		logger:       options.Logger,
	}
	if service.clock == nil {
		service.clock = clock.Real()
	}
	if service.restartDelay == 0 {
		service.restartDelay = DefaultRestartDelay
	}
	if service.logger == nil {
		service.logger = slog.New(slog.DiscardHandler)
	}
	return service
}

// target resolves the requested device id against a fresh snapshot.
func (s *Service) target(ctx context.Context, requested string) (string, error) {
	return s.resolver.Resolve(ctx, requested)
}

// run executes one adb command pinned to deviceID.
func (s *Service) run(ctx context.Context, deviceID string, args ...string) (string, error) {
	return s.bridge.Run(ctx, bridge.Command{Args: args, Device: deviceID})
}

// pause waits the configured restart delay.
func (s *Service) pause() {
	if s.restartDelay > 0 {
		s.clock.Sleep(s.restartDelay)
	}
}

// require rejects an empty required string parameter.
func require(name, value string) error {
	if value == "" {
		return failure.New(failure.InvalidParameters,
			"Invalid parameters: %s is required and must be a string", name)
	}
	return nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package device lists the Android devices adb can see and picks the
// one an operation targets.
//
// [ParseList] turns "adb devices" text into [Device] values. A
// [Directory] runs that query against a bridge on every call; nothing is
// cached, since devices come and go between requests. [Select] applies
// the target resolution rules to a snapshot, and [Resolver] combines the
// two for operation handlers.
package device

import (
	"context"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/bridge"
)

// State is the connection state adb reports for a device.
type State string

// States adb reports in normal operation. Other tokens ("recovery",
// "sideload", "bootloader", "no permissions") are kept verbatim.
const (
	StateDevice       State = "device"
	StateOffline      State = "offline"
	StateUnauthorized State = "unauthorized"
)

// Device is one line of "adb devices" output.
type Device struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}

// Runner executes a bridge command and returns trimmed stdout.
// *bridge.Bridge satisfies it.
type Runner interface {
	Run(ctx context.Context, command bridge.Command) (string, error)
}

// ParseList parses "adb devices" output. The first line is the
// "List of devices attached" header and is always dropped. Each
// remaining line is split on whitespace runs; lines with fewer than two
// fields are skipped. The result keeps adb's ordering.
func ParseList(output string) []Device {
	lines := strings.Split(output, "\n")
	if len(lines) <= 1 {
		return nil
	}

	var devices []Device
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{ID: fields[0], State: State(fields[1])})
	}
	return devices
}

// Directory queries the bridge for connected devices.
type Directory struct {
	runner Runner
}

// NewDirectory returns a Directory backed by runner.
func NewDirectory(runner Runner) *Directory {
	return &Directory{runner: runner}
}

// List runs "adb devices" and parses the result. Every call spawns a
// fresh query.
func (d *Directory) List(ctx context.Context) ([]Device, error) {
	output, err := d.runner.Run(ctx, bridge.Command{Args: []string{"devices"}})
	if err != nil {
		return nil, err
	}
	return ParseList(output), nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"strings"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// Lister returns a fresh device snapshot. *Directory satisfies it.
type Lister interface {
	List(ctx context.Context) ([]Device, error)
}

// Select picks the target device id from devices:
//
//   - no devices: NoDevicesConnected
//   - requested id not present: DeviceNotFound
//   - requested id present: that id
//   - nothing requested, one device: its id
//   - nothing requested, several devices: AmbiguousTarget
//
// Device state is not considered: an offline or unauthorized device is
// still a valid target and the subsequent adb call reports its state.
func Select(requested string, devices []Device) (string, error) {
	if len(devices) == 0 {
		return "", failure.New(failure.NoDevicesConnected, "No Android devices connected")
	}

	if requested != "" {
		for _, candidate := range devices {
			if candidate.ID == requested {
				return candidate.ID, nil
			}
		}
		return "", failure.New(failure.DeviceNotFound, "Device with ID %q not found", requested)
	}

	if len(devices) == 1 {
		return devices[0].ID, nil
	}

	ids := make([]string, len(devices))
	for index, candidate := range devices {
		ids[index] = candidate.ID
	}
	return "", failure.New(failure.AmbiguousTarget,
		"Multiple devices connected (%s). Please specify a device_id.", strings.Join(ids, ", "))
}

// Resolver resolves a requested device id against a live snapshot.
type Resolver struct {
	lister Lister
}

// NewResolver returns a Resolver that queries lister on every call.
func NewResolver(lister Lister) *Resolver {
	return &Resolver{lister: lister}
}

// Resolve lists devices and applies Select. An empty requested id means
// "the only connected device".
func (r *Resolver) Resolve(ctx context.Context, requested string) (string, error) {
	devices, err := r.lister.List(ctx)
	if err != nil {
		return "", err
	}
	return Select(requested, devices)
}

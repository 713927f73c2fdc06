// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/bureau-foundation/droidbridge/cmd/droidbridge/cli"
	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// constructors maps failure kinds to the tool error of their category.
// Kinds not listed are internal.
var constructors = map[failure.Kind]func(format string, args ...any) *cli.ToolError{
	failure.InvalidParameters:    cli.Validation,
	failure.AmbiguousTarget:      cli.Validation,
	failure.NoDevicesConnected:   cli.NotFound,
	failure.DeviceNotFound:       cli.NotFound,
	failure.LocalFileMissing:     cli.NotFound,
	failure.DirectoryNotWritable: cli.Forbidden,
	failure.UnsupportedPlatform:  cli.Forbidden,
}

// categorize tags err with the category and code of its failure kind.
// Errors without a kind pass through unchanged.
func categorize(err error) error {
	kind := failure.KindOf(err)
	if kind == "" {
		return err
	}
	build, ok := constructors[kind]
	if !ok {
		build = cli.Internal
	}
	return build("%w", err).WithCode(string(kind))
}

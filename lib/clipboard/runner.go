// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clipboard

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes one external utility to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs utilities with os/exec. The zero value is ready to
// use.
type ExecRunner struct{}

// Run executes name with args. On failure the error carries the
// utility's stderr verbatim, falling back to the exec error when
// stderr is empty.
//
// xclip forks a child that keeps serving the selection and inherits
// stderr. Stderr is therefore captured in a file, never a pipe: a pipe
// would hold Wait open until that child exits.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	stderr, err := os.CreateTemp("", ".droidbridge-clipboard-*.stderr")
	if err != nil {
		return fmt.Errorf("%s: capturing stderr: %w", name, err)
	}
	defer os.Remove(stderr.Name())
	defer stderr.Close()

	command := exec.CommandContext(ctx, name, args...)
	command.Stderr = stderr

	runErr := command.Run()
	if runErr == nil {
		return nil
	}
	diagnostic, _ := os.ReadFile(stderr.Name())
	if message := strings.TrimSpace(string(diagnostic)); message != "" {
		return fmt.Errorf("%s: %s", name, message)
	}
	return fmt.Errorf("%s: %w", name, runErr)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package bridge

import "os/exec"

// configureProcessGroup keeps exec's default kill-on-cancel behavior.
func configureProcessGroup(*exec.Cmd) {}

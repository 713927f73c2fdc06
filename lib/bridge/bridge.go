// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge runs adb command lines and classifies their outcome.
//
// The central type is [Bridge], which owns the resolved adb binary and
// the stderr classification policy. Every invocation goes through
// [Bridge.Run] or [Bridge.Stream], which inject the "-s <device>"
// selector when a [Command] is pinned to a device. One external process
// is spawned per call; there is no pooling and no persistent adb
// session.
//
// adb reports some non-fatal conditions on stderr with a zero exit code
// and some fatal ones with a zero exit code too, so success is decided
// from stderr content as well as exit status. Stderr lines containing a
// configured benign pattern, compared case-insensitively, are ignored;
// any other stderr line fails the call. The defaults cover warnings and
// the "* daemon ..." lines adb prints when it starts its server. This heuristic is
// adb-version dependent and can produce false positives.
//
// Calls are never retried: install, uninstall and push are not assumed
// idempotent.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/bureau-foundation/droidbridge/lib/failure"
)

// DefaultBinary is the adb executable name resolved through PATH.
const DefaultBinary = "adb"

// DefaultBenignStderr lists the stderr patterns adb uses for non-fatal
// diagnostics: warnings ("Warning: ...", "adb: warning: ...") and the
// server start-up notices ("* daemon not running; starting now at
// tcp:5037", "* daemon started successfully").
var DefaultBenignStderr = []string{"warning", "* daemon "}

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed on timeout.
const waitDelay = 5 * time.Second

// Command describes one adb invocation. It is constructed by an
// operation handler and consumed once.
type Command struct {
	// Args is the adb subcommand and its arguments, for example
	// {"shell", "pm", "list", "packages"}. Args are passed to adb as an
	// argv vector; no local shell is involved.
	Args []string

	// Device pins the command to a device serial via "-s". Empty means
	// untargeted (used for "devices" and "version").
	Device string
}

// Options configures a Bridge.
type Options struct {
	// Binary is the adb executable. Defaults to DefaultBinary.
	Binary string

	// Timeout bounds each invocation. Zero means no bound: a hung adb
	// hangs the request. On expiry the whole process group is killed.
	Timeout time.Duration

	// BenignStderr lists substrings that mark a stderr line as benign.
	// Nil selects DefaultBenignStderr; an empty non-nil slice makes all
	// stderr output fatal.
	BenignStderr []string

	// Logger receives one debug record per invocation. Nil discards.
	Logger *slog.Logger
}

// Bridge executes adb commands.
type Bridge struct {
	binary  string
	timeout time.Duration
	benign  []string
	logger  *slog.Logger
}

// New returns a Bridge configured by options.
func New(options Options) *Bridge {
	binary := options.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	benign := options.BenignStderr
	if benign == nil {
		benign = DefaultBenignStderr
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		binary:  binary,
		timeout: options.Timeout,
		benign:  benign,
		logger:  logger,
	}
}

// Binary returns the configured adb executable.
func (b *Bridge) Binary() string {
	return b.binary
}

// Check verifies that the adb binary can be executed by running
// "adb version". It is the startup precondition: a failure is returned
// as a BridgeUnavailable error rather than terminating the process, so
// callers decide how to report it.
func (b *Bridge) Check(ctx context.Context) error {
	path, err := exec.LookPath(b.binary)
	if err != nil {
		return failure.New(failure.BridgeUnavailable,
			"ADB is not available (%v). Please install Android SDK Platform Tools and add it to your PATH.", err)
	}
	if _, err := b.Run(ctx, Command{Args: []string{"version"}}); err != nil {
		return failure.New(failure.BridgeUnavailable, "ADB at %s is not usable: %v", path, err)
	}
	return nil
}

// Run executes command to completion and returns its trimmed stdout.
func (b *Bridge) Run(ctx context.Context, command Command) (string, error) {
	var stdout bytes.Buffer
	if err := b.execute(ctx, command, &stdout); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Stream executes command and copies its raw stdout into output. Used
// for binary payloads such as "exec-out screencap -p", where trimming
// or buffering the whole output as a string would corrupt or duplicate
// the data.
func (b *Bridge) Stream(ctx context.Context, command Command, output io.Writer) error {
	return b.execute(ctx, command, output)
}

// execute runs one process with stdout going to output and classifies
// the result.
func (b *Bridge) execute(ctx context.Context, command Command, output io.Writer) error {
	// In-flight adb processes are not cancelled when the caller loses
	// interest; only the configured timeout terminates them.
	ctx = context.WithoutCancel(ctx)
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	argv := commandLine(command)
	process := exec.CommandContext(ctx, b.binary, argv...)
	configureProcessGroup(process)
	process.WaitDelay = waitDelay

	// Keep a copy of a bounded stdout prefix for diagnostics when the
	// payload is streamed elsewhere.
	var stderr bytes.Buffer
	tail := &prefixBuffer{limit: 4096}
	process.Stdout = io.MultiWriter(output, tail)
	process.Stderr = &stderr

	started := time.Now()
	runErr := process.Run()

	b.logger.Debug("adb invocation",
		"args", argv,
		"device", command.Device,
		"duration", time.Since(started),
		"error", runErr,
	)

	if runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure.New(failure.BridgeCommandFailed,
			"ADB command failed: adb %s timed out after %s", strings.Join(command.Args, " "), b.timeout)
	}
	return b.classify(runErr, tail.String(), stderr.String())
}

// commandLine returns the adb argv for command, with the device
// selector first.
func commandLine(command Command) []string {
	argv := make([]string, 0, len(command.Args)+2)
	if command.Device != "" {
		argv = append(argv, "-s", command.Device)
	}
	return append(argv, command.Args...)
}

// classify decides success or failure from the process outcome.
func (b *Bridge) classify(runErr error, stdout, stderr string) error {
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return failure.New(failure.BridgeCommandFailed, "ADB command failed: %v", runErr)
	}

	if residue := b.significantStderr(stderr); residue != "" {
		return failure.New(failure.BridgeCommandFailed, "ADB command failed: %s", residue)
	}

	if exitErr != nil {
		diagnostic := exitErr.Error()
		if trimmed := strings.TrimSpace(stdout); trimmed != "" {
			diagnostic = fmt.Sprintf("%s: %s", diagnostic, trimmed)
		}
		return failure.New(failure.BridgeCommandFailed, "ADB command failed: %s", diagnostic)
	}

	return nil
}

// significantStderr returns stderr with blank and benign lines removed.
func (b *Bridge) significantStderr(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || b.isBenign(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func (b *Bridge) isBenign(line string) bool {
	line = strings.ToLower(line)
	for _, pattern := range b.benign {
		if pattern != "" && strings.Contains(line, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// prefixBuffer keeps the first limit bytes written to it and discards
// the rest without failing the writer chain.
type prefixBuffer struct {
	limit int
	data  []byte
}

func (p *prefixBuffer) Write(chunk []byte) (int, error) {
	if room := p.limit - len(p.data); room > 0 {
		if len(chunk) < room {
			room = len(chunk)
		}
		p.data = append(p.data, chunk[:room]...)
	}
	return len(chunk), nil
}

func (p *prefixBuffer) String() string {
	return string(p.data)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package failure defines the error taxonomy shared by every droidbridge
// component. Library packages return a *Error tagged with a [Kind]; the
// CLI and MCP layers translate the Kind into a tool error category
// without parsing message text.
//
// Messages always carry the underlying tool's diagnostic text verbatim
// (adb stderr, xclip output, OS errors) so that failures of the wrapped
// external command stay debuggable from the agent side.
package failure

import (
	"errors"
	"fmt"
)

// Kind names one failure class.
type Kind string

const (
	// BridgeUnavailable means the adb binary could not be run at
	// startup. Fatal: the server refuses to serve.
	BridgeUnavailable Kind = "BridgeUnavailable"

	// BridgeCommandFailed means an adb invocation failed to launch,
	// exited non-zero, or wrote non-benign text to stderr.
	BridgeCommandFailed Kind = "BridgeCommandFailed"

	// NoDevicesConnected means the device list was empty.
	NoDevicesConnected Kind = "NoDevicesConnected"

	// DeviceNotFound means a requested device id is not in the list.
	DeviceNotFound Kind = "DeviceNotFound"

	// AmbiguousTarget means several devices are connected and the
	// caller did not name one.
	AmbiguousTarget Kind = "AmbiguousTarget"

	// InvalidParameters means a required field was missing or malformed.
	InvalidParameters Kind = "InvalidParameters"

	// DirectoryNotWritable means the destination directory could not
	// be created or failed the write probe.
	DirectoryNotWritable Kind = "DirectoryNotWritable"

	// LocalFileMissing means a local source path (push, install) does
	// not exist.
	LocalFileMissing Kind = "LocalFileMissing"

	// CaptureFailed means the device-side screen capture or its
	// transfer failed, or produced no usable image.
	CaptureFailed Kind = "CaptureFailed"

	// ConversionFailed means the captured image could not be converted
	// to the requested format.
	ConversionFailed Kind = "ConversionFailed"

	// ClipboardFailed means the platform clipboard utility failed.
	ClipboardFailed Kind = "ClipboardFailed"

	// UnsupportedPlatform means the host OS has no clipboard backend.
	UnsupportedPlatform Kind = "UnsupportedPlatform"
)

// Error is a failure tagged with its Kind. The Kind travels separately
// from the message: Error() returns only the wrapped error's text.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind, so callers can write
// errors.Is(err, failure.Sentinel(failure.NoDevicesConnected)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.Err == nil
	}
	return false
}

// New creates an Error of the given kind with a formatted message.
// %w verbs are honored.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind, prefixing context. Returns nil when err is nil.
func Wrap(kind Kind, err error, context string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: fmt.Errorf("%s: %w", context, err)}
}

// Sentinel returns a message-less Error usable as an errors.Is target.
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf returns the Kind of the outermost *Error in err's chain, or ""
// when err carries no Kind.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return ""
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Coder is implemented by errors that carry a specific exit code.
type Coder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits with the error's exit
// code, or 1 when it carries none. Use it in main() for errors from
// run().
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes "error: err" to writer and returns the exit code Fatal
// would use. A nil err writes nothing and returns 0.
func Report(writer io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder Coder
	if errors.As(err, &coder) {
		code := coder.ExitCode()
		// Exit-code-only errors have already reported themselves.
		if err.Error() != "" {
			fmt.Fprintf(writer, "error: %v\n", err)
		}
		return code
	}
	fmt.Fprintf(writer, "error: %v\n", err)
	return 1
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse is returned when a matched parser binding fails to transform
	// the tool's standard output.
	ErrParse = errors.New("failed to parse command output")
	// ErrUnknownCommand is returned when a registry lookup names a command
	// that was never registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrExecutor is returned when the Executor could not run the tool at all.
	ErrExecutor = errors.New("executor failure")
)

// ExecError reports a tool invocation that finished with a non-zero exit
// code. The message embeds the code and the full joined standard error text.
type ExecError struct {
	ExitCode int
	Stderr   []string
}

// Error implements the error interface for ExecError.
func (e *ExecError) Error() string {
	return fmt.Sprintf("command exited with code %d: %s", e.ExitCode, strings.Join(e.Stderr, "\n"))
}

// DiagnosticError reports a tool invocation that exited zero but wrote
// standard error lines outside the benign-prefix whitelist. samtools does not
// always propagate failures through its exit code, so unrecognised stderr
// output is treated as an error signal of last resort.
type DiagnosticError struct {
	Lines []string
}

// Error implements the error interface for DiagnosticError.
func (e *DiagnosticError) Error() string {
	return "unexpected diagnostic output: " + strings.Join(e.Lines, "\n")
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import "context"

// Outcome is the raw result of one tool invocation as reported by an
// Executor: the process exit code, the captured standard error split into
// lines, and the raw standard output bytes.
type Outcome struct {
	ExitCode int      // Exit code of the tool process.
	Stderr   []string // Standard error, one entry per line, in emission order.
	Stdout   []byte   // Raw standard output.
}

// Executor runs a single tool subcommand and reports its outcome. The command
// string is the tool-internal identifier (e.g. "view"), args are passed
// through verbatim and in order. A nil or empty args slice invokes the
// command with no arguments, which samtools answers with its usage text on
// standard error.
//
// Execute returns a non-nil error only when the tool could not be run at all
// (binary missing, pipe failure). A run that completes with a non-zero exit
// code is reported through Outcome.ExitCode, not through the error return;
// classifying it is the Dispatcher's job.
type Executor interface {
	Execute(ctx context.Context, command string, args []string) (*Outcome, error)
}

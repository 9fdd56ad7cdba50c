// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package samcall exposes the samtools command line as in-process Go
// functions. Each subcommand is bound to a Dispatcher that invokes the
// underlying tool through an Executor, captures standard output and standard
// error, distinguishes benign diagnostic chatter from genuine failures, and
// optionally transforms raw output into a structured value via registered
// parser bindings.
//
// The package does not implement any samtools semantics itself. Everything
// below the Executor contract (the genomic algorithms, index formats, file
// parsing) belongs to the external tool.
package samcall

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

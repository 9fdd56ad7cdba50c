// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the samcall command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/genomekit/samcall"
	"github.com/genomekit/samcall/cmd/samcall/list"
	"github.com/genomekit/samcall/cmd/samcall/run"
	"github.com/genomekit/samcall/cmd/samcall/usage"
	"github.com/genomekit/samcall/internal/ctxlog"
	"github.com/genomekit/samcall/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		list.ListCmd,
		run.RunCmd,
		usage.UsageCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "samcall",
	Description: `Samcall exposes the samtools command line as callable functions.
It dispatches subcommand invocations to the samtools binary, captures
standard output and standard error, separates benign diagnostic chatter
from genuine failures, and can transform raw output into structured
values via registered parsers.`,
	Usage:     "samcall run flagstat in.bam",
	Copyright: "Copyright (c) genomekit 2025. All rights reserved.",
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", samcall.Version, samcall.Commit)

	if err := rootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}

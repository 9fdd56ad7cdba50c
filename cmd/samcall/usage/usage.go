// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package usage implements the subcommand that prints a samtools
// subcommand's own usage text.
package usage

import (
	"context"
	"fmt"

	"github.com/genomekit/samcall"
	"github.com/genomekit/samcall/toolexec"
	"github.com/urfave/cli/v3"
)

const toolFlag = "tool"

// UsageCmd is the command that shows the underlying tool's usage text for a
// registered subcommand.
var UsageCmd = &cli.Command{
	Name:        "usage",
	Description: "Show the samtools usage text for a registered subcommand.",
	ArgsUsage:   "COMMAND",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      toolFlag,
			Usage:     "Path to the samtools binary (default: resolved from PATH)",
			TakesFile: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return cli.Exit("Please provide exactly one command name", 1)
	}

	var opts []toolexec.Option
	if p := cmd.String(toolFlag); p != "" {
		opts = append(opts, toolexec.WithPath(p))
	}

	exec, err := toolexec.New(opts...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	reg := samcall.DefaultRegistry(exec)

	d, ok := reg.Lookup(args[0])
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown command %q, see 'samcall list'", args[0]), 1)
	}

	text, err := d.Usage(ctx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, _ = fmt.Fprintln(cmd.Writer, text)

	return nil
}

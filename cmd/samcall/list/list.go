// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the subcommand that prints the registered command
// names.
package list

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/genomekit/samcall"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const tableFlag = "table"

// FS is the filesystem used to read command table files.
var FS = afero.NewOsFs()

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	parsedStyle = lipgloss.NewStyle().Faint(true)
)

// ListCmd is the command that lists the registered samtools subcommands.
var ListCmd = &cli.Command{
	Name:        "list",
	Description: "List the registered samtools subcommands.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      tableFlag,
			Usage:     "Merge a YAML command table over the built-in one",
			TakesFile: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	entries := samcall.DefaultTable()

	if path := cmd.String(tableFlag); path != "" {
		extra, err := samcall.LoadTable(FS, path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		entries = samcall.MergeTables(entries, extra)
	}

	// Listing never invokes the tool, so no executor is needed.
	reg, err := samcall.NewRegistry(nil, entries...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	parsers := make(map[string]int, len(entries))
	for _, e := range entries {
		parsers[e.Name] = len(e.Parsers)
	}

	_, _ = fmt.Fprintln(cmd.Writer, titleStyle.Render("Registered commands:"))

	for _, name := range reg.Names() {
		line := "  " + name
		if n := parsers[name]; n > 0 {
			line += " " + parsedStyle.Render(fmt.Sprintf("(%d parser bindings)", n))
		}

		_, _ = fmt.Fprintln(cmd.Writer, line)
	}

	return nil
}

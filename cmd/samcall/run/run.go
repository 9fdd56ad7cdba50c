// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the subcommand that invokes a registered samtools
// command and prints its result.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TylerBrock/colorjson"
	"github.com/genomekit/samcall"
	"github.com/genomekit/samcall/toolexec"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	rawFlag   = "raw"
	jsonFlag  = "json"
	tableFlag = "table"
	toolFlag  = "tool"
)

// ErrEncodeResult is returned when a result cannot be rendered as JSON.
var ErrEncodeResult = errors.New("failed to encode result")

// FS is the filesystem used to read command table files.
var FS = afero.NewOsFs()

// RunCmd is the command that invokes a registered samtools subcommand.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Invoke a registered samtools subcommand. Arguments after the command name are passed to the tool verbatim.",
	ArgsUsage:   "COMMAND [ARGS...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  rawFlag,
			Usage: "Print raw stdout, suppressing parser application",
		},
		&cli.BoolFlag{
			Name:  jsonFlag,
			Usage: "Print the full result (stdout, stderr, parsed value) as JSON",
		},
		&cli.StringFlag{
			Name:      tableFlag,
			Usage:     "Merge a YAML command table over the built-in one",
			TakesFile: true,
		},
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
	if len(args) == 0 {
		return cli.Exit("Please provide a command to run, see 'samcall list'", 1)
	}

	name, toolArgs := args[0], args[1:]

	reg, err := BuildRegistry(cmd.String(toolFlag), cmd.String(tableFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	d, ok := reg.Lookup(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("unknown command %q, see 'samcall list'", name), 1)
	}

	if cmd.Bool(rawFlag) {
		out, err := d.CallRaw(ctx, toolArgs...)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		_, _ = cmd.Writer.Write(out)

		return nil
	}

	res, err := d.Call(ctx, toolArgs...)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if !cmd.Bool(jsonFlag) && res.Value == nil {
		_, _ = cmd.Writer.Write(res.Stdout)

		return nil
	}

	payload := any(res.Value)
	if cmd.Bool(jsonFlag) {
		payload = resultEnvelope{
			Stdout: string(res.Stdout),
			Stderr: res.Stderr,
			Value:  res.Value,
		}
	}

	text, err := FormatJSON(payload)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, _ = fmt.Fprintln(cmd.Writer, text)

	return nil
}

// resultEnvelope is the machine-readable shape emitted by --json.
type resultEnvelope struct {
	Stdout string   `json:"stdout"`
	Stderr []string `json:"stderr"`
	Value  any      `json:"value,omitempty"`
}

// BuildRegistry constructs the command registry backed by an OS executor,
// overlaying a YAML table file onto the built-in table when one is given.
func BuildRegistry(toolPath, tablePath string) (*samcall.Registry, error) {
	var opts []toolexec.Option
	if toolPath != "" {
		opts = append(opts, toolexec.WithPath(toolPath))
	}

	exec, err := toolexec.New(opts...)
	if err != nil {
		return nil, err
	}

	entries := samcall.DefaultTable()

	if tablePath != "" {
		extra, err := samcall.LoadTable(FS, tablePath)
		if err != nil {
			return nil, err
		}

		entries = samcall.MergeTables(entries, extra)
	}

	return samcall.NewRegistry(exec, entries...)
}

// FormatJSON renders a value as indented JSON, colorized when stdout is a
// terminal. colorjson walks plain maps and slices, so the value is
// round-tripped through encoding/json first.
func FormatJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrEncodeResult, err)
	}

	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return "", errors.Join(ErrEncodeResult, err)
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !term.IsTerminal(int(os.Stdout.Fd()))

	out, err := f.Marshal(plain)
	if err != nil {
		return "", errors.Join(ErrEncodeResult, err)
	}

	return string(out), nil
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/genomekit/samcall/internal/ctxlog"
)

// DefaultBenignPrefixes identifies stderr lines that samtools emits as
// routine progress notices. Lines starting with one of these prefixes are
// excluded from error classification. The set tracks the wording of the
// external tool's diagnostics and is configuration, not business logic;
// override it per dispatcher with WithBenignPrefixes.
var DefaultBenignPrefixes = []string{
	"[sam_header_read2]",
	"[bam_index_load]",
	"[bam_sort_core]",
	"[samopen] SAM header is present",
}

// Result is the outcome of a successful dispatch. Stdout always holds the
// raw tool output. Value is non-nil only when a parser binding matched and
// ran. Stderr is the call-scoped copy of the captured standard error so that
// concurrent callers need not rely on the dispatcher's retained snapshot.
type Result struct {
	Stdout []byte
	Value  any
	Stderr []string
}

// Dispatcher binds one tool subcommand to an Executor and adapts invocations
// of it: it forwards arguments verbatim, classifies the outcome, and applies
// the first matching parser binding to standard output.
//
// A dispatcher retains the standard error of its most recent invocation,
// overwritten on every call whether it succeeds or fails. The snapshot is
// guarded by a mutex so concurrent callers do not race on it, but callers
// that need the stderr belonging to their own call should read it from the
// Result instead.
type Dispatcher struct {
	exec    Executor
	command string
	parsers []Binding
	benign  []string

	mu     sync.Mutex
	stderr []string
}

// DispatcherOption configures a Dispatcher at construction.
type DispatcherOption func(*Dispatcher)

// WithBenignPrefixes replaces the default benign stderr prefix whitelist.
func WithBenignPrefixes(prefixes ...string) DispatcherOption {
	return func(d *Dispatcher) {
		d.benign = prefixes
	}
}

// NewDispatcher creates a dispatcher for the given tool-internal command
// identifier. Parser bindings are evaluated in the order given,
// first-match-wins, so more specific option sets must be registered first.
func NewDispatcher(exec Executor, command string, parsers []Binding, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		exec:    exec,
		command: command,
		parsers: parsers,
		benign:  DefaultBenignPrefixes,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Command returns the tool-internal identifier this dispatcher is bound to.
func (d *Dispatcher) Command() string {
	return d.command
}

// Call invokes the bound subcommand with the given arguments. On success the
// Result carries the raw stdout and, when a parser binding matched, the
// parsed value. A non-zero exit code returns an ExecError; a zero exit with
// stderr lines outside the benign whitelist returns a DiagnosticError.
func (d *Dispatcher) Call(ctx context.Context, args ...string) (*Result, error) {
	return d.call(ctx, args, false)
}

// CallRaw invokes the bound subcommand and returns the raw stdout bytes,
// suppressing parser application even when a binding would match.
// Classification is identical to Call.
func (d *Dispatcher) CallRaw(ctx context.Context, args ...string) ([]byte, error) {
	res, err := d.call(ctx, args, true)
	if err != nil {
		return nil, err
	}

	return res.Stdout, nil
}

func (d *Dispatcher) call(ctx context.Context, args []string, raw bool) (*Result, error) {
	logger := ctxlog.Logger(ctx).With("command", d.command)
	logger.Debug("dispatching", "args", args, "raw", raw)

	out, err := d.exec.Execute(ctx, d.command, args)
	if err != nil {
		return nil, errors.Join(ErrExecutor, err)
	}

	// The snapshot is overwritten on every invocation, success or failure.
	d.mu.Lock()
	d.stderr = slices.Clone(out.Stderr)
	d.mu.Unlock()

	// Any non-zero exit is fatal regardless of stderr content, so this check
	// happens before line filtering.
	if out.ExitCode != 0 {
		logger.Debug("non-zero exit", "exitCode", out.ExitCode)

		return nil, &ExecError{ExitCode: out.ExitCode, Stderr: out.Stderr}
	}

	if suspicious := d.suspicious(out.Stderr); len(suspicious) > 0 {
		logger.Debug("suspicious stderr", "lines", len(suspicious))

		return nil, &DiagnosticError{Lines: suspicious}
	}

	res := &Result{Stdout: out.Stdout, Stderr: out.Stderr}

	if raw || len(out.Stdout) == 0 || len(d.parsers) == 0 {
		return res, nil
	}

	for _, b := range d.parsers {
		if !b.matches(args) {
			continue
		}

		v, err := b.Transform(out.Stdout)
		if err != nil {
			return nil, errors.Join(ErrParse, err)
		}

		res.Value = v

		return res, nil
	}

	return res, nil
}

// suspicious filters lines down to those not starting with a benign prefix.
func (d *Dispatcher) suspicious(lines []string) []string {
	var out []string

	for _, line := range lines {
		if d.isBenign(line) {
			continue
		}

		out = append(out, line)
	}

	return out
}

func (d *Dispatcher) isBenign(line string) bool {
	for _, prefix := range d.benign {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}

// Messages returns the unfiltered stderr lines captured during the most
// recent invocation, benign or not, so callers can inspect warnings even
// when the call succeeded.
func (d *Dispatcher) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.stderr)
}

// Usage invokes the bound subcommand with no arguments and returns the
// joined stderr text verbatim. samtools answers a bare subcommand with its
// usage summary on standard error and a non-zero exit code, so no
// classification is applied here.
func (d *Dispatcher) Usage(ctx context.Context) (string, error) {
	out, err := d.exec.Execute(ctx, d.command, nil)
	if err != nil {
		return "", errors.Join(ErrExecutor, err)
	}

	return strings.Join(out.Stderr, "\n"), nil
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package toolexec implements the samcall.Executor contract on top of a
// samtools binary on the local system. Each Execute call spawns one process
// per invocation with piped stdout and stderr and reports the exit code,
// stderr lines and raw stdout back to the dispatcher.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/genomekit/samcall"
	"github.com/genomekit/samcall/internal/ctxlog"
)

// DefaultTool is the binary resolved from PATH when no explicit path is
// given.
const DefaultTool = "samtools"

const maxBufferSize = 8 * 1024 * 1024 // 8MB

var (
	// ErrToolNotFound is returned when the tool binary cannot be resolved.
	ErrToolNotFound = errors.New("could not locate tool executable")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCouldNotStartProcess is returned when the tool process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrProcessWait is returned when waiting on the tool process fails.
	ErrProcessWait = errors.New("failed to wait for process")
	// ErrFailedToReadBuffer is returned when an output pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrBufferOverflow is returned when output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
)

// lookPath resolves a binary name against PATH. Variable so tests can stub it.
var lookPath = exec.LookPath

var _ samcall.Executor = (*Executor)(nil)

// Executor runs subcommands of a single tool binary.
type Executor struct {
	path string
}

// Option configures an Executor at construction.
type Option func(*Executor)

// WithPath sets an explicit tool binary path, bypassing PATH resolution.
func WithPath(path string) Option {
	return func(e *Executor) {
		e.path = path
	}
}

// New creates an Executor, resolving the samtools binary from PATH unless an
// explicit path is supplied.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{}

	for _, opt := range opts {
		opt(e)
	}

	if e.path == "" {
		p, err := lookPath(DefaultTool)
		if err != nil {
			return nil, errors.Join(ErrToolNotFound, err)
		}

		e.path = p
	}

	return e, nil
}

// Path returns the resolved tool binary path.
func (e *Executor) Path() string {
	return e.path
}

// Execute implements samcall.Executor. It spawns `<tool> <command> <args...>`
// and blocks until the process exits. The returned error is non-nil only
// when the process could not be run or its output could not be captured; a
// completed run is always reported through the Outcome, whatever its exit
// code.
func (e *Executor) Execute(ctx context.Context, command string, args []string) (*samcall.Outcome, error) {
	logger := ctxlog.Logger(ctx).With("tool", e.path).With("command", command)
	logger.Debug("executing", "args", args)

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	argv := slices.Concat([]string{filepath.Base(e.path), command}, args)

	ps, err := os.StartProcess(e.path, argv, &os.ProcAttr{
		Files: []*os.File{os.Stdin, wOut, wErr},
	})
	if err != nil {
		_ = wOut.Close()
		_ = wErr.Close()

		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("process started", "pid", ps.Pid)

	// The parent's copies of the write ends must close now so the readers
	// see EOF when the child exits.
	_ = wOut.Close()
	_ = wErr.Close()

	// Both pipes are drained concurrently while the child runs. Waiting
	// first would deadlock once the child fills the kernel pipe buffer,
	// long before the advertised output cap.
	outCh := drain(ctx, rOut)
	errCh := drain(ctx, rErr)

	state, err := ps.Wait()

	stdoutRes := <-outCh
	stderrRes := <-errCh

	_ = rOut.Close()
	_ = rErr.Close()

	if err != nil {
		return nil, errors.Join(ErrProcessWait, err)
	}

	if stdoutRes.err != nil {
		return nil, stdoutRes.err
	}

	if stderrRes.err != nil {
		return nil, stderrRes.err
	}

	stdout := stdoutRes.data
	stderr := stderrRes.data

	outcome := &samcall.Outcome{
		ExitCode: state.ExitCode(),
		Stdout:   stdout,
		Stderr:   splitLines(stderr),
	}

	logger.Debug("process finished",
		"exitCode", outcome.ExitCode,
		"stdoutBytes", len(outcome.Stdout),
		"stderrLines", len(outcome.Stderr),
	)

	return outcome, nil
}

// splitLines converts raw stderr bytes into lines, dropping the trailing
// newline but preserving interior empty lines.
func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}

	s := strings.TrimSuffix(string(b), "\n")

	return strings.Split(s, "\n")
}

type pipeResult struct {
	data []byte
	err  error
}

// drain reads a pipe to EOF in the background. The returned channel yields
// exactly one result once the write end closes.
func drain(ctx context.Context, r io.Reader) <-chan pipeResult {
	ch := make(chan pipeResult, 1)

	go func() {
		data, err := readAllUpToMax(ctx, r, maxBufferSize)
		ch <- pipeResult{data: data, err: err}
	}()

	return ch
}

func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return nil, errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Debug(ctx, "buffer overflow", "bytesRead", n, "maxBytes", maxBufferSize)

		// Keep draining so the writer is never blocked on a full pipe.
		_, _ = io.Copy(io.Discard, r)

		return nil, ErrBufferOverflow
	}

	return buf.Bytes(), nil
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor returns queued outcomes in order and records each call.
type fakeExecutor struct {
	outcomes []*Outcome
	err      error

	commands [][]string // command + args per call
}

func (f *fakeExecutor) Execute(_ context.Context, command string, args []string) (*Outcome, error) {
	f.commands = append(f.commands, append([]string{command}, args...))

	if f.err != nil {
		return nil, f.err
	}

	out := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}

	return out, nil
}

func outcome(exitCode int, stderr []string, stdout string) *Outcome {
	return &Outcome{ExitCode: exitCode, Stderr: stderr, Stdout: []byte(stdout)}
}

func TestCallSuccessWithBenignStderr(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(0, []string{"[bam_index_load] foo"}, "120 total\n"),
	}}
	d := NewDispatcher(exec, "flagstat", nil)

	res, err := d.Call(context.Background(), "in.bam")
	require.NoError(t, err)

	assert.Equal(t, "120 total\n", string(res.Stdout))
	assert.Nil(t, res.Value)
	assert.Equal(t, []string{"[bam_index_load] foo"}, res.Stderr)
	assert.Equal(t, []string{"[bam_index_load] foo"}, d.Messages())
}

func TestCallPassesArgumentsVerbatim(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "")}}
	d := NewDispatcher(exec, "view", nil)

	_, err := d.Call(context.Background(), "-b", "-o", "out.bam", "in.sam")
	require.NoError(t, err)

	require.Len(t, exec.commands, 1)
	assert.Equal(t, []string{"view", "-b", "-o", "out.bam", "in.sam"}, exec.commands[0])
}

func TestCallNonZeroExit(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(1, []string{"error: truncated file"}, ""),
	}}
	d := NewDispatcher(exec, "view", nil)

	_, err := d.Call(context.Background(), "in.bam")
	require.Error(t, err)

	var execErr *ExecError

	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, execErr.ExitCode)
	assert.Contains(t, err.Error(), "1")
	assert.Contains(t, err.Error(), "error: truncated file")
}

func TestCallNonZeroExitWinsOverBenignStderr(t *testing.T) {
	// Exit code is checked before any line filtering: a non-zero exit is
	// fatal even when every stderr line is whitelisted.
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(2, []string{"[bam_index_load] ok"}, ""),
	}}
	d := NewDispatcher(exec, "index", nil)

	_, err := d.Call(context.Background(), "in.bam")

	var execErr *ExecError

	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 2, execErr.ExitCode)
}

func TestCallSuspiciousStderr(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(0, []string{
			"[sam_header_read2] 2 sequences loaded",
			"something went wrong",
			"[bam_sort_core] merging",
			"another problem",
		}, "data\n"),
	}}
	d := NewDispatcher(exec, "sort", nil)

	_, err := d.Call(context.Background(), "in.bam")
	require.Error(t, err)

	var diagErr *DiagnosticError

	require.ErrorAs(t, err, &diagErr)
	assert.Equal(t, []string{"something went wrong", "another problem"}, diagErr.Lines)
	assert.Contains(t, err.Error(), "something went wrong\nanother problem")
	assert.NotContains(t, err.Error(), "[bam_sort_core]")

	// The retained snapshot is the unfiltered stderr.
	assert.Len(t, d.Messages(), 4)
}

func TestCallClassificationOrderIdempotent(t *testing.T) {
	// Reordering whitelisted lines among the suspicious ones changes
	// neither the classification nor the suspicious line set.
	orderings := [][]string{
		{"bad line", "[bam_index_load] a", "[sam_header_read2] b"},
		{"[bam_index_load] a", "bad line", "[sam_header_read2] b"},
		{"[bam_index_load] a", "[sam_header_read2] b", "bad line"},
	}

	for _, stderr := range orderings {
		exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, stderr, "")}}
		d := NewDispatcher(exec, "view", nil)

		_, err := d.Call(context.Background())

		var diagErr *DiagnosticError

		require.ErrorAs(t, err, &diagErr)
		assert.Equal(t, []string{"bad line"}, diagErr.Lines)
	}
}

func TestCallParserSelectionFirstMatch(t *testing.T) {
	first := func([]byte) (any, error) { return "first", nil }
	second := func([]byte) (any, error) { return "second", nil }

	bindings := []Binding{
		{Options: []string{"-c"}, Transform: first},
		{Options: nil, Transform: second},
	}

	t.Run("specific binding wins when its option is present", func(t *testing.T) {
		exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "x\n")}}
		d := NewDispatcher(exec, "pileup", bindings)

		res, err := d.Call(context.Background(), "-c", "in.bam")
		require.NoError(t, err)
		assert.Equal(t, "first", res.Value)
	})

	t.Run("catch-all binding applies otherwise", func(t *testing.T) {
		exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "x\n")}}
		d := NewDispatcher(exec, "pileup", bindings)

		res, err := d.Call(context.Background(), "in.bam")
		require.NoError(t, err)
		assert.Equal(t, "second", res.Value)
	})

	t.Run("raw suppresses parsing even when a binding matches", func(t *testing.T) {
		exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "x\n")}}
		d := NewDispatcher(exec, "pileup", bindings)

		out, err := d.CallRaw(context.Background(), "-c", "in.bam")
		require.NoError(t, err)
		assert.Equal(t, "x\n", string(out))
	})
}

func TestCallNoMatchingBindingReturnsRaw(t *testing.T) {
	bindings := []Binding{
		{Options: []string{"-c"}, Transform: func([]byte) (any, error) { return "parsed", nil }},
	}
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "raw output\n")}}
	d := NewDispatcher(exec, "pileup", bindings)

	res, err := d.Call(context.Background(), "in.bam")
	require.NoError(t, err)
	assert.Nil(t, res.Value)
	assert.Equal(t, "raw output\n", string(res.Stdout))
}

func TestCallEmptyStdoutSkipsParsers(t *testing.T) {
	called := false
	bindings := []Binding{
		{Transform: func([]byte) (any, error) {
			called = true
			return nil, nil
		}},
	}
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "")}}
	d := NewDispatcher(exec, "sort", bindings)

	res, err := d.Call(context.Background(), "in.bam")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Empty(t, res.Stdout)
}

func TestCallTransformFailure(t *testing.T) {
	bindings := []Binding{
		{Transform: func([]byte) (any, error) { return nil, errors.New("boom") }},
	}
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "x\n")}}
	d := NewDispatcher(exec, "pileup", bindings)

	_, err := d.Call(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestCallExecutorFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("no such binary")}
	d := NewDispatcher(exec, "view", nil)

	_, err := d.Call(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutor)
	assert.Empty(t, d.Messages())
}

func TestMessagesOverwrittenEachCall(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(0, []string{"[bam_index_load] first"}, ""),
		outcome(1, []string{"fatal: second"}, ""),
	}}
	d := NewDispatcher(exec, "view", nil)

	_, err := d.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"[bam_index_load] first"}, d.Messages())

	// Failures overwrite the snapshot too.
	_, err = d.Call(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"fatal: second"}, d.Messages())
}

func TestUsage(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(1, []string{"Usage: samtools view [options]", "", "Options:"}, ""),
	}}
	d := NewDispatcher(exec, "view", nil)

	usage, err := d.Usage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Usage: samtools view [options]\n\nOptions:", usage)

	// The usage operation invokes the command with no arguments.
	require.Len(t, exec.commands, 1)
	assert.Equal(t, []string{"view"}, exec.commands[0])
}

func TestWithBenignPrefixes(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{
		outcome(0, []string{"[custom] fine", "[bam_index_load] now suspicious"}, ""),
	}}
	d := NewDispatcher(exec, "view", nil, WithBenignPrefixes("[custom]"))

	_, err := d.Call(context.Background())

	var diagErr *DiagnosticError

	require.ErrorAs(t, err, &diagErr)
	assert.Equal(t, []string{"[bam_index_load] now suspicious"}, diagErr.Lines)
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryLookup(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "ok\n")}}

	r, err := NewRegistry(exec,
		Entry{Name: "view"},
		Entry{Name: "samimport", Dispatch: "import"},
	)
	require.NoError(t, err)

	d, ok := r.Lookup("view")
	require.True(t, ok)
	assert.Equal(t, "view", d.Command())

	// Empty Dispatch defaults to the public name; explicit Dispatch is kept.
	d, ok = r.Lookup("samimport")
	require.True(t, ok)
	assert.Equal(t, "import", d.Command())

	_, ok = r.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestNewRegistryNamesSorted(t *testing.T) {
	r, err := NewRegistry(nil, Entry{Name: "sort"}, Entry{Name: "cat"}, Entry{Name: "view"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "sort", "view"}, r.Names())
}

func TestNewRegistryInvalidEntries(t *testing.T) {
	_, err := NewRegistry(nil,
		Entry{Name: "view"},
		Entry{Name: ""},
		Entry{Name: "view"},
	)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistryCall(t *testing.T) {
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, "120 total\n")}}

	r, err := NewRegistry(exec, Entry{Name: "flagstat"})
	require.NoError(t, err)

	res, err := r.Call(context.Background(), "flagstat", "in.bam")
	require.NoError(t, err)
	assert.Equal(t, "120 total\n", string(res.Stdout))

	_, err = r.Call(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil)

	for _, name := range []string{"view", "sort", "flagstat", "faidx", "samimport", "pileup"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}

	// The reserved-word workaround keeps "import" off the public surface.
	_, ok := r.Lookup("import")
	assert.False(t, ok)
}

func TestDefaultRegistryPileupParser(t *testing.T) {
	line := strings.Join([]string{"chr1", "100", "A", "G", "40", "40", "60", "12", "gggggGGGGggg", "IIIIIIIIIIII"}, "\t")
	exec := &fakeExecutor{outcomes: []*Outcome{outcome(0, nil, line + "\n")}}

	r := DefaultRegistry(exec)

	res, err := r.Call(context.Background(), "pileup", "-c", "in.bam")
	require.NoError(t, err)

	records, ok := res.Value.([]PileupRecord)
	require.True(t, ok, "expected pileup -c output to be parsed")
	require.Len(t, records, 1)
	assert.Equal(t, "chr1", records[0].Chromosome)
	assert.Equal(t, 100, records[0].Position)

	// Without -c the binding does not match and output stays raw.
	exec.outcomes = []*Outcome{outcome(0, nil, "raw\n")}
	res, err = r.Call(context.Background(), "pileup", "in.bam")
	require.NoError(t, err)
	assert.Nil(t, res.Value)
}

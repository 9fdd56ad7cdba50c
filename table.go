// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

// Entry declares one dispatchable command: the public caller-facing name,
// the tool-internal identifier handed to the Executor, and the ordered
// parser bindings evaluated against each invocation's argument list.
// Entries are immutable once handed to a Registry.
type Entry struct {
	Name     string
	Dispatch string
	Parsers  []Binding
}

// DefaultTable returns the built-in command table. It is the single source
// of truth for which samtools subcommands are exposed; adding a command
// means adding an entry here, not new code paths.
//
// "import" is a keyword-adjacent name in several host languages, so the
// original toolkit convention of exposing it as "samimport" is kept.
func DefaultTable() []Entry {
	return []Entry{
		{Name: "view", Dispatch: "view"},
		{Name: "sort", Dispatch: "sort"},
		{Name: "mpileup", Dispatch: "mpileup"},
		{Name: "depth", Dispatch: "depth"},
		{Name: "faidx", Dispatch: "faidx"},
		{Name: "tview", Dispatch: "tview"},
		{Name: "index", Dispatch: "index"},
		{Name: "idxstats", Dispatch: "idxstats"},
		{Name: "fixmate", Dispatch: "fixmate"},
		{Name: "flagstat", Dispatch: "flagstat"},
		{Name: "calmd", Dispatch: "calmd"},
		{Name: "merge", Dispatch: "merge"},
		{Name: "rmdup", Dispatch: "rmdup"},
		{Name: "reheader", Dispatch: "reheader"},
		{Name: "cat", Dispatch: "cat"},
		{Name: "targetcut", Dispatch: "targetcut"},
		{Name: "phase", Dispatch: "phase"},
		{Name: "samimport", Dispatch: "import"},
		{Name: "bam2fq", Dispatch: "bam2fq"},
		{Name: "pileup", Dispatch: "pileup", Parsers: []Binding{
			{Options: []string{"-c"}, Transform: ParsePileup},
		}},
	}
}

// MergeTables overlays entries onto a base table. An overlay entry with the
// same public name replaces the base entry in place; new names are appended
// in the order given.
func MergeTables(base, overlay []Entry) []Entry {
	merged := make([]Entry, len(base))
	copy(merged, base)

	index := make(map[string]int, len(base))
	for i, e := range base {
		index[e.Name] = i
	}

	for _, e := range overlay {
		if i, ok := index[e.Name]; ok {
			merged[i] = e
			continue
		}

		index[e.Name] = len(merged)
		merged = append(merged, e)
	}

	return merged
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var (
	// ErrReadTable is returned when the table file cannot be read.
	ErrReadTable = errors.New("failed to read command table file")
	// ErrTableUnmarshal is returned when the table document cannot be
	// unmarshaled.
	ErrTableUnmarshal = errors.New("failed to unmarshal command table, please check the syntax and structure of your YAML file")
	// ErrUnknownTransform is returned when a table entry references a
	// transform name that was never registered.
	ErrUnknownTransform = errors.New("unknown transform")
)

// transforms maps transform names usable from YAML command tables to their
// implementations. Populated with the built-in parsers; extend it with
// RegisterTransform before loading tables that reference custom names.
var (
	transformsMu sync.RWMutex
	transforms   = map[string]Transform{
		"pileup":   ParsePileup,
		"flagstat": ParseFlagstat,
	}
)

// RegisterTransform makes a transform addressable by name from YAML command
// tables. Safe for concurrent use, though registration normally happens
// during initialization, before any table is loaded.
func RegisterTransform(name string, t Transform) {
	transformsMu.Lock()
	defer transformsMu.Unlock()

	transforms[name] = t
}

func lookupTransform(name string) (Transform, bool) {
	transformsMu.RLock()
	defer transformsMu.RUnlock()

	t, ok := transforms[name]

	return t, ok
}

// tableDocument is the YAML schema for a declarative command table.
type tableDocument struct {
	Commands []tableEntry `yaml:"commands"`
}

type tableEntry struct {
	Name     string         `yaml:"name"`
	Dispatch string         `yaml:"dispatch"`
	Parsers  []tableBinding `yaml:"parsers"`
}

type tableBinding struct {
	Options []string `yaml:"options"`
	Parser  string   `yaml:"parser"`
}

// LoadTable reads a YAML command table from the filesystem. The table format
// mirrors DefaultTable: a list of command entries, each optionally carrying
// parser bindings that reference registered transforms by name.
func LoadTable(fs afero.Fs, path string) ([]Entry, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrReadTable, err)
	}

	return ParseTable(content)
}

// ParseTable decodes a YAML command table document into registry entries.
// Validation failures are collected across all entries and reported together.
func ParseTable(data []byte) ([]Entry, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrTableUnmarshal, err)
	}

	var merr *multierror.Error

	entries := make([]Entry, 0, len(doc.Commands))

	for _, c := range doc.Commands {
		if c.Name == "" {
			merr = multierror.Append(merr, ErrEmptyName)
			continue
		}

		e := Entry{Name: c.Name, Dispatch: c.Dispatch}
		if e.Dispatch == "" {
			e.Dispatch = c.Name
		}

		for _, b := range c.Parsers {
			t, ok := lookupTransform(b.Parser)
			if !ok {
				merr = multierror.Append(merr, fmt.Errorf("%w: %q in command %q", ErrUnknownTransform, b.Parser, c.Name))
				continue
			}

			e.Parsers = append(e.Parsers, Binding{Options: b.Options, Transform: t})
		}

		entries = append(entries, e)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrEmptyName is returned when a table entry has no public name.
	ErrEmptyName = errors.New("command entry has no name")
	// ErrDuplicateName is returned when two table entries share a public name.
	ErrDuplicateName = errors.New("duplicate command name")
)

// Registry holds one Dispatcher per registered command, constructed once and
// immutable afterward. Callers obtain dispatchers by public name rather than
// through ambient globals.
type Registry struct {
	dispatchers map[string]*Dispatcher
	names       []string
}

// NewRegistry builds a registry from the given table entries, one Dispatcher
// per entry. An entry with an empty Dispatch identifier defaults to its
// public name. Invalid entries are reported together.
func NewRegistry(exec Executor, entries ...Entry) (*Registry, error) {
	r := &Registry{
		dispatchers: make(map[string]*Dispatcher, len(entries)),
		names:       make([]string, 0, len(entries)),
	}

	var merr *multierror.Error

	for _, e := range entries {
		if e.Name == "" {
			merr = multierror.Append(merr, ErrEmptyName)
			continue
		}

		if _, ok := r.dispatchers[e.Name]; ok {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s", ErrDuplicateName, e.Name))
			continue
		}

		dispatch := e.Dispatch
		if dispatch == "" {
			dispatch = e.Name
		}

		r.dispatchers[e.Name] = NewDispatcher(exec, dispatch, e.Parsers)
		r.names = append(r.names, e.Name)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	slices.Sort(r.names)

	return r, nil
}

// DefaultRegistry builds a registry from the built-in command table.
func DefaultRegistry(exec Executor) *Registry {
	r, err := NewRegistry(exec, DefaultTable()...)
	if err != nil {
		// The built-in table is static and known valid.
		panic(err)
	}

	return r
}

// Lookup returns the dispatcher registered under the given public name.
func (r *Registry) Lookup(name string) (*Dispatcher, bool) {
	d, ok := r.dispatchers[name]
	return d, ok
}

// Names returns the registered public command names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Call invokes the named command, resolving it through the registry first.
func (r *Registry) Call(ctx context.Context, name string, args ...string) (*Result, error) {
	d, ok := r.dispatchers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	return d.Call(ctx, args...)
}

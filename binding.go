// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import "slices"

// Transform converts the raw standard output of a tool invocation into a
// structured value.
type Transform func(stdout []byte) (any, error)

// Binding pairs a set of required command line options with a Transform. The
// transform runs only when every option appears in the literal argument list
// supplied by the caller; defaults and option aliases do not count.
type Binding struct {
	Options   []string
	Transform Transform
}

// matches reports whether every required option is present in args.
// A binding with no required options matches any argument list.
func (b Binding) matches(args []string) bool {
	for _, opt := range b.Options {
		if !slices.Contains(args, opt) {
			return false
		}
	}

	return true
}

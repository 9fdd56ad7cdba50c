// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrFlagstatFormat is returned when a flagstat line does not follow the
// "PASSED + FAILED label" format.
var ErrFlagstatFormat = errors.New("malformed flagstat line")

// FlagstatCount is one flagstat counter, split into QC-passed and QC-failed
// reads.
type FlagstatCount struct {
	Passed int64
	Failed int64
}

// Flagstat is the structured form of "samtools flagstat" output. Counters
// with labels this parser does not know are ignored so that new tool
// versions adding lines do not break the transform.
type Flagstat struct {
	Total          FlagstatCount
	Secondary      FlagstatCount
	Supplementary  FlagstatCount
	Duplicates     FlagstatCount
	Mapped         FlagstatCount
	Paired         FlagstatCount
	Read1          FlagstatCount
	Read2          FlagstatCount
	ProperlyPaired FlagstatCount
	Singletons     FlagstatCount
}

// ParseFlagstat transforms raw flagstat output into a Flagstat value. It is
// registered under the transform name "flagstat" for YAML command tables but
// not bound in the default table, where flagstat output stays raw.
func ParseFlagstat(stdout []byte) (any, error) {
	stats := Flagstat{}

	fields := map[string]*FlagstatCount{
		"in total":             &stats.Total,
		"secondary":            &stats.Secondary,
		"supplementary":        &stats.Supplementary,
		"duplicates":           &stats.Duplicates,
		"mapped":               &stats.Mapped,
		"paired in sequencing": &stats.Paired,
		"read1":                &stats.Read1,
		"read2":                &stats.Read2,
		"properly paired":      &stats.ProperlyPaired,
		"singletons":           &stats.Singletons,
	}

	scanner := bufio.NewScanner(bytes.NewReader(stdout))

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if line == "" {
			continue
		}

		var passed, failed int64

		var label string

		n, err := fmt.Sscanf(line, "%d + %d %s", &passed, &failed, &label)
		if err != nil || n < 3 {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrFlagstatFormat, line)
		}

		// Sscanf stops the label at the first space; match on the full
		// remainder of the line instead.
		rest := line[strings.Index(line, label):]

		for key, dst := range fields {
			if strings.HasPrefix(rest, key) {
				dst.Passed = passed
				dst.Failed = failed

				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

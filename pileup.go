// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package samcall

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const pileupColumns = 10

// ErrPileupFormat is returned when a pileup line does not follow the
// ten-column consensus format produced by "pileup -c".
var ErrPileupFormat = errors.New("malformed consensus pileup line")

// PileupRecord is one position of consensus pileup output
// (tab-separated, ten columns).
type PileupRecord struct {
	Chromosome       string
	Position         int
	ReferenceBase    string
	ConsensusBase    string
	ConsensusQuality int
	SNPQuality       int
	MappingQuality   int
	Coverage         int
	ReadBases        string
	BaseQualities    string
}

// ParsePileup transforms raw "pileup -c" output into a []PileupRecord.
// Blank lines are skipped; any other line that does not parse fails the
// whole transform.
func ParsePileup(stdout []byte) (any, error) {
	var records []PileupRecord

	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := parsePileupLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func parsePileupLine(line string) (PileupRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != pileupColumns {
		return PileupRecord{}, fmt.Errorf("%w: expected %d columns, got %d", ErrPileupFormat, pileupColumns, len(fields))
	}

	rec := PileupRecord{
		Chromosome:    fields[0],
		ReferenceBase: fields[2],
		ConsensusBase: fields[3],
		ReadBases:     fields[8],
		BaseQualities: fields[9],
	}

	for _, f := range []struct {
		dst  *int
		pos  int
		name string
	}{
		{&rec.Position, 1, "position"},
		{&rec.ConsensusQuality, 4, "consensus quality"},
		{&rec.SNPQuality, 5, "snp quality"},
		{&rec.MappingQuality, 6, "mapping quality"},
		{&rec.Coverage, 7, "coverage"},
	} {
		v, err := strconv.Atoi(fields[f.pos])
		if err != nil {
			return PileupRecord{}, fmt.Errorf("%w: bad %s %q", ErrPileupFormat, f.name, fields[f.pos])
		}

		*f.dst = v
	}

	return rec, nil
}

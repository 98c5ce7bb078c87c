//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package mismatch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/feature"
)

const FormatTSV = "tsv"

var countHeader = []string{"gene_id", "mismatches", "bases", "low_qual", "a", "t", "c", "g"}

// CountWriter writes one TSV row per gene.
type CountWriter struct {
	w       *bufio.Writer
	mapping map[string]string
	header  bool
}

// NewCountWriter returns a CountWriter. Gene ids are renamed with mapping when not nil.
func NewCountWriter(w io.Writer, format string, mapping map[string]string) (*CountWriter, error) {
	if format != FormatTSV {
		return nil, fmt.Errorf("Unknown count format %s", format)
	}
	return &CountWriter{w: bufio.NewWriter(w), mapping: mapping}, nil
}

func (cw *CountWriter) writeHeader() {
	for i, h := range countHeader {
		if i > 0 {
			cw.w.WriteByte('\t')
		}
		cw.w.WriteString(h)
	}
	cw.w.WriteByte('\n')
	cw.header = true
}

func (cw *CountWriter) Write(gc GeneCounters) error {
	if !cw.header {
		cw.writeHeader()
	}
	name := gc.GeneID
	if cw.mapping != nil {
		name = feature.MapName(name, cw.mapping)
	}
	cw.w.WriteString(name)
	for _, v := range []int{gc.Mismatches, gc.Bases, gc.LowQuality, gc.Breakdown[BaseA], gc.Breakdown[BaseT], gc.Breakdown[BaseC], gc.Breakdown[BaseG]} {
		cw.w.WriteByte('\t')
		cw.w.WriteString(strconv.Itoa(v))
	}
	_, err := cw.w.WriteString("\n")
	return err
}

// Flush writes the header if no row was written and flushes the buffer.
func (cw *CountWriter) Flush() error {
	if !cw.header {
		cw.writeHeader()
	}
	return cw.w.Flush()
}

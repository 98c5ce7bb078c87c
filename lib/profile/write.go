//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	bedGraphPrecision = 0.000001
)

const (
	FormatBedGraph = "bedgraph"
	FormatCSV      = "csv"
)

// Writer writes profiles one gene after the other.
type Writer struct {
	w      *bufio.Writer
	format string
}

func NewWriter(w io.Writer, format string) (*Writer, error) {
	switch format {
	case FormatBedGraph, FormatCSV:
	default:
		return nil, fmt.Errorf("Unknown profile format %s", format)
	}
	return &Writer{w: bufio.NewWriter(w), format: format}, nil
}

// Write writes the profile of gene name. BedGraph lines use genomic coordinates and skip zero steps.
func (pw *Writer) Write(name string, p *Profile) error {
	switch pw.format {
	case FormatBedGraph:
		var diff float64
		var stepStart int
		var stepValue, currentValue float32
		for ip := 0; ip <= len(p.Counts); ip++ {
			if ip < len(p.Counts) {
				currentValue = p.Counts[ip]
			} else {
				currentValue = 0
			}
			if diff = math.Abs(float64(currentValue - stepValue)); diff > bedGraphPrecision {
				if stepValue != 0. {
					fmt.Fprintf(pw.w, "%s\t%d\t%d\t%f\n", p.Contig, p.Start+stepStart, p.Start+ip, stepValue)
				}
				stepStart = ip
				stepValue = currentValue
			}
		}
	case FormatCSV:
		pw.w.WriteString(name)
		pw.w.WriteByte(',')
		pw.w.WriteString(strconv.Itoa(len(p.Counts)))
		for _, v := range p.Counts {
			pw.w.WriteByte(',')
			pw.w.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
		}
		pw.w.WriteByte('\n')
	}
	return nil
}

func (pw *Writer) Flush() error {
	return pw.w.Flush()
}

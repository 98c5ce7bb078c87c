//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package variant

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

const maxLineLength = 256 * 1024 * 1024

// Record is one VCF data line. Pos is 1-based as written in the file.
type Record struct {
	Contig string
	Pos    int
	ID     string
	Ref    string
	Alts   []string
	Line   int
}

// Validate checks REF and ALT are present.
func (rec Record) Validate() error {
	if rec.Ref == "" || rec.Ref == "." {
		return fmt.Errorf("%w: missing REF at %s:%d (line %d)", ErrMalformedVariantRecord, rec.Contig, rec.Pos, rec.Line)
	}
	for _, alt := range rec.Alts {
		if alt != "" && alt != "." {
			return nil
		}
	}
	return fmt.Errorf("%w: missing ALT at %s:%d (line %d)", ErrMalformedVariantRecord, rec.Contig, rec.Pos, rec.Line)
}

// VCFReader reads plain, gzip or BGZF compressed VCF.
// RecordReader reads variant records, returning io.EOF after the last one.
type RecordReader interface {
	Read() (Record, error)
}

type VCFReader struct {
	Header []string
	s      *bufio.Scanner
	closer io.Closer
	line   int
}

// NewVCFReader detects compression from the first bytes of r.
func NewVCFReader(r io.Reader) (*VCFReader, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(16)
	var in io.Reader = br
	var closer io.Closer
	if len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		if isBGZF(magic) {
			bz, err := bgzf.NewReader(br, 1)
			if err != nil {
				return nil, err
			}
			in, closer = bz, bz
		} else {
			gz, err := gzip.NewReader(br)
			if err != nil {
				return nil, err
			}
			in, closer = gz, gz
		}
	}
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 64*1024), maxLineLength)
	return &VCFReader{s: s, closer: closer}, nil
}

// isBGZF checks the gzip extra field starts with the BGZF "BC" subfield.
func isBGZF(h []byte) bool {
	return len(h) >= 14 && h[3]&0x04 != 0 && bytes.Equal(h[12:14], []byte("BC"))
}

// OpenVCF opens a VCF file. Close the returned reader when done.
func OpenVCF(path string) (*VCFReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewVCFReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("Error while opening VCF %s: %w", path, err)
	}
	inner := r.closer
	r.closer = closerFunc(func() error {
		if inner != nil {
			inner.Close()
		}
		return f.Close()
	})
	return r, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func (r *VCFReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Read returns the next data line. Header lines are stored in Header.
func (r *VCFReader) Read() (Record, error) {
	for r.s.Scan() {
		r.line++
		line := strings.TrimRight(r.s.Text(), "\r")
		if line == "" {
			continue
		}
		if line[0] == '#' {
			r.Header = append(r.Header, line)
			continue
		}
		fields := strings.SplitN(line, "\t", 6)
		rec := Record{Contig: fields[0], Line: r.line}
		if len(fields) < 2 {
			return rec, fmt.Errorf("%w: missing POS (line %d)", ErrMalformedVariantRecord, r.line)
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return rec, fmt.Errorf("%w: POS %q (line %d)", ErrMalformedVariantRecord, fields[1], r.line)
		}
		rec.Pos = pos
		if len(fields) > 2 {
			rec.ID = fields[2]
		}
		if len(fields) > 3 {
			rec.Ref = fields[3]
		}
		if len(fields) > 4 {
			rec.Alts = strings.Split(fields[4], ",")
		}
		return rec, nil
	}
	if err := r.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"

	"github.com/biogo/hts/sam"
)

const (
	MDMatch = iota
	MDMismatch
	MDDeletion
)

type TagMDOp struct {
	Op     int
	Length int
	Seq    []byte
}

// Column is one aligned position of a read. RefBase is uppercase when the read matches the reference
// and lowercase on a mismatch.
type Column struct {
	ReadOffset int
	RefPos     int
	RefBase    byte
	ReadBase   byte
}

// Mismatch reports whether the read base differs from the reference.
func (c Column) Mismatch() bool {
	return unicode.IsLower(rune(c.RefBase))
}

// ParseTagMD parses the MD attribute to blocks. Zero-length matches are dropped.
func ParseTagMD(rawTag string) (blocks []TagMDOp, err error) {
	i := 0
	for i < len(rawTag) {
		l := rawTag[i]
		switch {
		case l == '^':
			j := i + 1
			for j < len(rawTag) && unicode.IsLetter(rune(rawTag[j])) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("Malformed MD tag %q: empty deletion", rawTag)
			}
			blocks = append(blocks, TagMDOp{Op: MDDeletion, Length: j - i - 1, Seq: []byte(rawTag[i+1 : j])})
			i = j
		case unicode.IsLetter(rune(l)):
			blocks = append(blocks, TagMDOp{Op: MDMismatch, Length: 1, Seq: []byte{l}})
			i++
		case unicode.IsDigit(rune(l)):
			j := i
			for j < len(rawTag) && unicode.IsDigit(rune(rawTag[j])) {
				j++
			}
			step, err := strconv.Atoi(rawTag[i:j])
			if err != nil {
				return nil, err
			}
			if step > 0 {
				blocks = append(blocks, TagMDOp{Op: MDMatch, Length: step})
			}
			i = j
		default:
			return nil, fmt.Errorf("Malformed MD tag %q: unexpected %q", rawTag, l)
		}
	}
	return blocks, nil
}

// mdCursor walks MD blocks alongside the CIGAR.
type mdCursor struct {
	blocks []TagMDOp
	i      int
	used   int
}

// skip moves past fully consumed match and mismatch blocks.
func (c *mdCursor) skip() {
	for c.i < len(c.blocks) && c.blocks[c.i].Op != MDDeletion && c.used >= c.blocks[c.i].Length {
		c.i++
		c.used = 0
	}
}

// base returns the reference base of the next aligned column: 0 on a match, the reference base on a mismatch.
func (c *mdCursor) base() (byte, bool) {
	c.skip()
	if c.i >= len(c.blocks) {
		return 0, false
	}
	b := c.blocks[c.i]
	switch b.Op {
	case MDMatch:
		c.used++
		return 0, true
	case MDMismatch:
		c.used++
		return b.Seq[0], true
	}
	return 0, false
}

// deletion consumes a deletion block of length n.
func (c *mdCursor) deletion(n int) bool {
	c.skip()
	if c.i < len(c.blocks) && c.blocks[c.i].Op == MDDeletion && c.blocks[c.i].Length == n {
		c.i++
		c.used = 0
		return true
	}
	return false
}

func (c *mdCursor) done() bool {
	c.skip()
	return c.i >= len(c.blocks)
}

// Columns returns the aligned columns of a read. Only positions where one read base faces one reference
// base are reported: insertions, deletions, skipped regions and clipped bases have no column.
// The reference base is taken from the MD tag.
func Columns(r *sam.Record) ([]Column, error) {
	tag, found := r.Tag(TagMD[:])
	if !found {
		return nil, fmt.Errorf("%w: MD for read %s", ErrMissingRequiredTag, r.Name)
	}
	md, ok := tag.Value().(string)
	if !ok {
		return nil, fmt.Errorf("Malformed MD tag for read %s", r.Name)
	}
	blocks, err := ParseTagMD(md)
	if err != nil {
		return nil, err
	}
	cursor := mdCursor{blocks: blocks}
	seq := r.Seq.Expand()

	var cols []Column
	var iRead, length int
	var con sam.Consume
	pos := r.Pos
	for _, co := range r.Cigar {
		con = co.Type().Consumes()
		length = co.Len()
		if con.Query == 1 && con.Reference == 1 {
			if iRead+length > len(seq) {
				return nil, fmt.Errorf("CIGAR longer than sequence for read %s", r.Name)
			}
			for k := 0; k < length; k++ {
				refBase, ok := cursor.base()
				if !ok {
					return nil, fmt.Errorf("MD tag %q does not match CIGAR of read %s", md, r.Name)
				}
				readBase := byte(unicode.ToUpper(rune(seq[iRead+k])))
				if refBase == 0 {
					refBase = readBase
				} else {
					refBase = byte(unicode.ToLower(rune(refBase)))
				}
				cols = append(cols, Column{ReadOffset: iRead + k, RefPos: pos + k, RefBase: refBase, ReadBase: readBase})
			}
		} else if co.Type() == sam.CigarDeletion {
			if !cursor.deletion(length) {
				return nil, fmt.Errorf("MD tag %q does not match CIGAR deletion of read %s", md, r.Name)
			}
		}
		iRead += length * con.Query
		pos += length * con.Reference
	}
	if !cursor.done() {
		return nil, fmt.Errorf("MD tag %q longer than alignment of read %s", md, r.Name)
	}
	return cols, nil
}

// ColumnsIn returns the aligned columns with a reference position within [start, end).
func ColumnsIn(r *sam.Record, start, end int) ([]Column, error) {
	cols, err := Columns(r)
	if err != nil {
		return nil, err
	}
	kept := cols[:0]
	for _, c := range cols {
		if c.RefPos >= start && c.RefPos < end {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// GetAln renders the alignment of r on three lines: reference, symbol and read.
// Mismatched reference bases are lowercase and marked X. Reference bases of skipped regions are unknown (N).
func GetAln(r *sam.Record) (ref, read, symbol []byte, err error) {
	cols, err := Columns(r)
	if err != nil {
		return
	}
	// Deleted reference bases, Columns checked they match the CIGAR
	tag, _ := r.Tag(TagMD[:])
	blocks, _ := ParseTagMD(tag.Value().(string))
	var dels [][]byte
	for _, b := range blocks {
		if b.Op == MDDeletion {
			dels = append(dels, b.Seq)
		}
	}

	seq := r.Seq.Expand()
	var iRead, iCol, iDel, length int
	var con sam.Consume
	for _, co := range r.Cigar {
		con = co.Type().Consumes()
		length = co.Len()
		if con.Query == 1 && iRead+length > len(seq) {
			return nil, nil, nil, fmt.Errorf("CIGAR longer than sequence for read %s", r.Name)
		}
		switch {
		case con.Query == 1 && con.Reference == 1:
			for _, c := range cols[iCol : iCol+length] {
				ref = append(ref, c.RefBase)
				read = append(read, c.ReadBase)
				if c.Mismatch() {
					symbol = append(symbol, 'X')
				} else {
					symbol = append(symbol, '|')
				}
			}
			iCol += length
		case co.Type() == sam.CigarDeletion:
			ref = append(ref, dels[iDel]...)
			iDel++
			read = append(read, bytes.Repeat([]byte("-"), length)...)
			symbol = append(symbol, bytes.Repeat([]byte("."), length)...)
		case con.Reference == 1:
			ref = append(ref, bytes.Repeat([]byte("N"), length)...)
			read = append(read, bytes.Repeat([]byte("-"), length)...)
			symbol = append(symbol, bytes.Repeat([]byte("."), length)...)
		case co.Type() == sam.CigarInsertion:
			ref = append(ref, bytes.Repeat([]byte("-"), length)...)
			read = append(read, seq[iRead:iRead+length]...)
			symbol = append(symbol, bytes.Repeat([]byte("."), length)...)
		case con.Query == 1:
			ref = append(ref, bytes.Repeat([]byte(" "), length)...)
			read = append(read, seq[iRead:iRead+length]...)
			symbol = append(symbol, bytes.Repeat([]byte(" "), length)...)
		}
		iRead += length * con.Query
	}
	return ref, read, symbol, nil
}

//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	qt "github.com/frankban/quicktest"
)

const samHeader = "@HD\tVN:1.5\tSO:coordinate\n@SQ\tSN:chr1\tLN:5000\n@SQ\tSN:chr2\tLN:5000\n"

func readSAM(c *qt.C, text string) (*sam.Header, []*sam.Record) {
	sr, err := sam.NewReader(strings.NewReader(samHeader + text))
	c.Assert(err, qt.IsNil)
	var recs []*sam.Record
	for {
		r, err := sr.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, qt.IsNil)
		recs = append(recs, r)
	}
	return sr.Header(), recs
}

func TestParseTagMD(t *testing.T) {
	c := qt.New(t)
	blocks, err := ParseTagMD("10A0C3^GT5")
	c.Assert(err, qt.IsNil)
	c.Assert(blocks, qt.DeepEquals, []TagMDOp{
		{Op: MDMatch, Length: 10},
		{Op: MDMismatch, Length: 1, Seq: []byte("A")},
		{Op: MDMismatch, Length: 1, Seq: []byte("C")},
		{Op: MDMatch, Length: 3},
		{Op: MDDeletion, Length: 2, Seq: []byte("GT")},
		{Op: MDMatch, Length: 5},
	})

	_, err = ParseTagMD("10^5")
	c.Assert(err, qt.IsNotNil)
	_, err = ParseTagMD("1*2")
	c.Assert(err, qt.IsNotNil)
}

func TestColumns(t *testing.T) {
	c := qt.New(t)
	// Reference at 100: AAAAA CG AAAAA, read: AAGAA (ins TT) AAAAA with a deletion of CG
	_, recs := readSAM(c, "r1\t0\tchr1\t101\t60\t2S5M2I2D5M\t*\t0\t0\tNNAAGAATTAAAAA\t*\tNM:i:5\tMD:Z:2A2^CG5\n")
	cols, err := Columns(recs[0])
	c.Assert(err, qt.IsNil)
	c.Assert(cols, qt.HasLen, 10)
	c.Assert(cols[0], qt.Equals, Column{ReadOffset: 2, RefPos: 100, RefBase: 'A', ReadBase: 'A'})
	c.Assert(cols[2], qt.Equals, Column{ReadOffset: 4, RefPos: 102, RefBase: 'a', ReadBase: 'G'})
	c.Assert(cols[2].Mismatch(), qt.IsTrue)
	c.Assert(cols[1].Mismatch(), qt.IsFalse)
	// After the insertion and the deletion
	c.Assert(cols[5], qt.Equals, Column{ReadOffset: 9, RefPos: 107, RefBase: 'A', ReadBase: 'A'})
	c.Assert(cols[9].RefPos, qt.Equals, 111)

	in, err := ColumnsIn(recs[0], 102, 108)
	c.Assert(err, qt.IsNil)
	c.Assert(in, qt.HasLen, 4)
	c.Assert(in[0].RefPos, qt.Equals, 102)
	c.Assert(in[3].RefPos, qt.Equals, 107)
}

func TestGetAln(t *testing.T) {
	c := qt.New(t)
	_, recs := readSAM(c, "r1\t0\tchr1\t101\t60\t2S5M2I2D5M\t*\t0\t0\tNNAAGAATTAAAAA\t*\tNM:i:5\tMD:Z:2A2^CG5\n"+
		"r2\t0\tchr1\t101\t60\t3M2N3M\t*\t0\t0\tAAACCC\t*\tMD:Z:3G2\n")
	ref, read, symbol, err := GetAln(recs[0])
	c.Assert(err, qt.IsNil)
	c.Assert(string(ref), qt.Equals, "  AAaAA--CGAAAAA")
	c.Assert(string(symbol), qt.Equals, "  ||X||....|||||")
	c.Assert(string(read), qt.Equals, "NNAAGAATT--AAAAA")

	ref, read, symbol, err = GetAln(recs[1])
	c.Assert(err, qt.IsNil)
	c.Assert(string(ref), qt.Equals, "AAANNgCC")
	c.Assert(string(symbol), qt.Equals, "|||..X||")
	c.Assert(string(read), qt.Equals, "AAA--CCC")
}

func TestColumnsSplicedRead(t *testing.T) {
	c := qt.New(t)
	_, recs := readSAM(c, "r1\t0\tchr1\t101\t60\t3M100N3M\t*\t0\t0\tAAACCC\t*\tMD:Z:3G2\n")
	cols, err := Columns(recs[0])
	c.Assert(err, qt.IsNil)
	c.Assert(cols, qt.HasLen, 6)
	c.Assert(cols[3], qt.Equals, Column{ReadOffset: 3, RefPos: 203, RefBase: 'g', ReadBase: 'C'})
}

func TestColumnsErrors(t *testing.T) {
	c := qt.New(t)
	_, recs := readSAM(c, "r1\t0\tchr1\t101\t60\t5M\t*\t0\t0\tAAAAA\t*\tNM:i:1\n"+
		"r2\t0\tchr1\t101\t60\t5M\t*\t0\t0\tAAAAA\t*\tMD:Z:3\n"+
		"r3\t0\tchr1\t101\t60\t5M\t*\t0\t0\tAAAAA\t*\tMD:Z:8\n"+
		"r4\t0\tchr1\t101\t60\t2M1D3M\t*\t0\t0\tAAAAA\t*\tMD:Z:5\n")
	_, err := Columns(recs[0])
	c.Assert(err, qt.ErrorIs, ErrMissingRequiredTag)
	for _, r := range recs[1:] {
		_, err = Columns(r)
		c.Assert(err, qt.IsNotNil, qt.Commentf("read %s", r.Name))
	}
}

func TestTagsAndQuals(t *testing.T) {
	c := qt.New(t)
	_, recs := readSAM(c, "r1\t0\tchr1\t101\t60\t2S3M1S\t*\t0\t0\tAAAAAA\t!!IIII\tNH:i:1\tNM:i:300\n")
	r := recs[0]
	nh, ok := IntTag(r, TagNH)
	c.Assert(ok, qt.IsTrue)
	c.Assert(nh, qt.Equals, 1)
	nm, err := RequireIntTag(r, TagNM)
	c.Assert(err, qt.IsNil)
	c.Assert(nm, qt.Equals, 300)
	_, err = RequireIntTag(r, TagMD)
	c.Assert(err, qt.ErrorIs, ErrMissingRequiredTag)
	c.Assert(AlignedQuals(r), qt.DeepEquals, []byte{40, 40, 40})
}

const sourceReads = "a\t0\tchr1\t101\t60\t10M\t*\t0\t0\tAAAAAAAAAA\t*\n" +
	"b\t0\tchr1\t151\t60\t10M\t*\t0\t0\tAAAAAAAAAA\t*\n" +
	"c\t0\tchr1\t191\t60\t5M500N5M\t*\t0\t0\tAAAAAAAAAA\t*\n" +
	"d\t0\tchr2\t101\t60\t10M\t*\t0\t0\tAAAAAAAAAA\t*\n"

func names(c *qt.C, it Iterator) []string {
	var n []string
	for it.Next() {
		n = append(n, it.Record().Name)
	}
	c.Assert(it.Error(), qt.IsNil)
	c.Assert(it.Close(), qt.IsNil)
	return n
}

func checkSource(c *qt.C, s Source) {
	for _, test := range []struct {
		contig     string
		start, end int
		want       []string
	}{
		{"chr1", 0, 100, nil},
		{"chr1", 105, 155, []string{"a", "b"}},
		{"chr1", 110, 150, nil},
		{"chr1", 400, 500, []string{"c"}},
		{"chr2", 0, 5000, []string{"d"}},
		{"chrM", 0, 5000, nil},
	} {
		it, err := s.Fetch(test.contig, test.start, test.end)
		c.Assert(err, qt.IsNil)
		c.Assert(names(c, it), qt.DeepEquals, test.want, qt.Commentf("%s:%d-%d", test.contig, test.start, test.end))
	}
}

func TestMemSource(t *testing.T) {
	c := qt.New(t)
	header, recs := readSAM(c, sourceReads)
	c.Assert(header.Refs(), qt.HasLen, 2)
	s, err := NewMemSource(&recordSlice{recs: recs})
	c.Assert(err, qt.IsNil)
	c.Assert(s.Len(), qt.Equals, 4)
	checkSource(c, s)
}

func TestBAMSource(t *testing.T) {
	c := qt.New(t)
	header, recs := readSAM(c, sourceReads)
	p := filepath.Join(t.TempDir(), "reads.bam")
	writeIndexedBAM(c, p, header, recs)

	s, err := BAMOpener(p, "", 1)()
	c.Assert(err, qt.IsNil)
	defer s.Close()
	checkSource(c, s)
}

type recordSlice struct {
	recs []*sam.Record
}

func (r *recordSlice) Read() (*sam.Record, error) {
	if len(r.recs) == 0 {
		return nil, io.EOF
	}
	rec := r.recs[0]
	r.recs = r.recs[1:]
	return rec, nil
}

func writeIndexedBAM(c *qt.C, p string, header *sam.Header, recs []*sam.Record) {
	f, err := os.Create(p)
	c.Assert(err, qt.IsNil)
	bw, err := bam.NewWriter(f, header, 1)
	c.Assert(err, qt.IsNil)
	for _, r := range recs {
		c.Assert(bw.Write(r), qt.IsNil)
	}
	c.Assert(bw.Close(), qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	f, err = os.Open(p)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	br, err := bam.NewReader(f, 1)
	c.Assert(err, qt.IsNil)
	var idx bam.Index
	for {
		r, err := br.Read()
		if err == io.EOF {
			break
		}
		c.Assert(err, qt.IsNil)
		c.Assert(idx.Add(r, br.LastChunk()), qt.IsNil)
	}
	fi, err := os.Create(p + ".bai")
	c.Assert(err, qt.IsNil)
	c.Assert(bam.WriteIndex(fi, &idx), qt.IsNil)
	c.Assert(fi.Close(), qt.IsNil)
}

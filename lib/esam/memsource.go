//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/biogo/store/interval"
)

// Integer-specific intervals

type IntInterval struct {
	Start, End int
	UID        uintptr
	Record     *sam.Record
}

func (i IntInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i IntInterval) ID() uintptr {
	return i.UID
}

func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i IntInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d-%s", i.Start, i.End, i.UID, i.Record.Name)
}

// MemSource keeps all placed reads of an unindexed SAM or BAM in one interval tree per contig.
// It is read-only once loaded and can be shared by workers.
type MemSource struct {
	trees map[string]*interval.IntTree
	n     int
}

// NewMemSource loads all reads from rr. Reads without reference are ignored.
func NewMemSource(rr sam.RecordReader) (*MemSource, error) {
	s := &MemSource{trees: make(map[string]*interval.IntTree)}
	for {
		r, err := rr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if r.Ref == nil {
			continue
		}
		tree, ok := s.trees[r.Ref.Name()]
		if !ok {
			tree = &interval.IntTree{}
			s.trees[r.Ref.Name()] = tree
		}
		iv := IntInterval{Start: r.Start(), End: max(r.End(), r.Start()+1), UID: uintptr(s.n), Record: r}
		if err = tree.Insert(iv, true); err != nil {
			return nil, err
		}
		s.n++
	}
	for _, tree := range s.trees {
		tree.AdjustRanges()
	}
	return s, nil
}

// LoadMem reads a SAM (or BAM) file into a MemSource.
func LoadMem(pathSAM PathSAM, nWorker int) (*MemSource, error) {
	f, err := os.Open(pathSAM.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rr sam.RecordReader
	if pathSAM.Binary {
		br, err := bam.NewReader(f, nWorker)
		if err != nil {
			return nil, err
		}
		defer br.Close()
		rr = br
	} else {
		rr, err = sam.NewReader(f)
		if err != nil {
			return nil, err
		}
	}
	return NewMemSource(rr)
}

// Len returns the number of reads loaded.
func (s *MemSource) Len() int { return s.n }

// Opener returns the source itself: queries do not modify the trees.
func (s *MemSource) Opener() Opener {
	return func() (Source, error) { return s, nil }
}

func (s *MemSource) Fetch(contig string, start, end int) (Iterator, error) {
	tree, ok := s.trees[contig]
	if !ok || start >= end {
		return &sliceIterator{}, nil
	}
	hits := tree.Get(IntInterval{Start: start, End: end})
	it := &sliceIterator{recs: make([]*sam.Record, len(hits))}
	for i, h := range hits {
		it.recs[i] = h.(IntInterval).Record
	}
	return it, nil
}

func (s *MemSource) Close() error { return nil }

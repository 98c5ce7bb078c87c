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

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Iterator iterates over the reads returned by Source.Fetch.
type Iterator interface {
	Next() bool
	Record() *sam.Record
	Error() error
	Close() error
}

// Source returns the reads overlapping a 0-based half-open region.
// Contigs unknown to the source have no reads.
type Source interface {
	Fetch(contig string, start, end int) (Iterator, error)
	Close() error
}

// Opener returns a Source. Each worker opens its own Source.
type Opener func() (Source, error)

// BAMSource answers range queries using a BAM index.
type BAMSource struct {
	f    *os.File
	r    *bam.Reader
	idx  *bam.Index
	refs map[string]*sam.Reference
}

// OpenBAM opens a BAM file and its index (pathIndex defaults to path.bai).
func OpenBAM(path, pathIndex string, nWorker int) (*BAMSource, error) {
	if pathIndex == "" {
		pathIndex = path + ".bai"
	}
	ifh, err := os.Open(pathIndex)
	if err != nil {
		return nil, err
	}
	defer ifh.Close()
	idx, err := bam.ReadIndex(ifh)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := bam.NewReader(f, nWorker)
	if err != nil {
		f.Close()
		return nil, err
	}
	s := &BAMSource{f: f, r: r, idx: idx, refs: make(map[string]*sam.Reference)}
	for _, ref := range r.Header().Refs() {
		s.refs[ref.Name()] = ref
	}
	return s, nil
}

// BAMOpener returns an Opener opening path and its index on each call.
func BAMOpener(path, pathIndex string, nWorker int) Opener {
	return func() (Source, error) {
		return OpenBAM(path, pathIndex, nWorker)
	}
}

func (s *BAMSource) Fetch(contig string, start, end int) (Iterator, error) {
	ref, ok := s.refs[contig]
	if !ok || start >= end {
		return &sliceIterator{}, nil
	}
	// The index fails when it holds no data for the region
	chunks, err := s.idx.Chunks(ref, start, end)
	if err != nil || len(chunks) == 0 {
		return &sliceIterator{}, nil
	}
	it, err := bam.NewIterator(s.r, chunks)
	if err != nil {
		return nil, err
	}
	return &regionIterator{it: it, refID: ref.ID(), start: start, end: end}, nil
}

func (s *BAMSource) Close() error {
	err := s.r.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// regionIterator drops the reads of index chunks which do not overlap the region.
type regionIterator struct {
	it         *bam.Iterator
	rec        *sam.Record
	refID      int
	start, end int
}

func (i *regionIterator) Next() bool {
	for i.it.Next() {
		r := i.it.Record()
		if r.Ref == nil || r.Ref.ID() != i.refID {
			continue
		}
		if r.Start() >= i.end {
			// Reads are sorted by position
			return false
		}
		if max(r.End(), r.Start()+1) > i.start {
			i.rec = r
			return true
		}
	}
	return false
}

func (i *regionIterator) Record() *sam.Record { return i.rec }

func (i *regionIterator) Error() error {
	if err := i.it.Error(); err != io.EOF {
		return err
	}
	return nil
}

func (i *regionIterator) Close() error { return i.it.Close() }

type sliceIterator struct {
	recs []*sam.Record
	next int
}

func (i *sliceIterator) Next() bool {
	if i.next >= len(i.recs) {
		return false
	}
	i.next++
	return true
}

func (i *sliceIterator) Record() *sam.Record { return i.recs[i.next-1] }
func (i *sliceIterator) Error() error        { return nil }
func (i *sliceIterator) Close() error        { return nil }

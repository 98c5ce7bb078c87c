//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package mismatch

import (
	"context"
	"io"

	"github.com/biogo/hts/sam"
	"golang.org/x/sync/errgroup"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/esam"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/feature"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/profile"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

const (
	// Reads between two cancellation checks
	checkEvery = 1024
)

type ReadStats struct {
	Fetched     uint64
	Unmapped    uint64
	Duplicate   uint64
	MultiMapped uint64
	Used        uint64
	// Used reads with NM equal to 0
	Perfect uint64
}

func (s *ReadStats) Merge(o ReadStats) {
	s.Fetched += o.Fetched
	s.Unmapped += o.Unmapped
	s.Duplicate += o.Duplicate
	s.MultiMapped += o.MultiMapped
	s.Used += o.Used
	s.Perfect += o.Perfect
}

// Result is the aggregation of one gene.
type Result struct {
	// Rank of the gene in input order
	Index    int
	Gene     feature.GeneInterval
	Counters GeneCounters
	Stats    ReadStats
	Profile  *profile.Profile
}

type Aggregator struct {
	cfg        Config
	classifier Classifier
	// Names of the used reads are added when not nil
	ReadNames set.Interface
	// Called with the alignment of reads with mismatches when not nil
	Debug func(format string, args ...interface{})
}

// NewAggregator returns an Aggregator. known may be nil when no variant is excluded.
func NewAggregator(cfg Config, known *variant.ExclusionSet) *Aggregator {
	return &Aggregator{cfg: cfg, classifier: Classifier{Threshold: cfg.QualityThreshold, Known: known}}
}

func (a *Aggregator) Config() Config { return a.cfg }

// Gene counts the reads of src overlapping gene g.
func (a *Aggregator) Gene(ctx context.Context, src esam.Source, g feature.GeneInterval) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Gene: g, Counters: GeneCounters{GeneID: g.GeneID}}
	if a.cfg.Profile {
		res.Profile = profile.NewProfile(g.Contig, g.Start, g.End)
	}
	it, err := src.Fetch(g.Contig, g.Start, g.End)
	if err != nil {
		return Result{}, err
	}
	defer it.Close()
	var n int
	for it.Next() {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if err := a.addRead(&res, it.Record()); err != nil {
			return Result{}, err
		}
	}
	if err := it.Error(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// addRead adds one read to the gene counters.
// Bases are counted over the whole aligned read while mismatches are restricted to the gene interval.
func (a *Aggregator) addRead(res *Result, r *sam.Record) error {
	res.Stats.Fetched++
	// Unmapped, duplicate and multi-mapped reads are ignored
	if r.Flags&sam.Unmapped != 0 {
		res.Stats.Unmapped++
		return nil
	}
	if r.Flags&sam.Duplicate != 0 {
		res.Stats.Duplicate++
		return nil
	}
	nh, err := esam.RequireIntTag(r, esam.TagNH)
	if err != nil {
		return err
	}
	if nh > 1 {
		res.Stats.MultiMapped++
		return nil
	}
	nm, err := esam.RequireIntTag(r, esam.TagNM)
	if err != nil {
		return err
	}
	res.Stats.Used++
	if a.ReadNames != nil {
		a.ReadNames.Add(r.Name)
	}

	// Bases
	for _, q := range esam.AlignedQuals(r) {
		if q != esam.MissingQual && int(q) >= a.cfg.QualityThreshold {
			res.Counters.Bases++
		}
	}
	if nm == 0 {
		res.Stats.Perfect++
		return nil
	}

	// Mismatches
	cols, err := esam.ColumnsIn(r, res.Gene.Start, res.Gene.End)
	if err != nil {
		return err
	}
	if a.Debug != nil {
		if ref, read, symbol, err := esam.GetAln(r); err == nil {
			a.Debug("%s %s:%d\n%s\n%s\n%s", r.Name, res.Gene.Contig, r.Pos, ref, symbol, read)
		}
	}
	var qual byte
	for _, col := range cols {
		if !col.Mismatch() {
			continue
		}
		qual = 0
		if col.ReadOffset < len(r.Qual) && r.Qual[col.ReadOffset] != esam.MissingQual {
			qual = r.Qual[col.ReadOffset]
		}
		o := a.classifier.Classify(res.Gene.Contig, col, qual)
		res.Counters.Add(o, col.ReadBase)
		if o == CountedMismatch && res.Profile != nil {
			res.Profile.Add(col.RefPos, 1)
		}
	}
	return nil
}

// Run aggregates every gene of genes and calls emit with the results in gene order.
// With more than one worker, genes are processed in parallel, each worker using its own Source.
// On error, results of genes in progress are dropped.
func (a *Aggregator) Run(ctx context.Context, genes feature.GeneReader, open esam.Opener, nWorker int, emit func(Result) error) (int, error) {
	if nWorker <= 1 {
		return a.runSerial(ctx, genes, open, emit)
	}
	return a.runParallel(ctx, genes, open, nWorker, emit)
}

func (a *Aggregator) runSerial(ctx context.Context, genes feature.GeneReader, open esam.Opener, emit func(Result) error) (n int, err error) {
	src, err := open()
	if err != nil {
		return n, err
	}
	defer src.Close()
	for {
		if err = ctx.Err(); err != nil {
			return n, err
		}
		g, err := genes.Read()
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, err
		}
		res, err := a.Gene(ctx, src, g)
		if err != nil {
			return n, err
		}
		res.Index = n
		if err = emit(res); err != nil {
			return n, err
		}
		n++
	}
}

type task struct {
	index int
	gene  feature.GeneInterval
}

func (a *Aggregator) runParallel(ctx context.Context, genes feature.GeneReader, open esam.Opener, nWorker int, emit func(Result) error) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	chGene := make(chan task, nWorker*10)
	chResult := make(chan Result, nWorker*10)

	// Read genes
	g.Go(func() error {
		defer close(chGene)
		for i := 0; ; i++ {
			gene, err := genes.Read()
			if err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chGene <- task{index: i, gene: gene}:
			}
		}
	})

	// Spawn worker goroutine(s)
	g.Go(func() error {
		defer close(chResult)
		wg, wgctx := errgroup.WithContext(gctx)
		for i := 0; i < nWorker; i++ {
			wg.Go(func() error {
				src, err := open()
				if err != nil {
					return err
				}
				defer src.Close()
				for t := range chGene {
					if err := wgctx.Err(); err != nil {
						return err
					}
					res, err := a.Gene(wgctx, src, t.gene)
					if err != nil {
						return err
					}
					res.Index = t.index
					select {
					case <-wgctx.Done():
						return wgctx.Err()
					case chResult <- res:
					}
				}
				return nil
			})
		}
		return wg.Wait()
	})

	// Emit results in gene order
	var n int
	var emitErr error
	pending := make(map[int]Result)
	for res := range chResult {
		if emitErr != nil {
			continue
		}
		pending[res.Index] = res
		for {
			next, ok := pending[n]
			if !ok {
				break
			}
			delete(pending, n)
			if emitErr = ctx.Err(); emitErr != nil {
				break
			}
			if emitErr = emit(next); emitErr != nil {
				cancel()
				break
			}
			n++
		}
	}
	err := g.Wait()
	if emitErr != nil {
		return n, emitErr
	}
	return n, err
}

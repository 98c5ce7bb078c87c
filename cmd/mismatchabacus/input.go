//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/esam"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/feature"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

type genesOptions struct {
	path       string
	format     string
	gtfFeature string
	fonName    string
	fonChrom   string
	fonStrand  string
	fonCoords  string
	strand     int8
}

type gtfFile struct {
	*feature.GTFGeneReader
	closers []io.Closer
}

func (g *gtfFile) Close() (err error) {
	for i := len(g.closers) - 1; i >= 0; i-- {
		if cerr := g.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenGenes opens the gene models. GTF files are read lazily and may be gzip compressed.
func OpenGenes(opt genesOptions) (feature.GeneReader, io.Closer, error) {
	switch strings.ToLower(opt.format) {
	case "gtf":
		f, err := os.Open(opt.path)
		if err != nil {
			return nil, nil, err
		}
		g := &gtfFile{closers: []io.Closer{f}}
		var r io.Reader = f
		if strings.HasSuffix(opt.path, ".gz") {
			zr, err := gzip.NewReader(f)
			if err != nil {
				f.Close()
				return nil, nil, err
			}
			g.closers = append(g.closers, zr)
			r = zr
		}
		g.GTFGeneReader = feature.NewGTFGeneReader(r, opt.gtfFeature)
		return g, g, nil
	case "fon":
		features, err := feature.OpenFON(opt.path, opt.fonName, opt.fonChrom, opt.fonStrand, opt.fonCoords)
		if err != nil {
			return nil, nil, err
		}
		return feature.NewFeatureGeneReader(features), nopCloser{}, nil
	case "tab":
		features, err := feature.OpenTAB(opt.path, opt.strand)
		if err != nil {
			return nil, nil, err
		}
		return feature.NewFeatureGeneReader(features), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("Unknown gene format %s", opt.format)
}

// OpenAlignments returns an Opener of the alignments. Indexed BAM files are queried per worker,
// SAM and unindexed BAM files are loaded in memory once.
func OpenAlignments(pathSAM esam.PathSAM, pathIndex string, nWorker int, prog *progress) (esam.Opener, error) {
	if pathSAM.Binary {
		if pathIndex == "" {
			pathIndex = pathSAM.Path + ".bai"
		}
		if _, err := os.Stat(pathIndex); err == nil {
			open := esam.BAMOpener(pathSAM.Path, pathIndex, 1)
			// Fail before any output is created
			src, err := open()
			if err != nil {
				return nil, err
			}
			return open, src.Close()
		}
		prog.Printf(1, "No index %s, loading %s in memory", pathIndex, pathSAM.Path)
	}
	prog.Printf(1, "Loading %s", pathSAM.Path)
	mem, err := esam.LoadMem(pathSAM, nWorker)
	if err != nil {
		return nil, err
	}
	prog.Printf(1, "Loaded %d align.", mem.Len())
	return mem.Opener(), nil
}

type variantsOptions struct {
	path   string
	contig string
	mode   variant.Mode
}

func OpenVariants(opt variantsOptions, prog *progress) (*variant.ExclusionSet, variant.LoadStats, error) {
	vr, err := variant.OpenVCF(opt.path)
	if err != nil {
		return nil, variant.LoadStats{}, err
	}
	defer vr.Close()
	known, stats, err := variant.Load(vr, variant.LoadOptions{Predicate: opt.mode.Predicate(), Contig: opt.contig, Warn: prog.Warn})
	if err != nil {
		return nil, stats, err
	}
	prog.Printf(1, "Loaded %d known variant(s) (%s) from %d record(s), %d skipped", known.Len(), opt.mode, stats.Records, stats.Skipped)
	return known, stats, nil
}

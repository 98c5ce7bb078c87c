//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"errors"
	"fmt"
	"io"
)

// ErrMalformedGeneModel is returned when a gene cannot be flattened into a single interval.
var ErrMalformedGeneModel = errors.New("malformed gene model")

// Exon is one fragment of a gene model (0-based, half-open).
type Exon struct {
	Contig     string
	Start, End int
}

// GeneInterval is the flat genomic span covering all exons of a gene (0-based, half-open).
type GeneInterval struct {
	GeneID     string
	Contig     string
	Start, End int
}

func (g GeneInterval) String() string {
	return fmt.Sprintf("%s:%d-%d#%s", g.Contig, g.Start, g.End, g.GeneID)
}

// GeneReader produces gene intervals in gene-model order. Read returns io.EOF after the last gene.
type GeneReader interface {
	Read() (GeneInterval, error)
}

// Flatten merges exons of one gene into an interval from the smallest start to the largest end.
func Flatten(geneID string, exons []Exon) (GeneInterval, error) {
	if len(exons) == 0 {
		return GeneInterval{}, fmt.Errorf("%w: gene %s has no exon", ErrMalformedGeneModel, geneID)
	}
	g := GeneInterval{GeneID: geneID, Contig: exons[0].Contig, Start: exons[0].Start, End: exons[0].End}
	for _, e := range exons[1:] {
		if e.Contig != g.Contig {
			return GeneInterval{}, fmt.Errorf("%w: gene %s spans %s and %s", ErrMalformedGeneModel, geneID, g.Contig, e.Contig)
		}
		if e.Start < g.Start {
			g.Start = e.Start
		}
		if e.End > g.End {
			g.End = e.End
		}
	}
	return g, nil
}

// FeatureGeneReader reads genes from features loaded with OpenFON or OpenTAB. Each feature is one gene.
type FeatureGeneReader struct {
	features []Feature
	next     int
}

func NewFeatureGeneReader(features []Feature) *FeatureGeneReader {
	return &FeatureGeneReader{features: features}
}

func (r *FeatureGeneReader) Read() (GeneInterval, error) {
	if r.next >= len(r.features) {
		return GeneInterval{}, io.EOF
	}
	feat := r.features[r.next]
	r.next++
	return Flatten(feat.Name, feat.Exons())
}

// ReadAll drains a GeneReader.
func ReadAll(r GeneReader) ([]GeneInterval, error) {
	var genes []GeneInterval
	for {
		g, err := r.Read()
		if err == io.EOF {
			return genes, nil
		} else if err != nil {
			return genes, err
		}
		genes = append(genes, g)
	}
}

//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
)

const GTFGeneIDTag = "gene_id"

// GTFGeneReader groups consecutive GTF records sharing a gene_id into gene intervals.
// The GTF must be sorted by gene so that all records of a gene are contiguous.
type GTFGeneReader struct {
	r           *gff.Reader
	featureType string
	pending     *gff.Feature
}

// NewGTFGeneReader returns a reader keeping only records of featureType (all records if empty).
func NewGTFGeneReader(r io.Reader, featureType string) *GTFGeneReader {
	return &GTFGeneReader{r: gff.NewReader(r), featureType: featureType}
}

func (g *GTFGeneReader) Read() (GeneInterval, error) {
	var id string
	var exons []Exon
	for {
		f, err := g.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return GeneInterval{}, err
		}
		fid := attribute(f.FeatAttributes, GTFGeneIDTag)
		if fid == "" {
			return GeneInterval{}, fmt.Errorf("%w: %s record at %s:%d lacks %s", ErrMalformedGeneModel, f.Feature, f.SeqName, f.FeatStart+1, GTFGeneIDTag)
		}
		if len(exons) == 0 {
			id = fid
		} else if fid != id {
			g.pending = f
			break
		}
		exons = append(exons, Exon{Contig: f.SeqName, Start: f.FeatStart, End: f.FeatEnd})
	}
	if len(exons) == 0 {
		return GeneInterval{}, io.EOF
	}
	return Flatten(id, exons)
}

func (g *GTFGeneReader) next() (*gff.Feature, error) {
	if g.pending != nil {
		f := g.pending
		g.pending = nil
		return f, nil
	}
	for {
		raw, err := g.r.Read()
		if err != nil {
			return nil, err
		}
		f, ok := raw.(*gff.Feature)
		if !ok {
			continue
		}
		if g.featureType == "" || f.Feature == g.featureType {
			return f, nil
		}
	}
}

// attribute returns the unquoted value of a GTF attribute.
func attribute(attrs gff.Attributes, tag string) string {
	for _, a := range attrs {
		if strings.TrimSpace(a.Tag) == tag {
			return strings.Trim(strings.TrimSpace(a.Value), `"`)
		}
	}
	return ""
}

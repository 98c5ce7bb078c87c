//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

const gtf = "chr1\ttest\texon\t1001\t1030\t.\t+\t.\tgene_id \"G1\"; transcript_id \"T1\";\n" +
	"chr1\ttest\tCDS\t1001\t1030\t.\t+\t0\tgene_id \"G1\"; transcript_id \"T1\";\n" +
	"chr1\ttest\texon\t1061\t1100\t.\t+\t.\tgene_id \"G1\"; transcript_id \"T1\";\n" +
	"chr1\ttest\texon\t1041\t1050\t.\t+\t.\tgene_id \"G1\"; transcript_id \"T2\";\n" +
	"chr2\ttest\texon\t11\t20\t.\t-\t.\tgene_id \"G2\"; transcript_id \"T3\";\n"

func TestFlatten(t *testing.T) {
	c := qt.New(t)
	g, err := Flatten("G", []Exon{{"chr1", 50, 60}, {"chr1", 10, 20}, {"chr1", 30, 70}})
	c.Assert(err, qt.IsNil)
	c.Assert(g, qt.Equals, GeneInterval{GeneID: "G", Contig: "chr1", Start: 10, End: 70})

	_, err = Flatten("G", []Exon{{"chr1", 10, 20}, {"chr2", 30, 40}})
	c.Assert(err, qt.ErrorIs, ErrMalformedGeneModel)

	_, err = Flatten("G", nil)
	c.Assert(err, qt.ErrorIs, ErrMalformedGeneModel)
}

func TestGTFGeneReader(t *testing.T) {
	c := qt.New(t)
	genes, err := ReadAll(NewGTFGeneReader(strings.NewReader(gtf), "exon"))
	c.Assert(err, qt.IsNil)
	c.Assert(genes, qt.DeepEquals, []GeneInterval{
		{GeneID: "G1", Contig: "chr1", Start: 1000, End: 1100},
		{GeneID: "G2", Contig: "chr2", Start: 10, End: 20},
	})
}

func TestGTFGeneReaderSpanningContigs(t *testing.T) {
	c := qt.New(t)
	in := "chr1\ttest\texon\t1\t10\t.\t+\t.\tgene_id \"G1\";\n" +
		"chr2\ttest\texon\t1\t10\t.\t+\t.\tgene_id \"G1\";\n"
	_, err := NewGTFGeneReader(strings.NewReader(in), "exon").Read()
	c.Assert(err, qt.ErrorIs, ErrMalformedGeneModel)
}

func TestGTFGeneReaderEmpty(t *testing.T) {
	c := qt.New(t)
	_, err := NewGTFGeneReader(strings.NewReader(""), "exon").Read()
	c.Assert(err, qt.Equals, io.EOF)
}

func TestFeatureGeneReader(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "features.json")
	fon := `{"fon_version": 1, "features": [
{"transcript_stable_id": "T1", "chrom": "chr1", "strand": "+", "exons": [[100, 200], [300, 400]]},
{"transcript_stable_id": "T2", "chrom": "chrM", "strand": "-", "exons": [[5, 9]]}]}`
	c.Assert(os.WriteFile(p, []byte(fon), 0666), qt.IsNil)

	features, err := OpenFON(p, "transcript_stable_id", "chrom", "strand", "exons")
	c.Assert(err, qt.IsNil)
	c.Assert(features, qt.HasLen, 2)
	c.Assert(features[1].Strand, qt.Equals, int8(-1))
	c.Assert(features[0].Length(), qt.Equals, 200)

	genes, err := ReadAll(NewFeatureGeneReader(features))
	c.Assert(err, qt.IsNil)
	c.Assert(genes, qt.DeepEquals, []GeneInterval{
		{GeneID: "T1", Contig: "chr1", Start: 100, End: 400},
		{GeneID: "T2", Contig: "chrM", Start: 5, End: 9},
	})
}

func TestOpenTAB(t *testing.T) {
	c := qt.New(t)
	p := filepath.Join(t.TempDir(), "lengths.tab")
	c.Assert(os.WriteFile(p, []byte("chrM\t16569\n"), 0666), qt.IsNil)
	features, err := OpenTAB(p, 1)
	c.Assert(err, qt.IsNil)
	g, err := NewFeatureGeneReader(features).Read()
	c.Assert(err, qt.IsNil)
	c.Assert(g, qt.Equals, GeneInterval{GeneID: "chrM", Contig: "chrM", Start: 0, End: 16569})
}

func TestMapping(t *testing.T) {
	c := qt.New(t)
	p := filepath.Join(t.TempDir(), "mapping.tab")
	c.Assert(os.WriteFile(p, []byte("G1\tACTB\n"), 0666), qt.IsNil)
	m, err := OpenMapping(p)
	c.Assert(err, qt.IsNil)
	c.Assert(MapName("G1", m), qt.Equals, "ACTB")
	c.Assert(MapName("G2", m), qt.Equals, "G2")
}

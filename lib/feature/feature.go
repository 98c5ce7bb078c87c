//
// Copyright (C) 2015-2021 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Feature struct {
	ID     uint32
	Name   string
	Chrom  string
	Strand int8
	Coords [][]int
}

// Length returns the length of feature
func (feat Feature) Length() (length int) {
	for _, coords := range feat.Coords {
		length += coords[1] - coords[0]
	}
	return
}

// Exons returns the feature intervals as exons.
func (feat Feature) Exons() []Exon {
	exons := make([]Exon, len(feat.Coords))
	for i, c := range feat.Coords {
		exons[i] = Exon{Contig: feat.Chrom, Start: c[0], End: c[1]}
	}
	return exons
}

// ParseStrand converts +, +1, 1, - or -1 to a strand. Anything else is unstranded.
func ParseStrand(strandRaw string) int8 {
	switch strandRaw {
	case "+", "1", "+1":
		return 1
	case "-", "-1":
		return -1
	}
	return 0
}

// OpenFON parses a "Feature Object Notation" file and returns a list of Feature
func OpenFON(jpath, fonName, fonChrom, fonStrand, fonCoords string) (features []Feature, err error) {
	jfos, err := os.Open(jpath)
	if err != nil {
		return
	}
	defer jfos.Close()

	d := json.NewDecoder(jfos)
	d.UseNumber()
	var fon struct {
		Version  json.Number              `json:"fon_version"`
		Features []map[string]interface{} `json:"features"`
	}
	if err = d.Decode(&fon); err != nil {
		err = fmt.Errorf("Error while parsing JSON feature file %s: %w", jpath, err)
		return
	}

	// FON version
	if version, verr := fon.Version.Int64(); verr != nil {
		return nil, fmt.Errorf("%w: missing FON version in %s", ErrMalformedGeneModel, jpath)
	} else if version != 1 {
		return nil, fmt.Errorf("Unknown FON version %d", version)
	}

	for i, mf := range fon.Features {
		name, _ := mf[fonName].(string)
		chrom, _ := mf[fonChrom].(string)
		if name == "" || chrom == "" {
			return nil, fmt.Errorf("%w: feature %d lacks %s or %s", ErrMalformedGeneModel, i, fonName, fonChrom)
		}
		strand, _ := mf[fonStrand].(string)
		f := Feature{ID: uint32(i), Name: name, Chrom: chrom, Strand: ParseStrand(strand)}
		// Add coordinates
		rawCoords, _ := mf[fonCoords].([]interface{})
		for _, cj := range rawCoords {
			pair, ok := cj.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: bad coordinates for %s", ErrMalformedGeneModel, name)
			}
			coord := make([]int, 2)
			for k, ck := range pair {
				num, ok := ck.(json.Number)
				if !ok {
					return nil, fmt.Errorf("%w: bad coordinates for %s", ErrMalformedGeneModel, name)
				}
				n, nerr := num.Int64()
				if nerr != nil {
					return nil, nerr
				}
				coord[k] = int(n)
			}
			f.Coords = append(f.Coords, coord)
		}
		features = append(features, f)
	}
	return
}

// OpenTAB parses a two column tabulated files with name and length of feature and returns a list of Feature.
// Each feature covers its whole reference sequence, which is named after the feature.
func OpenTAB(tpath string, strand int8) (features []Feature, err error) {
	tfos, err := os.Open(tpath)
	if err != nil {
		return
	}
	defer tfos.Close()

	var i uint32
	var length int
	tscanner := bufio.NewScanner(tfos)
	for tscanner.Scan() {
		line := tscanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: expected name and length in %q", ErrMalformedGeneModel, line)
		}
		length, err = strconv.Atoi(fields[1])
		if err != nil {
			return
		}
		f := Feature{ID: i, Name: fields[0], Chrom: fields[0], Strand: strand, Coords: [][]int{{0, length}}}
		features = append(features, f)
		i++
	}
	if err = tscanner.Err(); err != nil {
		return
	}
	return
}

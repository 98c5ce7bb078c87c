//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

// Profile counts events per genomic position over one gene interval.
type Profile struct {
	Contig string
	Start  int
	Counts []float32
}

func NewProfile(contig string, start, end int) *Profile {
	return &Profile{Contig: contig, Start: start, Counts: make([]float32, end-start)}
}

// Add adds v at genomic position pos. Positions outside the profile are ignored.
func (p *Profile) Add(pos int, v float32) bool {
	i := pos - p.Start
	if i < 0 || i >= len(p.Counts) {
		return false
	}
	p.Counts[i] += v
	return true
}

// Total returns the sum of all counts.
func (p *Profile) Total() (t float64) {
	for _, c := range p.Counts {
		t += float64(c)
	}
	return
}

//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package mismatch

import "unicode"

// Index of substituted bases in GeneCounters.Breakdown
const (
	BaseA = iota
	BaseT
	BaseC
	BaseG
	BaseOther
	nBase
)

// GeneCounters accumulates the columns of one gene.
type GeneCounters struct {
	GeneID     string
	Mismatches int
	Bases      int
	LowQuality int
	// Mismatches at known variant positions, not written
	Excluded int
	// Counted mismatches per read base
	Breakdown [nBase]int
}

func baseIndex(b byte) int {
	switch unicode.ToLower(rune(b)) {
	case 'a':
		return BaseA
	case 't':
		return BaseT
	case 'c':
		return BaseC
	case 'g':
		return BaseG
	}
	return BaseOther
}

// Add records the outcome of one column. readBase is the substituted base.
func (gc *GeneCounters) Add(o Outcome, readBase byte) {
	switch o {
	case LowQualityMismatch:
		gc.LowQuality++
	case ExcludedKnownVariant:
		gc.Excluded++
	case CountedMismatch:
		gc.Mismatches++
		gc.Breakdown[baseIndex(readBase)]++
	}
}

// MismatchColumns returns the number of mismatch columns seen, whatever their outcome.
func (gc *GeneCounters) MismatchColumns() int {
	return gc.Mismatches + gc.LowQuality + gc.Excluded
}

// Merge adds the counts of o.
func (gc *GeneCounters) Merge(o GeneCounters) {
	gc.Mismatches += o.Mismatches
	gc.Bases += o.Bases
	gc.LowQuality += o.LowQuality
	gc.Excluded += o.Excluded
	for i := range gc.Breakdown {
		gc.Breakdown[i] += o.Breakdown[i]
	}
}

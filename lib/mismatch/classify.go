//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package mismatch

import (
	"git.sr.ht/~vejnar/MismatchAbacus/lib/esam"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

type Outcome int

const (
	Match Outcome = iota
	LowQualityMismatch
	ExcludedKnownVariant
	CountedMismatch
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case LowQualityMismatch:
		return "low-quality-mismatch"
	case ExcludedKnownVariant:
		return "excluded-known-variant"
	case CountedMismatch:
		return "counted-mismatch"
	}
	return "unknown"
}

// Classifier decides the outcome of one aligned column.
type Classifier struct {
	Threshold int
	Known     *variant.ExclusionSet
}

// Classify checks, in order: match, quality below threshold, known substitution at this position.
func (c Classifier) Classify(contig string, col esam.Column, qual byte) Outcome {
	if !col.Mismatch() {
		return Match
	}
	if int(qual) < c.Threshold {
		return LowQualityMismatch
	}
	if c.Known.IsExcluded(contig, col.RefPos, col.RefBase, col.ReadBase) {
		return ExcludedKnownVariant
	}
	return CountedMismatch
}

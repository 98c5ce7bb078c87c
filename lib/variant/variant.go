//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package variant

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ErrMalformedVariantRecord is reported for catalogue records lacking REF or ALT. Such records are skipped.
var ErrMalformedVariantRecord = errors.New("malformed variant record")

// Variant is a single-base substitution at a 0-based position.
type Variant struct {
	Contig string
	Pos    int
	Ref    byte
	Alt    byte
}

// Predicate selects the substitutions kept in an ExclusionSet.
type Predicate func(ref, alt byte) bool

// ExcludeAll keeps every substitution.
func ExcludeAll(ref, alt byte) bool { return true }

// RNAEditing keeps the A>G and T>C substitutions of A-to-I editing.
func RNAEditing(ref, alt byte) bool {
	ref, alt = upper(ref), upper(alt)
	return (ref == 'A' && alt == 'G') || (ref == 'T' && alt == 'C')
}

type Mode int

const (
	ModeAll Mode = iota
	ModeRNAEditing
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return ModeAll, nil
	case "rna-editing", "editing":
		return ModeRNAEditing, nil
	}
	return ModeAll, fmt.Errorf("Unknown variant mode %q", s)
}

func (m Mode) String() string {
	if m == ModeRNAEditing {
		return "rna-editing"
	}
	return "all"
}

func (m Mode) Predicate() Predicate {
	if m == ModeRNAEditing {
		return RNAEditing
	}
	return ExcludeAll
}

type substitution struct {
	ref, alt byte
}

// ExclusionSet holds known substitutions indexed by contig and position. It must not be modified once shared.
type ExclusionSet struct {
	sites map[string]map[int][]substitution
	n     int
}

func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{sites: make(map[string]map[int][]substitution)}
}

// Add inserts a substitution. Duplicates are ignored.
func (s *ExclusionSet) Add(v Variant) {
	positions, ok := s.sites[v.Contig]
	if !ok {
		positions = make(map[int][]substitution)
		s.sites[v.Contig] = positions
	}
	sub := substitution{upper(v.Ref), upper(v.Alt)}
	for _, known := range positions[v.Pos] {
		if known == sub {
			return
		}
	}
	positions[v.Pos] = append(positions[v.Pos], sub)
	s.n++
}

// IsExcluded reports whether the ref>alt substitution at contig:pos is known. A nil set excludes nothing.
func (s *ExclusionSet) IsExcluded(contig string, pos int, ref, alt byte) bool {
	if s == nil {
		return false
	}
	sub := substitution{upper(ref), upper(alt)}
	for _, known := range s.sites[contig][pos] {
		if known == sub {
			return true
		}
	}
	return false
}

// Len returns the number of substitutions.
func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}
	return s.n
}

type LoadOptions struct {
	// Keep only substitutions accepted by Predicate (all if nil)
	Predicate Predicate
	// Keep only records on Contig (all if empty)
	Contig string
	// Called for each skipped malformed record
	Warn func(format string, args ...interface{})
}

type LoadStats struct {
	Records   int
	Kept      int
	Skipped   int
	Filtered  int
	NonSingle int
}

// Load builds an ExclusionSet from a catalogue. Records are filtered at load time so that lookups
// only test the substitutions which can be excluded.
func Load(r RecordReader, opts LoadOptions) (*ExclusionSet, LoadStats, error) {
	var stats LoadStats
	pred := opts.Predicate
	if pred == nil {
		pred = ExcludeAll
	}
	s := NewExclusionSet()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if errors.Is(err, ErrMalformedVariantRecord) {
			stats.Records++
			stats.Skipped++
			if opts.Warn != nil {
				opts.Warn("%v", err)
			}
			continue
		} else if err != nil {
			return s, stats, err
		}
		stats.Records++
		if opts.Contig != "" && rec.Contig != opts.Contig {
			stats.Filtered++
			continue
		}
		if err := rec.Validate(); err != nil {
			stats.Skipped++
			if opts.Warn != nil {
				opts.Warn("%v", err)
			}
			continue
		}
		if len(rec.Ref) != 1 {
			stats.NonSingle++
			continue
		}
		kept := false
		for _, alt := range rec.Alts {
			if len(alt) != 1 {
				continue
			}
			if !pred(rec.Ref[0], alt[0]) {
				continue
			}
			s.Add(Variant{Contig: rec.Contig, Pos: rec.Pos - 1, Ref: rec.Ref[0], Alt: alt[0]})
			kept = true
		}
		if kept {
			stats.Kept++
		} else {
			stats.Filtered++
		}
	}
	return s, stats, nil
}

func upper(b byte) byte {
	return byte(unicode.ToUpper(rune(b)))
}

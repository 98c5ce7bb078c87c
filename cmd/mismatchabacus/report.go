//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/mismatch"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

type Report struct {
	Genes            int    `json:"genes"`
	ReadsFetched     uint64 `json:"reads_fetched"`
	ReadsUnmapped    uint64 `json:"reads_unmapped"`
	ReadsDuplicate   uint64 `json:"reads_duplicate"`
	ReadsMultiMapped uint64 `json:"reads_multi_mapped"`
	ReadsUsed        uint64 `json:"reads_used"`
	ReadsPerfect     uint64 `json:"reads_perfect"`
	ReadNamesUsed    int    `json:"read_names_used"`
	VariantRecords   int    `json:"variant_records"`
	VariantsLoaded   int    `json:"variants_loaded"`
	VariantsSkipped  int    `json:"variants_skipped"`
	Bases            int    `json:"bases"`
	Mismatches       int    `json:"mismatches"`
	LowQuality       int    `json:"low_qual"`
	Excluded         int    `json:"excluded"`
}

func (r *Report) AddResult(res mismatch.Result) {
	r.Genes++
	r.ReadsFetched += res.Stats.Fetched
	r.ReadsUnmapped += res.Stats.Unmapped
	r.ReadsDuplicate += res.Stats.Duplicate
	r.ReadsMultiMapped += res.Stats.MultiMapped
	r.ReadsUsed += res.Stats.Used
	r.ReadsPerfect += res.Stats.Perfect
	r.Bases += res.Counters.Bases
	r.Mismatches += res.Counters.Mismatches
	r.LowQuality += res.Counters.LowQuality
	r.Excluded += res.Counters.Excluded
}

func (r *Report) AddVariants(known *variant.ExclusionSet, stats variant.LoadStats) {
	r.VariantRecords = stats.Records
	r.VariantsLoaded = known.Len()
	r.VariantsSkipped = stats.Skipped
}

// AddReadNames sets the number of distinct read names. Reads overlapping several genes are in several results.
func (r *Report) AddReadNames(names set.Interface) {
	if names != nil {
		r.ReadNamesUsed = names.Size()
	}
}

func WriteReport(pathReport string, r Report) error {
	report, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if pathReport != "-" {
		if f, err := os.Create(pathReport); err != nil {
			return err
		} else {
			f.Write(report)
			return f.Close()
		}
	} else {
		fmt.Println(string(report))
	}
	return nil
}

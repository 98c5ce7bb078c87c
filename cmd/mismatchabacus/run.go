//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"strconv"

	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/esam"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/feature"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/mismatch"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/output"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/profile"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

// runInput holds the opened inputs of a run.
type runInput struct {
	genes        feature.GeneReader
	open         esam.Opener
	known        *variant.ExclusionSet
	variantStats variant.LoadStats
	mapping      map[string]string
}

type runOutput struct {
	countPath     string
	countFormat   string
	profilePath   string
	profileFormat string
	pathReport    string
	appendOutput  bool
}

type outputs struct {
	countFile   *output.File
	count       *mismatch.CountWriter
	profileFile *output.File
	profile     *profile.Writer
}

func createOutputs(out runOutput, doProfile bool, mapping map[string]string) (o outputs, err error) {
	countFormat, countZip := output.SplitFormat(out.countFormat)
	if o.countFile, err = output.Create(out.countPath, countZip, out.appendOutput); err != nil {
		return o, err
	}
	if o.count, err = mismatch.NewCountWriter(o.countFile, countFormat, mapping); err != nil {
		o.countFile.Close()
		return o, err
	}
	if doProfile {
		profileFormat, profileZip := output.SplitFormat(out.profileFormat)
		if o.profileFile, err = output.Create(out.profilePath, profileZip, out.appendOutput); err != nil {
			o.countFile.Close()
			return o, err
		}
		if o.profile, err = profile.NewWriter(o.profileFile, profileFormat); err != nil {
			o.countFile.Close()
			o.profileFile.Close()
			return o, err
		}
	}
	return o, nil
}

// close flushes and closes the outputs, returning the first error.
func (o outputs) close() error {
	err := o.count.Flush()
	if cerr := o.countFile.Close(); err == nil {
		err = cerr
	}
	if o.profile != nil {
		if ferr := o.profile.Flush(); err == nil {
			err = ferr
		}
		if cerr := o.profileFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// CountMismatches aggregates every gene of in and writes one count row (and profile) per gene.
func CountMismatches(ctx context.Context, in runInput, cfg mismatch.Config, out runOutput, nWorker int, prog *progress) (Report, error) {
	var report Report
	if in.known != nil {
		report.AddVariants(in.known, in.variantStats)
	}

	agg := mismatch.NewAggregator(cfg, in.known)
	if out.pathReport != "" {
		agg.ReadNames = set.New(set.ThreadSafe)
	}
	if prog.level >= 3 {
		agg.Debug = func(format string, args ...interface{}) { prog.Printf(3, format, args...) }
	}

	o, err := createOutputs(out, cfg.Profile, in.mapping)
	if err != nil {
		return report, err
	}

	emit := func(res mismatch.Result) error {
		report.AddResult(res)
		if err := o.count.Write(res.Counters); err != nil {
			return err
		}
		if o.profile != nil {
			if err := o.profile.Write(feature.MapName(res.Gene.GeneID, in.mapping), res.Profile); err != nil {
				return err
			}
		}
		prog.Tick(1, "%s genes - %s reads", AddCommas(strconv.Itoa(report.Genes)), AddCommas(strconv.FormatUint(report.ReadsFetched, 10)))
		return nil
	}
	prog.Printf(1, "Counting with %d worker(s)", nWorker)
	_, err = agg.Run(ctx, in.genes, in.open, nWorker, emit)
	if cerr := o.close(); err == nil {
		err = cerr
	}
	if err != nil {
		return report, err
	}
	report.AddReadNames(agg.ReadNames)

	// Output: Report
	if out.pathReport != "" {
		if err = WriteReport(out.pathReport, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

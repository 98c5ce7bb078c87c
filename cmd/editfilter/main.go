//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/output"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

var version = "DEV"

// Writes "REF ALT POS" for the variants which are not RNA-editing substitutions.
func main() {
	var pathVCF, pathOutput, compression string
	var verbose, printVersion bool
	flag.StringVar(&pathVCF, "path_vcf", "", "Path to variants (VCF, optionally gzip or bgzip compressed)")
	flag.StringVar(&pathOutput, "path_output", "-", "Path to output (stdout with -)")
	flag.StringVar(&compression, "output_compression", "", "Output compression: 'gz', 'lz4' or 'lz4hc'")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Check arguments
	if len(pathVCF) == 0 {
		log.Fatal("No VCF input")
	}

	vr, err := variant.OpenVCF(pathVCF)
	if err != nil {
		log.Fatal(err)
	}
	defer vr.Close()
	out, err := output.Create(pathOutput, compression, false)
	if err != nil {
		log.Fatal(err)
	}
	warn := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
	stats, err := variant.FilterNonEditing(vr, out, warn)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%d record(s), %d written, %d skipped\n", stats.Records, stats.Written, stats.Skipped)
	}
}

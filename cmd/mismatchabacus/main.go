//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/esam"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/feature"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/mismatch"
	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

var version = "DEV"

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var appendOutput, verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level (3 prints alignments of reads with mismatches)")
	flag.BoolVar(&appendOutput, "append", false, "Append to output count and profile (default create)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var pathSAM, pathBAM, pathBAI, pathGenes, formatGenes, gtfFeature, fonName, fonChrom, fonStrand, fonCoords, featureStrandRaw string
	flag.StringVar(&pathSAM, "path_sam", "", "Path to SAM file (loaded in memory)")
	flag.StringVar(&pathBAM, "path_bam", "", "Path to BAM file")
	flag.StringVar(&pathBAI, "path_bai", "", "Path to BAM index (default: path_bam.bai)")
	flag.StringVar(&pathGenes, "path_genes", "", "Path to gene models")
	flag.StringVar(&formatGenes, "format_genes", "gtf", "Format of gene models: 'gtf', 'FON' or 'tab'")
	flag.StringVar(&gtfFeature, "gtf_feature", "exon", "GTF feature type used to build gene intervals (all if empty)")
	flag.StringVar(&fonName, "fon_name", "gene_stable_id", "FON key for gene name")
	flag.StringVar(&fonChrom, "fon_chrom", "chrom", "FON key for chromosome or locus")
	flag.StringVar(&fonStrand, "fon_strand", "strand", "FON key for strand")
	flag.StringVar(&fonCoords, "fon_coords", "exons", "FON key for coordinates (exons for example)")
	flag.StringVar(&featureStrandRaw, "feature_strand", "+", "Default feature strand (+ (+1) or - (-1))")
	// Arguments: Variants
	var pathVCF, vcfContig, variantModeRaw string
	flag.StringVar(&pathVCF, "path_vcf", "", "Path to known variants (VCF, optionally gzip or bgzip compressed)")
	flag.StringVar(&vcfContig, "vcf_contig", "", "Only load variants of this contig")
	flag.StringVar(&variantModeRaw, "variant_mode", "all", "Known variants excluded: 'all' or 'rna-editing'")
	// Arguments: Counting
	var qualityThreshold int
	var countPath, countFormat string
	flag.IntVar(&qualityThreshold, "quality_threshold", mismatch.DefaultQualityThreshold, "Minimum base quality")
	flag.StringVar(&countPath, "count_path", "-", "Path to counts output (stdout with -)")
	flag.StringVar(&countFormat, "count_format", "tsv", "Counts output format: 'tsv' with optional compression (tsv+gz, tsv+lz4)")
	// Arguments: Profiling
	var profilePath, profileFormat string
	flag.StringVar(&profilePath, "profile_path", "", "Path to profile of counted mismatches (no profile if empty)")
	flag.StringVar(&profileFormat, "profile_format", "bedgraph", "Profile output format: 'bedgraph' or 'csv' with optional compression (csv+lz4)")
	// Arguments: Output
	var pathMapping string
	flag.StringVar(&pathMapping, "path_mapping", "", "Path to gene name(s) mapping (tabulated file)")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}
	prog := newProgress(os.Stderr, verboseLevel)

	// Max CPU
	if nWorker < 1 {
		nWorker = 1
	}
	runtime.GOMAXPROCS(nWorker * 2)

	// Check arguments
	if len(pathGenes) == 0 {
		log.Fatal("No gene input")
	} else if _, err := os.Stat(pathGenes); os.IsNotExist(err) {
		log.Fatalln(pathGenes, "not found")
	}
	var alignments esam.PathSAM
	if len(pathSAM) > 0 && len(pathBAM) > 0 {
		log.Fatal("Only one of SAM or BAM input")
	} else if len(pathSAM) > 0 {
		alignments = esam.PathSAM{Path: pathSAM, Binary: false}
	} else if len(pathBAM) > 0 {
		alignments = esam.PathSAM{Path: pathBAM, Binary: true}
	} else {
		log.Fatal("No SAM/BAM input")
	}
	if _, err := os.Stat(alignments.Path); os.IsNotExist(err) {
		log.Fatalln(alignments.Path, "not found")
	}
	variantMode, err := variant.ParseMode(variantModeRaw)
	if err != nil {
		log.Fatal(err)
	}
	cfg := mismatch.DefaultConfig()
	cfg.QualityThreshold = qualityThreshold
	cfg.VariantMode = variantMode
	cfg.Profile = profilePath != ""
	if err = cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Open all inputs before creating any output
	var in runInput
	// Genes
	genes, genesCloser, err := OpenGenes(genesOptions{
		path:       pathGenes,
		format:     formatGenes,
		gtfFeature: gtfFeature,
		fonName:    fonName,
		fonChrom:   fonChrom,
		fonStrand:  fonStrand,
		fonCoords:  fonCoords,
		strand:     feature.ParseStrand(featureStrandRaw),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer genesCloser.Close()
	in.genes = genes
	// Variants
	if pathVCF != "" {
		in.known, in.variantStats, err = OpenVariants(variantsOptions{path: pathVCF, contig: vcfContig, mode: variantMode}, prog)
		if err != nil {
			log.Fatal(err)
		}
	}
	// Gene mapping
	if pathMapping != "" {
		if in.mapping, err = feature.OpenMapping(pathMapping); err != nil {
			log.Fatal(err)
		}
	}
	// Alignments
	if in.open, err = OpenAlignments(alignments, pathBAI, nWorker, prog); err != nil {
		log.Fatal(err)
	}

	// Interrupt stops the run between genes
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Count mismatches on genes
	report, err := CountMismatches(ctx, in, cfg, runOutput{
		countPath:     countPath,
		countFormat:   countFormat,
		profilePath:   profilePath,
		profileFormat: profileFormat,
		pathReport:    pathReport,
		appendOutput:  appendOutput,
	}, nWorker, prog)
	if err != nil {
		log.Fatal(err)
	}

	// Verbose
	prog.Printf(1, "Done %d genes, %d mismatches", report.Genes, report.Mismatches)
}

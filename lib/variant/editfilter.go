//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package variant

import (
	"bufio"
	"errors"
	"io"
	"strconv"
)

type FilterStats struct {
	Records int
	Written int
	Skipped int
}

// IsEditing reports whether REF and the first ALT form an RNA-editing substitution.
func (rec Record) IsEditing() bool {
	if len(rec.Ref) != 1 || len(rec.Alts) == 0 || len(rec.Alts[0]) != 1 {
		return false
	}
	return RNAEditing(rec.Ref[0], rec.Alts[0][0])
}

// FilterNonEditing writes "REF ALT POS" for every record which is not an RNA-editing substitution.
// Only the first ALT allele is considered; POS is written as in the VCF.
func FilterNonEditing(r RecordReader, w io.Writer, warn func(format string, args ...interface{})) (FilterStats, error) {
	var stats FilterStats
	bw := bufio.NewWriter(w)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if errors.Is(err, ErrMalformedVariantRecord) {
			stats.Records++
			stats.Skipped++
			if warn != nil {
				warn("%v", err)
			}
			continue
		} else if err != nil {
			return stats, err
		}
		stats.Records++
		if err := rec.Validate(); err != nil {
			stats.Skipped++
			if warn != nil {
				warn("%v", err)
			}
			continue
		}
		if rec.IsEditing() {
			continue
		}
		bw.WriteString(rec.Ref)
		bw.WriteByte('\t')
		bw.WriteString(rec.Alts[0])
		bw.WriteByte('\t')
		bw.WriteString(strconv.Itoa(rec.Pos))
		if err := bw.WriteByte('\n'); err != nil {
			return stats, err
		}
		stats.Written++
	}
	return stats, bw.Flush()
}

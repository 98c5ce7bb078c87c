//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ErrMissingRequiredTag is returned when a read lacks an annotation the counting depends on.
var ErrMissingRequiredTag = errors.New("missing required tag")

var (
	TagNH = sam.NewTag("NH")
	TagNM = sam.NewTag("NM")
	TagMD = sam.NewTag("MD")
)

// MissingQual is the quality of reads stored without qualities.
const MissingQual = 0xff

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// IntTag returns the value of an integer tag whatever its stored width.
func IntTag(r *sam.Record, tag sam.Tag) (int, bool) {
	aux, found := r.Tag(tag[:])
	if !found {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		return int(v), true
	}
	return 0, false
}

// RequireIntTag is IntTag failing with ErrMissingRequiredTag.
func RequireIntTag(r *sam.Record, tag sam.Tag) (int, error) {
	v, ok := IntTag(r, tag)
	if !ok {
		return 0, fmt.Errorf("%w: %s for read %s", ErrMissingRequiredTag, tag, r.Name)
	}
	return v, nil
}

// AlignedQuals returns the qualities of the aligned part of the read, i.e. without soft-clipped bases.
func AlignedQuals(r *sam.Record) []byte {
	start, end := 0, len(r.Qual)
	for i := 0; i < len(r.Cigar); i++ {
		co := r.Cigar[i]
		if co.Type() == sam.CigarHardClipped {
			continue
		}
		if co.Type() == sam.CigarSoftClipped {
			start += co.Len()
		}
		break
	}
	for i := len(r.Cigar) - 1; i >= 0; i-- {
		co := r.Cigar[i]
		if co.Type() == sam.CigarHardClipped {
			continue
		}
		if co.Type() == sam.CigarSoftClipped {
			end -= co.Len()
		}
		break
	}
	if start > end {
		return nil
	}
	return r.Qual[start:end]
}

func max(a, b int) int {
	if a < b {
		return b
	}
	return a
}

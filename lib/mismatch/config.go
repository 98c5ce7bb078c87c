//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package mismatch

import (
	"fmt"

	"git.sr.ht/~vejnar/MismatchAbacus/lib/variant"
)

const DefaultQualityThreshold = 30

type Config struct {
	// Minimum base quality for a base to be counted
	QualityThreshold int
	// Substitutions of the catalogue used to exclude known sites
	VariantMode variant.Mode
	// Record the position of counted mismatches
	Profile bool
}

func DefaultConfig() Config {
	return Config{QualityThreshold: DefaultQualityThreshold, VariantMode: variant.ModeAll}
}

func (cfg Config) Validate() error {
	if cfg.QualityThreshold < 0 || cfg.QualityThreshold > 93 {
		return fmt.Errorf("Quality threshold %d out of range [0,93]", cfg.QualityThreshold)
	}
	return nil
}

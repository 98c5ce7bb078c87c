//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

func TestSplitFormat(t *testing.T) {
	c := qt.New(t)
	f, z := SplitFormat("bedgraph+lz4")
	c.Assert(f, qt.Equals, "bedgraph")
	c.Assert(z, qt.Equals, "lz4")
	f, z = SplitFormat("tsv")
	c.Assert(f, qt.Equals, "tsv")
	c.Assert(z, qt.Equals, "")
}

func TestCreate(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	const text = "gene_id\tmismatches\n"
	for _, zip := range []string{"", "gz", "lz4", "lz4hc"} {
		p := filepath.Join(dir, "out."+zip)
		o, err := Create(p, zip, false)
		c.Assert(err, qt.IsNil)
		_, err = o.Write([]byte(text))
		c.Assert(err, qt.IsNil)
		c.Assert(o.Close(), qt.IsNil)

		raw, err := os.ReadFile(p)
		c.Assert(err, qt.IsNil)
		var r io.Reader = bytes.NewReader(raw)
		switch zip {
		case "gz":
			r, err = gzip.NewReader(r)
			c.Assert(err, qt.IsNil)
		case "lz4", "lz4hc":
			r = lz4.NewReader(r)
		}
		got, err := io.ReadAll(r)
		c.Assert(err, qt.IsNil)
		c.Assert(string(got), qt.Equals, text, qt.Commentf("zip %q", zip))
	}

	_, err := Create(filepath.Join(dir, "out.bz2"), "bz2", false)
	c.Assert(err, qt.IsNotNil)
}

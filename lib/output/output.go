//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

// SplitFormat splits a format such as "tsv+lz4" into the format and the compression.
func SplitFormat(format string) (string, string) {
	if strings.Contains(format, "+") {
		doubleFormat := strings.SplitN(format, "+", 2)
		return doubleFormat[0], doubleFormat[1]
	}
	return format, ""
}

// Compress wraps w with the compression zip: "", "gz", "lz4" or "lz4hc".
func Compress(w io.Writer, zip string) (GenericWriter, error) {
	switch zip {
	case "":
		return nopCloser{w}, nil
	case "gz", "gzip":
		return gzip.NewWriter(w), nil
	case "lz4":
		return lz4.NewWriter(w), nil
	case "lz4hc":
		lzWriter := lz4.NewWriter(w)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		return lzWriter, nil
	}
	return nil, fmt.Errorf("Unknown compression %s", zip)
}

// File is an output file, or stdout, with optional compression.
type File struct {
	GenericWriter
	f *os.File
}

// Create opens path ("-" for stdout) for writing, truncating or appending.
func Create(path, zip string, appendOutput bool) (*File, error) {
	var f *os.File
	if path == "-" {
		f = os.Stdout
	} else {
		// Append or Create flag
		var fg int
		if appendOutput {
			fg = os.O_APPEND | os.O_CREATE | os.O_WRONLY
		} else {
			fg = os.O_RDWR | os.O_CREATE | os.O_TRUNC
		}
		var err error
		if f, err = os.OpenFile(path, fg, 0666); err != nil {
			return nil, err
		}
	}
	w, err := Compress(f, zip)
	if err != nil {
		if f != os.Stdout {
			f.Close()
		}
		return nil, err
	}
	return &File{GenericWriter: w, f: f}, nil
}

func (o *File) Close() error {
	err := o.GenericWriter.Close()
	if o.f != os.Stdout {
		if cerr := o.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

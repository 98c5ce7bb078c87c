//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"fmt"
	"io"
	"time"
)

// progress prints timed messages. Counts may go to stdout so messages are written to out (stderr).
type progress struct {
	out     io.Writer
	level   int
	start   time.Time
	lastLog time.Time
}

func newProgress(out io.Writer, level int) *progress {
	now := time.Now()
	return &progress{out: out, level: level, start: now, lastLog: now}
}

func (p *progress) Printf(level int, format string, args ...interface{}) {
	if p.level < level {
		return
	}
	timeNow := time.Now()
	fmt.Fprintf(p.out, "%.1fmin - "+format+"\n", append([]interface{}{timeNow.Sub(p.start).Minutes()}, args...)...)
}

// Tick is Printf limited to one message per minute.
func (p *progress) Tick(level int, format string, args ...interface{}) {
	if p.level < level {
		return
	}
	if timeNow := time.Now(); timeNow.Sub(p.lastLog).Minutes() > 1. {
		p.Printf(level, format, args...)
		p.lastLog = timeNow
	}
}

func (p *progress) Warn(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "Warning: "+format+"\n", args...)
}

func AddCommas(s string) string {
	if len(s) <= 3 {
		return s
	} else {
		return AddCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
	}
}

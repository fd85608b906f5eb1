// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package errs centralises the chk.Err/chk.Panic call sites shared by
// the engine, tableau and transport packages.
package errs

import "github.com/cpmech/gosl/chk"

// Errf returns a recoverable error, formatted like chk.Err.
func Errf(msg string, args ...interface{}) error {
	return chk.Err(msg, args...)
}

// Panicf aborts with a fatal invariant violation.
func Panicf(msg string, args ...interface{}) {
	chk.Panic(msg, args...)
}

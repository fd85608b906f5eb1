// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tableau

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_tableau01(tst *testing.T) {

	chk.PrintTitle("tableau01")

	for _, name := range Names() {
		t := Get(name)
		if err := t.Validate(1e-12); err != nil {
			tst.Errorf("%s failed invariant check: %v", name, err)
		}
		chk.IntAssert(len(t.A), t.S)
		chk.IntAssert(len(t.B), t.S)
		chk.IntAssert(len(t.Bhat), t.S)
		chk.IntAssert(len(t.C), t.S)
	}
}

func Test_tableau02(tst *testing.T) {

	chk.PrintTitle("tableau02")

	// unknown integrator name falls back to RungeKuttaFehlberg54
	got := Get("does-not-exist")
	want := Get(RungeKuttaFehlberg54)
	if got.Name != want.Name {
		tst.Errorf("fallback failed: got %q, want %q", got.Name, want.Name)
	}
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constants

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_store01(tst *testing.T) {

	chk.PrintTitle("store01")

	s := New()
	if !s.CheckModuli(1e-12) {
		tst.Errorf("default moduli invariant violated")
	}

	var notified []string
	s.OnUpdate(func(name string) { notified = append(notified, name) })

	s.SetSphereE(8000) // change
	s.SetSphereE(8000) // idempotent: should not notify again
	if len(notified) != 1 {
		tst.Errorf("idempotent write notified %d times, want 1", len(notified))
	}
	if !s.CheckModuli(1e-9) {
		tst.Errorf("moduli invariant violated after SetSphereE")
	}
}

func Test_store02(tst *testing.T) {

	chk.PrintTitle("store02")

	s := New()
	s.SetWallE(6000)
	s.SetSpherePoissonRatio(0.3)
	s.SetWallPoissonRatio(0.25)
	if !s.CheckModuli(1e-9) {
		tst.Errorf("moduli invariant violated after combined updates")
	}
}

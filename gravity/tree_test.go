// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gravity

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/mertemba/spheresim/sphere"
)

func Test_tree01(tst *testing.T) {

	chk.PrintTitle("tree01")

	box := sphere.Vec3{10, 10, 10}
	tr := New()
	tr.Resize(box, false)

	// every cell must classify itself as pairwise, never approximating
	for i := range tr.Cells {
		found := false
		for _, j := range tr.Cells[i].Pairwise {
			if j == i {
				found = true
			}
		}
		if !found {
			tst.Errorf("cell %d does not list itself as pairwise", i)
		}
		for _, j := range tr.Cells[i].Approximating {
			if j == i {
				tst.Errorf("cell %d lists itself as approximating", i)
			}
		}
	}
}

func Test_tree02(tst *testing.T) {

	chk.PrintTitle("tree02")

	box := sphere.Vec3{10, 10, 10}
	tr := New()
	tr.Resize(box, false)

	arr := sphere.New()
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{1, 1, 1}, Mass: 2, Radius: 0.1})
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{1.2, 1, 1}, Mass: 3, Radius: 0.1})
	tr.Update(arr)

	c0 := tr.CellOf(0)
	c1 := tr.CellOf(1)
	if c0 != c1 {
		tst.Errorf("expected spheres 0 and 1 to share a gravity cell, got %d and %d", c0, c1)
	}

	cell := tr.Cells[c0]
	chk.Float64(tst, "cell mass sum", 1e-15, cell.MassSum, 5)

	wantCOM := sphere.Vec3{(2*1 + 3*1.2) / 5, 1, 1}
	chk.Float64(tst, "cell COM.x", 1e-12, cell.CenterOfMass[0], wantCOM[0])
}

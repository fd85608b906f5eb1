// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rk

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/mertemba/spheresim/cells"
	"github.com/mertemba/spheresim/constants"
	"github.com/mertemba/spheresim/gravity"
	"github.com/mertemba/spheresim/kernel"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

// Test_rk01 checks that a sphere falling under constant gravity (no
// contacts, no collisions) follows the closed-form kinematics
// y(t) = y0 + (1/2) g t^2 to within the integrator's tolerance.
func Test_rk01(tst *testing.T) {

	chk.PrintTitle("rk01")

	box := sphere.Vec3{1000, 1000, 1000}
	params := constants.New()
	k := kernel.New(kernel.Features{}, params, box, cells.New(), gravity.New())

	arr := sphere.New()
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{500, 500, 500}, Mass: 1, Radius: 0.1})

	integ := New(tableau.DormandPrince54)

	dt := 0.01
	n := 100
	for i := 0; i < n; i++ {
		integ.Step(k, arr, 0, dt)
		arr.Swap()
	}

	t := float64(n) * dt
	g := params.EarthGravity[1]
	wantY := 500 + 0.5*g*t*t
	chk.Float64(tst, "y(t)", 1e-3, arr.Spheres[0].Pos[1], wantY)
}

func Test_rk02(tst *testing.T) {

	chk.PrintTitle("rk02")

	box := sphere.Vec3{1000, 1000, 1000}
	params := constants.New()
	params.SetEarthGravity(constants.Vec3{0, 0, 0})
	k := kernel.New(kernel.Features{}, params, box, cells.New(), gravity.New())

	arr := sphere.New()
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{500, 500, 500}, Vel: sphere.Vec3{1, 0, 0}, Mass: 1, Radius: 0.1})

	integ := New(tableau.HeunEuler21)
	steps := integ.Step(k, arr, 0, 1.0)
	arr.Swap()
	if steps < 1 {
		tst.Errorf("expected at least one substep, got %d", steps)
	}
	chk.Float64(tst, "x(1)", 1e-6, arr.Spheres[0].Pos[0], 501.0)
}

// Test_rk03 drives the step-halving recursion: a sphere deep inside the
// bottom wall overlap sees a stiff restoring force, so a coarse step
// must subdivide. With a depth cap of 1 the subdivision-exceeded
// counter has to fire instead.
func Test_rk03(tst *testing.T) {

	chk.PrintTitle("rk03")

	box := sphere.Vec3{1, 1, 1}
	params := constants.New()
	k := kernel.New(kernel.Features{}, params, box, cells.New(), gravity.New())

	arr := sphere.New()
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{0.5, 0.05, 0.5}, Mass: 1, Radius: 0.1})

	integ := New(tableau.HeunEuler21)
	steps := integ.Step(k, arr, 0, 0.01)
	arr.Swap()
	if steps < 2 {
		tst.Errorf("stiff contact should force step subdivision, got %d substeps", steps)
	}

	arr2 := sphere.New()
	arr2.Add(sphere.Sphere{Pos: sphere.Vec3{0.5, 0.05, 0.5}, Mass: 1, Radius: 0.1})
	capped := New(tableau.HeunEuler21)
	capped.MaxDepth = 1
	capped.Step(k, arr2, 0, 0.01)
	if capped.SubdivisionExceeded == 0 {
		tst.Errorf("depth cap of 1 should trip the subdivision-exceeded counter")
	}
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/mertemba/spheresim/tableau"
)

func Test_scene01(tst *testing.T) {

	chk.PrintTitle("scene01")

	data := []byte(`{
		"box": [1, 1, 1],
		"integrator": "DormandPrince54",
		"features": {"collisions": true},
		"params": {
			"eWall": 6000,
			"poissonWall": 0.4,
			"g": 1.3e-3
		},
		"spheres": [
			{"pos": [0.11, 0.11, 0.11], "mass": 1, "radius": 0.1},
			{"pos": [0.11, 0.4, 0.11], "vel": [0.2, 0.6, 0], "mass": 1, "radius": 0.1}
		]
	}`)

	eng := Load(data)
	chk.IntAssert(eng.Spheres.Count(), 2)
	chk.StrAssert(eng.IntegratorName(), tableau.DormandPrince54)
	if !eng.Kernel.Features.Collisions {
		tst.Errorf("collisions feature not applied")
	}
	chk.Float64(tst, "wall E", 1e-15, eng.Params.EWall, 6000)
	chk.Float64(tst, "G", 1e-18, eng.Params.G, 1.3e-3)
	chk.Float64(tst, "v1.y", 1e-15, eng.Spheres.Spheres[1].Vel[1], 0.6)
	if !eng.Params.CheckModuli(1e-9) {
		tst.Errorf("derived moduli not consistent after load")
	}
}

func Test_scene02(tst *testing.T) {

	chk.PrintTitle("scene02")

	defer func() {
		if recover() == nil {
			tst.Errorf("non-positive box must panic")
		}
	}()
	Load([]byte(`{"box": [0, 1, 1]}`))
}

func Test_scene03(tst *testing.T) {

	chk.PrintTitle("scene03")

	data := []byte(`{
		"box": [2, 2, 2],
		"randomSphereCount": 20,
		"randomRadius": 0.05,
		"randomMass": 1,
		"randomMaxSpeed": 0.5
	}`)

	eng := Load(data)
	chk.IntAssert(eng.Spheres.Count(), 20)
	for i, s := range eng.Spheres.Spheres {
		if s.Mass <= 0 || s.Radius <= 0 {
			tst.Errorf("sphere %d has non-positive mass or radius", i)
		}
		for d := 0; d < 3; d++ {
			if s.Pos[d] < 0 || s.Pos[d] > 2 {
				tst.Errorf("sphere %d placed outside the box: %v", i, s.Pos)
			}
		}
	}
}

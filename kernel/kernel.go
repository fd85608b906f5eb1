// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package kernel implements the force/acceleration kernel: wall and
// sphere-sphere Hertz contact, pairwise and cell-approximated Newtonian
// gravitation, Lennard-Jones, and earth gravity. Feature selection is a
// plain struct of booleans; there is no virtual dispatch on the hot path.
package kernel

import (
	"math"
	"sync/atomic"

	"github.com/mertemba/spheresim/cells"
	"github.com/mertemba/spheresim/constants"
	"github.com/mertemba/spheresim/gravity"
	"github.com/mertemba/spheresim/sphere"
)

// Features selects which force contributions are active for a Kernel.
type Features struct {
	Collisions   bool
	Gravity      bool
	LennardJones bool
	Periodic     bool
}

// Kernel evaluates the acceleration of one sphere against the current
// frozen sphere array, cell index and gravity tree.
type Kernel struct {
	Features Features
	Params   *constants.Store
	Box      sphere.Vec3
	Cells    *cells.Index
	Tree     *gravity.Tree

	// calculationCounter is incremented once per Acc call.
	calculationCounter uint64
}

// New returns a kernel wired to the given spatial structures and parameters.
func New(f Features, params *constants.Store, box sphere.Vec3, c *cells.Index, t *gravity.Tree) *Kernel {
	return &Kernel{Features: f, Params: params, Box: box, Cells: c, Tree: t}
}

// CalculationCount returns the number of force evaluations so far.
func (o *Kernel) CalculationCount() uint64 {
	return atomic.LoadUint64(&o.calculationCounter)
}

// PopCalculationCount returns the number of force evaluations so far and
// resets the counter to zero.
func (o *Kernel) PopCalculationCount() uint64 {
	return atomic.SwapUint64(&o.calculationCounter, 0)
}

// Acc computes the current acceleration of sphere i, evaluated at the
// (possibly probed) sphere state s; arr supplies neighboring sphere state,
// frozen for the duration of the step. tDiff is the time offset of this
// evaluation within the outer step; the force model itself is autonomous,
// so tDiff only matters to recursive sub-step bookkeeping.
func (o *Kernel) Acc(arr *sphere.Array, i int, s sphere.Sphere, tDiff float64) sphere.Vec3 {
	atomic.AddUint64(&o.calculationCounter, 1)
	p := o.Params

	// body force: m·g
	force := sphere.Vec3(p.EarthGravity).Scale(s.Mass)

	// wall contact; under periodic boundaries there are no walls
	if !o.Features.Periodic {
		for d := 0; d < 3; d++ {
			if o.Box[d] <= 0 {
				continue
			}
			if delta := s.Radius - s.Pos[d]; delta > 0 {
				mag := (4.0 / 3.0) * p.ESphereWall * math.Sqrt(s.Radius*delta*delta*delta)
				force[d] += mag
			}
			if delta := s.Radius + s.Pos[d] - o.Box[d]; delta > 0 {
				mag := (4.0 / 3.0) * p.ESphereWall * math.Sqrt(s.Radius*delta*delta*delta)
				force[d] -= mag
			}
		}
	}

	// sphere-sphere Hertz contact over the collision-cell neighborhood
	if o.Features.Collisions && o.Cells != nil {
		o.Cells.Neighbors(i, func(j int) {
			other := arr.Spheres[j]
			d := o.displacement(other.Pos, s.Pos)
			dist := d.Norm()
			minDist := s.Radius + other.Radius
			if dist > 0 && dist < minDist {
				overlap := minDist - dist
				rStar := s.Radius * other.Radius / (s.Radius + other.Radius)
				mag := (4.0 / 3.0) * p.ESphereSphere * math.Sqrt(rStar*overlap*overlap*overlap)
				force = force.AddScaled(d.Scale(1/dist), -mag)
			}
		})
	}

	// gravitation and Lennard-Jones share the gravity-cell neighborhood:
	// pairwise over near cells, center-of-mass approximation over far cells
	if (o.Features.Gravity || o.Features.LennardJones) && o.Tree != nil {
		cellIdx := o.Tree.CellOf(i)
		cell := &o.Tree.Cells[cellIdx]

		if o.Features.Gravity {
			for _, nb := range cell.Pairwise {
				for _, j := range o.Tree.SpheresIn(nb) {
					if j == i {
						continue
					}
					force = force.AddScaled(o.pairwiseGravity(s, arr.Spheres[j]), s.Mass)
				}
			}
			for _, nb := range cell.Approximating {
				nbc := &o.Tree.Cells[nb]
				if nbc.MassSum <= 0 {
					continue
				}
				d := o.displacement(nbc.CenterOfMass, s.Pos)
				dist := d.Norm()
				if dist > 0 {
					mag := p.G * nbc.MassSum / (dist * dist * dist)
					force = force.AddScaled(d, mag*s.Mass)
				}
			}
		}

		if o.Features.LennardJones {
			for _, nb := range cell.Pairwise {
				for _, j := range o.Tree.SpheresIn(nb) {
					if j == i {
						continue
					}
					force = force.Add(o.lennardJones(s, arr.Spheres[j]))
				}
			}
		}
	}

	return force.Scale(1 / s.Mass)
}

// pairwiseGravity returns the gravitational acceleration of s1 caused by
// s2: G·m2·(r2-r1)/|r2-r1|³.
func (o *Kernel) pairwiseGravity(s1, s2 sphere.Sphere) sphere.Vec3 {
	d := o.displacement(s2.Pos, s1.Pos)
	dist := d.Norm()
	if dist == 0 {
		return sphere.Vec3{}
	}
	mag := o.Params.G * s2.Mass / (dist * dist * dist)
	return d.Scale(mag)
}

// lennardJones returns the 12-6 Lennard-Jones force on s1 from s2,
// truncated at r_cut.
func (o *Kernel) lennardJones(s1, s2 sphere.Sphere) sphere.Vec3 {
	d := o.displacement(s2.Pos, s1.Pos)
	r := d.Norm()
	rcut := o.Params.LJRcut
	if r == 0 || r >= rcut {
		return sphere.Vec3{}
	}
	eps, sig := o.Params.LJEpsilon, o.Params.LJSigma
	sr6 := math.Pow(sig/r, 6)
	sr12 := sr6 * sr6
	// F(r) = 24ε/r · (2(σ/r)¹² - (σ/r)⁶), repulsive at short range
	mag := 24 * eps / r * (2*sr12 - sr6)
	return d.Scale(-mag / r)
}

// displacement returns b-a, reduced to the minimum image when periodic
// boundaries are active.
func (o *Kernel) displacement(b, a sphere.Vec3) sphere.Vec3 {
	d := b.Sub(a)
	if o.Features.Periodic {
		d = sphere.MinimumImageVec(d, o.Box)
	}
	return d
}

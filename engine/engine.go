// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package engine implements the simulation driver: an explicit context
// struct owning the sphere array, spatial indices and integrator, with a
// DoStep/DoSomeSteps loop and io.Pf-style progress messages.
package engine

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/rnd"
	"github.com/mertemba/spheresim/cells"
	"github.com/mertemba/spheresim/constants"
	"github.com/mertemba/spheresim/gravity"
	"github.com/mertemba/spheresim/internal/errs"
	"github.com/mertemba/spheresim/kernel"
	"github.com/mertemba/spheresim/rk"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

// Engine holds all data for a running sphere-dynamics simulation.
type Engine struct {
	Spheres *sphere.Array
	Params  *constants.Store
	Box     sphere.Vec3
	Cells   *cells.Index
	Tree    *gravity.Tree
	Kernel  *kernel.Kernel

	Integrator *rk.Integrator
	Workers    int // 0 means GOMAXPROCS

	ShowMsg bool

	stepCounter   uint64
	lastStepNanos int64
}

// New returns an Engine wired to the given box size, feature set and
// integrator name.
func New(box sphere.Vec3, features kernel.Features, integratorName string) *Engine {
	params := constants.New()
	cellIdx := cells.New()
	tree := gravity.New()
	tree.Resize(box, features.Periodic)

	o := &Engine{
		Spheres:    sphere.New(),
		Params:     params,
		Box:        box,
		Cells:      cellIdx,
		Tree:       tree,
		Kernel:     kernel.New(features, params, box, cellIdx, tree),
		Integrator: rk.New(integratorName),
	}
	params.SetPeriodicBoundaryConditions(features.Periodic)
	params.OnUpdate(func(name string) {
		if name == "periodicBoundary" {
			o.Kernel.Features.Periodic = params.PeriodicBoundary
			o.Tree.Resize(o.Box, params.PeriodicBoundary)
		}
	})
	return o
}

// Resize changes the simulation box, rebuilding the gravity tree's
// neighbor lists. Cell lists are rebuilt at the next step anyway.
func (o *Engine) Resize(box sphere.Vec3) {
	o.Box = box
	o.Kernel.Box = box
	o.Tree.Resize(box, o.Kernel.Features.Periodic)
}

// StepCount returns the number of steps completed so far. Safe to call
// from any goroutine while the worker is running.
func (o *Engine) StepCount() uint64 {
	return atomic.LoadUint64(&o.stepCounter)
}

// PopStepCount returns the step counter and resets it to zero.
func (o *Engine) PopStepCount() uint64 {
	return atomic.SwapUint64(&o.stepCounter, 0)
}

// PopCalculationCount returns the force-evaluation counter and resets it.
func (o *Engine) PopCalculationCount() uint64 {
	return o.Kernel.PopCalculationCount()
}

// SetIntegrator switches to the named Butcher tableau, keeping the
// current tolerances and depth cap. An unknown name falls back to
// RungeKuttaFehlberg54.
func (o *Engine) SetIntegrator(name string) {
	t := tableau.Get(name)
	o.Integrator.Tableau = t
}

// IntegratorName returns the name of the active Butcher tableau.
func (o *Engine) IntegratorName() string {
	return o.Integrator.Tableau.Name
}

// SetCollisionDetection toggles sphere-sphere Hertz contact.
func (o *Engine) SetCollisionDetection(on bool) { o.Kernel.Features.Collisions = on }

// SetGravityCalculation toggles pairwise/approximated gravitation.
func (o *Engine) SetGravityCalculation(on bool) { o.Kernel.Features.Gravity = on }

// SetLennardJonesPotential toggles the Lennard-Jones force.
func (o *Engine) SetLennardJonesPotential(on bool) { o.Kernel.Features.LennardJones = on }

// SetMaximumStepDivision caps the integrator's recursive halving depth.
func (o *Engine) SetMaximumStepDivision(depth int) { o.Integrator.MaxDepth = depth }

// SetMaximumStepError sets the embedded-pair error tolerances.
func (o *Engine) SetMaximumStepError(tol float64) {
	if tol <= 0 {
		return
	}
	o.Integrator.PosTol = tol
	o.Integrator.VelTol = tol
}

// DoStep advances the simulation by dt: rebuild the collision-cell index
// and the gravity-tree statistics as the active features require, then
// integrate every sphere in parallel against the frozen state, publish
// the scratch buffer, and wrap positions if boundaries are periodic.
// Returns the total number of elementary RK sub-steps taken.
func (o *Engine) DoStep(dt float64) (steps int) {
	start := time.Now()
	defer func() { atomic.StoreInt64(&o.lastStepNanos, time.Since(start).Nanoseconds()) }()

	if dt <= 0 {
		return 0
	}

	f := o.Kernel.Features
	if f.Collisions {
		o.Cells.Rebuild(o.Spheres)
	}
	if f.Gravity || f.LennardJones {
		o.Tree.Update(o.Spheres)
	}

	steps = o.integrateParallel(dt)
	o.Spheres.Swap()

	if f.Periodic {
		o.wrapPositions()
	}

	n := atomic.AddUint64(&o.stepCounter, 1)
	if o.ShowMsg {
		io.Pf("> step %d: %d substeps, dt=%v\n", n, steps, dt)
	}
	return steps
}

// DoSomeSteps advances the simulation n times by dt each.
func (o *Engine) DoSomeSteps(n int, dt float64) (totalSteps int) {
	for i := 0; i < n; i++ {
		totalSteps += o.DoStep(dt)
	}
	return totalSteps
}

// wrapPositions applies periodic wrap-around to every sphere's position.
func (o *Engine) wrapPositions() {
	for i := range o.Spheres.Spheres {
		p := &o.Spheres.Spheres[i].Pos
		for d := 0; d < 3; d++ {
			if o.Box[d] <= 0 {
				continue
			}
			for p[d] < 0 {
				p[d] += o.Box[d]
			}
			for p[d] >= o.Box[d] {
				p[d] -= o.Box[d]
			}
		}
	}
}

// RandomizePositionsInBox lays the spheres out on a regular grid filling
// the box, then displaces each position component uniformly within
// ±randomDisplacement and draws each velocity component uniformly within
// ±randomSpeed.
func (o *Engine) RandomizePositionsInBox(randomDisplacement, randomSpeed float64) {
	n := o.Spheres.Count()
	if n == 0 {
		return
	}
	side := int(math.Ceil(math.Cbrt(float64(n))))
	i := 0
	for z := 0; z < side && i < n; z++ {
		for y := 0; y < side && i < n; y++ {
			for x := 0; x < side && i < n; x++ {
				pos := sphere.Vec3{
					(float64(x) + 0.5) * o.Box[0] / float64(side),
					(float64(y) + 0.5) * o.Box[1] / float64(side),
					(float64(z) + 0.5) * o.Box[2] / float64(side),
				}
				if randomDisplacement > 0 {
					for d := 0; d < 3; d++ {
						pos[d] += rnd.Float64(-randomDisplacement, randomDisplacement)
					}
				}
				vel := sphere.Vec3{}
				if randomSpeed > 0 {
					for d := 0; d < 3; d++ {
						vel[d] = rnd.Float64(-randomSpeed, randomSpeed)
					}
				}
				o.Spheres.Spheres[i].Pos = pos
				o.Spheres.Spheres[i].Vel = vel
				i++
			}
		}
	}
}

// TotalEnergy returns the sum over spheres of
// -m·g·r + (1/2)m|v|² + Σ_d (8/15)·E_sw·√r·max(0,δ_d)^(5/2) + pairwise
// potentials.
func (o *Engine) TotalEnergy() float64 {
	return o.KineticEnergy() + o.gravitationalPotential() + o.wallContactPotential() + o.pairwisePotential()
}

// KineticEnergy returns Σ (1/2) m v² over all spheres.
func (o *Engine) KineticEnergy() float64 {
	e := 0.0
	for _, s := range o.Spheres.Spheres {
		e += 0.5 * s.Mass * s.Vel.SquaredNorm()
	}
	return e
}

func (o *Engine) gravitationalPotential() float64 {
	e := 0.0
	for _, s := range o.Spheres.Spheres {
		e -= s.Mass * sphere.Vec3(o.Params.EarthGravity).Dot(s.Pos)
	}
	return e
}

// wallContactPotential returns Σ_i Σ_d (8/15)·E_sw·√r·max(0,δ_d)^(5/2),
// the elastic strain energy stored in wall-contact overlaps.
func (o *Engine) wallContactPotential() float64 {
	if o.Kernel.Features.Periodic {
		return 0
	}
	e := 0.0
	for _, s := range o.Spheres.Spheres {
		for d := 0; d < 3; d++ {
			if o.Box[d] <= 0 {
				continue
			}
			if delta := s.Radius - s.Pos[d]; delta > 0 {
				e += (8.0 / 15.0) * o.Params.ESphereWall * math.Sqrt(s.Radius) * math.Pow(delta, 2.5)
			}
			if delta := s.Radius + s.Pos[d] - o.Box[d]; delta > 0 {
				e += (8.0 / 15.0) * o.Params.ESphereWall * math.Sqrt(s.Radius) * math.Pow(delta, 2.5)
			}
		}
	}
	return e
}

// pairwisePotential sums the sphere-sphere Hertz strain energy, the
// pairwise gravitational potential and the truncated-and-shifted
// Lennard-Jones potential over distinct pairs.
func (o *Engine) pairwisePotential() float64 {
	f := o.Kernel.Features
	if !f.Collisions && !f.Gravity && !f.LennardJones {
		return 0
	}
	e := 0.0
	eps, sig, rcut := o.Params.LJEpsilon, o.Params.LJSigma, o.Params.LJRcut
	var ljShift float64
	if f.LennardJones && rcut > 0 {
		src6 := math.Pow(sig/rcut, 6)
		ljShift = 4 * eps * (src6*src6 - src6)
	}
	n := o.Spheres.Count()
	for i := 0; i < n; i++ {
		s1 := o.Spheres.Spheres[i]
		for j := i + 1; j < n; j++ {
			s2 := o.Spheres.Spheres[j]
			d := s2.Pos.Sub(s1.Pos)
			if f.Periodic {
				d = sphere.MinimumImageVec(d, o.Box)
			}
			r := d.Norm()
			if r == 0 {
				continue
			}
			if f.Collisions {
				if overlap := s1.Radius + s2.Radius - r; overlap > 0 {
					rStar := s1.Radius * s2.Radius / (s1.Radius + s2.Radius)
					e += (8.0 / 15.0) * o.Params.ESphereSphere * math.Sqrt(rStar) * math.Pow(overlap, 2.5)
				}
			}
			if f.Gravity {
				e -= o.Params.G * s1.Mass * s2.Mass / r
			}
			if f.LennardJones && r < rcut {
				sr6 := math.Pow(sig/r, 6)
				e += 4*eps*(sr6*sr6-sr6) - ljShift
			}
		}
	}
	return e
}

// ScaleKineticEnergy rescales the total kinetic energy by factor,
// scaling every sphere's velocity by √factor. Non-negative factors are
// applied directly with no clamping; a negative factor is an argument
// error and the velocities are left unchanged.
func (o *Engine) ScaleKineticEnergy(factor float64) error {
	if factor < 0 {
		return errs.Errf("kinetic energy scale factor must be >= 0, got %v", factor)
	}
	scale := math.Sqrt(factor)
	for i := range o.Spheres.Spheres {
		o.Spheres.Spheres[i].Vel = o.Spheres.Spheres[i].Vel.Scale(scale)
	}
	return nil
}

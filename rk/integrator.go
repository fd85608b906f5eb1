// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rk implements the adaptive embedded Runge-Kutta integrator:
// two estimates from an embedded Butcher pair are compared and the step
// is recursively halved while their difference exceeds tolerance.
package rk

import (
	"sync/atomic"

	"github.com/mertemba/spheresim/kernel"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

// Default tolerances for the embedded-pair error test.
const (
	DefaultPosTol = 1e-6
	DefaultVelTol = 1e-6
)

// Integrator advances one sphere by a time step using a given Butcher
// tableau, recursively halving the step when the embedded-pair error
// estimate exceeds tolerance.
type Integrator struct {
	Tableau  tableau.Tableau
	PosTol   float64
	VelTol   float64
	MaxDepth int // recursion depth cap; 0 means unbounded

	// SubdivisionExceeded counts how many times MaxDepth was hit and the
	// primary estimate was accepted anyway.
	SubdivisionExceeded uint64
}

// New returns an integrator using the named tableau with the default
// tolerances and no depth cap.
func New(name string) *Integrator {
	return &Integrator{
		Tableau: tableau.Get(name),
		PosTol:  DefaultPosTol,
		VelTol:  DefaultVelTol,
	}
}

// Step advances sphere i by dt and commits the result into arr.Next[i].
// Neighbor state is read from arr.Spheres, which stays frozen for the
// whole step, so concurrent Step calls for distinct spheres do not alias.
//
// Returns the number of elementary steps actually taken: 1 if the step
// was accepted at this level (the embedded-pair estimates agreed, or
// MaxDepth was reached), else the sum of the recursive sub-step counts.
func (o *Integrator) Step(k *kernel.Kernel, arr *sphere.Array, i int, dt float64) int {
	work := arr.Spheres[i]
	n := o.step(k, arr, i, &work, dt, 0, 0)
	arr.Next[i] = work
	return n
}

func (o *Integrator) step(k *kernel.Kernel, arr *sphere.Array, i int, work *sphere.Sphere, dt, tDiff float64, depth int) int {
	t := o.Tableau
	orig := *work

	kAcc := make([]sphere.Vec3, t.S)
	kVel := make([]sphere.Vec3, t.S)

	kAcc[0] = k.Acc(arr, i, orig, tDiff)
	kVel[0] = orig.Vel

	probe := orig
	for n := 1; n < t.S; n++ {
		probe.Pos = orig.Pos
		for j := 0; j < n; j++ {
			probe.Pos = probe.Pos.AddScaled(kVel[j], dt*t.A[n][j])
		}
		kAcc[n] = k.Acc(arr, i, probe, tDiff+dt*t.C[n])

		vel := orig.Vel
		for j := 0; j < n; j++ {
			vel = vel.AddScaled(kAcc[j], dt*t.A[n][j])
		}
		kVel[n] = vel
	}

	pos, posHat := orig.Pos, orig.Pos
	vel, velHat := orig.Vel, orig.Vel
	for j := 0; j < t.S; j++ {
		pos = pos.AddScaled(kVel[j], dt*t.B[j])
		posHat = posHat.AddScaled(kVel[j], dt*t.Bhat[j])
		vel = vel.AddScaled(kAcc[j], dt*t.B[j])
		velHat = velHat.AddScaled(kAcc[j], dt*t.Bhat[j])
	}

	errPos := pos.Sub(posHat).Norm()
	errVel := vel.Sub(velHat).Norm()

	tooDeep := o.MaxDepth > 0 && depth >= o.MaxDepth
	if (errPos > o.PosTol || errVel > o.VelTol) && !tooDeep {
		steps := o.step(k, arr, i, work, dt/2, tDiff, depth+1)
		steps += o.step(k, arr, i, work, dt/2, tDiff+dt/2, depth+1)
		return steps
	}

	if tooDeep && (errPos > o.PosTol || errVel > o.VelTol) {
		atomic.AddUint64(&o.SubdivisionExceeded, 1)
	}

	work.Pos = pos
	work.Vel = vel
	work.Acc = vel.Sub(orig.Vel).Scale(1 / dt)
	return 1
}

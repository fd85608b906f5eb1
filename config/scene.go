// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package config implements the JSON scene loader, modeled on
// inp.ReadSim: a struct with json tags, decoded with encoding/json,
// derived fields computed once, chk.Panic on invalid input.
package config

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/rnd"
	"github.com/mertemba/spheresim/constants"
	"github.com/mertemba/spheresim/engine"
	"github.com/mertemba/spheresim/kernel"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

// SphereSpec describes one initial sphere in a scene file.
type SphereSpec struct {
	Pos    [3]float64 `json:"pos"`
	Vel    [3]float64 `json:"vel"`
	Mass   float64    `json:"mass"`
	Radius float64    `json:"radius"`
}

// ParamsSpec mirrors constants.Store's settable fields.
type ParamsSpec struct {
	ESphere           float64    `json:"eSphere"`
	EWall             float64    `json:"eWall"`
	PoissonSphere     float64    `json:"poissonSphere"`
	PoissonWall       float64    `json:"poissonWall"`
	EarthGravity      [3]float64 `json:"earthGravity"`
	G                 float64    `json:"g"`
	LJEpsilon         float64    `json:"ljEpsilon"`
	LJSigma           float64    `json:"ljSigma"`
	LJRcut            float64    `json:"ljRcut"`
	TargetTemperature float64    `json:"targetTemperature"`
}

// Scene is the top-level JSON scene description used to seed an
// engine.Engine.
type Scene struct {
	Box        [3]float64   `json:"box"`
	Integrator string       `json:"integrator"`
	Features   struct {
		Collisions   bool `json:"collisions"`
		Gravity      bool `json:"gravity"`
		LennardJones bool `json:"lennardJones"`
		Periodic     bool `json:"periodic"`
	} `json:"features"`
	Params  ParamsSpec   `json:"params"`
	Spheres []SphereSpec `json:"spheres"`

	// RandomSphereCount, when > 0, additionally scatters that many
	// randomly placed spheres with random velocities inside the box.
	RandomSphereCount int     `json:"randomSphereCount"`
	RandomRadius      float64 `json:"randomRadius"`
	RandomMass        float64 `json:"randomMass"`
	RandomMaxSpeed    float64 `json:"randomMaxSpeed"`
}

// Load decodes a scene from JSON bytes and builds a ready-to-run Engine.
// Invalid input is a programmer/operator error and panics via chk.Panic,
// matching inp.ReadSim's "fail fast on bad simulation file" convention.
func Load(data []byte) *engine.Engine {
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		chk.Panic("config: cannot unmarshal scene file: %v", err)
	}

	if sc.Box[0] <= 0 || sc.Box[1] <= 0 || sc.Box[2] <= 0 {
		chk.Panic("config: box dimensions must be positive, got %v", sc.Box)
	}

	integratorName := sc.Integrator
	if integratorName == "" {
		integratorName = tableau.RungeKuttaFehlberg54
	}

	features := kernel.Features{
		Collisions:   sc.Features.Collisions,
		Gravity:      sc.Features.Gravity,
		LennardJones: sc.Features.LennardJones,
		Periodic:     sc.Features.Periodic,
	}

	box := sphere.Vec3{sc.Box[0], sc.Box[1], sc.Box[2]}
	eng := engine.New(box, features, integratorName)

	applyParams(eng.Params, sc.Params)

	for _, s := range sc.Spheres {
		if s.Mass <= 0 || s.Radius <= 0 {
			chk.Panic("config: sphere mass and radius must be positive, got mass=%v radius=%v", s.Mass, s.Radius)
		}
		eng.Spheres.Add(sphere.Sphere{
			Pos:    sphere.Vec3(s.Pos),
			Vel:    sphere.Vec3(s.Vel),
			Mass:   s.Mass,
			Radius: s.Radius,
		})
	}

	if sc.RandomSphereCount > 0 {
		addRandomSpheres(eng, sc)
	}

	io.Pf("> scene loaded: %d spheres, box=%v, integrator=%s\n", eng.Spheres.Count(), box, integratorName)
	return eng
}

func applyParams(store *constants.Store, p ParamsSpec) {
	if p.ESphere > 0 {
		store.SetSphereE(p.ESphere)
	}
	if p.EWall > 0 {
		store.SetWallE(p.EWall)
	}
	if p.PoissonSphere != 0 {
		store.SetSpherePoissonRatio(p.PoissonSphere)
	}
	if p.PoissonWall != 0 {
		store.SetWallPoissonRatio(p.PoissonWall)
	}
	if p.EarthGravity != [3]float64{} {
		store.SetEarthGravity(constants.Vec3(p.EarthGravity))
	}
	if p.G != 0 {
		store.SetGravitationalConstant(p.G)
	}
	if p.LJEpsilon > 0 {
		store.LJEpsilon = p.LJEpsilon
	}
	if p.LJSigma > 0 {
		store.LJSigma = p.LJSigma
	}
	if p.LJRcut > 0 {
		store.LJRcut = p.LJRcut
	}
	if p.TargetTemperature != 0 {
		store.SetTargetTemperature(p.TargetTemperature)
	}
}

// addRandomSpheres scatters RandomSphereCount spheres at random
// positions and velocities inside the box.
func addRandomSpheres(eng *engine.Engine, sc Scene) {
	rnd.Init(0)
	radius := sc.RandomRadius
	if radius <= 0 {
		radius = 0.1
	}
	mass := sc.RandomMass
	if mass <= 0 {
		mass = 1.0
	}
	maxSpeed := sc.RandomMaxSpeed

	for i := 0; i < sc.RandomSphereCount; i++ {
		pos := sphere.Vec3{
			rnd.Float64(radius, sc.Box[0]-radius),
			rnd.Float64(radius, sc.Box[1]-radius),
			rnd.Float64(radius, sc.Box[2]-radius),
		}
		vel := sphere.Vec3{}
		if maxSpeed > 0 {
			vel = sphere.Vec3{
				rnd.Float64(-maxSpeed, maxSpeed),
				rnd.Float64(-maxSpeed, maxSpeed),
				rnd.Float64(-maxSpeed, maxSpeed),
			}
		}
		eng.Spheres.Add(sphere.Sphere{Pos: pos, Vel: vel, Mass: mass, Radius: radius})
	}
}

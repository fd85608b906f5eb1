// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sphere

// Sphere holds the state of a single rigid sphere.
//  Invariant: Radius > 0 and Mass > 0 at all times.
type Sphere struct {
	Pos    Vec3    // position
	Vel    Vec3    // velocity
	Acc    Vec3    // last computed acceleration, for reporting only
	Mass   float64 // mass (>0)
	Radius float64 // radius (>0)
}

// Array is contiguous storage for the simulated sphere cloud, plus the
// scratch buffer the integrator writes into during a step.
//  Invariant: len(Next) == len(Spheres) at all times. During a step all
//  reads target Spheres (frozen) and all writes target per-sphere slots
//  of Next, which do not alias; Swap publishes the committed state.
type Array struct {
	Spheres []Sphere
	Next    []Sphere
}

// New returns an empty sphere array
func New() *Array {
	return &Array{}
}

// Count returns the current number of spheres
func (o *Array) Count() int {
	return len(o.Spheres)
}

// Add appends a new sphere and returns the new count. Spheres are
// appended/removed only between steps.
func (o *Array) Add(s Sphere) int {
	o.Spheres = append(o.Spheres, s)
	o.Next = append(o.Next, s)
	return len(o.Spheres)
}

// RemoveLast removes the last sphere, if any, and returns the new count.
// Removing from an empty array is a no-op.
func (o *Array) RemoveLast() int {
	if len(o.Spheres) == 0 {
		return 0
	}
	o.Spheres = o.Spheres[:len(o.Spheres)-1]
	o.Next = o.Next[:len(o.Next)-1]
	return len(o.Spheres)
}

// Remove removes the sphere at index i, if it exists, and returns the new count.
func (o *Array) Remove(i int) int {
	if i < 0 || i >= len(o.Spheres) {
		return len(o.Spheres)
	}
	o.Spheres = append(o.Spheres[:i], o.Spheres[i+1:]...)
	o.Next = append(o.Next[:i], o.Next[i+1:]...)
	return len(o.Spheres)
}

// Get returns a copy of the sphere at index i and true, or the zero value
// and false if i is out of range.
func (o *Array) Get(i int) (Sphere, bool) {
	if i < 0 || i >= len(o.Spheres) {
		return Sphere{}, false
	}
	return o.Spheres[i], true
}

// Set overwrites the sphere at index i, if it exists, and returns whether it did.
func (o *Array) Set(i int, s Sphere) bool {
	if i < 0 || i >= len(o.Spheres) {
		return false
	}
	o.Spheres[i] = s
	return true
}

// SetAll overwrites every sphere with s.
func (o *Array) SetAll(s Sphere) {
	for i := range o.Spheres {
		o.Spheres[i] = s
	}
}

// Swap publishes the scratch buffer as the current sphere state. Only
// valid after every sphere's Next slot has been written.
func (o *Array) Swap() {
	o.Spheres, o.Next = o.Next, o.Spheres
}

// BoundingBox returns the axis-aligned bounding box (min corner, edge
// lengths) over all spheres' position±radius. Returns the zero box if empty.
func (o *Array) BoundingBox() (min, size Vec3) {
	if len(o.Spheres) == 0 {
		return Vec3{}, Vec3{}
	}
	max := Vec3{}
	first := o.Spheres[0]
	for d := 0; d < 3; d++ {
		min[d] = first.Pos[d] - first.Radius
		max[d] = first.Pos[d] + first.Radius
	}
	for _, s := range o.Spheres[1:] {
		for d := 0; d < 3; d++ {
			if s.Pos[d]+s.Radius > max[d] {
				max[d] = s.Pos[d] + s.Radius
			}
			if s.Pos[d]-s.Radius < min[d] {
				min[d] = s.Pos[d] - s.Radius
			}
		}
	}
	size = max.Sub(min)
	return
}

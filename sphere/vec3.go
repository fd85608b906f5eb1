// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sphere implements storage for rigid spheres and 3-vector arithmetic
package sphere

import "math"

// Vec3 is a 3-component vector; position, velocity or acceleration.
type Vec3 [3]float64

// Add returns v+w
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v-w
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns v*s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// AddScaled returns v+w*s
func (v Vec3) AddScaled(w Vec3, s float64) Vec3 {
	return Vec3{v[0] + w[0]*s, v[1] + w[1]*s, v[2] + w[2]*s}
}

// Dot returns the inner product v.w
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Norm returns |v|
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// SquaredNorm returns |v|²
func (v Vec3) SquaredNorm() float64 {
	return v.Dot(v)
}

// MinimumImage reduces a displacement component to the interval (-L/2, L/2]
// under periodic boundaries of edge length L.
func MinimumImage(d, L float64) float64 {
	d = math.Mod(d, L)
	if d > L/2 {
		d -= L
	} else if d <= -L/2 {
		d += L
	}
	return d
}

// MinimumImageVec applies MinimumImage component-wise over a non-zero box.
func MinimumImageVec(d, box Vec3) Vec3 {
	for k := 0; k < 3; k++ {
		if box[k] > 0 {
			d[k] = MinimumImage(d[k], box[k])
		}
	}
	return d
}

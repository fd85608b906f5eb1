// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package gravity implements the fixed-depth gravity-cell tree used for a
// Barnes-Hut-style approximation of pairwise gravitation.
package gravity

import (
	"math"

	"github.com/mertemba/spheresim/sphere"
)

// DefaultCellsPerAxis is the default resolution (8 cells/axis, 512 cells
// total).
const DefaultCellsPerAxis = 8

// DefaultTheta is the multiple of combined half-diagonals beyond which a
// cell pair is classified "far".
const DefaultTheta = 2.0

// Cell holds the running statistics for one gravity-tree cell.
type Cell struct {
	Count        int
	MassSum      float64
	MassVecSum   sphere.Vec3 // Σ mᵢ·rᵢ
	CenterOfMass sphere.Vec3 // derived
	Center       sphere.Vec3 // fixed: geometric center of the cell
	HalfDiagonal float64     // fixed: cached half-diagonal length

	Approximating []int // cell indices far enough to use center of mass
	Pairwise      []int // cell indices near enough to require sphere-by-sphere evaluation

	spheres []int // spheres currently assigned to this cell (reset every rebuild)
}

// Tree is the fixed-resolution grid of cubic cells covering the
// simulation box.
type Tree struct {
	CellsPerAxis int
	Theta        float64

	Box   sphere.Vec3 // simulation box edge lengths this tree was built for
	Cells []Cell

	cellOfSphere []int // cell index per sphere, refreshed by Update
}

// New returns a tree with the design-default resolution and θ.
func New() *Tree {
	return &Tree{CellsPerAxis: DefaultCellsPerAxis, Theta: DefaultTheta}
}

func (o *Tree) cellCount3() int {
	return o.CellsPerAxis * o.CellsPerAxis * o.CellsPerAxis
}

// Resize (re)builds the fixed cell geometry and the approximating/pairwise
// neighbor lists for a simulation box of the given size. Must be called
// whenever the box size or cell resolution changes, never on a per-step
// cadence.
func (o *Tree) Resize(box sphere.Vec3, periodic bool) {
	o.Box = box
	n3 := o.cellCount3()
	o.Cells = make([]Cell, n3)
	C := o.CellsPerAxis
	cellSize := sphere.Vec3{box[0] / float64(C), box[1] / float64(C), box[2] / float64(C)}
	halfDiag := 0.5 * math.Sqrt(cellSize[0]*cellSize[0]+cellSize[1]*cellSize[1]+cellSize[2]*cellSize[2])
	for z := 0; z < C; z++ {
		for y := 0; y < C; y++ {
			for x := 0; x < C; x++ {
				idx := z*C*C + y*C + x
				o.Cells[idx].Center = sphere.Vec3{
					(float64(x) + 0.5) * cellSize[0],
					(float64(y) + 0.5) * cellSize[1],
					(float64(z) + 0.5) * cellSize[2],
				}
				o.Cells[idx].HalfDiagonal = halfDiag
			}
		}
	}
	o.rebuildNeighborLists(periodic)
}

// rebuildNeighborLists computes, once per resize, the far (approximating)
// and near (pairwise) classification for every ordered cell pair:
// d_centers > θ·(d_half_i + d_half_j) ⇒ far.
func (o *Tree) rebuildNeighborLists(periodic bool) {
	n3 := len(o.Cells)
	for i := range o.Cells {
		o.Cells[i].Approximating = o.Cells[i].Approximating[:0]
		o.Cells[i].Pairwise = o.Cells[i].Pairwise[:0]
	}
	for i := 0; i < n3; i++ {
		for j := 0; j < n3; j++ {
			if i == j {
				// a cell is always near itself: same-cell spheres are
				// evaluated sphere-by-sphere, never approximated.
				o.Cells[i].Pairwise = append(o.Cells[i].Pairwise, j)
				continue
			}
			d := o.centerDistance(o.Cells[i].Center, o.Cells[j].Center, periodic)
			threshold := o.Theta * (o.Cells[i].HalfDiagonal + o.Cells[j].HalfDiagonal)
			if d > threshold {
				o.Cells[i].Approximating = append(o.Cells[i].Approximating, j)
			} else {
				o.Cells[i].Pairwise = append(o.Cells[i].Pairwise, j)
			}
		}
	}
}

// centerDistance returns the distance between two cell centers, using the
// minimum-image convention when periodic boundaries are active.
func (o *Tree) centerDistance(a, b sphere.Vec3, periodic bool) float64 {
	d := b.Sub(a)
	if periodic {
		d = sphere.MinimumImageVec(d, o.Box)
	}
	return d.Norm()
}

// cellIndexOf returns the cell index containing position pos. Positions
// outside the box are clamped to the grid, not rejected.
func (o *Tree) cellIndexOf(pos sphere.Vec3) int {
	C := o.CellsPerAxis
	idx := [3]int{}
	for d := 0; d < 3; d++ {
		size := o.Box[d]
		v := 0
		if size > 0 {
			v = int(pos[d] / size * float64(C))
		}
		if v < 0 {
			v = 0
		}
		if v >= C {
			v = C - 1
		}
		idx[d] = v
	}
	return idx[2]*C*C + idx[1]*C + idx[0]
}

// Update resets per-cell statistics and re-inserts every sphere into its
// containing cell, then derives each cell's center of mass. The
// approximating/pairwise neighbor lists are left untouched; they change
// only on Resize.
func (o *Tree) Update(arr *sphere.Array) {
	for i := range o.Cells {
		o.Cells[i].Count = 0
		o.Cells[i].MassSum = 0
		o.Cells[i].MassVecSum = sphere.Vec3{}
		o.Cells[i].spheres = o.Cells[i].spheres[:0]
		o.Cells[i].CenterOfMass = o.Cells[i].Center
	}
	if cap(o.cellOfSphere) < arr.Count() {
		o.cellOfSphere = make([]int, arr.Count())
	}
	o.cellOfSphere = o.cellOfSphere[:arr.Count()]

	for i, s := range arr.Spheres {
		c := o.cellIndexOf(s.Pos)
		o.cellOfSphere[i] = c
		cell := &o.Cells[c]
		cell.Count++
		cell.MassSum += s.Mass
		cell.MassVecSum = cell.MassVecSum.AddScaled(s.Pos, s.Mass)
		cell.spheres = append(cell.spheres, i)
	}
	for i := range o.Cells {
		if o.Cells[i].MassSum > 0 {
			o.Cells[i].CenterOfMass = o.Cells[i].MassVecSum.Scale(1 / o.Cells[i].MassSum)
		}
	}
}

// CellOf returns the gravity-cell index containing sphere i.
func (o *Tree) CellOf(i int) int {
	return o.cellOfSphere[i]
}

// SpheresIn returns the sphere indices currently assigned to cell c.
func (o *Tree) SpheresIn(c int) []int {
	return o.Cells[c].spheres
}

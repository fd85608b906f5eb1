// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cells implements the uniform collision-cell index over the
// sphere cloud's bounding box: flat backing arrays with per-row
// counters, O(1) append and O(1) reset without deallocation.
package cells

import "github.com/mertemba/spheresim/sphere"

// Default tuning constants.
const (
	DefaultCellsPerAxis      = 3
	DefaultMaxSpheresPerCell = 10
	DefaultMaxCellsPerSphere = 300
)

// row is a fixed-capacity slice-with-counter: O(1) append, O(1) reset
// without deallocation.
type row struct {
	data     []uint16
	count    int
	overflow bool // set when an add hit the capacity limit
}

func newRow(capacity int) row {
	return row{data: make([]uint16, capacity)}
}

func (r *row) reset() {
	r.count = 0
	r.overflow = false
}

func (r *row) add(v uint16) {
	if r.count >= len(r.data) {
		r.overflow = true
		return
	}
	r.data[r.count] = v
	r.count++
}

func (r *row) items() []uint16 {
	return r.data[:r.count]
}

// Index is the uniform 3-D grid over the bounding box of the current
// sphere cloud.
type Index struct {
	CellsPerAxis      int
	MaxSpheresPerCell int
	MaxCellsPerSphere int

	cellOf   []row // [cellsPerAxis^3] sphere indices touching each cell
	sphereOf []row // [nspheres] cell indices each sphere touches

	Min  sphere.Vec3 // bounding box minimum, recomputed each step
	Size sphere.Vec3 // bounding box edge lengths

	// OverflowCount counts how many (cell or sphere) rows saturated
	// during the most recent Rebuild call. Saturation never aborts a
	// step; extra entries are dropped.
	OverflowCount int
}

// New returns an index with the default tuning constants.
func New() *Index {
	return &Index{
		CellsPerAxis:      DefaultCellsPerAxis,
		MaxSpheresPerCell: DefaultMaxSpheresPerCell,
		MaxCellsPerSphere: DefaultMaxCellsPerSphere,
	}
}

func (o *Index) cellCount3() int {
	return o.CellsPerAxis * o.CellsPerAxis * o.CellsPerAxis
}

// Rebuild recomputes the sphere bounding box and re-inserts every sphere
// into every cell its bounding box intersects.
//  Invariant: afterwards, sphere i is listed in cell c iff i's bounding
//  box intersects c's sub-region. Out-of-box coordinates are clamped.
func (o *Index) Rebuild(arr *sphere.Array) {
	n := arr.Count()
	o.Min, o.Size = arr.BoundingBox()

	if cap := o.cellCount3(); len(o.cellOf) != cap {
		o.cellOf = make([]row, cap)
		for i := range o.cellOf {
			o.cellOf[i] = newRow(o.MaxSpheresPerCell)
		}
	}
	for i := range o.cellOf {
		o.cellOf[i].reset()
	}
	if len(o.sphereOf) != n {
		o.sphereOf = make([]row, n)
		for i := range o.sphereOf {
			o.sphereOf[i] = newRow(o.MaxCellsPerSphere)
		}
	}

	o.OverflowCount = 0
	if n == 0 {
		return
	}

	C := o.CellsPerAxis
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v >= C {
			return C - 1
		}
		return v
	}
	for i := 0; i < n; i++ {
		o.sphereOf[i].reset()
		s := arr.Spheres[i]
		var lo, hi [3]int
		for d := 0; d < 3; d++ {
			size := o.Size[d]
			if size <= 0 {
				lo[d], hi[d] = 0, 0
				continue
			}
			vlo := (s.Pos[d] - s.Radius - o.Min[d]) / size
			vhi := (s.Pos[d] + s.Radius - o.Min[d]) / size
			lo[d] = clamp(int(vlo * float64(C)))
			hi[d] = clamp(int(vhi * float64(C)))
			if hi[d] < lo[d] {
				hi[d] = lo[d]
			}
		}
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					idx := z*C*C + y*C + x
					o.cellOf[idx].add(uint16(i))
					o.sphereOf[i].add(uint16(idx))
				}
			}
		}
	}
	for i := range o.cellOf {
		if o.cellOf[i].overflow {
			o.OverflowCount++
		}
	}
	for i := range o.sphereOf {
		if o.sphereOf[i].overflow {
			o.OverflowCount++
		}
	}
}

// CellsOf returns the indices of the cells sphere i currently overlaps.
func (o *Index) CellsOf(i int) []uint16 {
	if i < 0 || i >= len(o.sphereOf) {
		return nil
	}
	return o.sphereOf[i].items()
}

// Neighbors invokes fn once for every distinct sphere index j (j != i)
// that shares a cell with sphere i, deduplicated by first occurrence.
func (o *Index) Neighbors(i int, fn func(j int)) {
	if i < 0 || i >= len(o.sphereOf) {
		return
	}
	seenSet := make(map[uint16]struct{}, o.MaxSpheresPerCell*2)
	for _, cellIdx := range o.sphereOf[i].items() {
		for _, j := range o.cellOf[cellIdx].items() {
			if int(j) == i {
				continue
			}
			if _, ok := seenSet[j]; ok {
				continue
			}
			seenSet[j] = struct{}{}
			fn(int(j))
		}
	}
}

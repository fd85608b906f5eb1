// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tableau implements the registry of embedded Runge-Kutta
// Butcher tableaus used by the adaptive integrator.
package tableau

import "github.com/mertemba/spheresim/internal/errs"

// Tableau holds the coefficients (a, b, bhat, c) of an embedded Runge-Kutta
// pair with s stages.
//  Invariant: row j of A sums to C[j]; sum(B) == sum(Bhat) == 1.
type Tableau struct {
	Name string
	S    int         // number of stages
	A    [][]float64 // [s][s] lower-triangular
	B    []float64   // primary weights
	Bhat []float64   // embedded weights
	C    []float64   // nodes
}

// Names of the five supported integrator identifiers.
const (
	HeunEuler21          = "HeunEuler21"
	BogackiShampine32    = "BogackiShampine32"
	CashKarp54           = "CashKarp54"
	DormandPrince54      = "DormandPrince54"
	RungeKuttaFehlberg54 = "RungeKuttaFehlberg54"
)

var registry = make(map[string]Tableau)

func register(t Tableau) {
	registry[t.Name] = t
}

// Get returns the tableau for the given integrator name. An unrecognized
// name falls back to RungeKuttaFehlberg54.
func Get(name string) Tableau {
	if t, ok := registry[name]; ok {
		return t
	}
	return registry[RungeKuttaFehlberg54]
}

// Names returns the registered tableau identifiers in the canonical order.
func Names() []string {
	return []string{HeunEuler21, BogackiShampine32, CashKarp54, DormandPrince54, RungeKuttaFehlberg54}
}

func init() {
	register(Tableau{
		Name: HeunEuler21,
		S:    2,
		A: [][]float64{
			{0.0, 0.0},
			{1.0, 0.0},
		},
		B:    []float64{1 / 2.0, 1 / 2.0},
		Bhat: []float64{1.0, 0.0},
		C:    []float64{0.0, 1.0},
	})

	register(Tableau{
		Name: BogackiShampine32,
		S:    4,
		A: [][]float64{
			{0.0, 0.0, 0.0, 0.0},
			{1 / 2.0, 0.0, 0.0, 0.0},
			{0.0, 3 / 4.0, 0.0, 0.0},
			{2 / 9.0, 1 / 3.0, 4 / 9.0, 0.0},
		},
		B:    []float64{2 / 9.0, 1 / 3.0, 4 / 9.0, 0.0},
		Bhat: []float64{7 / 24.0, 1 / 4.0, 1 / 3.0, 1 / 8.0},
		C:    []float64{0.0, 1 / 2.0, 3 / 4.0, 1.0},
	})

	register(Tableau{
		Name: CashKarp54,
		S:    6,
		A: [][]float64{
			{0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{1 / 5.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{3 / 40.0, 9 / 40.0, 0.0, 0.0, 0.0, 0.0},
			{3 / 10.0, -9 / 10.0, 6 / 5.0, 0.0, 0.0, 0.0},
			{-11 / 54.0, 5 / 2.0, -70 / 27.0, 35 / 27.0, 0.0, 0.0},
			{1631 / 55296.0, 175 / 512.0, 575 / 13824.0, 44275 / 110592.0, 253 / 4096.0, 0.0},
		},
		B:    []float64{37 / 378.0, 0.0, 250 / 621.0, 125 / 594.0, 0.0, 512 / 1771.0},
		Bhat: []float64{2825 / 27648.0, 0.0, 18575 / 48384.0, 13525 / 55296.0, 277 / 14336.0, 1 / 4.0},
		C:    []float64{0.0, 1 / 5.0, 3 / 10.0, 3 / 5.0, 1.0, 7 / 8.0},
	})

	register(Tableau{
		Name: DormandPrince54,
		S:    7,
		A: [][]float64{
			{0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{1 / 5.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{3 / 40.0, 9 / 40.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{44 / 45.0, -56 / 15.0, 32 / 9.0, 0.0, 0.0, 0.0, 0.0},
			{19372 / 6561.0, -25360 / 2187.0, 64448 / 6561.0, -212 / 729.0, 0.0, 0.0, 0.0},
			{9017 / 3168.0, -355 / 33.0, 46732 / 5247.0, 49 / 176.0, -5103 / 18656.0, 0.0, 0.0},
			{35 / 384.0, 0.0, 500 / 1113.0, 125 / 192.0, -2187 / 6784.0, 11 / 84.0, 0.0},
		},
		B:    []float64{35 / 384.0, 0.0, 500 / 1113.0, 125 / 192.0, -2187 / 6784.0, 11 / 84.0, 0.0},
		Bhat: []float64{5179 / 57600.0, 0.0, 7571 / 16695.0, 393 / 640.0, -92097 / 339200.0, 187 / 2100.0, 1 / 40.0},
		C:    []float64{0.0, 1 / 5.0, 3 / 10.0, 4 / 5.0, 8 / 9.0, 1.0, 1.0},
	})

	register(Tableau{
		Name: RungeKuttaFehlberg54,
		S:    6,
		A: [][]float64{
			{0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{1 / 4.0, 0.0, 0.0, 0.0, 0.0, 0.0},
			{3 / 32.0, 9 / 32.0, 0.0, 0.0, 0.0, 0.0},
			{1932 / 2197.0, -7200 / 2197.0, 7296 / 2197.0, 0.0, 0.0, 0.0},
			{439 / 216.0, -8.0, 3680 / 513.0, -845 / 4104.0, 0.0, 0.0},
			{-8 / 27.0, 2.0, -3544 / 2565.0, 1859 / 4104.0, -11 / 40.0, 0.0},
		},
		B:    []float64{16 / 135.0, 0.0, 6656 / 12825.0, 28561 / 56430.0, -9 / 50.0, 2 / 55.0},
		Bhat: []float64{25 / 216.0, 0.0, 1408 / 2565.0, 2197 / 4104.0, -1 / 5.0, 0.0},
		C:    []float64{0.0, 1 / 4.0, 3 / 8.0, 12 / 13.0, 1.0, 1 / 2.0},
	})
}

// Validate checks that row sums of A equal C and that B/Bhat each sum
// to 1, within tol.
func (t Tableau) Validate(tol float64) error {
	sum := func(v []float64) float64 {
		s := 0.0
		for _, x := range v {
			s += x
		}
		return s
	}
	if d := sum(t.B) - 1.0; d > tol || d < -tol {
		return errs.Errf("tableau %s: sum(B) = %v, expected 1", t.Name, sum(t.B))
	}
	if d := sum(t.Bhat) - 1.0; d > tol || d < -tol {
		return errs.Errf("tableau %s: sum(Bhat) = %v, expected 1", t.Name, sum(t.Bhat))
	}
	for j := 0; j < t.S; j++ {
		rowsum := sum(t.A[j][:j])
		d := rowsum - t.C[j]
		if d > tol || d < -tol {
			return errs.Errf("tableau %s: row %d of A sums to %v, expected c[%d]=%v", t.Name, j, rowsum, j, t.C[j])
		}
	}
	return nil
}

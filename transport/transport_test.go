// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/mertemba/spheresim/engine"
	"github.com/mertemba/spheresim/frame"
	"github.com/mertemba/spheresim/kernel"
	"github.com/mertemba/spheresim/queue"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

func newTestSession() *Session {
	box := sphere.Vec3{10, 10, 10}
	return &Session{
		Engine: engine.New(box, kernel.Features{}, tableau.RungeKuttaFehlberg54),
		Queue:  queue.New(),
		Frames: frame.New(frame.DefaultCapacity),
	}
}

func Test_framing01(tst *testing.T) {

	chk.PrintTitle("framing01")

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	payload := []byte{0x00, 0x01, 0x02, 0x03, 0xff}
	if err := WriteFrame(w, payload); err != nil {
		tst.Errorf("WriteFrame failed: %v", err)
	}

	r := bufio.NewReader(&buf)
	got, err := ReadFrame(r)
	if err != nil {
		tst.Errorf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		tst.Errorf("round trip mismatch: %v != %v", got, payload)
	}
}

func Test_framing02(tst *testing.T) {

	chk.PrintTitle("framing02")

	r := bufio.NewReader(bytes.NewReader([]byte{0x7f, 0x02}))
	if _, err := ReadFrame(r); err == nil {
		tst.Errorf("garbage before frame start must fail")
	}
}

func Test_codec01(tst *testing.T) {

	chk.PrintTitle("codec01")

	s := sphere.Sphere{
		Pos:    sphere.Vec3{1, 2, 3},
		Vel:    sphere.Vec3{4, 5, 6},
		Acc:    sphere.Vec3{7, 8, 9},
		Mass:   2.5,
		Radius: 0.25,
	}
	var e Encoder
	e.U16(7)
	e.U32(1 << 20)
	e.Sphere(s)

	d := NewDecoder(e.Bytes())
	chk.IntAssert(int(d.U16()), 7)
	chk.IntAssert(int(d.U32()), 1<<20)
	got := d.Sphere()
	if got != s {
		tst.Errorf("sphere round trip mismatch: %v != %v", got, s)
	}
	chk.IntAssert(d.Remaining(), 0)
}

// Test_dispatch01 exercises the sphere round trip through the action
// tables: updateOne followed by getOneFull returns the same record.
func Test_dispatch01(tst *testing.T) {

	chk.PrintTitle("dispatch01")

	sess := newTestSession()

	reply := Dispatch(sess, "spheresUpdating", "addOne", NewDecoder(nil))
	chk.IntAssert(int(NewDecoder(reply).U16()), 1)

	s := sphere.Sphere{
		Pos:    sphere.Vec3{1, 2, 3},
		Vel:    sphere.Vec3{0.1, 0.2, 0.3},
		Mass:   1.5,
		Radius: 0.5,
	}
	var e Encoder
	e.U16(0)
	e.Sphere(s)
	Dispatch(sess, "spheresUpdating", "updateOne", NewDecoder(e.Bytes()))

	var req Encoder
	req.U16(0)
	reply = Dispatch(sess, "spheresUpdating", "getOneFull", NewDecoder(req.Bytes()))
	got := NewDecoder(reply).Sphere()
	if got != s {
		tst.Errorf("sphere round trip through dispatch mismatch: %v != %v", got, s)
	}

	// positional variant returns the position subset only
	var req2 Encoder
	req2.U16(0)
	reply = Dispatch(sess, "spheresUpdating", "getOne", NewDecoder(req2.Bytes()))
	pos := NewDecoder(reply).Vec3()
	if pos != s.Pos {
		tst.Errorf("positional get mismatch: %v != %v", pos, s.Pos)
	}
}

// Test_dispatch02 checks protocol-error handling: unknown groups and
// actions are acknowledged with an empty reply and no state change.
func Test_dispatch02(tst *testing.T) {

	chk.PrintTitle("dispatch02")

	sess := newTestSession()
	if reply := Dispatch(sess, "nonsense", "addOne", NewDecoder(nil)); reply != nil {
		tst.Errorf("unknown group must return an empty reply")
	}
	if reply := Dispatch(sess, "spheresUpdating", "nonsense", NewDecoder(nil)); reply != nil {
		tst.Errorf("unknown action must return an empty reply")
	}
	chk.IntAssert(sess.Engine.Spheres.Count(), 0)

	// out-of-range index: no-op, default-constructed sphere back
	var req Encoder
	req.U16(42)
	reply := Dispatch(sess, "spheresUpdating", "getOneFull", NewDecoder(req.Bytes()))
	got := NewDecoder(reply).Sphere()
	if got != (sphere.Sphere{}) {
		tst.Errorf("out-of-range get should return the zero sphere, got %v", got)
	}

	// removing from empty is a no-op returning 0
	reply = Dispatch(sess, "spheresUpdating", "removeLast", NewDecoder(nil))
	chk.IntAssert(int(NewDecoder(reply).U16()), 0)
}

func Test_dispatch03(tst *testing.T) {

	chk.PrintTitle("dispatch03")

	sess := newTestSession()

	var e Encoder
	e.F64(0.01)
	Dispatch(sess, "calculation", "setTimeStep", NewDecoder(e.Bytes()))
	reply := Dispatch(sess, "calculation", "getTimeStep", NewDecoder(nil))
	chk.Float64(tst, "time step", 1e-15, NewDecoder(reply).F64(), 0.01)

	var m Encoder
	m.U16(3) // DormandPrince54
	Dispatch(sess, "calculation", "setIntegratorMethod", NewDecoder(m.Bytes()))
	chk.StrAssert(sess.Engine.IntegratorName(), tableau.DormandPrince54)
	reply = Dispatch(sess, "calculation", "getIntegratorMethod", NewDecoder(nil))
	chk.IntAssert(int(NewDecoder(reply).U16()), 3)

	// an out-of-range method id falls back to RungeKuttaFehlberg54
	var bad Encoder
	bad.U16(99)
	Dispatch(sess, "calculation", "setIntegratorMethod", NewDecoder(bad.Bytes()))
	chk.StrAssert(sess.Engine.IntegratorName(), tableau.RungeKuttaFehlberg54)
}

func Test_dispatch04(tst *testing.T) {

	chk.PrintTitle("dispatch04")

	sess := newTestSession()

	var e Encoder
	e.F64(8000)
	Dispatch(sess, "simulatedSystem", "updateSphereE", NewDecoder(e.Bytes()))
	chk.Float64(tst, "sphere E", 1e-15, sess.Engine.Params.ESphere, 8000)
	if !sess.Engine.Params.CheckModuli(1e-9) {
		tst.Errorf("derived moduli stale after updateSphereE")
	}

	var g Encoder
	g.Vec3(sphere.Vec3{0, -1.62, 0})
	Dispatch(sess, "simulatedSystem", "updateEarthGravity", NewDecoder(g.Bytes()))
	chk.Float64(tst, "gravity.y", 1e-15, sess.Engine.Params.EarthGravity[1], -1.62)
}

// Test_dispatch05 checks the kinetic-energy rescale reply: a valid
// factor scales and returns the new energy, a negative factor is a
// no-op whose reply carries the unchanged energy.
func Test_dispatch05(tst *testing.T) {

	chk.PrintTitle("dispatch05")

	sess := newTestSession()
	sess.Engine.Spheres.Add(sphere.Sphere{Vel: sphere.Vec3{2, 0, 0}, Mass: 1, Radius: 0.1})
	ke0 := sess.Engine.KineticEnergy()

	var e Encoder
	e.F64(4)
	reply := Dispatch(sess, "simulatedSystem", "updateKineticEnergy", NewDecoder(e.Bytes()))
	chk.Float64(tst, "scaled energy", 1e-12, NewDecoder(reply).F64(), ke0*4)

	var bad Encoder
	bad.F64(-1)
	reply = Dispatch(sess, "simulatedSystem", "updateKineticEnergy", NewDecoder(bad.Bytes()))
	chk.Float64(tst, "unchanged energy", 1e-12, NewDecoder(reply).F64(), ke0*4)
}

func Test_frameStream01(tst *testing.T) {

	chk.PrintTitle("frameStream01")

	arr := sphere.New()
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{1, 2, 3}, Mass: 1, Radius: 0.1})
	arr.Add(sphere.Sphere{Pos: sphere.Vec3{4, 5, 6}, Mass: 1, Radius: 0.1})

	d := NewDecoder(EncodeFrameStream(arr))
	chk.IntAssert(int(d.U16()), 2)
	chk.IntAssert(int(d.U16()), 0)
	chk.Float64(tst, "p0.x", 1e-15, d.F64(), 1)
	chk.Float64(tst, "p0.y", 1e-15, d.F64(), 2)
	chk.Float64(tst, "p0.z", 1e-15, d.F64(), 3)
	chk.IntAssert(int(d.U16()), 1)
}

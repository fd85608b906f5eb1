// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"math"

	"github.com/mertemba/spheresim/sphere"
)

// Encoder builds a little-endian payload: counts and indices as u16,
// counters as u32, scalars as IEEE-754 doubles.
type Encoder struct {
	buf []byte
}

// Bytes returns the encoded payload built so far.
func (e *Encoder) Bytes() []byte { return e.buf }

// U16 appends a count or index.
func (e *Encoder) U16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

// U32 appends a counter.
func (e *Encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

// F64 appends an IEEE-754 double.
func (e *Encoder) F64(v float64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// Vec3 appends a 3-vector as three doubles.
func (e *Encoder) Vec3(v sphere.Vec3) {
	e.F64(v[0])
	e.F64(v[1])
	e.F64(v[2])
}

// Sphere appends the wire sphere record: px,py,pz, vx,vy,vz, ax,ay,az,
// mass, radius.
func (e *Encoder) Sphere(s sphere.Sphere) {
	e.Vec3(s.Pos)
	e.Vec3(s.Vel)
	e.Vec3(s.Acc)
	e.F64(s.Mass)
	e.F64(s.Radius)
}

// Decoder reads a little-endian payload built by Encoder. A truncated
// payload decodes to zero values. The dispatch handlers do not check
// Remaining, so a truncated request is applied with those zero values.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining reports how many bytes are left to decode.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

// U16 reads a count or index.
func (d *Decoder) U16() uint16 {
	if d.Remaining() < 2 {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v
}

// U32 reads a counter.
func (d *Decoder) U32() uint32 {
	if d.Remaining() < 4 {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

// F64 reads an IEEE-754 double.
func (d *Decoder) F64() float64 {
	if d.Remaining() < 8 {
		return 0
	}
	bits := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return math.Float64frombits(bits)
}

// Vec3 reads three doubles.
func (d *Decoder) Vec3() sphere.Vec3 {
	return sphere.Vec3{d.F64(), d.F64(), d.F64()}
}

// Sphere reads a full wire sphere record.
func (d *Decoder) Sphere() sphere.Sphere {
	pos := d.Vec3()
	vel := d.Vec3()
	acc := d.Vec3()
	mass := d.F64()
	radius := d.F64()
	return sphere.Sphere{Pos: pos, Vel: vel, Acc: acc, Mass: mass, Radius: radius}
}

// EncodeFrameStream encodes an unsolicited frame-stream message: u16
// count followed by count repetitions of (u16 index, double px, py, pz).
func EncodeFrameStream(arr *sphere.Array) []byte {
	var e Encoder
	e.U16(uint16(arr.Count()))
	for i, s := range arr.Spheres {
		e.U16(uint16(i))
		e.F64(s.Pos[0])
		e.F64(s.Pos[1])
		e.F64(s.Pos[2])
	}
	return e.Bytes()
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_frame01(tst *testing.T) {

	chk.PrintTitle("frame01")

	b := New(4)
	chk.IntAssert(b.Len(), 0)
	if _, ok := b.Pop(); ok {
		tst.Errorf("empty ring must not pop")
	}

	b.Push([]byte{1})
	b.Push([]byte{2})
	chk.IntAssert(b.Len(), 2)

	f, ok := b.Pop()
	if !ok || f[0] != 1 {
		tst.Errorf("expected frame 1 first, got %v %v", f, ok)
	}
	f, ok = b.Pop()
	if !ok || f[0] != 2 {
		tst.Errorf("expected frame 2 next, got %v %v", f, ok)
	}
	chk.IntAssert(b.Len(), 0)
}

// Test_frame02 checks backpressure: committing 61 frames into a 60-slot
// ring with no consumer stores 59, skips exactly one whole frame, and
// leaves the ring at 59/60 occupancy.
func Test_frame02(tst *testing.T) {

	chk.PrintTitle("frame02")

	b := New(60)
	for i := 0; i < 61; i++ {
		b.Push([]byte{byte(i)})
	}
	chk.IntAssert(b.Len(), 59)
	chk.IntAssert(int(b.Skipped()), 1)
	if !b.SkippedLast() {
		tst.Errorf("skip flag should be set while the ring is full")
	}
	chk.IntAssert(b.OccupancyPercent(), 59*100/60)

	// draining one frame makes room again
	b.Pop()
	if !b.Push([]byte{99}) {
		tst.Errorf("push after drain should succeed")
	}
	chk.IntAssert(b.Len(), 59)
}

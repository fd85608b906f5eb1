// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package frame implements the bounded ring of outbound frames. The ring
// never blocks or overwrites: a frame committed into a full ring is
// discarded and the skip flag is set instead.
package frame

import "sync"

// DefaultCapacity is the default ring size.
const DefaultCapacity = 60

// Buffer is a fixed-capacity ring of encoded frames. Producer and
// consumer track independent indices modulo the capacity; the ring is
// full when the write index is one behind the read index, so a ring of
// capacity N holds at most N-1 committed frames.
type Buffer struct {
	mu   sync.Mutex
	data [][]byte

	readIndex  int
	writeIndex int

	skipNext bool
	skipped  uint64
}

// New returns an empty ring of the given capacity. capacity <= 0 falls
// back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([][]byte, capacity)}
}

// Push commits a completed frame. When the ring is full the frame is
// discarded and the skip flag is set; a frame committed while the flag
// is already set counts as skipped. Returns false if the frame was not
// stored.
func (o *Buffer) Push(f []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.readIndex == (o.writeIndex+1)%len(o.data) {
		if o.skipNext {
			o.skipped++
		}
		o.skipNext = true
		return false
	}
	o.skipNext = false
	o.data[o.writeIndex] = f
	o.writeIndex = (o.writeIndex + 1) % len(o.data)
	return true
}

// Pop removes and returns the oldest pending frame, or (nil, false) if
// the ring is empty.
func (o *Buffer) Pop() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.readIndex == o.writeIndex {
		return nil, false
	}
	f := o.data[o.readIndex]
	o.data[o.readIndex] = nil
	o.readIndex = (o.readIndex + 1) % len(o.data)
	return f, true
}

// Len returns the number of committed, unconsumed frames.
func (o *Buffer) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lenLocked()
}

func (o *Buffer) lenLocked() int {
	n := o.writeIndex - o.readIndex
	if n < 0 {
		n += len(o.data)
	}
	return n
}

// Capacity returns the ring size.
func (o *Buffer) Capacity() int {
	return len(o.data)
}

// OccupancyPercent returns how full the ring currently is, 0-100.
func (o *Buffer) OccupancyPercent() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lenLocked() * 100 / len(o.data)
}

// Skipped returns how many frames were dropped while the skip flag was
// already set.
func (o *Buffer) Skipped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.skipped
}

// SkippedLast reports whether the most recent Push was discarded.
func (o *Buffer) SkippedLast() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.skipNext
}

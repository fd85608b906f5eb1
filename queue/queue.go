// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package queue implements the work queue and the single worker
// goroutine driving a simulation: a mutex-guarded steps-remaining
// counter woken by a condition variable.
package queue

import (
	"sync"

	"github.com/mertemba/spheresim/engine"
)

// DefaultTimeStep is the step length (s) a fresh queue starts with.
const DefaultTimeStep = 0.002

// Queue holds the pending work for a single simulation's worker
// goroutine: a steps-remaining counter (or an "unlimited" flag), the
// current time step, and a frame-sending toggle. The worker holds the
// queue mutex for the whole of each step, so callers that take the same
// mutex (Lock/Unlock) only ever observe and mutate the simulation
// between steps.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	stepsRemaining int
	unlimited      bool
	timeStep       float64
	sendFrames     bool
	stop           bool
	running        bool

	// OnFrame is invoked under the queue mutex, once per completed step
	// when frame sending is on. The callback must not call back into the
	// queue.
	OnFrame func(stepCount uint64)
}

// New returns a Queue with no pending work.
func New() *Queue {
	q := &Queue{timeStep: DefaultTimeStep}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Lock acquires the queue mutex, blocking for at most the duration of
// the step the worker is currently on. Callers mutating simulation
// state (sphere array, parameters, box size, integrator) take it so
// their changes are only ever observed between steps. Must not be held
// while calling the queue's own methods.
func (o *Queue) Lock() {
	o.mu.Lock()
}

// Unlock releases the queue mutex.
func (o *Queue) Unlock() {
	o.mu.Unlock()
}

// SetTimeStep updates the step length used for subsequent steps.
// Non-positive values are ignored.
func (o *Queue) SetTimeStep(dt float64) {
	if dt <= 0 {
		return
	}
	o.mu.Lock()
	o.timeStep = dt
	o.mu.Unlock()
}

// TimeStep returns the current step length.
func (o *Queue) TimeStep() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.timeStep
}

// PushSteps adds n steps to the queue and wakes the worker. n <= 0 is a
// no-op.
func (o *Queue) PushSteps(n int) {
	if n <= 0 {
		return
	}
	o.mu.Lock()
	o.stepsRemaining += n
	o.mu.Unlock()
	o.cond.Signal()
}

// PushUnlimited switches the queue into "run until stopped" mode.
func (o *Queue) PushUnlimited() {
	o.mu.Lock()
	o.unlimited = true
	o.mu.Unlock()
	o.cond.Signal()
}

// StopSimulation clears pending work and the unlimited flag without
// stopping the worker goroutine itself.
func (o *Queue) StopSimulation() {
	o.mu.Lock()
	o.stepsRemaining = 0
	o.unlimited = false
	o.mu.Unlock()
	o.cond.Signal()
}

// Stop requests the worker goroutine to exit Run. The worker finishes
// the step it is on before exiting.
func (o *Queue) Stop() {
	o.mu.Lock()
	o.stop = true
	o.mu.Unlock()
	o.cond.Signal()
}

// SetSendFrames toggles whether completed steps notify OnFrame.
func (o *Queue) SetSendFrames(v bool) {
	o.mu.Lock()
	o.sendFrames = v
	o.mu.Unlock()
}

// SendingFrames reports whether frame sending is on.
func (o *Queue) SendingFrames() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sendFrames
}

// IsSimulating reports whether there is pending work.
func (o *Queue) IsSimulating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unlimited || o.stepsRemaining > 0
}

// Run drives eng.DoStep from a single worker goroutine, blocking on the
// condition variable whenever there is no pending work, until Stop is
// called. The mutex stays held from the work-item pop through the step
// and the frame callback, so Lock/Unlock callers never see a step in
// flight. Intended to run in its own goroutine: `go q.Run(eng)`.
func (o *Queue) Run(eng *engine.Engine) {
	o.mu.Lock()
	o.running = true
	o.mu.Unlock()

	for {
		o.mu.Lock()
		for !o.stop && !o.unlimited && o.stepsRemaining <= 0 {
			o.cond.Wait()
		}
		if o.stop {
			o.running = false
			o.mu.Unlock()
			return
		}
		if !o.unlimited {
			o.stepsRemaining--
		}

		eng.DoStep(o.timeStep)

		if o.sendFrames && o.OnFrame != nil {
			o.OnFrame(eng.StepCount())
		}
		o.mu.Unlock()
	}
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"github.com/mertemba/spheresim/constants"
	"github.com/mertemba/spheresim/engine"
	"github.com/mertemba/spheresim/frame"
	"github.com/mertemba/spheresim/queue"
	"github.com/mertemba/spheresim/sphere"
	"github.com/mertemba/spheresim/tableau"
)

// Session bundles the per-connection state a dispatch handler needs:
// the simulation driver, its work queue, and the outbound frame ring.
// Handlers that touch engine state run wrapped in locked, which takes
// the queue mutex the worker holds for the whole of each step, so
// handler reads and writes land only between steps.
type Session struct {
	Engine *engine.Engine
	Queue  *queue.Queue
	Frames *frame.Buffer
}

// Handler processes one action's payload and returns the reply payload.
type Handler func(s *Session, req *Decoder) []byte

// locked serializes a handler against the worker through the queue
// mutex. Handlers that only call the queue's own methods (which lock
// internally) or read atomic counters must not be wrapped.
func locked(h Handler) Handler {
	return func(s *Session, req *Decoder) []byte {
		s.Queue.Lock()
		defer s.Queue.Unlock()
		return h(s, req)
	}
}

// Groups maps group name -> action name -> handler. An unknown group or
// action is acknowledged with an empty reply and no state change.
var Groups = map[string]map[string]Handler{
	"basic":           basicActions,
	"spheresUpdating": spheresUpdatingActions,
	"calculation":     calculationActions,
	"information":     informationActions,
	"simulatedSystem": simulatedSystemActions,
}

// Dispatch looks up group/action and invokes it, returning an empty
// reply for an unknown group or action.
func Dispatch(s *Session, group, action string, req *Decoder) []byte {
	actions, ok := Groups[group]
	if !ok {
		return nil
	}
	h, ok := actions[action]
	if !ok {
		return nil
	}
	return h(s, req)
}

const protocolVersion = "spheresim-1"

var basicActions = map[string]Handler{
	"version": func(s *Session, req *Decoder) []byte {
		return []byte(protocolVersion)
	},
	"trueString": func(s *Session, req *Decoder) []byte {
		return []byte("true")
	},
	"terminate": func(s *Session, req *Decoder) []byte {
		s.Queue.Stop()
		return nil
	},
	"getFloatingType": func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.U16(64) // this build only ever runs in double-precision mode
		return e.Bytes()
	},
}

func replyCount(n int) []byte {
	var e Encoder
	e.U16(uint16(n))
	return e.Bytes()
}

var spheresUpdatingActions = map[string]Handler{
	"addOne": locked(func(s *Session, req *Decoder) []byte {
		return replyCount(s.Engine.Spheres.Add(sphere.Sphere{Mass: 1, Radius: 1}))
	}),
	"removeLast": locked(func(s *Session, req *Decoder) []byte {
		return replyCount(s.Engine.Spheres.RemoveLast())
	}),
	"updateOne": locked(func(s *Session, req *Decoder) []byte {
		i := req.U16()
		sp := req.Sphere()
		s.Engine.Spheres.Set(int(i), sp)
		return replyCount(s.Engine.Spheres.Count())
	}),
	"getOne": locked(func(s *Session, req *Decoder) []byte {
		i := req.U16()
		sp, _ := s.Engine.Spheres.Get(int(i))
		var e Encoder
		e.Vec3(sp.Pos)
		return e.Bytes()
	}),
	"getOneFull": locked(func(s *Session, req *Decoder) []byte {
		i := req.U16()
		sp, _ := s.Engine.Spheres.Get(int(i))
		var e Encoder
		e.Sphere(sp)
		return e.Bytes()
	}),
	"getCount": locked(func(s *Session, req *Decoder) []byte {
		return replyCount(s.Engine.Spheres.Count())
	}),
	"addSome": locked(func(s *Session, req *Decoder) []byte {
		n := req.U16()
		count := s.Engine.Spheres.Count()
		for i := uint16(0); i < n; i++ {
			count = s.Engine.Spheres.Add(sphere.Sphere{Mass: 1, Radius: 1})
		}
		return replyCount(count)
	}),
	"removeSome": locked(func(s *Session, req *Decoder) []byte {
		n := req.U16()
		count := s.Engine.Spheres.Count()
		for i := uint16(0); i < n; i++ {
			count = s.Engine.Spheres.RemoveLast()
		}
		return replyCount(count)
	}),
	"updateAll": locked(func(s *Session, req *Decoder) []byte {
		sp := req.Sphere()
		s.Engine.Spheres.SetAll(sp)
		return replyCount(s.Engine.Spheres.Count())
	}),
	"updatePositionsInBox": locked(func(s *Session, req *Decoder) []byte {
		randomDisplacement := req.F64()
		randomSpeed := req.F64()
		s.Engine.RandomizePositionsInBox(randomDisplacement, randomSpeed)
		return nil
	}),
}

var calculationActions = map[string]Handler{
	"doOneStep": func(s *Session, req *Decoder) []byte {
		s.Queue.PushSteps(1)
		return nil
	},
	"doSomeSteps": func(s *Session, req *Decoder) []byte {
		n := req.U32()
		if n == 0 {
			s.Queue.PushUnlimited()
		} else {
			s.Queue.PushSteps(int(n))
		}
		return nil
	},
	"startSimulation": func(s *Session, req *Decoder) []byte {
		s.Queue.PushUnlimited()
		return nil
	},
	"stopSimulation": func(s *Session, req *Decoder) []byte {
		s.Queue.StopSimulation()
		return nil
	},
	"getIsSimulating": func(s *Session, req *Decoder) []byte {
		var e Encoder
		if s.Queue.IsSimulating() {
			e.U16(1)
		} else {
			e.U16(0)
		}
		return e.Bytes()
	},
	"setTimeStep": func(s *Session, req *Decoder) []byte {
		s.Queue.SetTimeStep(req.F64())
		return nil
	},
	"getTimeStep": func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.F64(s.Queue.TimeStep())
		return e.Bytes()
	},
	"setIntegratorMethod": locked(func(s *Session, req *Decoder) []byte {
		id := int(req.U16())
		names := tableau.Names()
		name := tableau.RungeKuttaFehlberg54
		if id >= 0 && id < len(names) {
			name = names[id]
		}
		s.Engine.SetIntegrator(name)
		return nil
	}),
	"getIntegratorMethod": locked(func(s *Session, req *Decoder) []byte {
		var e Encoder
		name := s.Engine.IntegratorName()
		for id, n := range tableau.Names() {
			if n == name {
				e.U16(uint16(id))
				return e.Bytes()
			}
		}
		e.U16(uint16(len(tableau.Names()) - 1))
		return e.Bytes()
	}),
	"popStepCounter": func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.U32(uint32(s.Engine.PopStepCount()))
		return e.Bytes()
	},
	"popCalculationCounter": func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.U32(uint32(s.Engine.PopCalculationCount()))
		return e.Bytes()
	},
	"updateCollisionDetection": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.SetCollisionDetection(req.U16() != 0)
		return nil
	}),
	"updateGravityCalculation": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.SetGravityCalculation(req.U16() != 0)
		return nil
	}),
	"updateLennardJonesPotentialCalculation": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.SetLennardJonesPotential(req.U16() != 0)
		return nil
	}),
	"updateMaximumStepDivision": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.SetMaximumStepDivision(int(req.U16()))
		return nil
	}),
	"updateMaximumStepError": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.SetMaximumStepError(req.F64())
		return nil
	}),
	"updateFrameSending": func(s *Session, req *Decoder) []byte {
		s.Queue.SetSendFrames(req.U16() != 0)
		return nil
	},
	"getLastStepCalculationTime": func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.U32(uint32(s.Engine.LastStepCalculationTime().Milliseconds()))
		return e.Bytes()
	},
}

var informationActions = map[string]Handler{
	"getTotalEnergy": locked(func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.F64(s.Engine.TotalEnergy())
		return e.Bytes()
	}),
	"getKineticEnergy": locked(func(s *Session, req *Decoder) []byte {
		var e Encoder
		e.F64(s.Engine.KineticEnergy())
		return e.Bytes()
	}),
}

var simulatedSystemActions = map[string]Handler{
	"updateSphereE": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetSphereE(req.F64())
		return nil
	}),
	"updateWallE": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetWallE(req.F64())
		return nil
	}),
	"updateSpherePoissonRatio": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetSpherePoissonRatio(req.F64())
		return nil
	}),
	"updateWallPoissonRatio": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetWallPoissonRatio(req.F64())
		return nil
	}),
	"updateEarthGravity": locked(func(s *Session, req *Decoder) []byte {
		v := req.Vec3()
		s.Engine.Params.SetEarthGravity(constants.Vec3(v))
		return nil
	}),
	"updateGravitationalConstant": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetGravitationalConstant(req.F64())
		return nil
	}),
	"updateBoxSize": locked(func(s *Session, req *Decoder) []byte {
		v := req.Vec3()
		s.Engine.Resize(v)
		return nil
	}),
	"updateKineticEnergy": locked(func(s *Session, req *Decoder) []byte {
		// a negative factor is an argument error: the scale is a no-op
		// and the reply carries the unchanged kinetic energy
		_ = s.Engine.ScaleKineticEnergy(req.F64())
		var e Encoder
		e.F64(s.Engine.KineticEnergy())
		return e.Bytes()
	}),
	"updateTargetTemperature": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetTargetTemperature(req.F64())
		return nil
	}),
	"updatePeriodicBoundaryConditions": locked(func(s *Session, req *Decoder) []byte {
		s.Engine.Params.SetPeriodicBoundaryConditions(req.U16() != 0)
		return nil
	}),
}

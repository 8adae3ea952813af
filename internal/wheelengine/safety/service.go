// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package safety

import (
	"math"
	"sync/atomic"
	"time"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// Service is the single authority over outgoing torque. State transitions
// are lock-free: the current State is published as a pointer, swapped with
// a single compare-and-swap so concurrent callers (RT thread, watchdog, HID
// layer) never observe a half-applied transition.
type Service struct {
	state atomic.Pointer[State]

	// transitionedAtNS is the monotonic timestamp (ns) the current
	// transitional state (HighTorqueChallenge/AwaitingPhysicalAck) was
	// entered, used to evaluate timeouts.
	transitionedAtNS atomic.Int64

	safeCapNm        float32
	highCapNm        float32
	challengeTimeout time.Duration
	ackTimeout       time.Duration

	now func() time.Time
}

// NewService returns a Service starting in SafeTorque.
func NewService(safeCapNm, highCapNm float32, challengeTimeout, ackTimeout time.Duration) *Service {
	s := &Service{
		safeCapNm:        safeCapNm,
		highCapNm:        highCapNm,
		challengeTimeout: challengeTimeout,
		ackTimeout:       ackTimeout,
		now:              time.Now,
	}
	s.state.Store(&State{Kind: SafeTorque})
	return s
}

// State returns the current state. Safe to call from any goroutine.
func (s *Service) State() State {
	return *s.state.Load()
}

// Clamp applies the current state's torque authority to a requested
// normalized-to-Nm torque value and returns what may actually be delivered.
// NaN and ±Inf always clamp to 0, even in HighTorqueActive.
func (s *Service) Clamp(requestedNm float32) float32 {
	if math.IsNaN(float64(requestedNm)) || math.IsInf(float64(requestedNm), 0) {
		return 0
	}
	st := s.State()
	switch st.Kind {
	case Faulted:
		return 0
	case HighTorqueActive:
		return clampAbs(requestedNm, s.highCapNm)
	default:
		return clampAbs(requestedNm, s.safeCapNm)
	}
}

func clampAbs(v, cap float32) float32 {
	if cap < 0 {
		cap = -cap
	}
	if v > cap {
		return cap
	}
	if v < -cap {
		return -cap
	}
	return v
}

// RequestHighTorque attempts SafeTorque -> HighTorqueChallenge. Returns
// false if the current state isn't SafeTorque.
func (s *Service) RequestHighTorque() bool {
	return s.transition(SafeTorque, State{Kind: HighTorqueChallenge})
}

// ChallengeOK attempts HighTorqueChallenge -> AwaitingPhysicalAck.
func (s *Service) ChallengeOK() bool {
	return s.transition(HighTorqueChallenge, State{Kind: AwaitingPhysicalAck})
}

// ChallengeFailed reverts HighTorqueChallenge -> SafeTorque.
func (s *Service) ChallengeFailed() bool {
	return s.transition(HighTorqueChallenge, State{Kind: SafeTorque})
}

// PhysicalAck attempts AwaitingPhysicalAck -> HighTorqueActive.
func (s *Service) PhysicalAck() bool {
	return s.transition(AwaitingPhysicalAck, State{Kind: HighTorqueActive})
}

// Release transitions HighTorqueActive -> SafeTorque, used both for an
// explicit release and for a hands-off detection.
func (s *Service) Release() bool {
	return s.transition(HighTorqueActive, State{Kind: SafeTorque})
}

// CheckTimeouts reverts a transitional state (HighTorqueChallenge,
// AwaitingPhysicalAck) to SafeTorque once its configured timeout has
// elapsed. Intended to be polled periodically (e.g. once per RT tick or on
// a slower background ticker); a no-op if the current state isn't
// transitional or the timeout hasn't elapsed.
func (s *Service) CheckTimeouts() {
	cur := s.state.Load()
	var timeout time.Duration
	switch cur.Kind {
	case HighTorqueChallenge:
		timeout = s.challengeTimeout
	case AwaitingPhysicalAck:
		timeout = s.ackTimeout
	default:
		return
	}
	elapsed := time.Duration(int64(s.now().UnixNano()) - s.transitionedAtNS.Load())
	if elapsed < timeout {
		return
	}
	s.state.CompareAndSwap(cur, &State{Kind: SafeTorque})
}

// ReportFault is the single entry point every fault source (pipeline
// errors via the RT thread, the watchdog, the HID write path) uses to drive
// a transition into Faulted{kind}. It always succeeds: Faulted absorbs from
// any prior state, so concurrent reports from multiple sources never race
// against each other in a way that matters — whichever store lands last
// still leaves the system in Faulted. This keeps the call O(1) and safely
// under the sub-millisecond bound spec'd for fault response: one atomic
// store, no lock, no channel hand-off.
func (s *Service) ReportFault(kind ffbtypes.FaultKind) {
	s.state.Store(&State{Kind: Faulted, Fault: kind})
}

// OperatorClear transitions Faulted{*} -> SafeTorque. Returns false if the
// current state isn't Faulted.
func (s *Service) OperatorClear() bool {
	cur := s.state.Load()
	if cur.Kind != Faulted {
		return false
	}
	return s.state.CompareAndSwap(cur, &State{Kind: SafeTorque})
}

// transition attempts a CAS from a specific expected Kind to next, stamping
// the transition time for states that use it.
func (s *Service) transition(from Kind, next State) bool {
	cur := s.state.Load()
	if cur.Kind != from {
		return false
	}
	if !s.state.CompareAndSwap(cur, &next) {
		return false
	}
	s.transitionedAtNS.Store(s.now().UnixNano())
	return true
}

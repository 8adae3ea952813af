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

package filters

import "wheelengine/pkg/wheelengine/ffbtypes"

// frictionDeadBand is the narrow zero-speed band inside which sign(speed)
// would otherwise flip noisily tick to tick.
const frictionDeadBand = 1e-3

// FrictionState holds no history; it exists so NewFriction has the same
// shape as its stateful siblings and so state_size_bytes accounting is
// uniform across the node set.
type FrictionState struct{}

// NewFriction subtracts friction_gain * sign(wheel_speed) from TorqueOut,
// with a dead band around zero speed.
func NewFriction(gain float32) (Node, *FrictionState) {
	st := &FrictionState{}
	fn := func(f *ffbtypes.Frame) error {
		if f.WheelSpeed > -frictionDeadBand && f.WheelSpeed < frictionDeadBand {
			return checkFinite(f.TorqueOut)
		}
		f.TorqueOut -= gain * sign(f.WheelSpeed)
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

// DamperState mirrors FrictionState: stateless, present for symmetry.
type DamperState struct{}

// NewDamper subtracts damper_gain * wheel_speed (rate-proportional) from
// TorqueOut.
func NewDamper(gain float32) (Node, *DamperState) {
	st := &DamperState{}
	fn := func(f *ffbtypes.Frame) error {
		f.TorqueOut -= gain * f.WheelSpeed
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

// InertiaState holds the two-sample window needed to estimate
// delta-wheel-speed/delta-t.
type InertiaState struct {
	havePrev bool
	prevSpeed float32
	prevTSNS  uint64
}

// NewInertia subtracts inertia_gain * d(wheel_speed)/dt from TorqueOut using
// a two-sample finite difference over the Frame's monotonic timestamp.
func NewInertia(gain float32) (Node, *InertiaState) {
	st := &InertiaState{}
	fn := func(f *ffbtypes.Frame) error {
		if !st.havePrev {
			st.havePrev = true
			st.prevSpeed = f.WheelSpeed
			st.prevTSNS = f.TSMonoNS
			return checkFinite(f.TorqueOut)
		}
		dtNS := f.TSMonoNS - st.prevTSNS
		if dtNS == 0 {
			return checkFinite(f.TorqueOut)
		}
		dSpeed := f.WheelSpeed - st.prevSpeed
		dt := float32(dtNS) / 1e9
		accel := dSpeed / dt

		st.prevSpeed = f.WheelSpeed
		st.prevTSNS = f.TSMonoNS

		f.TorqueOut -= gain * accel
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

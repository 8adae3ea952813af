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

// SlewLimiterState tracks the previous tick's output to bound the per-tick
// delta.
type SlewLimiterState struct {
	havePrev bool
	prev     float32
}

// NewSlewLimiter bounds |delta TorqueOut per tick| <= rate.
func NewSlewLimiter(ratePerTick float32) (Node, *SlewLimiterState) {
	st := &SlewLimiterState{}
	fn := func(f *ffbtypes.Frame) error {
		if !st.havePrev {
			st.havePrev = true
			st.prev = f.TorqueOut
			return checkFinite(f.TorqueOut)
		}
		delta := f.TorqueOut - st.prev
		if delta > ratePerTick {
			delta = ratePerTick
		} else if delta < -ratePerTick {
			delta = -ratePerTick
		}
		f.TorqueOut = st.prev + delta
		st.prev = f.TorqueOut
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

// MonotonicCurveState holds the validated, sorted control points.
type MonotonicCurveState struct {
	points []ffbtypes.CurvePoint
}

// NewMonotonicCurve applies a piecewise-linear transform over normalized
// torque using points already validated (strictly increasing X) by the
// Pipeline Compiler.
func NewMonotonicCurve(points []ffbtypes.CurvePoint) (Node, *MonotonicCurveState) {
	st := &MonotonicCurveState{points: append([]ffbtypes.CurvePoint(nil), points...)}
	fn := func(f *ffbtypes.Frame) error {
		if len(st.points) == 0 {
			return checkFinite(f.TorqueOut)
		}
		f.TorqueOut = evalPiecewiseLinear(st.points, f.TorqueOut)
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

func evalPiecewiseLinear(points []ffbtypes.CurvePoint, x float32) float32 {
	if x <= points[0].X {
		return points[0].Y
	}
	last := points[len(points)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 0; i < len(points)-1; i++ {
		p0, p1 := points[i], points[i+1]
		if x >= p0.X && x <= p1.X {
			span := p1.X - p0.X
			if span == 0 {
				return p0.Y
			}
			t := (x - p0.X) / span
			return p0.Y + t*(p1.Y-p0.Y)
		}
	}
	return last.Y
}

// TorqueCapState is stateless; present for construction symmetry.
type TorqueCapState struct{}

// NewTorqueCap clamps TorqueOut to [-cap, cap]. Non-finite input clamps to 0
// rather than propagating, matching the Safety Service's own NaN/Inf policy
// so a cap-only pipeline is itself fail-safe.
func NewTorqueCap(cap float32) (Node, *TorqueCapState) {
	st := &TorqueCapState{}
	fn := func(f *ffbtypes.Frame) error {
		if checkFinite(f.TorqueOut) != nil {
			f.TorqueOut = 0
			return ErrNonFinite
		}
		f.TorqueOut = clamp(f.TorqueOut, -cap, cap)
		return nil
	}
	return fn, st
}

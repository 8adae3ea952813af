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

package pipeline

import (
	"math"

	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/pkg/wheelengine/ffbtypes"
	"wheelengine/pkg/wheelengine/filters"
)

// maxGain bounds the friction/damper/inertia gains the Compiler accepts;
// anything outside this range almost certainly comes from a corrupt or
// mis-scaled profile rather than an intentional tuning choice.
const maxGain = 100.0

// stateBytesPerNode is a fixed estimate used for ApplyOperationStats; it is
// not exact (the reconstruction state is about 48 bytes, while each notch
// section alone is 80) but is stable and cheap, which is what the stat is for.
const stateBytesPerNode = 64

// Compiler validates a FilterConfig and, if valid, builds the ordered
// CompiledPipeline the RT scheduler will run: reconstruction, friction,
// damper, inertia, notch bank, slew limiter, monotonic curve, torque cap, in
// that fixed order (spec §4.1/§4.3). It runs entirely off the RT thread.
type Compiler struct{}

// NewCompiler returns a ready-to-use Compiler. It carries no state of its
// own; every Compile call is independent.
func NewCompiler() *Compiler { return &Compiler{} }

// Compile validates cfg and builds a CompiledPipeline from it, or returns an
// *enginerr.Error identifying the first validation failure found. Validation
// order is: curve monotonicity, gains, notch specs.
func (c *Compiler) Compile(cfg ffbtypes.FilterConfig) (*CompiledPipeline, error) {
	if err := validateCurvePoints(cfg.CurvePoints); err != nil {
		return nil, err
	}
	if err := validateGains(cfg); err != nil {
		return nil, err
	}
	if err := validateNotches(cfg.Notches); err != nil {
		return nil, err
	}

	nodes := make([]namedNode, 0, 8)

	recon, _ := filters.NewReconstruction(cfg.ReconstructionOrder)
	nodes = append(nodes, namedNode{name: "reconstruction", fn: recon})

	if cfg.FrictionGain != 0 {
		fn, _ := filters.NewFriction(cfg.FrictionGain)
		nodes = append(nodes, namedNode{name: "friction", fn: fn})
	}
	if cfg.DamperGain != 0 {
		fn, _ := filters.NewDamper(cfg.DamperGain)
		nodes = append(nodes, namedNode{name: "damper", fn: fn})
	}
	if cfg.InertiaGain != 0 {
		fn, _ := filters.NewInertia(cfg.InertiaGain)
		nodes = append(nodes, namedNode{name: "inertia", fn: fn})
	}
	if len(cfg.Notches) > 0 {
		fn, _ := filters.NewNotchBank(cfg.Notches)
		nodes = append(nodes, namedNode{name: "notch_bank", fn: fn})
	}
	if cfg.SlewRatePerTick > 0 {
		fn, _ := filters.NewSlewLimiter(cfg.SlewRatePerTick)
		nodes = append(nodes, namedNode{name: "slew_limiter", fn: fn})
	}
	if len(cfg.CurvePoints) > 0 {
		fn, _ := filters.NewMonotonicCurve(cfg.CurvePoints)
		nodes = append(nodes, namedNode{name: "monotonic_curve", fn: fn})
	}
	if cfg.TorqueCap > 0 {
		fn, _ := filters.NewTorqueCap(cfg.TorqueCap)
		nodes = append(nodes, namedNode{name: "torque_cap", fn: fn})
	}

	return &CompiledPipeline{
		nodes:      nodes,
		configHash: canonicalHash(cfg),
		stateBytes: len(nodes) * stateBytesPerNode,
	}, nil
}

func validateCurvePoints(points []ffbtypes.CurvePoint) error {
	for i := 1; i < len(points); i++ {
		if points[i].X <= points[i-1].X {
			return enginerr.New(enginerr.KindNonMonotonicCurve, "curve_points", nil)
		}
	}
	for _, p := range points {
		if !isFinite32(p.X) || !isFinite32(p.Y) {
			return enginerr.New(enginerr.KindInvalidCurvePoint, "curve_points", nil)
		}
	}
	return nil
}

func validateGains(cfg ffbtypes.FilterConfig) error {
	for _, g := range []float32{cfg.FrictionGain, cfg.DamperGain, cfg.InertiaGain} {
		if !isFinite32(g) || g < -maxGain || g > maxGain {
			return enginerr.New(enginerr.KindInvalidGain, "friction_damper_inertia", nil)
		}
	}
	if !isFinite32(cfg.SlewRatePerTick) || cfg.SlewRatePerTick < 0 {
		return enginerr.New(enginerr.KindInvalidGain, "slew_rate_per_tick", nil)
	}
	if !isFinite32(cfg.TorqueCap) || cfg.TorqueCap < 0 {
		return enginerr.New(enginerr.KindInvalidGain, "torque_cap", nil)
	}
	return nil
}

func validateNotches(notches []ffbtypes.NotchSpec) error {
	for _, n := range notches {
		if !isFinite32(n.FrequencyHz) || n.FrequencyHz <= 0 || n.FrequencyHz >= filters.TickRateHz/2 {
			return enginerr.New(enginerr.KindInvalidCurvePoint, "notch_frequency_hz", nil)
		}
		if !isFinite32(n.Q) || n.Q <= 0 {
			return enginerr.New(enginerr.KindInvalidCurvePoint, "notch_q", nil)
		}
		if !isFinite32(n.GainDB) {
			return enginerr.New(enginerr.KindInvalidCurvePoint, "notch_gain_db", nil)
		}
	}
	return nil
}

func isFinite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

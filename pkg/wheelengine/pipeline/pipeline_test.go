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
	"errors"
	"math"
	"testing"

	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

func TestEmpty_IsPassthrough(t *testing.T) {
	p := Empty()
	f := &ffbtypes.Frame{FFBIn: 0.5, TorqueOut: 0.0}
	if err := p.Process(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.TorqueOut != 0.5 {
		t.Fatalf("TorqueOut = %v, want 0.5", f.TorqueOut)
	}
	if p.NodeCount() != 0 {
		t.Fatalf("NodeCount() = %d, want 0", p.NodeCount())
	}
}

func TestCompile_ConfigHashIsDeterministic(t *testing.T) {
	cfg := ffbtypes.FilterConfig{
		ReconstructionOrder: 3,
		FrictionGain:        0.2,
		DamperGain:          0.1,
		InertiaGain:         0.05,
		Notches:             []ffbtypes.NotchSpec{{FrequencyHz: 60, Q: 2, GainDB: -10}},
		SlewRatePerTick:     0.3,
		CurvePoints:         []ffbtypes.CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}},
		TorqueCap:           0.9,
	}
	c := NewCompiler()

	p1, err := c.Compile(cfg.Clone())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.Compile(cfg.Clone())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.ConfigHash() != p2.ConfigHash() {
		t.Fatalf("config hashes differ for identical configs: %x vs %x", p1.ConfigHash(), p2.ConfigHash())
	}

	cfg2 := cfg.Clone()
	cfg2.FrictionGain = 0.9
	p3, err := c.Compile(cfg2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.ConfigHash() == p3.ConfigHash() {
		t.Fatalf("config hashes match for different configs")
	}
}

func TestCompile_RejectsNonMonotonicCurve(t *testing.T) {
	cfg := ffbtypes.FilterConfig{
		CurvePoints: []ffbtypes.CurvePoint{
			{X: 0, Y: 0}, {X: 0.7, Y: 0.6}, {X: 0.5, Y: 0.8}, {X: 1, Y: 1},
		},
	}
	_, err := NewCompiler().Compile(cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var e *enginerr.Error
	if !errors.As(err, &e) || e.Kind != enginerr.KindNonMonotonicCurve {
		t.Fatalf("err = %v, want KindNonMonotonicCurve", err)
	}
}

func TestCompile_RejectsOutOfRangeGain(t *testing.T) {
	cfg := ffbtypes.FilterConfig{FrictionGain: 1e6}
	_, err := NewCompiler().Compile(cfg)
	var e *enginerr.Error
	if !errors.As(err, &e) || e.Kind != enginerr.KindInvalidGain {
		t.Fatalf("err = %v, want KindInvalidGain", err)
	}
}

func TestCompile_OmitsZeroValuedOptionalNodes(t *testing.T) {
	p, err := NewCompiler().Compile(ffbtypes.FilterConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the always-present reconstruction node (order 0, a no-op).
	if p.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", p.NodeCount())
	}
}

func TestProcess_RecordsNodeOutputsAndReportsFault(t *testing.T) {
	cfg := ffbtypes.FilterConfig{TorqueCap: 0.5}
	p, err := NewCompiler().Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := &ffbtypes.Frame{FFBIn: 2.0}
	if err := p.Process(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.TorqueOut != 0.5 {
		t.Fatalf("TorqueOut = %v, want 0.5", f.TorqueOut)
	}
	if len(f.NodeOutputs) != p.NodeCount() {
		t.Fatalf("len(NodeOutputs) = %d, want %d", len(f.NodeOutputs), p.NodeCount())
	}

	bad := &ffbtypes.Frame{FFBIn: float32(math.NaN())}
	err = p.Process(bad)
	var e *enginerr.Error
	if !errors.As(err, &e) || e.Kind != enginerr.KindPipelineFault {
		t.Fatalf("err = %v, want KindPipelineFault", err)
	}
}

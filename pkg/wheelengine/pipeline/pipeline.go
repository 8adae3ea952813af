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

// Package pipeline implements the Compiled Pipeline and Pipeline Compiler
// from spec §4.2-4.3: an immutable, ordered sequence of filter nodes with
// pre-allocated per-node state, processed with zero allocations per tick,
// plus the off-thread compiler that builds one from a validated
// FilterConfig.
package pipeline

import (
	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/pkg/wheelengine/ffbtypes"
	"wheelengine/pkg/wheelengine/filters"
)

// namedNode pairs a node's thin handle with a name used for PipelineFault
// attribution and diagnostics; the name is read only when an error is being
// built, so it costs nothing on the hot path.
type namedNode struct {
	name string
	fn   filters.Node
}

// CompiledPipeline is the RT scheduler's exclusive, immutable view of one
// configuration. It is never mutated in place: a new configuration produces
// a wholesale new CompiledPipeline that the Apply Coordinator swaps in.
type CompiledPipeline struct {
	nodes      []namedNode
	configHash uint64
	stateBytes int
}

// ConfigHash is a pure function of the FilterConfig this pipeline was built
// from: identical configs produce identical hashes bit-for-bit (spec §3).
func (p *CompiledPipeline) ConfigHash() uint64 { return p.configHash }

// NodeCount returns the number of filter nodes in the pipeline.
func (p *CompiledPipeline) NodeCount() int { return len(p.nodes) }

// StateSizeBytes returns the approximate size of the pre-allocated per-node
// state, for ApplyOperationStats.
func (p *CompiledPipeline) StateSizeBytes() int { return p.stateBytes }

// Process runs every node in the fixed compiled order against f. On success
// f.NodeOutputs holds one recorded TorqueOut sample per node (reusing its
// backing array; no allocation once warmed up). On failure it returns a
// PipelineFault-kind *enginerr.Error identifying the offending node and
// leaves f.TorqueOut as the failing node left it — the
// caller (RT scheduler) is responsible for then reporting the fault and
// emitting 0 Nm for the tick.
func (p *CompiledPipeline) Process(f *ffbtypes.Frame) error {
	// Base passthrough: every pipeline, including the zero-node one, starts
	// torque_out from ffb_in (spec §8 scenario 1). Filter nodes run from
	// here and may further transform torque_out (the reconstruction node
	// additionally re-seeds it from its own reconstructed ffb_in).
	f.TorqueOut = f.FFBIn

	if cap(f.NodeOutputs) < len(p.nodes) {
		f.NodeOutputs = make([]float32, len(p.nodes))
	}
	f.NodeOutputs = f.NodeOutputs[:len(p.nodes)]
	for i, n := range p.nodes {
		if err := n.fn(f); err != nil {
			return enginerr.New(enginerr.KindPipelineFault, n.name, err)
		}
		f.NodeOutputs[i] = f.TorqueOut
	}

	// The cap node only runs when the config set a TorqueCap; every pipeline
	// still owes the caller the normalized-output invariant (spec §8 property
	// 1: |torque_out| <= 1.0 on success), so clamp unconditionally here.
	if f.TorqueOut > 1.0 {
		f.TorqueOut = 1.0
	} else if f.TorqueOut < -1.0 {
		f.TorqueOut = -1.0
	}
	return nil
}

// Empty returns a zero-node pipeline: Process copies FFBIn into TorqueOut,
// clamped to [-1, 1] (spec §8 scenario 1, passthrough).
func Empty() *CompiledPipeline {
	return &CompiledPipeline{configHash: canonicalHash(ffbtypes.FilterConfig{})}
}

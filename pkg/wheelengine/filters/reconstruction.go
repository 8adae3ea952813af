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

// ReconstructionState is the N-tap ring buffer backing the reconstruction
// node. Order is clamped 0-8 at construction; the Pipeline Compiler does not
// validate ReconstructionOrder itself.
type ReconstructionState struct {
	taps [8]float32
	n    int
	head int
}

// NewReconstruction returns a node that replaces FFBIn with the mean of the
// last N FFBIn samples (an N-tap moving average whose unused taps start at
// zero; it does not interpolate or upsample), plus the state it closes over (exposed for
// diagnostics/state_size_bytes accounting, never mutated externally).
func NewReconstruction(order uint8) (Node, *ReconstructionState) {
	if order > 8 {
		order = 8
	}
	st := &ReconstructionState{n: int(order)}
	fn := func(f *ffbtypes.Frame) error {
		if st.n == 0 {
			f.TorqueOut = f.FFBIn
			return nil
		}
		st.taps[st.head] = f.FFBIn
		st.head = (st.head + 1) % st.n

		var sum float32
		for i := 0; i < st.n; i++ {
			sum += st.taps[i]
		}
		f.FFBIn = sum / float32(st.n)
		// Reconstruction runs first in the compiled order, so it re-seeds
		// TorqueOut from the reconstructed ffb_in rather than the raw one
		// the pipeline-level passthrough seeded it with.
		f.TorqueOut = f.FFBIn
		return checkFinite(f.FFBIn)
	}
	return fn, st
}

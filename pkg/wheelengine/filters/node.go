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

// Package filters implements the pure filter-node contract from spec §4.1:
// apply(&mut Frame, &mut State). Rather than a vtable of polymorphic filter
// objects, each node is a thin closure (a function pointer plus the pointer
// to its own captured, compile-time-sized state) — a Go closure value is
// exactly that pair, so the Compiled Pipeline can hold a flat slice of
// func(*Frame) error values with no per-call dynamic dispatch beyond one
// indirect call, and no allocation once the pipeline is built.
package filters

import (
	"fmt"
	"math"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// Node is the thin, stateless-at-the-call-site handle the Compiled Pipeline
// invokes once per tick. Any mutable per-node state is captured in the
// closure's environment at construction time.
type Node func(*ffbtypes.Frame) error

// ErrNonFinite is returned by a node when it would otherwise produce a
// non-finite intermediate torque value; the pipeline turns this into a
// PipelineFault for the tick (spec §4.1 edge cases).
var ErrNonFinite = fmt.Errorf("filters: non-finite intermediate value")

// checkFinite returns ErrNonFinite if v is NaN or ±Inf.
func checkFinite(v float32) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrNonFinite
	}
	return nil
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

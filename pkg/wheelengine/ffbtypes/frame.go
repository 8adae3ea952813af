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

// Package ffbtypes holds the fixed-layout value types that flow through the
// force-feedback hot path and the types used to describe and merge
// configuration for it. Nothing in this package allocates on access; all
// fields are plain value types so a Frame can live on the stack for the
// lifetime of one tick.
package ffbtypes

// Frame is the per-tick value passed by mutable reference through the
// filter pipeline. It is reused across ticks by the RT scheduler: no field
// here is ever heap-allocated fresh per tick.
type Frame struct {
	// FFBIn is the normalized force-feedback input in [-1, 1] from telemetry.
	FFBIn float32
	// TorqueOut is the normalized torque output in [-1, 1]; pipelines write
	// this field and the Safety Service clamps it before it becomes Nm.
	TorqueOut float32
	// WheelSpeed is the wheel's instantaneous angular speed, in rad/s.
	WheelSpeed float32
	// HandsOff reports whether the current telemetry sample indicates the
	// driver's hands are off the wheel.
	HandsOff bool
	// TSMonoNS is the monotonic timestamp of this tick, in nanoseconds.
	TSMonoNS uint64
	// Seq is the tick sequence number; strictly monotonic across ticks.
	Seq uint16

	// NodeOutputs holds one entry per filter node in the active pipeline,
	// recorded for Stream A (see blackbox). Its length is reset to 0 between
	// ticks and its backing array is reused; it is reallocated only when a
	// pipeline with more nodes than its capacity runs.
	NodeOutputs []float32
}

// Reset clears the frame for reuse, preserving the capacity of NodeOutputs.
func (f *Frame) Reset() {
	f.FFBIn = 0
	f.TorqueOut = 0
	f.WheelSpeed = 0
	f.HandsOff = false
	f.TSMonoNS = 0
	f.Seq = 0
	f.NodeOutputs = f.NodeOutputs[:0]
}

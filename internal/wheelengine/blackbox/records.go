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

// Package blackbox implements the Black-Box Recorder from spec §4.10: three
// independent streams (1 kHz frames, 60 Hz telemetry, event-driven health
// events), each written as a sequence of 4-byte little-endian
// length-prefixed records.
package blackbox

import "wheelengine/internal/wheelengine/safety"

// FrameRecord mirrors the RT Frame plus the context the Stream A writer
// attaches to it (per-node outputs, safety state, processing time).
type FrameRecord struct {
	TimestampNS    uint64 // relative to recording start
	FFBIn          float32
	TorqueOut      float32
	WheelSpeed     float32
	HandsOff       bool
	TSMonoNS       uint64
	Seq            uint16
	NodeOutputs    []float32
	SafetyState    safety.Kind
	SafetyFault    uint8 // valid only when SafetyState == safety.Faulted; ffbtypes.FaultKind value
	ProcessingTimeUS uint64
}

// TelemetryRecord mirrors the normalized telemetry record from spec §6.
type TelemetryRecord struct {
	TimestampNS uint64
	FFBScalar   float32
	RPM         float32
	SpeedMS     float32
	SlipRatio   float32
	Gear        int8
	CarID       string
	TrackID     string
}

// HealthEventRecord is one Stream C event.
type HealthEventRecord struct {
	TimestampNS uint64
	DeviceID    string
	EventType   string
	Context     string // free-form, e.g. small JSON blob; opaque to the writer/reader
}

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

package ffbtypes

import "time"

// DeviceCapabilities describes what a connected wheelbase supports, per the
// HID wire external interface in spec §6. The core uses these to decide
// tick-rate and fallback behavior; wire-level decoding of the capability
// report itself is out of scope (vendor-specific, external collaborator).
type DeviceCapabilities struct {
	SupportsPID             bool
	SupportsRawTorque1kHz   bool
	SupportsHealthStream    bool
	SupportsLEDBus          bool
	MaxTorqueNm             float32
	EncoderCPR              uint32
	MinReportPeriodUS       uint32
}

// BlackBoxHeader is the small, fixed header written once at the start of a
// black-box recording artifact, describing which streams follow.
type BlackBoxHeader struct {
	DeviceID          string
	RecordingStartUnixNS int64
	SessionID         [16]byte // UUIDv4
	StreamsPresent    StreamMask
}

// StreamMask is a bitmask of which of the three black-box streams are
// present in a given recording artifact.
type StreamMask uint8

const (
	StreamAPresent StreamMask = 1 << iota
	StreamBPresent
	StreamCPresent
)

// Has reports whether s is set in the mask.
func (m StreamMask) Has(s StreamMask) bool { return m&s != 0 }

// Now is overridable for deterministic tests, mirroring the teacher's
// plugin/tfd.Now seam.
var Now = func() time.Time { return time.Now() }

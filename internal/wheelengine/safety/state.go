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

// Package safety implements the Safety Service state machine: the sole
// authority over outgoing torque. Every path that can detect a fault (HID
// layer, watchdog, pipeline) reports into the same ReportFault entry point
// instead of mutating state directly, so Faulted is reached the same way no
// matter which component noticed the problem first.
package safety

import "wheelengine/pkg/wheelengine/ffbtypes"

// Kind names one node of the safety state machine.
type Kind int

const (
	SafeTorque Kind = iota
	HighTorqueChallenge
	AwaitingPhysicalAck
	HighTorqueActive
	Faulted
)

func (k Kind) String() string {
	switch k {
	case SafeTorque:
		return "safe_torque"
	case HighTorqueChallenge:
		return "high_torque_challenge"
	case AwaitingPhysicalAck:
		return "awaiting_physical_ack"
	case HighTorqueActive:
		return "high_torque_active"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// State is the full current state: Kind plus, when Kind is Faulted, which
// fault put it there.
type State struct {
	Kind  Kind
	Fault ffbtypes.FaultKind
}

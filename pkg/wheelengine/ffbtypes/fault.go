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

// FaultKind enumerates the safety-relevant fault categories. The set is
// closed: no open-ended string fault kinds, per spec §3.
type FaultKind int

const (
	FaultUsbStall FaultKind = iota
	FaultEncoderNaN
	FaultThermalLimit
	FaultOvercurrent
	FaultPluginOverrun
	FaultTimingViolation
	FaultSafetyInterlockViolation
	FaultHandsOffTimeout
	FaultPipelineFault
)

func (k FaultKind) String() string {
	switch k {
	case FaultUsbStall:
		return "UsbStall"
	case FaultEncoderNaN:
		return "EncoderNaN"
	case FaultThermalLimit:
		return "ThermalLimit"
	case FaultOvercurrent:
		return "Overcurrent"
	case FaultPluginOverrun:
		return "PluginOverrun"
	case FaultTimingViolation:
		return "TimingViolation"
	case FaultSafetyInterlockViolation:
		return "SafetyInterlockViolation"
	case FaultHandsOffTimeout:
		return "HandsOffTimeout"
	case FaultPipelineFault:
		return "PipelineFault"
	default:
		return "UnknownFault"
	}
}

// Severity ranks fault kinds 0 (informational) to 3 (critical), supplementing
// the bare enum in spec §3 with the policy metadata the original FMEA crate
// attaches to each fault type.
func (k FaultKind) Severity() uint8 {
	switch k {
	case FaultOvercurrent, FaultThermalLimit, FaultSafetyInterlockViolation:
		return 3
	case FaultEncoderNaN, FaultPipelineFault, FaultTimingViolation:
		return 2
	case FaultUsbStall, FaultPluginOverrun:
		return 1
	case FaultHandsOffTimeout:
		return 0
	default:
		return 2
	}
}

// RequiresImmediateResponse reports whether the fault's Severity is 2 or
// higher. It does not decide torque clamping: the Safety Service zeroes
// torque for every FaultKind once it is in Faulted.
func (k FaultKind) RequiresImmediateResponse() bool {
	return k.Severity() >= 2
}

// IsRecoverable reports whether an operator_clear transition out of Faulted
// is expected to be safe without a hardware power cycle.
func (k FaultKind) IsRecoverable() bool {
	switch k {
	case FaultOvercurrent, FaultThermalLimit:
		return false
	default:
		return true
	}
}

// DefaultMaxResponseTimeMS returns the default wall-clock budget a fault
// report of this kind is allowed before the Faulted transition must
// complete (spec §4.6 requires < 1ms for all kinds; this value is an
// informational per-kind target: 1 ms when RequiresImmediateResponse, else 5).
func (k FaultKind) DefaultMaxResponseTimeMS() uint64 {
	if k.RequiresImmediateResponse() {
		return 1
	}
	return 5
}

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

// Package enginerr defines the closed vocabulary of error kinds from spec
// §7 and a single error type that carries one. Callers match kinds with
// errors.Is against an *Error carrying the wanted Kind, or use errors.As and
// read the Kind field when they need to branch on the category rather than
// a specific wrapped error.
package enginerr

import "fmt"

// Kind is one of the fixed error categories from spec §7. The set is
// closed; do not add ad-hoc string kinds.
type Kind string

const (
	KindNonMonotonicCurve      Kind = "NonMonotonicCurve"
	KindInvalidGain            Kind = "InvalidGain"
	KindInvalidCurvePoint      Kind = "InvalidCurvePoint"
	KindPipelineFault          Kind = "PipelineFault"
	KindTorqueLimitExceeded    Kind = "TorqueLimitExceeded"
	KindDeviceDisconnected     Kind = "DeviceDisconnected"
	KindHidWriteStall          Kind = "HidWriteStall"
	KindTimingViolation        Kind = "TimingViolation"
	KindPluginOverrun          Kind = "PluginOverrun"
	KindIncompleteRecord       Kind = "IncompleteRecord"
	KindDeserializationFailure Kind = "DeserializationFailure"
)

// Error wraps a Kind and an optional underlying cause and context message.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Context != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &enginerr.Error{Kind: enginerr.KindInvalidGain}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error for kind with an optional formatted context.
func New(kind Kind, context string, cause error) *Error {
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Sentinel returns a bare, cause-less error of the given kind, suitable for
// use with errors.Is(err, enginerr.Sentinel(enginerr.KindNonMonotonicCurve)).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

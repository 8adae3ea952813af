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

import (
	"math"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// TickRateHz is the RT scheduler's fixed tick frequency (spec §1/§4.9),
// used to derive biquad coefficients from a notch's configured frequency.
const TickRateHz = 1000.0

// biquad is a single RBJ-cookbook peaking/notch section in Direct Form I,
// evaluated per sample. Coefficients are computed once at construction.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

func newBiquadNotch(freqHz, q, gainDB float64) biquad {
	if freqHz <= 0 {
		freqHz = 1
	}
	if q <= 0 {
		q = 0.707
	}
	w0 := 2 * math.Pi * freqHz / TickRateHz
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	a := math.Pow(10, gainDB/40)

	// Peaking EQ form (RBJ cookbook); a negative gainDB cuts around freqHz,
	// and gainDB=0 passes the signal through unchanged.
	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a

	return biquad{
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

func (b *biquad) process(x float64) float64 {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	b.x2 = b.x1
	b.x1 = x
	b.y2 = b.y1
	b.y1 = y
	return y
}

// NotchBankState holds the ordered biquad sections for the notch bank.
type NotchBankState struct {
	sections []biquad
}

// NewNotchBank builds an ordered chain of biquad notch/peak sections from
// the configured (frequency, Q, gain) triples, applied in the given order.
func NewNotchBank(specs []ffbtypes.NotchSpec) (Node, *NotchBankState) {
	st := &NotchBankState{sections: make([]biquad, len(specs))}
	for i, s := range specs {
		st.sections[i] = newBiquadNotch(float64(s.FrequencyHz), float64(s.Q), float64(s.GainDB))
	}
	fn := func(f *ffbtypes.Frame) error {
		v := float64(f.TorqueOut)
		for i := range st.sections {
			v = st.sections[i].process(v)
		}
		f.TorqueOut = float32(v)
		return checkFinite(f.TorqueOut)
	}
	return fn, st
}

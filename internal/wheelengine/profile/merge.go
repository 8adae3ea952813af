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

// Package profile implements the Profile Merge Engine from spec §9: a
// deterministic fold of up to four override levels (global, game, car,
// session) into one resolved Profile, plus a stable merge_hash of exactly
// the inputs that participated.
package profile

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// Engine merges Profiles in precedence order. It carries no state.
type Engine struct{}

// NewEngine returns a ready-to-use Engine.
func NewEngine() *Engine { return &Engine{} }

// Merge folds global, game, car, session (each optional via nil) into one
// resolved Profile. Precedence is session > car > game > global: a field set
// (non-nil) at a more specific level always wins over a less specific one,
// regardless of whether the less specific level also set it. Levels that are
// nil are skipped entirely and do not contribute to ProfilesMerged or the
// hash.
func (e *Engine) Merge(global, game, car, session *ffbtypes.Profile) ffbtypes.MergeResult {
	levels := []*ffbtypes.Profile{global, game, car, session}

	resolved := ffbtypes.BaseSettings{}
	merged := 0
	h := fnv.New64a()

	for _, p := range levels {
		if p == nil {
			continue
		}
		merged++
		writeProfileHeader(h, p.Scope)
		s := p.Settings

		if s.FFBGain != nil {
			resolved.FFBGain = s.FFBGain
			writeOptF32(h, "ffb_gain", s.FFBGain)
		}
		if s.DegreesOfRotation != nil {
			resolved.DegreesOfRotation = s.DegreesOfRotation
			writeOptF32(h, "degrees_of_rotation", s.DegreesOfRotation)
		}
		if s.TorqueCapNm != nil {
			resolved.TorqueCapNm = s.TorqueCapNm
			writeOptF32(h, "torque_cap_nm", s.TorqueCapNm)
		}
		if s.Filters != nil {
			f := s.Filters.Clone()
			resolved.Filters = &f
			writeFilterConfig(h, f)
		}
		if s.LEDHaptic != nil {
			led := *s.LEDHaptic
			resolved.LEDHaptic = &led
			writeLEDHaptic(h, led)
		}
	}

	return ffbtypes.MergeResult{
		Resolved:       ffbtypes.Profile{Scope: ffbtypes.ScopeSession, Settings: resolved},
		MergeHash:      h.Sum64(),
		ProfilesMerged: merged,
	}
}

func writeU64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeF32(h interface{ Write([]byte) (int, error) }, v float32) {
	writeU64(h, uint64(math.Float32bits(v)))
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	writeU64(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeProfileHeader(h interface{ Write([]byte) (int, error) }, scope ffbtypes.ProfileScope) {
	writeU64(h, uint64(scope))
}

// writeOptF32 records the field name (so distinct fields with the same value
// never collide) and presence before the value itself, so "not set" never
// hashes the same as "set to this value" (spec §9).
func writeOptF32(h interface{ Write([]byte) (int, error) }, field string, v *float32) {
	writeString(h, field)
	writeU64(h, 1) // present
	writeF32(h, *v)
}

func writeFilterConfig(h interface{ Write([]byte) (int, error) }, f ffbtypes.FilterConfig) {
	writeString(h, "filters")
	writeU64(h, uint64(f.ReconstructionOrder))
	writeF32(h, f.FrictionGain)
	writeF32(h, f.DamperGain)
	writeF32(h, f.InertiaGain)
	writeU64(h, uint64(len(f.Notches)))
	for _, n := range f.Notches {
		writeF32(h, n.FrequencyHz)
		writeF32(h, n.Q)
		writeF32(h, n.GainDB)
	}
	writeF32(h, f.SlewRatePerTick)
	writeU64(h, uint64(len(f.CurvePoints)))
	for _, p := range f.CurvePoints {
		writeF32(h, p.X)
		writeF32(h, p.Y)
	}
	writeF32(h, f.TorqueCap)
}

func writeLEDHaptic(h interface{ Write([]byte) (int, error) }, led ffbtypes.LEDHapticSettings) {
	writeString(h, "led_haptic")
	writeF32(h, led.LEDBrightness)
	writeF32(h, led.HapticGain)
}

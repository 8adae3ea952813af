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

package pipeline

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// canonicalHash FNV-1a hashes a FilterConfig over a fixed-field-order byte
// encoding so that two configs equal by value always hash identically,
// regardless of slice capacity or construction order (spec §3's config_hash,
// grounded on the teacher's HashKey/Hash128 canonicalization in
// plugin/tfd/types.go).
func canonicalHash(cfg ffbtypes.FilterConfig) uint64 {
	h := fnv.New64a()
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeF32 := func(v float32) { writeU64(uint64(math.Float32bits(v))) }

	writeU64(uint64(cfg.ReconstructionOrder))
	writeF32(cfg.FrictionGain)
	writeF32(cfg.DamperGain)
	writeF32(cfg.InertiaGain)

	writeU64(uint64(len(cfg.Notches)))
	for _, n := range cfg.Notches {
		writeF32(n.FrequencyHz)
		writeF32(n.Q)
		writeF32(n.GainDB)
	}

	writeF32(cfg.SlewRatePerTick)

	writeU64(uint64(len(cfg.CurvePoints)))
	for _, p := range cfg.CurvePoints {
		writeF32(p.X)
		writeF32(p.Y)
	}

	writeF32(cfg.TorqueCap)

	return h.Sum64()
}

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

// ProfileScope names the level of a Profile in the override hierarchy.
type ProfileScope int

const (
	ScopeGlobal ProfileScope = iota
	ScopeGame
	ScopeCar
	ScopeSession
)

func (s ProfileScope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeGame:
		return "game"
	case ScopeCar:
		return "car"
	case ScopeSession:
		return "session"
	default:
		return "unknown"
	}
}

// LEDHapticSettings is an optional extra settings block some profiles carry.
// A nil *LEDHapticSettings means "not set at this level" for merge purposes,
// distinct from a present-but-zero-valued struct.
type LEDHapticSettings struct {
	LEDBrightness float32
	HapticGain    float32
}

// BaseSettings holds the fields a Profile can override. Every field is a
// pointer so absence (nil) can be distinguished from an explicit zero value;
// the Profile Merge Engine and its canonicalizer depend on this distinction
// to keep merge_hash stable for "not set" vs "set to 0.0" (spec §9).
type BaseSettings struct {
	FFBGain           *float32
	DegreesOfRotation *float32
	TorqueCapNm       *float32
	Filters           *FilterConfig
	LEDHaptic         *LEDHapticSettings
}

// Profile is one level of the override hierarchy (global/game/car/session).
type Profile struct {
	Scope    ProfileScope
	Settings BaseSettings
}

// MergeResult is the transient output of the Profile Merge Engine: a fully
// resolved Profile plus a stable hash of the inputs that produced it.
type MergeResult struct {
	Resolved       Profile
	MergeHash      uint64
	ProfilesMerged int
}

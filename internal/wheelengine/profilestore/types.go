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

// Package profilestore persists the resolved output of the Profile Merge
// Engine so a device's last-known-good configuration survives a restart of
// the host process. A store is keyed by device id and is idempotent on
// merge_hash: re-persisting the same resolved profile for a device is a
// no-op, the same way the ratelimiter's commit persisters are idempotent on
// commit id.
package profilestore

import (
	"context"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

// StoredProfile is the adapter-facing shape for one device's resolved
// configuration.
type StoredProfile struct {
	DeviceID  string
	Resolved  ffbtypes.Profile
	MergeHash uint64
}

// Store persists and retrieves one StoredProfile per device id.
type Store interface {
	Persist(ctx context.Context, sp StoredProfile) error
	Load(ctx context.Context, deviceID string) (StoredProfile, bool, error)
}

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

package profilestore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process store with no durability, for tests and for
// running the engine without any external dependency configured.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]StoredProfile
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]StoredProfile)}
}

// Persist is idempotent on MergeHash: re-persisting the same hash for a
// device is a no-op.
func (m *MemoryStore) Persist(ctx context.Context, sp StoredProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byID[sp.DeviceID]; ok && existing.MergeHash == sp.MergeHash {
		return nil
	}
	m.byID[sp.DeviceID] = sp
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, deviceID string) (StoredProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sp, ok := m.byID[deviceID]
	return sp, ok, nil
}

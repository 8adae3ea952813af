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

// Package watchdog implements the per-plugin execution budget tracker from
// spec §4.8. Consecutive overruns past a configured budget arm a quarantine;
// once quarantined, a plugin stays quarantined for a cooldown window
// regardless of how it behaves during it, the same hysteresis shape the
// rate limiter's commit worker uses for its high/low watermark.
package watchdog

import (
	"sync"
	"time"
)

// entry is the per-plugin tracking state.
type entry struct {
	consecutiveOverruns int
	quarantinedUntil    time.Time // zero value means not quarantined
}

// Watchdog tracks wall-clock execution time per named plugin against a
// shared budget, quarantining names that overrun too many ticks in a row.
type Watchdog struct {
	mu      sync.RWMutex
	entries map[string]*entry

	budget            time.Duration
	overrunsToQuarantine int
	cooldown          time.Duration
	now               func() time.Time
}

// New returns a Watchdog with the given per-tick execution budget. A plugin
// is quarantined after overrunsToQuarantine consecutive overruns, for
// cooldown wall-clock time.
func New(budget time.Duration, overrunsToQuarantine int, cooldown time.Duration) *Watchdog {
	return &Watchdog{
		entries:              make(map[string]*entry),
		budget:               budget,
		overrunsToQuarantine: overrunsToQuarantine,
		cooldown:             cooldown,
		now:                  time.Now,
	}
}

// RecordExecution reports that name ran for d wall-clock time this tick. It
// returns true if this record should be treated as a fault signal — either
// because the plugin is already quarantined, or because this overrun just
// triggered quarantine.
func (w *Watchdog) RecordExecution(name string, d time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entries[name]
	if !ok {
		e = &entry{}
		w.entries[name] = e
	}

	now := w.now()
	if !e.quarantinedUntil.IsZero() {
		if now.Before(e.quarantinedUntil) {
			return true
		}
		// Cooldown elapsed: give the plugin a clean slate.
		e.quarantinedUntil = time.Time{}
		e.consecutiveOverruns = 0
	}

	if d <= w.budget {
		e.consecutiveOverruns = 0
		return false
	}

	e.consecutiveOverruns++
	if e.consecutiveOverruns >= w.overrunsToQuarantine {
		e.quarantinedUntil = now.Add(w.cooldown)
		return true
	}
	return false
}

// IsQuarantined reports whether name is currently quarantined. O(1).
func (w *Watchdog) IsQuarantined(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entries[name]
	if !ok {
		return false
	}
	return !e.quarantinedUntil.IsZero() && w.now().Before(e.quarantinedUntil)
}

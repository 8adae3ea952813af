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

// Package atomiccounters provides a lock-free metrics block safe to update
// from the RT tick path. Every Inc*/Record* operation is one sync/atomic add
// (RecordTorqueSaturation does at most two): no heap allocation, no
// syscalls, no blocking.
//
// Counters live on their own padded cache line so incrementing one never
// dirties the cache line backing another under concurrent access from the
// scheduler goroutine and readers (UI, recorder, Prometheus exporter).
package atomiccounters

import "sync/atomic"

// padSize over-pads an atomic.Int64 (8 bytes) to a 64-byte cache line.
const padSize = 64 - 8

type counter struct {
	v atomic.Int64
	_ [padSize]byte
}

func (c *counter) add(n int64)     { c.v.Add(n) }
func (c *counter) load() int64     { return c.v.Load() }
func (c *counter) store(n int64)   { c.v.Store(n) }
func (c *counter) swap(n int64) int64 { return c.v.Swap(n) }

// Snapshot is a point-in-time read of every counter. It never resets the
// underlying state; see Counters.Snapshot and Counters.SnapshotAndReset.
type Snapshot struct {
	TotalTicks                 int64
	MissedTicks                int64
	SafetyEvents                int64
	ProfileSwitches             int64
	TelemetryPacketsReceived    int64
	TelemetryPacketsLost        int64
	TorqueSaturationSamples     int64
	TorqueSaturationCount       int64
	HIDWriteErrors              int64
}

// Counters is the RT-safe metrics block named in spec §4.11. All methods are
// safe to call concurrently from the scheduler goroutine and from background
// workers (watchdog, HID layer, telemetry ingest).
type Counters struct {
	totalTicks              counter
	missedTicks             counter
	safetyEvents            counter
	profileSwitches         counter
	telemetryPacketsRecv    counter
	telemetryPacketsLost    counter
	torqueSaturationSamples counter
	torqueSaturationCount   counter
	hidWriteErrors          counter
}

// New returns a zeroed Counters block.
func New() *Counters { return &Counters{} }

// IncTick records one completed RT tick.
func (c *Counters) IncTick() { c.totalTicks.add(1) }

// IncMissedTick records one tick that missed its deadline and was not
// caught up (spec §4.9: missed ticks are never replayed).
func (c *Counters) IncMissedTick() { c.missedTicks.add(1) }

// IncSafetyEvent records one Safety Service state transition.
func (c *Counters) IncSafetyEvent() { c.safetyEvents.add(1) }

// IncProfileSwitch records one completed pipeline swap at a tick boundary.
func (c *Counters) IncProfileSwitch() { c.profileSwitches.add(1) }

// RecordTelemetryReceived records n telemetry packets successfully sampled
// from the ingest queue.
func (c *Counters) RecordTelemetryReceived(n int64) {
	if n > 0 {
		c.telemetryPacketsRecv.add(n)
	}
}

// RecordTelemetryLost records n telemetry packets dropped by the bounded
// ingest channel (slow consumer, per spec §6).
func (c *Counters) RecordTelemetryLost(n int64) {
	if n > 0 {
		c.telemetryPacketsLost.add(n)
	}
}

// RecordTorqueSaturation records one tick's clamp decision: saturated
// reports whether |delivered| hit the active cap.
func (c *Counters) RecordTorqueSaturation(saturated bool) {
	c.torqueSaturationSamples.add(1)
	if saturated {
		c.torqueSaturationCount.add(1)
	}
}

// IncHIDWriteError records one non-blocking HID write failure/stall.
func (c *Counters) IncHIDWriteError() { c.hidWriteErrors.add(1) }

// Snapshot reads every counter without resetting it. Safe to call from any
// goroutine at any rate; reads are individually atomic but not mutually
// consistent with each other (acceptable for eventually-consistent metrics).
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		TotalTicks:               c.totalTicks.load(),
		MissedTicks:              c.missedTicks.load(),
		SafetyEvents:             c.safetyEvents.load(),
		ProfileSwitches:          c.profileSwitches.load(),
		TelemetryPacketsReceived: c.telemetryPacketsRecv.load(),
		TelemetryPacketsLost:     c.telemetryPacketsLost.load(),
		TorqueSaturationSamples:  c.torqueSaturationSamples.load(),
		TorqueSaturationCount:    c.torqueSaturationCount.load(),
		HIDWriteErrors:           c.hidWriteErrors.load(),
	}
}

// SnapshotAndReset atomically swaps every counter to zero and returns the
// pre-reset values. This is a non-RT operation (it touches every field) and
// must not be called from the tick path.
func (c *Counters) SnapshotAndReset() Snapshot {
	return Snapshot{
		TotalTicks:               c.totalTicks.swap(0),
		MissedTicks:              c.missedTicks.swap(0),
		SafetyEvents:             c.safetyEvents.swap(0),
		ProfileSwitches:          c.profileSwitches.swap(0),
		TelemetryPacketsReceived: c.telemetryPacketsRecv.swap(0),
		TelemetryPacketsLost:     c.telemetryPacketsLost.swap(0),
		TorqueSaturationSamples:  c.torqueSaturationSamples.swap(0),
		TorqueSaturationCount:    c.torqueSaturationCount.swap(0),
		HIDWriteErrors:           c.hidWriteErrors.swap(0),
	}
}

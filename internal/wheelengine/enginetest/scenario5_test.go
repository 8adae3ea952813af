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

// Package enginetest holds top-level integration tests that exercise real
// goroutines and channels across package boundaries, rather than mocking
// concurrency within a single package's test file.
package enginetest

import (
	"sync"
	"testing"
	"time"

	"wheelengine/internal/wheelengine/applycoordinator"
	"wheelengine/internal/wheelengine/blackbox"
	"wheelengine/internal/wheelengine/rtscheduler"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/internal/wheelengine/virtualdevice"
	"wheelengine/pkg/atomiccounters"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

type sweepTelemetry struct{ n int }

func (s *sweepTelemetry) TryRecv() (rtscheduler.TelemetrySample, bool) {
	s.n++
	return rtscheduler.TelemetrySample{FFBScalar: 0.2, Speed: 10}, true
}

// TestScenario5_ConcurrentAppliesAgainstRunningTicks runs 1000 real RT ticks
// on its own goroutine while 10 concurrent goroutines each submit a profile
// apply through the Apply Coordinator, against a virtual device and a Stream
// A recorder, matching spec.md §8 scenario 5. It checks that every apply
// resolves successfully, that exactly 1000 ticks are counted, and that the
// device is still connected afterwards.
func TestScenario5_ConcurrentAppliesAgainstRunningTicks(t *testing.T) {
	coordinator := applycoordinator.New(16)
	defer coordinator.Stop()

	safetySvc := safety.NewService(8.0, 20.0, 2*time.Second, 5*time.Second)
	counters := atomiccounters.New()
	device := virtualdevice.New("dev-1", "Scenario 5 Device")
	recorder := blackbox.NewStreamA()

	sched := rtscheduler.New(rtscheduler.Options{
		Coordinator:       coordinator,
		Safety:            safetySvc,
		Counters:          counters,
		Telemetry:         &sweepTelemetry{},
		HID:               device,
		Recorder:          recorder,
		DeviceMaxTorqueNm: 20.0,
	})

	const ticks = 1000
	const applies = 10

	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		for i := 0; i < ticks; i++ {
			sched.Tick()
		}
	}()

	var wg sync.WaitGroup
	results := make([]ffbtypes.ApplyResult, applies)
	wg.Add(applies)
	for i := 0; i < applies; i++ {
		i := i
		go func() {
			defer wg.Done()
			gain := float32(i) / 100
			_, resultCh := coordinator.RequestApply(ffbtypes.FilterConfig{FrictionGain: gain, TorqueCap: 1.0}, uint64(i))
			results[i] = <-resultCh
		}()
	}
	wg.Wait()
	<-tickDone

	for i, res := range results {
		if !res.Success {
			t.Fatalf("apply %d failed: %s", i, res.Error)
		}
	}

	snap := counters.Snapshot()
	if snap.TotalTicks != ticks {
		t.Fatalf("TotalTicks = %d, want %d", snap.TotalTicks, ticks)
	}

	tel, ok := device.ReadTelemetry()
	if !ok {
		t.Fatal("expected device to remain connected throughout")
	}
	_ = tel
}

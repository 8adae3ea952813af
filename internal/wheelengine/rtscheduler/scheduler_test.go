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

package rtscheduler

import (
	"math"
	"sync"
	"testing"
	"time"

	"wheelengine/internal/wheelengine/applycoordinator"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/pkg/atomiccounters"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

type fixedTelemetry struct{ sample TelemetrySample }

func (f fixedTelemetry) TryRecv() (TelemetrySample, bool) { return f.sample, true }

type recordingHID struct {
	mu      sync.Mutex
	reports []float32
}

func (r *recordingHID) WriteFFBReport(torqueNm float32, seq uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, torqueNm)
	return nil
}

type countingRecorder struct {
	mu    sync.Mutex
	count int
}

func (c *countingRecorder) RecordFrame(f ffbtypes.Frame, st safety.State, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func newTestScheduler(t *testing.T) (*Scheduler, *recordingHID, *countingRecorder) {
	t.Helper()
	coord := applycoordinator.New(4)
	t.Cleanup(coord.Stop)

	svc := safety.NewService(5.0, 20.0, time.Second, time.Second)
	counters := &atomiccounters.Counters{}
	hid := &recordingHID{}
	rec := &countingRecorder{}

	sched := New(Options{
		Coordinator:       coord,
		Safety:            svc,
		Counters:          counters,
		Telemetry:         fixedTelemetry{sample: TelemetrySample{FFBScalar: 0.5}},
		HID:               hid,
		Recorder:          rec,
		DeviceMaxTorqueNm: 20.0,
	})
	return sched, hid, rec
}

func TestTick_ProducesFiniteHIDWrite(t *testing.T) {
	sched, hid, rec := newTestScheduler(t)
	sched.Tick()

	if len(hid.reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(hid.reports))
	}
	if r := float64(hid.reports[0]); math.IsNaN(r) || math.IsInf(r, 0) {
		t.Fatalf("report = %v, want a finite torque", r)
	}
	if rec.count != 1 {
		t.Fatalf("recorder.count = %d, want 1", rec.count)
	}
}

func TestTick_RunsRepeatedlyWithoutError(t *testing.T) {
	sched, hid, _ := newTestScheduler(t)
	for i := 0; i < 1000; i++ {
		sched.Tick()
	}
	if len(hid.reports) != 1000 {
		t.Fatalf("len(reports) = %d, want 1000", len(hid.reports))
	}
}

func TestTick_ConcurrentAppliesDuringTicks(t *testing.T) {
	sched, _, _ := newTestScheduler(t)

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		gain := float32(i) / 100
		go func() {
			defer wg.Done()
			_, resultCh := sched.coordinator.RequestApply(ffbtypes.FilterConfig{FrictionGain: gain}, 0)
			<-resultCh
		}()
	}

	for i := 0; i < 1000; i++ {
		sched.Tick()
	}
	wg.Wait()

	stats := sched.coordinator.Stats()
	if stats.TotalApplies != 10 || stats.SuccessfulApplies != 10 {
		t.Fatalf("stats = %+v, want 10 total/successful", stats)
	}
}

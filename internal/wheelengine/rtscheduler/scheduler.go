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

// Package rtscheduler implements the 1 kHz RT Scheduler from spec §4.9: the
// single cooperative thread that samples telemetry, runs the active
// Compiled Pipeline, clamps through the Safety Service, and emits a torque
// command, in that fixed order, every tick.
package rtscheduler

import (
	"time"

	"wheelengine/internal/wheelengine/applycoordinator"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/pkg/atomiccounters"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

// TelemetrySample is the normalized, per-tick telemetry value the scheduler
// consumes. Parsing vendor/game-specific telemetry into this shape is out
// of scope (spec §1); TelemetrySource implementations own that.
type TelemetrySample struct {
	FFBScalar float32
	Speed     float32
	HandsOff  bool
}

// TelemetrySource is a non-blocking, bounded telemetry ingest queue. A slow
// or absent producer must never stall the RT thread: TryRecv returns
// ok=false rather than blocking when nothing is available.
type TelemetrySource interface {
	TryRecv() (sample TelemetrySample, ok bool)
}

// HIDWriter emits one torque command. It must not block; a write that
// cannot complete immediately should return an error rather than stalling,
// so the scheduler can report UsbStall and move on.
type HIDWriter interface {
	WriteFFBReport(torqueNm float32, seq uint16) error
}

// FrameRecorder is the Stream A tap the scheduler feeds every tick. A nil
// Recorder field on Scheduler disables recording without changing tick
// behavior.
type FrameRecorder interface {
	RecordFrame(f ffbtypes.Frame, safetyState safety.State, processingTime time.Duration)
}

// Options configures a Scheduler.
type Options struct {
	Coordinator       *applycoordinator.Coordinator
	Safety            *safety.Service
	Counters          *atomiccounters.Counters
	Telemetry         TelemetrySource
	HID               HIDWriter
	Recorder          FrameRecorder
	DeviceMaxTorqueNm float32
	TickBudget        time.Duration // TimingViolation threshold; 0 disables the check
}

// Scheduler drives one tick at a time. It keeps no goroutine of its own;
// Run loops synchronously and Tick can also be called directly, which is
// what the deterministic simulation harness and tests do.
type Scheduler struct {
	coordinator *applycoordinator.Coordinator
	safety      *safety.Service
	counters    *atomiccounters.Counters
	telemetry   TelemetrySource
	hid         HIDWriter
	recorder    FrameRecorder

	deviceMaxTorqueNm float32
	tickBudget        time.Duration
	tickPeriod        time.Duration

	frame ffbtypes.Frame // reused every tick; NodeOutputs keeps its capacity across Reset calls

	seq            uint16
	lastFFBIn      float32
	lastSpeed      float32
	lastHandsOff   bool
	lastTickAt     time.Time
	haveLastTickAt bool
}

// New constructs a Scheduler from opts. TickBudget of 0 disables the
// TimingViolation check.
func New(opts Options) *Scheduler {
	return &Scheduler{
		coordinator:       opts.Coordinator,
		safety:            opts.Safety,
		counters:          opts.Counters,
		telemetry:         opts.Telemetry,
		hid:               opts.HID,
		recorder:          opts.Recorder,
		deviceMaxTorqueNm: opts.DeviceMaxTorqueNm,
		tickBudget:        opts.TickBudget,
		tickPeriod:        time.Millisecond,
	}
}

// monoEpoch anchors Frame.TSMonoNS: time.Time.Sub uses the monotonic clock
// reading, so tick timestamps never jump with wall-clock adjustments.
var monoEpoch = time.Now()

// Tick runs exactly one iteration of the scheduler loop: telemetry sample,
// Frame build, pipeline swap/run, safety clamp, HID write, recorder tap,
// counters update. It never panics and never blocks.
func (s *Scheduler) Tick() {
	tickStart := time.Now()
	s.trackMissedTicks(tickStart)

	if sample, ok := s.telemetry.TryRecv(); ok {
		s.lastFFBIn = sample.FFBScalar
		s.lastSpeed = sample.Speed
		s.lastHandsOff = sample.HandsOff
		s.counters.RecordTelemetryReceived(1)
	}

	s.seq++
	s.frame.Reset()
	s.frame.FFBIn = s.lastFFBIn
	s.frame.WheelSpeed = s.lastSpeed
	s.frame.HandsOff = s.lastHandsOff
	s.frame.TSMonoNS = uint64(tickStart.Sub(monoEpoch))
	s.frame.Seq = s.seq

	active := s.coordinator.Active()
	if err := active.Process(&s.frame); err != nil {
		// Process only ever returns a KindPipelineFault *enginerr.Error
		// (see pkg/wheelengine/pipeline.Process); the Compiled Pipeline
		// itself is pre-validated at compile time, so there is no other
		// fault kind to distinguish here.
		s.safety.ReportFault(ffbtypes.FaultPipelineFault)
		s.frame.TorqueOut = 0
	}

	requestedNm := s.frame.TorqueOut * s.deviceMaxTorqueNm
	deliveredNm := s.safety.Clamp(requestedNm)
	s.counters.RecordTorqueSaturation(deliveredNm != requestedNm)

	if err := s.hid.WriteFFBReport(deliveredNm, s.seq); err != nil {
		s.counters.IncHIDWriteError()
		s.safety.ReportFault(ffbtypes.FaultUsbStall)
	}

	processingTime := time.Since(tickStart)
	if s.recorder != nil {
		s.recorder.RecordFrame(s.frame, s.safety.State(), processingTime)
	}

	if s.tickBudget > 0 && processingTime > s.tickBudget {
		s.safety.ReportFault(ffbtypes.FaultTimingViolation)
	}

	s.safety.CheckTimeouts()
	s.counters.IncTick()
	s.lastTickAt = tickStart
	s.haveLastTickAt = true
}

// Run drives Tick on a 1 kHz ticker until stopCh is closed.
func (s *Scheduler) Run(stopCh <-chan struct{}) {
	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-stopCh:
			return
		}
	}
}

func (s *Scheduler) trackMissedTicks(tickStart time.Time) {
	if !s.haveLastTickAt {
		return
	}
	expected := s.lastTickAt.Add(s.tickPeriod)
	if tickStart.Before(expected) {
		return
	}
	missed := int64(tickStart.Sub(expected) / s.tickPeriod)
	for i := int64(0); i < missed; i++ {
		s.counters.IncMissedTick()
	}
}

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

package blackbox

import (
	"errors"
	"testing"
	"time"

	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

func TestStreamA_RoundTrip(t *testing.T) {
	s := NewStreamA()
	for i := 0; i < 5; i++ {
		f := ffbtypes.Frame{
			FFBIn:       float32(i) * 0.1,
			TorqueOut:   float32(i) * 0.05,
			WheelSpeed:  float32(i),
			TSMonoNS:    uint64(i) * 1_000_000,
			Seq:         uint16(i),
			NodeOutputs: []float32{float32(i) * 0.01},
		}
		s.RecordFrame(f, safety.State{Kind: safety.SafeTorque}, 100*time.Microsecond)
	}
	if s.RecordCount() != 5 {
		t.Fatalf("RecordCount() = %d, want 5", s.RecordCount())
	}

	data := s.Drain()
	if s.RecordCount() != 0 {
		t.Fatal("records remain buffered after Drain")
	}

	r := NewReader(data)
	n := 0
	for {
		rec, ok, err := r.ReadFrameRecord()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		if rec.Seq != uint16(n) {
			t.Fatalf("record %d: Seq = %d, want %d", n, rec.Seq, n)
		}
		n++
	}
	if n != 5 {
		t.Fatalf("read %d records, want 5", n)
	}
	if !r.IsAtEnd() {
		t.Fatal("reader not at end after consuming all records")
	}
}

func TestStreamA_TrailingByteFailsWithIncompleteRecord(t *testing.T) {
	s := NewStreamA()
	s.RecordFrame(ffbtypes.Frame{}, safety.State{Kind: safety.SafeTorque}, 0)
	data := append(s.Drain(), 0xFF)

	r := NewReader(data)
	if _, _, err := r.ReadFrameRecord(); err != nil {
		t.Fatalf("first record: unexpected error: %v", err)
	}
	_, _, err := r.ReadFrameRecord()
	var e *enginerr.Error
	if !errors.As(err, &e) || e.Kind != enginerr.KindIncompleteRecord {
		t.Fatalf("err = %v, want KindIncompleteRecord", err)
	}
}

func TestStreamB_RateLimiting(t *testing.T) {
	fakeNow := time.Now()
	s := NewStreamB(1000.0) // 1kHz for a tight deterministic test
	s.now = func() time.Time { return fakeNow }

	if !s.RecordTelemetry(TelemetryRecord{FFBScalar: 1.0}) {
		t.Fatal("first record was rate-limited")
	}
	if s.RecordTelemetry(TelemetryRecord{FFBScalar: 1.0}) {
		t.Fatal("immediate second record was not rate-limited")
	}
	fakeNow = fakeNow.Add(2 * time.Millisecond)
	if !s.RecordTelemetry(TelemetryRecord{FFBScalar: 1.0}) {
		t.Fatal("record after interval elapsed was rate-limited")
	}
}

func TestStreamC_HealthEvents(t *testing.T) {
	s := NewStreamC()
	s.RecordHealthEvent(HealthEventRecord{DeviceID: "dev-1", EventType: "DeviceConnected"})
	if s.RecordCount() != 1 {
		t.Fatalf("RecordCount() = %d, want 1", s.RecordCount())
	}

	r := NewReader(s.Drain())
	rec, ok, err := r.ReadHealthEventRecord()
	if err != nil || !ok {
		t.Fatalf("ReadHealthEventRecord() = %+v, %v, %v", rec, ok, err)
	}
	if rec.DeviceID != "dev-1" || rec.EventType != "DeviceConnected" {
		t.Fatalf("rec = %+v", rec)
	}
}

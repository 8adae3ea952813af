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

package virtualdevice

import (
	"errors"
	"math"
	"testing"
	"time"

	"wheelengine/internal/wheelengine/enginerr"
)

func TestWriteFFBReport_RejectsWhenDisconnected(t *testing.T) {
	d := New("dev-1", "Disconnected Device")
	d.Disconnect()

	err := d.WriteFFBReport(10.0, 1)
	var e *enginerr.Error
	if !errors.As(err, &e) || e.Kind != enginerr.KindDeviceDisconnected {
		t.Fatalf("err = %v, want KindDeviceDisconnected", err)
	}
	if _, ok := d.ReadTelemetry(); ok {
		t.Fatal("expected ReadTelemetry ok=false when disconnected")
	}
}

func TestWriteFFBReport_EnforcesTorqueLimit(t *testing.T) {
	d := New("dev-1", "Torque Limit Test")
	cases := []struct {
		torque  float32
		wantErr bool
	}{
		{0.0, false}, {10.0, false}, {25.0, false}, {-25.0, false},
		{30.0, true}, {-30.0, true},
		{float32(math.NaN()), true}, {float32(math.Inf(1)), true},
	}
	for i, c := range cases {
		err := d.WriteFFBReport(c.torque, uint16(i))
		if c.wantErr && err == nil {
			t.Fatalf("case %d: torque=%v expected error, got nil", i, c.torque)
		}
		if !c.wantErr && err != nil {
			t.Fatalf("case %d: torque=%v unexpected error: %v", i, c.torque, err)
		}
	}
}

func TestSimulatePhysics_AcceleratesUnderConstantTorque(t *testing.T) {
	d := New("dev-1", "Physics Test")
	if err := d.WriteFFBReport(15.0, 1); err != nil {
		t.Fatalf("WriteFFBReport: %v", err)
	}
	before, _ := d.ReadTelemetry()
	for i := 0; i < 10; i++ {
		d.SimulatePhysics(10 * time.Millisecond)
	}
	after, _ := d.ReadTelemetry()

	if after.WheelSpeedRadS <= before.WheelSpeedRadS {
		t.Fatalf("speed did not increase: before=%v after=%v", before.WheelSpeedRadS, after.WheelSpeedRadS)
	}
	if after.WheelAngleDeg == before.WheelAngleDeg {
		t.Fatal("angle did not change under applied torque")
	}
	if after.TemperatureC < before.TemperatureC {
		t.Fatalf("temperature decreased: before=%d after=%d", before.TemperatureC, after.TemperatureC)
	}
}

func TestFaultInjection_OrsAndClears(t *testing.T) {
	d := New("dev-1", "Fault Test")
	tel, _ := d.ReadTelemetry()
	if tel.FaultFlags != 0 {
		t.Fatalf("FaultFlags = %d, want 0", tel.FaultFlags)
	}

	d.InjectFault(FaultBitThermal)
	tel, _ = d.ReadTelemetry()
	if tel.FaultFlags != FaultBitThermal {
		t.Fatalf("FaultFlags = %d, want %d", tel.FaultFlags, FaultBitThermal)
	}

	d.InjectFault(FaultBitEncoder)
	tel, _ = d.ReadTelemetry()
	if tel.FaultFlags != FaultBitThermal|FaultBitEncoder {
		t.Fatalf("FaultFlags = %d, want %d", tel.FaultFlags, FaultBitThermal|FaultBitEncoder)
	}

	d.ClearFaults()
	tel, _ = d.ReadTelemetry()
	if tel.FaultFlags != 0 {
		t.Fatalf("FaultFlags = %d, want 0 after clear", tel.FaultFlags)
	}
}

func TestCapabilities_MatchesDefaultProfile(t *testing.T) {
	d := New("dev-1", "Capabilities Test")
	caps := d.Capabilities()
	if caps.SupportsPID {
		t.Fatal("SupportsPID should be false by default")
	}
	if !caps.SupportsRawTorque1kHz || !caps.SupportsHealthStream || !caps.SupportsLEDBus {
		t.Fatalf("capabilities = %+v, want all three true", caps)
	}
	if caps.MaxTorqueNm != 25.0 || caps.EncoderCPR != 10000 || caps.MinReportPeriodUS != 1000 {
		t.Fatalf("capabilities = %+v", caps)
	}
}

func TestTelemetry_StaysWithinPhysicalBounds(t *testing.T) {
	d := New("dev-1", "Telemetry Test")
	sequence := []float32{0, 5, 10, 15, 10, 5, 0, -5, -10, 0}
	for i, torque := range sequence {
		if err := d.WriteFFBReport(torque, uint16(i)); err != nil {
			t.Fatalf("WriteFFBReport: %v", err)
		}
		d.SimulatePhysics(10 * time.Millisecond)
		tel, ok := d.ReadTelemetry()
		if !ok {
			t.Fatal("expected ok=true while connected")
		}
		if math.Abs(float64(tel.WheelAngleDeg)) > maxAngleDeg {
			t.Fatalf("angle out of bounds: %v", tel.WheelAngleDeg)
		}
		if math.Abs(float64(tel.WheelSpeedRadS)) > maxSpeedRadS {
			t.Fatalf("speed out of bounds: %v", tel.WheelSpeedRadS)
		}
		if tel.TemperatureC < ambientTempC || tel.TemperatureC > maxTempC {
			t.Fatalf("temperature out of bounds: %v", tel.TemperatureC)
		}
	}
}

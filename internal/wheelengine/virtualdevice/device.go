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

// Package virtualdevice is a deterministic, in-process stand-in for a HID
// wheelbase: it satisfies the HIDWriter surface the RT scheduler drives a
// real device through (its telemetry is read with its own ReadTelemetry, not
// through TelemetrySource), runs a small physics model so
// telemetry responds to applied torque, and can be told to simulate faults
// or a disconnect. It exists so the rest of the engine can be exercised
// without physical hardware, the same role the teacher's demo commands play
// for the ratelimiter core.
package virtualdevice

import (
	"math"
	"sync"
	"time"

	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/internal/wheelengine/rtscheduler"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

// Fault bits, matching the fault_flags bitmask in the original telemetry
// frame (0x01 USB, 0x02 encoder, 0x04 thermal, 0x08 overcurrent, ...).
const (
	FaultBitUSB uint8 = 1 << iota
	FaultBitEncoder
	FaultBitThermal
	FaultBitOvercurrent
)

// Telemetry mirrors the subset of device state the virtual physics model
// tracks and a caller can read back for assertions.
type Telemetry struct {
	WheelAngleDeg  float32
	WheelSpeedRadS float32
	TemperatureC   int
	FaultFlags     uint8
	HandsOn        bool
}

const (
	maxAngleDeg     = 1080.0
	maxSpeedRadS    = 100.0
	ambientTempC    = 20
	maxTempC        = 100
	inertiaKgM2     = 0.05
	dampingNmPerRps = 0.6
	handsOnWindow   = 20 // samples of recent torque used for variance-based hands-on detection
)

// Device is a simulated wheelbase. The zero value is not usable; construct
// with New.
type Device struct {
	id          string
	name        string
	maxTorqueNm float32

	mu         sync.Mutex
	connected  bool
	angleDeg   float64
	speedRadS  float64
	tempC      float64
	faultFlags uint8
	seq        uint16
	recent     []float32 // ring of the last handsOnWindow torque writes
	recentPos  int
	lastTorque float32
}

// New returns a connected Device with the default capability profile
// (matches the original virtual device's 25 Nm / 10000 CPR / 1kHz defaults).
func New(id, name string) *Device {
	return &Device{
		id:          id,
		name:        name,
		maxTorqueNm: 25.0,
		connected:   true,
		tempC:       ambientTempC,
		recent:      make([]float32, handsOnWindow),
	}
}

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Name returns the human-readable device name.
func (d *Device) Name() string { return d.name }

// IsConnected reports whether the device currently accepts writes.
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Disconnect simulates a USB unplug: subsequent writes fail and telemetry
// reads return ok=false.
func (d *Device) Disconnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
}

// Reconnect undoes Disconnect.
func (d *Device) Reconnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
}

// Capabilities reports this device's fixed capability profile.
func (d *Device) Capabilities() ffbtypes.DeviceCapabilities {
	return ffbtypes.DeviceCapabilities{
		SupportsPID:           false,
		SupportsRawTorque1kHz: true,
		SupportsHealthStream:  true,
		SupportsLEDBus:        true,
		MaxTorqueNm:           d.maxTorqueNm,
		EncoderCPR:            10000,
		MinReportPeriodUS:     1000,
	}
}

// WriteFFBReport satisfies rtscheduler.HIDWriter. It rejects non-finite
// torque and torque exceeding the device's capability limit, and rejects
// any write once the device is disconnected.
func (d *Device) WriteFFBReport(torqueNm float32, seq uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return enginerr.New(enginerr.KindDeviceDisconnected, d.id, nil)
	}
	if math.IsNaN(float64(torqueNm)) || math.IsInf(float64(torqueNm), 0) {
		return enginerr.New(enginerr.KindTorqueLimitExceeded, "non-finite torque", nil)
	}
	if torqueNm > d.maxTorqueNm || torqueNm < -d.maxTorqueNm {
		return enginerr.New(enginerr.KindTorqueLimitExceeded, d.id, nil)
	}

	d.seq = seq
	d.lastTorque = torqueNm
	d.recent[d.recentPos%handsOnWindow] = torqueNm
	d.recentPos++
	return nil
}

var _ rtscheduler.HIDWriter = (*Device)(nil)

// ReadTelemetry returns the device's current simulated state, or ok=false if
// disconnected.
func (d *Device) ReadTelemetry() (Telemetry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return Telemetry{}, false
	}
	return Telemetry{
		WheelAngleDeg:  float32(d.angleDeg),
		WheelSpeedRadS: float32(d.speedRadS),
		TemperatureC:   int(d.tempC),
		FaultFlags:     d.faultFlags,
		HandsOn:        d.handsOnLocked(),
	}, true
}

// handsOnLocked estimates hands-on-wheel by the variance of recently
// written torque: a human driver's countersteering never holds a perfectly
// constant output the way an unattended wheel does.
func (d *Device) handsOnLocked() bool {
	var sum, sumSq float64
	n := 0
	for _, v := range d.recent {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
		n++
	}
	if n == 0 {
		return true
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	return variance > 1e-6 || d.recentPos < handsOnWindow
}

// SimulatePhysics advances the wheel's angle/speed/temperature by dt under
// the last applied torque, a simple single-inertia model with linear
// damping: enough to make telemetry respond plausibly to FFB output without
// claiming any particular wheelbase's real dynamics.
func (d *Device) SimulatePhysics(dt time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return
	}
	dtS := dt.Seconds()
	accel := (float64(d.lastTorque) - dampingNmPerRps*d.speedRadS) / inertiaKgM2
	d.speedRadS += accel * dtS
	if d.speedRadS > maxSpeedRadS {
		d.speedRadS = maxSpeedRadS
	} else if d.speedRadS < -maxSpeedRadS {
		d.speedRadS = -maxSpeedRadS
	}
	d.angleDeg += d.speedRadS * dtS * (180.0 / math.Pi)
	if d.angleDeg > maxAngleDeg {
		d.angleDeg = maxAngleDeg
		d.speedRadS = 0
	} else if d.angleDeg < -maxAngleDeg {
		d.angleDeg = -maxAngleDeg
		d.speedRadS = 0
	}
	if d.lastTorque != 0 && d.tempC < maxTempC {
		d.tempC += math.Abs(float64(d.lastTorque)) * 0.002 * dtS
	}
}

// InjectFault ORs flag into the device's fault_flags bitmask.
func (d *Device) InjectFault(flag uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faultFlags |= flag
}

// ClearFaults resets fault_flags to zero.
func (d *Device) ClearFaults() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faultFlags = 0
}

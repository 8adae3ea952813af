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
	"encoding/binary"
	"math"

	"wheelengine/internal/wheelengine/safety"
)

// The wire codec is a flat, fixed-field binary encoding (no schema, no
// reflection) in the same style as the teacher's HashKey/Hash128 canonical
// encoding in plugin/tfd/types.go: every record type has one hand-written
// encode and decode function, little-endian throughout.

func putU64(buf []byte, v uint64) []byte { return binary.LittleEndian.AppendUint64(buf, v) }
func putU32(buf []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(buf, v) }
func putF32(buf []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
}
func putString(buf []byte, s string) []byte {
	buf = putU32(buf, uint32(len(s)))
	return append(buf, s...)
}
func putBool(buf []byte, b bool) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) u64() (uint64, bool) {
	if r.pos+8 > len(r.data) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, true
}

func (r *byteReader) u32() (uint32, bool) {
	if r.pos+4 > len(r.data) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, true
}

func (r *byteReader) f32() (float32, bool) {
	v, ok := r.u32()
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}

func (r *byteReader) boolean() (bool, bool) {
	if r.pos+1 > len(r.data) {
		return false, false
	}
	v := r.data[r.pos] != 0
	r.pos++
	return v, true
}

func (r *byteReader) str() (string, bool) {
	n, ok := r.u32()
	if !ok {
		return "", false
	}
	if r.pos+int(n) > len(r.data) {
		return "", false
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, true
}

// appendFrameRecordFields appends rec's encoded fields onto buf and returns
// the result, the same way putU64/putF32/... already append in place. The
// caller supplies buf (StreamA's own pre-allocated backing array) so no
// intermediate slice is allocated per call.
func appendFrameRecordFields(buf []byte, rec FrameRecord) []byte {
	buf = putU64(buf, rec.TimestampNS)
	buf = putF32(buf, rec.FFBIn)
	buf = putF32(buf, rec.TorqueOut)
	buf = putF32(buf, rec.WheelSpeed)
	buf = putBool(buf, rec.HandsOff)
	buf = putU64(buf, rec.TSMonoNS)
	buf = putU32(buf, uint32(rec.Seq))
	buf = putU32(buf, uint32(len(rec.NodeOutputs)))
	for _, v := range rec.NodeOutputs {
		buf = putF32(buf, v)
	}
	buf = append(buf, byte(rec.SafetyState))
	buf = append(buf, rec.SafetyFault)
	buf = putU64(buf, rec.ProcessingTimeUS)
	return buf
}

func decodeFrameRecord(data []byte) (FrameRecord, bool) {
	r := &byteReader{data: data}
	var rec FrameRecord
	var ok bool
	if rec.TimestampNS, ok = r.u64(); !ok {
		return rec, false
	}
	if rec.FFBIn, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.TorqueOut, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.WheelSpeed, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.HandsOff, ok = r.boolean(); !ok {
		return rec, false
	}
	if rec.TSMonoNS, ok = r.u64(); !ok {
		return rec, false
	}
	seq, ok := r.u32()
	if !ok {
		return rec, false
	}
	rec.Seq = uint16(seq)
	n, ok := r.u32()
	if !ok {
		return rec, false
	}
	rec.NodeOutputs = make([]float32, n)
	for i := range rec.NodeOutputs {
		if rec.NodeOutputs[i], ok = r.f32(); !ok {
			return rec, false
		}
	}
	if r.pos+2 > len(r.data) {
		return rec, false
	}
	rec.SafetyState = safety.Kind(r.data[r.pos])
	rec.SafetyFault = r.data[r.pos+1]
	r.pos += 2
	if rec.ProcessingTimeUS, ok = r.u64(); !ok {
		return rec, false
	}
	return rec, true
}

func encodeTelemetryRecord(rec TelemetryRecord) []byte {
	buf := make([]byte, 0, 48+len(rec.CarID)+len(rec.TrackID))
	buf = putU64(buf, rec.TimestampNS)
	buf = putF32(buf, rec.FFBScalar)
	buf = putF32(buf, rec.RPM)
	buf = putF32(buf, rec.SpeedMS)
	buf = putF32(buf, rec.SlipRatio)
	buf = append(buf, byte(rec.Gear))
	buf = putString(buf, rec.CarID)
	buf = putString(buf, rec.TrackID)
	return buf
}

func decodeTelemetryRecord(data []byte) (TelemetryRecord, bool) {
	r := &byteReader{data: data}
	var rec TelemetryRecord
	var ok bool
	if rec.TimestampNS, ok = r.u64(); !ok {
		return rec, false
	}
	if rec.FFBScalar, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.RPM, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.SpeedMS, ok = r.f32(); !ok {
		return rec, false
	}
	if rec.SlipRatio, ok = r.f32(); !ok {
		return rec, false
	}
	if r.pos+1 > len(r.data) {
		return rec, false
	}
	rec.Gear = int8(r.data[r.pos])
	r.pos++
	if rec.CarID, ok = r.str(); !ok {
		return rec, false
	}
	if rec.TrackID, ok = r.str(); !ok {
		return rec, false
	}
	return rec, true
}

func encodeHealthEventRecord(rec HealthEventRecord) []byte {
	buf := make([]byte, 0, 32+len(rec.DeviceID)+len(rec.EventType)+len(rec.Context))
	buf = putU64(buf, rec.TimestampNS)
	buf = putString(buf, rec.DeviceID)
	buf = putString(buf, rec.EventType)
	buf = putString(buf, rec.Context)
	return buf
}

func decodeHealthEventRecord(data []byte) (HealthEventRecord, bool) {
	r := &byteReader{data: data}
	var rec HealthEventRecord
	var ok bool
	if rec.TimestampNS, ok = r.u64(); !ok {
		return rec, false
	}
	if rec.DeviceID, ok = r.str(); !ok {
		return rec, false
	}
	if rec.EventType, ok = r.str(); !ok {
		return rec, false
	}
	if rec.Context, ok = r.str(); !ok {
		return rec, false
	}
	return rec, true
}

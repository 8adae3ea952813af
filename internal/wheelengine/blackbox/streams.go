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
	"time"

	"wheelengine/internal/wheelengine/enginerr"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

func appendRecord(buf []byte, payload []byte) []byte {
	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(len(payload)))
	buf = append(buf, lenPrefix[:]...)
	return append(buf, payload...)
}

// StreamA is the RT hot-path writer: pre-allocated buffer, no locks, no
// allocation once warmed up (append onto a slice that already has
// sufficient capacity does not allocate).
type StreamA struct {
	buf       []byte
	startTime time.Time
	now       func() time.Time
}

// NewStreamA pre-allocates capacity for about one second of 1 kHz frames.
func NewStreamA() *StreamA {
	return &StreamA{
		buf:       make([]byte, 0, 1000*96),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RecordFrame appends one Stream A record directly onto s.buf: the length
// prefix is reserved and patched in place rather than built from a
// throwaway intermediate slice, so this call does not allocate once s.buf
// has warmed up to its steady-state capacity.
func (s *StreamA) RecordFrame(frame ffbtypes.Frame, st safety.State, processingTime time.Duration) {
	rec := FrameRecord{
		TimestampNS:      uint64(s.now().Sub(s.startTime).Nanoseconds()),
		FFBIn:            frame.FFBIn,
		TorqueOut:        frame.TorqueOut,
		WheelSpeed:       frame.WheelSpeed,
		HandsOff:         frame.HandsOff,
		TSMonoNS:         frame.TSMonoNS,
		Seq:              frame.Seq,
		NodeOutputs:      frame.NodeOutputs,
		SafetyState:      st.Kind,
		SafetyFault:      uint8(st.Fault),
		ProcessingTimeUS: uint64(processingTime.Microseconds()),
	}
	lenPos := len(s.buf)
	s.buf = append(s.buf, 0, 0, 0, 0)
	s.buf = appendFrameRecordFields(s.buf, rec)
	binary.LittleEndian.PutUint32(s.buf[lenPos:lenPos+4], uint32(len(s.buf)-lenPos-4))
}

// RecordCount reports how many records are currently buffered, by scanning
// length prefixes; intended for tests and diagnostics, not the hot path.
func (s *StreamA) RecordCount() int { return countRecords(s.buf) }

// Drain returns the buffered bytes and resets the internal buffer, keeping
// its backing array for reuse.
func (s *StreamA) Drain() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	s.buf = s.buf[:0]
	return out
}

// StreamB is the 60 Hz (configurable) rate-limited telemetry writer.
type StreamB struct {
	buf          []byte
	startTime    time.Time
	now          func() time.Time
	minInterval  time.Duration
	lastRecordAt time.Time
}

// NewStreamB creates a Stream B rate-limited to hz records per second.
func NewStreamB(hz float64) *StreamB {
	return &StreamB{
		buf:         make([]byte, 0, 16*1024),
		startTime:   time.Now(),
		now:         time.Now,
		minInterval: time.Duration(float64(time.Second) / hz),
	}
}

// RecordTelemetry appends a telemetry record if the minimum interval has
// elapsed since the last one, and reports whether it did.
func (s *StreamB) RecordTelemetry(rec TelemetryRecord) (accepted bool) {
	now := s.now()
	if !s.lastRecordAt.IsZero() && now.Sub(s.lastRecordAt) < s.minInterval {
		return false
	}
	rec.TimestampNS = uint64(now.Sub(s.startTime).Nanoseconds())
	s.buf = appendRecord(s.buf, encodeTelemetryRecord(rec))
	s.lastRecordAt = now
	return true
}

func (s *StreamB) RecordCount() int { return countRecords(s.buf) }

func (s *StreamB) Drain() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	s.buf = s.buf[:0]
	return out
}

// StreamC is the event-driven health/fault stream; no rate limiting.
type StreamC struct {
	buf       []byte
	startTime time.Time
	now       func() time.Time
}

func NewStreamC() *StreamC {
	return &StreamC{buf: make([]byte, 0, 16*1024), startTime: time.Now(), now: time.Now}
}

func (s *StreamC) RecordHealthEvent(rec HealthEventRecord) {
	rec.TimestampNS = uint64(s.now().Sub(s.startTime).Nanoseconds())
	s.buf = appendRecord(s.buf, encodeHealthEventRecord(rec))
}

func (s *StreamC) RecordCount() int { return countRecords(s.buf) }

func (s *StreamC) Drain() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	s.buf = s.buf[:0]
	return out
}

func countRecords(buf []byte) int {
	n := 0
	pos := 0
	for pos < len(buf) {
		if pos+4 > len(buf) {
			break
		}
		l := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4 + l
		n++
	}
	return n
}

// Reader parses a sequence of length-prefixed records, in order, from a
// single buffer of bytes (e.g. read back from a black-box file).
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential record reads.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// IsAtEnd reports whether every byte of data has been consumed.
func (r *Reader) IsAtEnd() bool { return r.pos >= len(r.data) }

// nextPayload reads one length-prefixed record's payload, or returns
// (nil, nil) at a clean end-of-data boundary.
func (r *Reader) nextPayload() ([]byte, error) {
	if r.pos >= len(r.data) {
		return nil, nil
	}
	if r.pos+4 > len(r.data) {
		return nil, enginerr.New(enginerr.KindIncompleteRecord, "length_prefix", nil)
	}
	l := int(binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4]))
	r.pos += 4
	if r.pos+l > len(r.data) {
		return nil, enginerr.New(enginerr.KindIncompleteRecord, "record_body", nil)
	}
	payload := r.data[r.pos : r.pos+l]
	r.pos += l
	return payload, nil
}

// ReadFrameRecord reads the next Stream A record, or (zero, false, nil) at
// end of data.
func (r *Reader) ReadFrameRecord() (FrameRecord, bool, error) {
	payload, err := r.nextPayload()
	if err != nil || payload == nil {
		return FrameRecord{}, false, err
	}
	rec, ok := decodeFrameRecord(payload)
	if !ok {
		return FrameRecord{}, false, enginerr.New(enginerr.KindDeserializationFailure, "frame_record", nil)
	}
	return rec, true, nil
}

// ReadTelemetryRecord reads the next Stream B record.
func (r *Reader) ReadTelemetryRecord() (TelemetryRecord, bool, error) {
	payload, err := r.nextPayload()
	if err != nil || payload == nil {
		return TelemetryRecord{}, false, err
	}
	rec, ok := decodeTelemetryRecord(payload)
	if !ok {
		return TelemetryRecord{}, false, enginerr.New(enginerr.KindDeserializationFailure, "telemetry_record", nil)
	}
	return rec, true, nil
}

// ReadHealthEventRecord reads the next Stream C record.
func (r *Reader) ReadHealthEventRecord() (HealthEventRecord, bool, error) {
	payload, err := r.nextPayload()
	if err != nil || payload == nil {
		return HealthEventRecord{}, false, err
	}
	rec, ok := decodeHealthEventRecord(payload)
	if !ok {
		return HealthEventRecord{}, false, enginerr.New(enginerr.KindDeserializationFailure, "health_event_record", nil)
	}
	return rec, true, nil
}

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
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventProducer is a minimal abstraction over a message broker client, kept
// independent of any specific Kafka library so callers can back it with
// whatever production client they already run.
type EventProducer interface {
	Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// EventBus forwards Stream C health/fault events to an external broker in
// parallel with local Stream C buffering, for operators who want health
// events fanned out live rather than only recoverable from a finalized
// black-box file.
type EventBus struct {
	producer EventProducer
	topic    string
	timeout  time.Duration
}

// NewEventBus returns an EventBus publishing to topic via producer.
func NewEventBus(producer EventProducer, topic string) *EventBus {
	return &EventBus{producer: producer, topic: topic, timeout: 5 * time.Second}
}

// healthEventMessage is the wire payload published to the broker; JSON
// rather than the stream's binary codec since external consumers are not
// expected to share this module's record types.
type healthEventMessage struct {
	TimestampNS uint64 `json:"timestamp_ns"`
	DeviceID    string `json:"device_id"`
	EventType   string `json:"event_type"`
	Context     string `json:"context,omitempty"`
}

// Publish forwards one health event. The device id is used as the
// partition key so consumers see one device's events in order.
func (b *EventBus) Publish(ctx context.Context, rec HealthEventRecord) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	payload, err := json.Marshal(healthEventMessage{
		TimestampNS: rec.TimestampNS,
		DeviceID:    rec.DeviceID,
		EventType:   rec.EventType,
		Context:     rec.Context,
	})
	if err != nil {
		return fmt.Errorf("marshal health event: %w", err)
	}
	headers := map[string]string{"content-type": "application/json"}
	if err := b.producer.Produce(ctx, b.topic, []byte(rec.DeviceID), payload, headers); err != nil {
		return fmt.Errorf("publish health event device=%s type=%s: %w", rec.DeviceID, rec.EventType, err)
	}
	return nil
}

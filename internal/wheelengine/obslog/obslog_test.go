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

package obslog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSnapshotter_LogsAtLeastOnceBeforeContextEnds(t *testing.T) {
	var buf bytes.Buffer
	orig := Default()
	SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetDefault(orig)

	calls := 0
	snap := NewSnapshotter(2*time.Millisecond, "tick_summary", func() []any {
		calls++
		return []any{"calls", calls}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap.Run(ctx)

	if calls == 0 {
		t.Fatal("expected at least one snapshot call")
	}
	if !strings.Contains(buf.String(), "tick_summary") {
		t.Fatalf("log output missing message: %q", buf.String())
	}
}

func TestSnapshotter_StopEndsRunPromptly(t *testing.T) {
	snap := NewSnapshotter(time.Millisecond, "x", func() []any { return nil })
	done := make(chan struct{})
	go func() {
		snap.Run(context.Background())
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	snap.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestForDevice_AttachesDeviceIDField(t *testing.T) {
	var buf bytes.Buffer
	orig := Default()
	SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetDefault(orig)

	ForDevice("wheel-7").Info("hello")
	if !strings.Contains(buf.String(), "device_id=wheel-7") {
		t.Fatalf("output missing device_id field: %q", buf.String())
	}
}

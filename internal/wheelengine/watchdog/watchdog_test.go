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

package watchdog

import (
	"testing"
	"time"
)

func TestRecordExecution_QuarantinesAfterKConsecutiveOverruns(t *testing.T) {
	w := New(100*time.Microsecond, 3, time.Second)
	name := "telemetry-adapter"

	if w.IsQuarantined(name) {
		t.Fatal("quarantined before any execution recorded")
	}
	for i := 0; i < 2; i++ {
		if fault := w.RecordExecution(name, 200*time.Microsecond); fault {
			t.Fatalf("overrun %d unexpectedly flagged as fault", i)
		}
	}
	if w.IsQuarantined(name) {
		t.Fatal("quarantined before reaching K overruns")
	}
	if fault := w.RecordExecution(name, 200*time.Microsecond); !fault {
		t.Fatal("third consecutive overrun did not signal fault")
	}
	if !w.IsQuarantined(name) {
		t.Fatal("not quarantined after K consecutive overruns")
	}
}

func TestRecordExecution_WithinBudgetResetsStreak(t *testing.T) {
	w := New(100*time.Microsecond, 3, time.Second)
	name := "plugin-a"

	w.RecordExecution(name, 200*time.Microsecond)
	w.RecordExecution(name, 50*time.Microsecond) // within budget, resets streak
	w.RecordExecution(name, 200*time.Microsecond)
	if w.IsQuarantined(name) {
		t.Fatal("quarantined despite streak reset")
	}
}

func TestIsQuarantined_ExpiresAfterCooldown(t *testing.T) {
	fakeNow := time.Now()
	w := New(100*time.Microsecond, 1, 10*time.Millisecond)
	w.now = func() time.Time { return fakeNow }

	w.RecordExecution("plugin-a", 200*time.Microsecond)
	if !w.IsQuarantined("plugin-a") {
		t.Fatal("not quarantined immediately after overrun")
	}
	fakeNow = fakeNow.Add(20 * time.Millisecond)
	if w.IsQuarantined("plugin-a") {
		t.Fatal("still quarantined after cooldown elapsed")
	}
}

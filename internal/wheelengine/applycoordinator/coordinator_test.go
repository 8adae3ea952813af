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

package applycoordinator

import (
	"sync"
	"testing"
	"time"

	"wheelengine/pkg/wheelengine/ffbtypes"
)

func TestRequestApply_SwapsActivePipeline(t *testing.T) {
	c := New(4)
	defer c.Stop()

	before := c.Active()
	_, resultCh := c.RequestApply(ffbtypes.FilterConfig{TorqueCap: 0.5}, 0)

	select {
	case res := <-resultCh:
		if !res.Success {
			t.Fatalf("apply failed: %s", res.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for apply result")
	}

	after := c.Active()
	if after == before {
		t.Fatal("active pipeline did not change after successful apply")
	}
}

func TestRequestApply_InvalidConfigReportsFailure(t *testing.T) {
	c := New(4)
	defer c.Stop()

	_, resultCh := c.RequestApply(ffbtypes.FilterConfig{
		CurvePoints: []ffbtypes.CurvePoint{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 0.2, Y: 0.5}},
	}, 0)

	res := <-resultCh
	if res.Success {
		t.Fatal("expected failure for non-monotonic curve")
	}
}

func TestRequestApply_ConcurrentAppliesAllComplete(t *testing.T) {
	c := New(16)
	defer c.Stop()

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		gain := float32(i) / 100
		go func() {
			defer wg.Done()
			_, resultCh := c.RequestApply(ffbtypes.FilterConfig{FrictionGain: gain}, 0)
			<-resultCh
		}()
	}
	wg.Wait()

	stats := c.Stats()
	if stats.TotalApplies != n {
		t.Fatalf("TotalApplies = %d, want %d", stats.TotalApplies, n)
	}
	if stats.PendingApplies != 0 {
		t.Fatalf("PendingApplies = %d, want 0", stats.PendingApplies)
	}
}

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

package ffbtypes

import "time"

// ApplyResult is the completion value delivered to the caller of an apply
// submission once the apply worker has stored the new pipeline; the RT
// scheduler picks it up at the start of its next tick.
type ApplyResult struct {
	Success           bool
	ConfigHash        uint64
	MergeHash         uint64
	Error             string
	SwapDuration      time.Duration
	CompilationTime   time.Duration
	PipelineTotalTime time.Duration
}

// ApplyStats accumulates counters across every apply submission, analogous
// to the teacher's ApplyStats/mockPersister running totals.
type ApplyStats struct {
	TotalApplies      uint64
	SuccessfulApplies uint64
	FailedApplies     uint64
	PendingApplies    uint64
	AvgSwapTime       time.Duration
	MaxSwapTime       time.Duration
}

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

// Package rtplatform requests the OS scheduling knobs the RT scheduler
// wants: a real-time scheduling class for its own thread and a locked
// address space so the 1 kHz loop never takes a page fault. Both are
// best-effort; a process without CAP_SYS_NICE still runs correctly, just
// without the latency guarantee.
package rtplatform

// Priority selects the requested real-time scheduling priority, 1 (lowest)
// to 99 (highest), matching the Linux SCHED_FIFO range.
type Priority int

// Handle reverts the scheduling-knob changes a Request made.
type Handle interface {
	Release() error
}

type noopHandle struct{}

func (noopHandle) Release() error { return nil }

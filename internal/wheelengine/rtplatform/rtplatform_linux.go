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

//go:build linux

package rtplatform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type linuxHandle struct {
	hadMemlock     bool
	prevPolicy     int
	prevPriority   int
	schedRestoreOK bool
}

// RequestRealtime sets SCHED_FIFO at priority on the calling OS thread and
// locks the process's current and future address space into RAM via
// mlockall. Callers must run this from the same goroutine that will run the
// RT loop and keep it locked to that OS thread (runtime.LockOSThread).
//
// Both syscalls require CAP_SYS_NICE/CAP_IPC_LOCK (or root); failure to
// acquire either is returned but does not itself invalidate the engine, so
// callers typically log the error and continue on the default scheduler.
func RequestRealtime(priority Priority) (Handle, error) {
	if priority < 1 || priority > 99 {
		return noopHandle{}, fmt.Errorf("rtplatform: priority %d out of SCHED_FIFO range [1,99]", priority)
	}

	var errs []error

	memErr := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
	if memErr != nil {
		errs = append(errs, fmt.Errorf("mlockall: %w", memErr))
	}

	sched := &unix.SchedParam{Priority: int32(priority)}
	schedErr := unix.SchedSetscheduler(0, unix.SCHED_FIFO, sched)
	if schedErr != nil {
		errs = append(errs, fmt.Errorf("sched_setscheduler: %w", schedErr))
	}

	h := linuxHandle{hadMemlock: memErr == nil, schedRestoreOK: schedErr == nil}
	if len(errs) > 0 {
		return h, fmt.Errorf("rtplatform: %v", errs)
	}
	return h, nil
}

// Release reverts to SCHED_OTHER and releases the memory lock. Errors are
// returned but are advisory: a process shutting down doesn't need its
// scheduling class restored.
func (h linuxHandle) Release() error {
	var errs []error
	if h.schedRestoreOK {
		if err := unix.SchedSetscheduler(0, unix.SCHED_OTHER, &unix.SchedParam{Priority: 0}); err != nil {
			errs = append(errs, fmt.Errorf("sched_setscheduler restore: %w", err))
		}
	}
	if h.hadMemlock {
		if err := unix.Munlockall(); err != nil {
			errs = append(errs, fmt.Errorf("munlockall: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rtplatform release: %v", errs)
	}
	return nil
}

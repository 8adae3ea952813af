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

// Package softstop implements the Soft-Stop Controller from spec §4.7: a
// time-bounded linear ramp from an initial normalized torque to zero, driven
// by per-tick Update calls rather than its own timer.
package softstop

import "time"

// epsilon is the output magnitude below which a ramp is considered done,
// matching the ≤ 0.01 bound used in the soft-stop ramp scenario.
const epsilon = 0.01

// Controller ramps a single normalized torque value to (approximately) zero
// over a fixed duration. It holds no goroutines; callers drive it with
// Update on every RT tick.
type Controller struct {
	initial  float32
	duration time.Duration
	elapsed  time.Duration
	done     bool
}

// New starts a ramp from initial (its sign is preserved) down to zero over
// duration. A non-positive duration ramps to zero on the first Update.
func New(initial float32, duration time.Duration) *Controller {
	return &Controller{initial: initial, duration: duration}
}

// Update advances the ramp by dt and returns the current output. Once
// Done() is true, Update keeps returning 0.
func (c *Controller) Update(dt time.Duration) float32 {
	if c.done {
		return 0
	}
	c.elapsed += dt
	if c.duration <= 0 || c.elapsed >= c.duration {
		c.done = true
		return 0
	}
	frac := 1 - float32(c.elapsed)/float32(c.duration)
	out := c.initial * frac
	if out < epsilon && out > -epsilon {
		c.done = true
		return 0
	}
	return out
}

// Done reports whether the ramp has reached (approximately) zero.
func (c *Controller) Done() bool { return c.done }

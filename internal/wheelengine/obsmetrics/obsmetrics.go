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

// Package obsmetrics exports the engine's atomic counters, safety state, and
// apply-coordinator timings as Prometheus metrics, mirroring the teacher's
// churn module: global-cardinality-only gauges/counters registered once,
// with an optional standalone /metrics endpoint for hosts that don't already
// run a Prometheus registry.
package obsmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wheelengine/internal/wheelengine/safety"
	"wheelengine/pkg/atomiccounters"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_ticks_total",
		Help: "Total RT scheduler ticks executed.",
	})
	missedTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_missed_ticks_total",
		Help: "Total ticks the scheduler fell behind its 1 kHz period by at least one full period.",
	})
	safetyEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_safety_events_total",
		Help: "Total safety state transitions observed.",
	})
	profileSwitchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_profile_switches_total",
		Help: "Total successful pipeline apply swaps.",
	})
	telemetryReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_telemetry_packets_received_total",
		Help: "Total telemetry samples consumed by the scheduler.",
	})
	telemetryLostTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_telemetry_packets_lost_total",
		Help: "Total telemetry samples dropped before reaching the scheduler.",
	})
	torqueSaturationRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wheelengine_torque_saturation_ratio",
		Help: "Fraction of delivered-torque samples clamped by the safety cap, between the last two observed counter snapshots.",
	})
	hidWriteErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_hid_write_errors_total",
		Help: "Total HID report write failures.",
	})
	safetyStateGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wheelengine_safety_state",
		Help: "1 for the currently active safety.Kind, 0 otherwise.",
	}, []string{"state"})
	applyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_apply_total",
		Help: "Total apply requests submitted to the two-phase apply coordinator.",
	})
	applySuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_apply_success_total",
		Help: "Total apply requests that compiled and swapped successfully.",
	})
	applyFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wheelengine_apply_failed_total",
		Help: "Total apply requests rejected by the pipeline compiler.",
	})
	applyPendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wheelengine_apply_pending",
		Help: "Apply requests currently queued and not yet taken up by the apply worker.",
	})
	applySwapMicrosecondsMax = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wheelengine_apply_swap_microseconds_max",
		Help: "Largest observed atomic-pointer swap duration, in microseconds.",
	})
)

func init() {
	prometheus.MustRegister(
		ticksTotal, missedTicksTotal, safetyEventsTotal, profileSwitchesTotal,
		telemetryReceivedTotal, telemetryLostTotal, torqueSaturationRatio, hidWriteErrorsTotal,
		safetyStateGauge, applyTotal, applySuccessTotal, applyFailedTotal, applyPendingGauge,
		applySwapMicrosecondsMax,
	)
}

// safetyKinds lists every safety.Kind so Observe can zero out states the
// engine isn't currently in, rather than leaving stale series at their last
// value.
var safetyKinds = []safety.Kind{
	safety.SafeTorque, safety.HighTorqueChallenge, safety.AwaitingPhysicalAck,
	safety.HighTorqueActive, safety.Faulted,
}

// prevCounterTotals tracks the last atomiccounters.Snapshot fields that only make
// sense as deltas (the monotonic counters), mirroring the teacher's
// SnapshotAndReset-driven approach but without mutating the shared Counters.
var prevCounterTotals atomiccounters.Snapshot

// ObserveCounters publishes counters.Snapshot() into the registered metrics.
func ObserveCounters(snap atomiccounters.Snapshot) {
	ticksTotal.Add(float64(snap.TotalTicks - prevCounterTotals.TotalTicks))
	missedTicksTotal.Add(float64(snap.MissedTicks - prevCounterTotals.MissedTicks))
	safetyEventsTotal.Add(float64(snap.SafetyEvents - prevCounterTotals.SafetyEvents))
	profileSwitchesTotal.Add(float64(snap.ProfileSwitches - prevCounterTotals.ProfileSwitches))
	telemetryReceivedTotal.Add(float64(snap.TelemetryPacketsReceived - prevCounterTotals.TelemetryPacketsReceived))
	telemetryLostTotal.Add(float64(snap.TelemetryPacketsLost - prevCounterTotals.TelemetryPacketsLost))
	hidWriteErrorsTotal.Add(float64(snap.HIDWriteErrors - prevCounterTotals.HIDWriteErrors))
	if d := snap.TorqueSaturationSamples - prevCounterTotals.TorqueSaturationSamples; d > 0 {
		torqueSaturationRatio.Set(float64(snap.TorqueSaturationCount-prevCounterTotals.TorqueSaturationCount) / float64(d))
	}
	prevCounterTotals = snap
}

// ObserveSafety publishes the currently active safety.State.
func ObserveSafety(st safety.State) {
	for _, k := range safetyKinds {
		v := 0.0
		if k == st.Kind {
			v = 1.0
		}
		safetyStateGauge.WithLabelValues(k.String()).Set(v)
	}
}

// ObserveApply publishes an applycoordinator.Coordinator's Stats(). Counter
// fields are cumulative in ffbtypes.ApplyStats, so this tracks the last seen
// totals itself to report Prometheus counter deltas correctly.
func ObserveApply(stats ffbtypes.ApplyStats) {
	applyTotal.Add(float64(stats.TotalApplies) - applyTotalLast)
	applyTotalLast = float64(stats.TotalApplies)
	applySuccessTotal.Add(float64(stats.SuccessfulApplies) - applySuccessLast)
	applySuccessLast = float64(stats.SuccessfulApplies)
	applyFailedTotal.Add(float64(stats.FailedApplies) - applyFailedLast)
	applyFailedLast = float64(stats.FailedApplies)
	applyPendingGauge.Set(float64(stats.PendingApplies))
	applySwapMicrosecondsMax.Set(float64(stats.MaxSwapTime.Microseconds()))
}

var (
	applyTotalLast   float64
	applySuccessLast float64
	applyFailedLast  float64
)

// StartEndpoint serves /metrics on addr in its own goroutine, for hosts that
// don't already run a Prometheus HTTP handler. Errors are not fatal: the
// engine's safety loop must never depend on the metrics endpoint.
func StartEndpoint(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = server.ListenAndServe() }()
}

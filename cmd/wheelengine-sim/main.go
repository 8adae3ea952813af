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

// wheelengine-sim drives the engine end to end against a virtual wheelbase:
// synthetic telemetry in, the RT scheduler ticking at 1 kHz, a resolved
// profile swapped in through the Apply Coordinator, and torque out to a
// simulated device whose physics respond to it. It exposes the same shape
// of /metrics endpoint and periodic log summary the rest of the engine
// would run with a real device, the same role the teacher's tfd-sim plays
// for the ratelimiter core.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"wheelengine/internal/wheelengine/applycoordinator"
	"wheelengine/internal/wheelengine/blackbox"
	"wheelengine/internal/wheelengine/obslog"
	"wheelengine/internal/wheelengine/obsmetrics"
	"wheelengine/internal/wheelengine/profile"
	"wheelengine/internal/wheelengine/profilestore"
	"wheelengine/internal/wheelengine/rtplatform"
	"wheelengine/internal/wheelengine/rtscheduler"
	"wheelengine/internal/wheelengine/safety"
	"wheelengine/internal/wheelengine/virtualdevice"
	"wheelengine/pkg/atomiccounters"
	"wheelengine/pkg/wheelengine/ffbtypes"
)

// sineTelemetry is a synthetic TelemetrySource: it synthesizes an FFB input
// as a sine of wall-clock time plus seeded random jitter, standing in for a real game's telemetry
// feed the way the virtual device stands in for real hardware.
type sineTelemetry struct {
	mu        sync.Mutex
	rng       *rand.Rand
	startedAt time.Time
	handsOff  bool
}

func newSineTelemetry() *sineTelemetry {
	return &sineTelemetry{rng: rand.New(rand.NewSource(1)), startedAt: time.Now()}
}

func (s *sineTelemetry) TryRecv() (rtscheduler.TelemetrySample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := time.Since(s.startedAt).Seconds()
	ffb := float32(0.6*math.Sin(2*math.Pi*0.8*t) + 0.05*s.rng.Float64())
	speed := float32(20 + 10*math.Sin(2*math.Pi*0.2*t))
	return rtscheduler.TelemetrySample{FFBScalar: ffb, Speed: speed, HandsOff: s.handsOff}, true
}

func buildDefaultProfile(torqueCapNm float32) ffbtypes.Profile {
	gain := float32(1.0)
	dor := float32(900.0)
	cap := torqueCapNm
	filters := ffbtypes.FilterConfig{
		ReconstructionOrder: 4,
		FrictionGain:        0.1,
		DamperGain:          0.15,
		InertiaGain:         0.05,
		SlewRatePerTick:     0.2,
		TorqueCap:           1.0,
	}
	return ffbtypes.Profile{
		Scope: ffbtypes.ScopeGlobal,
		Settings: ffbtypes.BaseSettings{
			FFBGain:           &gain,
			DegreesOfRotation: &dor,
			TorqueCapNm:       &cap,
			Filters:           &filters,
		},
	}
}

func main() {
	deviceID := flag.String("device-id", "sim-0", "virtual device identifier")
	deviceName := flag.String("device-name", "Simulated Wheelbase", "virtual device display name")
	torqueCap := flag.Float64("torque-cap-nm", 20.0, "torque cap applied to the default profile")
	safeCap := flag.Float64("safe-cap-nm", 8.0, "Safety Service's SafeTorque cap, in Nm")
	highCap := flag.Float64("high-cap-nm", 20.0, "Safety Service's HighTorqueActive cap, in Nm")
	queueDepth := flag.Int("queue-depth", 8, "Apply Coordinator request queue depth")
	httpAddr := flag.String("http-addr", ":9090", "Prometheus /metrics listen address; empty disables it")
	logInterval := flag.Duration("log-interval", 5*time.Second, "periodic summary log interval")
	duration := flag.Duration("duration", 0, "run duration; 0 runs until interrupted")
	profileAdapter := flag.String("profile-store", "memory", "profile store adapter: memory, redis, postgres")
	redisAddr := flag.String("redis-addr", "", "redis address, required when -profile-store=redis")
	rtPriority := flag.Int("rt-priority", 0, "SCHED_FIFO priority to request, 0 skips the request")
	flag.Parse()

	if *queueDepth <= 0 {
		*queueDepth = 8
	}

	store, err := profilestore.Build(*profileAdapter, profilestore.Options{RedisAddr: *redisAddr})
	if err != nil {
		log.Fatalf("profile store: %v", err)
	}

	merger := profile.NewEngine()
	resolved := merger.Merge(&ffbtypes.Profile{
		Scope:    ffbtypes.ScopeGlobal,
		Settings: buildDefaultProfile(float32(*torqueCap)).Settings,
	}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Persist(ctx, profilestore.StoredProfile{
		DeviceID:  *deviceID,
		Resolved:  resolved.Resolved,
		MergeHash: resolved.MergeHash,
	}); err != nil {
		log.Printf("profile store persist: %v", err)
	}

	if *rtPriority > 0 {
		handle, rtErr := rtplatform.RequestRealtime(rtplatform.Priority(*rtPriority))
		if rtErr != nil {
			log.Printf("rtplatform: realtime scheduling unavailable: %v", rtErr)
		}
		defer handle.Release()
	}

	port := virtualdevice.NewPort()
	device := virtualdevice.New(*deviceID, *deviceName)
	if err := port.AddDevice(device); err != nil {
		log.Fatalf("virtualdevice: %v", err)
	}

	counters := atomiccounters.New()
	safetySvc := safety.NewService(float32(*safeCap), float32(*highCap), 2*time.Second, 5*time.Second)
	coordinator := applycoordinator.New(*queueDepth)
	defer coordinator.Stop()

	if _, resultCh := coordinator.RequestApply(*resolved.Resolved.Settings.Filters, resolved.MergeHash); true {
		go func() {
			res := <-resultCh
			if !res.Success {
				log.Printf("initial profile apply failed: %s", res.Error)
				return
			}
			counters.IncProfileSwitch()
			obslog.Default().Info("profile applied", "merge_hash", res.MergeHash, "compile_time", res.CompilationTime)
		}()
	}

	stream := blackbox.NewStreamA()

	sched := rtscheduler.New(rtscheduler.Options{
		Coordinator:       coordinator,
		Safety:            safetySvc,
		Counters:          counters,
		Telemetry:         newSineTelemetry(),
		HID:               device,
		Recorder:          stream,
		DeviceMaxTorqueNm: float32(*torqueCap),
		TickBudget:        800 * time.Microsecond,
	})

	if *httpAddr != "" {
		obsmetrics.StartEndpoint(*httpAddr)
		log.Printf("wheelengine-sim metrics listening on %s", *httpAddr)
	}

	snapshotter := obslog.NewSnapshotter(*logInterval, "engine summary", func() []any {
		snap := counters.Snapshot()
		obsmetrics.ObserveCounters(snap)
		obsmetrics.ObserveSafety(safetySvc.State())
		obsmetrics.ObserveApply(coordinator.Stats())
		tel, connected := device.ReadTelemetry()
		return []any{
			"ticks", snap.TotalTicks,
			"missed_ticks", snap.MissedTicks,
			"safety_state", safetySvc.State().Kind.String(),
			"connected", connected,
			"wheel_speed_rad_s", tel.WheelSpeedRadS,
			"temperature_c", tel.TemperatureC,
			"hands_on", tel.HandsOn,
		}
	})
	go snapshotter.Run(ctx)
	defer snapshotter.Stop()

	physicsStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				device.SimulatePhysics(time.Millisecond)
			case <-physicsStop:
				return
			}
		}
	}()
	defer close(physicsStop)

	tickStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sched.Tick()
				safetySvc.CheckTimeouts()
			case <-tickStop:
				return
			}
		}
	}()
	defer close(tickStop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	var endTimer <-chan time.Time
	if *duration > 0 {
		endTimer = time.After(*duration)
	}
	select {
	case <-sigCh:
		log.Print("wheelengine-sim: shutting down on signal")
	case <-endTimer:
		log.Print("wheelengine-sim: duration elapsed, shutting down")
	}
}

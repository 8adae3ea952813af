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

// Package applycoordinator implements the Two-Phase Apply Coordinator from
// spec §4.4: profile/filter changes are compiled off the RT thread, then
// published with a single atomic pointer swap the RT scheduler picks up at
// its next tick boundary. No lock is ever held on the hot path.
package applycoordinator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"wheelengine/pkg/wheelengine/ffbtypes"
	"wheelengine/pkg/wheelengine/pipeline"
)

// applyRequest is one queued compile-then-swap job.
type applyRequest struct {
	id       uuid.UUID
	cfg      ffbtypes.FilterConfig
	mergeHash uint64
	submitted time.Time
	resultCh  chan ffbtypes.ApplyResult
}

// Coordinator owns the single active CompiledPipeline pointer the RT
// scheduler reads every tick, and a background goroutine that drains queued
// apply requests one at a time, in submission order.
type Coordinator struct {
	active   atomic.Pointer[pipeline.CompiledPipeline]
	compiler *pipeline.Compiler

	requests chan applyRequest
	stopCh   chan struct{}
	wg       sync.WaitGroup

	totalApplies      atomic.Uint64
	successfulApplies atomic.Uint64
	failedApplies     atomic.Uint64
	pendingApplies    atomic.Int64
	totalSwapNS       atomic.Uint64
	maxSwapNS         atomic.Uint64
}

// New returns a Coordinator whose active pipeline starts out empty
// (passthrough) until the first apply completes, and starts its background
// worker. queueDepth bounds how many pending applies RequestApply will
// accept before blocking the caller.
func New(queueDepth int) *Coordinator {
	c := &Coordinator{
		compiler: pipeline.NewCompiler(),
		requests: make(chan applyRequest, queueDepth),
		stopCh:   make(chan struct{}),
	}
	c.active.Store(pipeline.Empty())
	c.wg.Add(1)
	go c.run()
	return c
}

// Stop drains in-flight work and stops the background worker.
func (c *Coordinator) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// Active returns the pipeline the RT scheduler should run for the current
// tick. Safe to call concurrently with RequestApply from any goroutine.
func (c *Coordinator) Active() *pipeline.CompiledPipeline {
	return c.active.Load()
}

// RequestApply enqueues cfg for compilation and swap, returning as soon as
// the request is queued (it blocks while the queue is full) with a uuid identifying the request and a channel that receives exactly
// one ApplyResult once the phase-two swap has happened (or compilation
// failed). mergeHash is carried through to the result for caller bookkeeping
// (e.g. correlating with the Profile Merge Engine's output) and does not
// affect compilation.
func (c *Coordinator) RequestApply(cfg ffbtypes.FilterConfig, mergeHash uint64) (uuid.UUID, <-chan ffbtypes.ApplyResult) {
	id := uuid.New()
	resultCh := make(chan ffbtypes.ApplyResult, 1)
	c.pendingApplies.Add(1)
	c.requests <- applyRequest{
		id:        id,
		cfg:       cfg,
		mergeHash: mergeHash,
		submitted: time.Now(),
		resultCh:  resultCh,
	}
	return id, resultCh
}

// Stats snapshots the coordinator's running apply statistics.
func (c *Coordinator) Stats() ffbtypes.ApplyStats {
	total := c.totalApplies.Load()
	successful := c.successfulApplies.Load()
	var avg time.Duration
	if successful > 0 {
		avg = time.Duration(c.totalSwapNS.Load() / successful)
	}
	return ffbtypes.ApplyStats{
		TotalApplies:      total,
		SuccessfulApplies: successful,
		FailedApplies:     c.failedApplies.Load(),
		PendingApplies:    uint64(c.pendingApplies.Load()),
		AvgSwapTime:       avg,
		MaxSwapTime:       time.Duration(c.maxSwapNS.Load()),
	}
}

// run is the background apply worker: one goroutine, one request at a time,
// matching the single-writer-to-active-pointer invariant the RT scheduler
// relies on.
func (c *Coordinator) run() {
	defer c.wg.Done()
	for {
		select {
		case req := <-c.requests:
			c.handle(req)
		case <-c.stopCh:
			// Drain anything already queued so callers waiting on resultCh
			// don't block forever, then exit.
			for {
				select {
				case req := <-c.requests:
					c.handle(req)
				default:
					return
				}
			}
		}
	}
}

func (c *Coordinator) handle(req applyRequest) {
	c.pendingApplies.Add(-1)
	c.totalApplies.Add(1)

	compileStart := time.Now()
	compiled, err := c.compiler.Compile(req.cfg)
	compileDur := time.Since(compileStart)

	if err != nil {
		c.failedApplies.Add(1)
		req.resultCh <- ffbtypes.ApplyResult{
			Success:         false,
			MergeHash:       req.mergeHash,
			Error:           err.Error(),
			CompilationTime: compileDur,
		}
		return
	}

	swapStart := time.Now()
	c.active.Store(compiled)
	swapDur := time.Since(swapStart)

	swapNS := uint64(swapDur.Nanoseconds())
	c.totalSwapNS.Add(swapNS)
	for {
		cur := c.maxSwapNS.Load()
		if swapNS <= cur || c.maxSwapNS.CompareAndSwap(cur, swapNS) {
			break
		}
	}

	c.successfulApplies.Add(1)
	req.resultCh <- ffbtypes.ApplyResult{
		Success:           true,
		ConfigHash:        compiled.ConfigHash(),
		MergeHash:         req.mergeHash,
		SwapDuration:      swapDur,
		CompilationTime:   compileDur,
		PipelineTotalTime: compileDur + swapDur,
	}
}

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

package virtualdevice

import (
	"fmt"
	"sort"
	"sync"
)

// Info is the enumeration-time summary of one device on a Port.
type Info struct {
	ID   string
	Name string
}

// Port is an in-process stand-in for the OS's HID enumeration/open surface:
// a registry of Devices a test or demo can add, list, open, and hot-unplug.
type Port struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewPort returns an empty Port.
func NewPort() *Port { return &Port{devices: make(map[string]*Device)} }

// AddDevice registers d, keyed by its ID. Returns an error if the ID is
// already registered.
func (p *Port) AddDevice(d *Device) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.devices[d.ID()]; exists {
		return fmt.Errorf("virtualdevice: device %q already registered", d.ID())
	}
	p.devices[d.ID()] = d
	return nil
}

// RemoveDevice simulates an unplug: the device disappears from enumeration.
// Any already-open handle to it keeps working until the caller calls
// Disconnect explicitly, mirroring the original's hot-unplug semantics.
func (p *Port) RemoveDevice(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.devices[id]; !exists {
		return fmt.Errorf("virtualdevice: device %q not registered", id)
	}
	delete(p.devices, id)
	return nil
}

// ListDevices returns every registered device's Info, sorted by ID for
// deterministic test assertions.
func (p *Port) ListDevices() []Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Info, 0, len(p.devices))
	for _, d := range p.devices {
		out = append(out, Info{ID: d.ID(), Name: d.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OpenDevice returns the registered *Device for id.
func (p *Port) OpenDevice(id string) (*Device, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.devices[id]
	if !ok {
		return nil, fmt.Errorf("virtualdevice: device %q not found", id)
	}
	return d, nil
}

// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sim simulates the clock hardware: a stepper motor driven
// through an output bank, the home sensor, and the pushbutton.
package sim

import (
	"sync"
)

// Motor acts like a stepper motor connected to an output bank.
// Each asserted phase pattern is looked up in the phase sequence, and
// the rotor moves one step towards it if it is adjacent to the last
// pattern. Patterns that would skip a phase are counted as missed steps.
type Motor struct {
	mu       sync.Mutex
	sequence []uint32
	index    int    // Phase the rotor is aligned with
	position int64  // Signed rotor position in steps
	active   uint32 // Outputs currently asserted
	Pulses   int    // Number of patterns asserted
	Missed   int    // Patterns not adjacent to the rotor phase
	Invalid  int    // Patterns not in the sequence
	Overlap  int    // Patterns asserted while others were still active
}

// NewMotor creates a Motor for the phase sequence, aligned with phase 0.
func NewMotor(sequence []uint32) *Motor {
	return &Motor{sequence: sequence}
}

// Set asserts the outputs in mask.
func (m *Motor) Set(mask uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pulses++
	if m.active != 0 {
		m.Overlap++
	}
	m.active |= mask
	k := -1
	for i, p := range m.sequence {
		if p == m.active {
			k = i
			break
		}
	}
	if k < 0 {
		m.Invalid++
		return
	}
	n := len(m.sequence)
	switch (k - m.index + n) % n {
	case 0:
	case 1:
		m.position++
	case n - 1:
		m.position--
	default:
		m.Missed++
	}
	m.index = k
}

// Clear deasserts the outputs in mask.
func (m *Motor) Clear(mask uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active &^= mask
}

// Position returns the rotor position in steps.
func (m *Motor) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// SetPosition moves the rotor without stepping, such as by
// turning the clock by hand while it is unpowered.
func (m *Motor) SetPosition(p int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
}

// Active returns the outputs currently asserted.
func (m *Motor) Active() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

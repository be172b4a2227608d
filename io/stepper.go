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

package io

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// NumPins is the number of stepper phase outputs.
const NumPins = 4

// Speed selects the timing profile of a move.
type Speed int

const (
	Slow Speed = -1 // Slow for the whole move.
	Auto Speed = 0  // Accelerate and decelerate, fast in the middle of long moves.
	Fast Speed = 1  // Fast for the whole move.
)

func (s Speed) String() string {
	switch s {
	case Slow:
		return "slow"
	case Auto:
		return "auto"
	case Fast:
		return "fast"
	}
	return fmt.Sprintf("speed(%d)", int(s))
}

// Extra delay units added for the whole of a slow move.
const slowUnits = 4

// Move offsets below which another delay unit is added, at each end of an auto move.
var rampThresholds = []int{20, 10, 5}

// StepperConfig holds the fixed parameters of a stepper motor.
type StepperConfig struct {
	Pins               [NumPins]int // Output bank bits driving phases 1-4
	Reversed           bool         // Positive steps turn the motor counterclockwise
	HalfStep           bool         // Use 8 phase half stepping
	FullStepsPerRev    int          // Full steps per output shaft revolution (2048 for a 28BYJ-48)
	RapidSecondsPerRev float64      // Seconds per revolution at fast speed
}

// Stepper drives a 4 phase unipolar stepper motor through an output bank.
// All moves are synchronous; the caller is blocked until the move is complete.
// Phases are pulsed rather than held, so the motor is unpowered
// between steps and while idle.
type Stepper struct {
	mu       sync.Mutex
	bank     OutputBank
	delayer  Delayer
	sequence []uint32      // Phase patterns for clockwise motion
	clear    uint32        // All phase bits
	rapid    time.Duration // Per step delay at fast speed
	rev      int           // Steps per revolution (half steps if half stepping)
	index    int           // Current phase
	current  int64         // Accumulated signed steps
}

// PhaseTable returns the output bit patterns for each phase in the
// clockwise sequence. Full stepping energises one pin at a time; half
// stepping interleaves patterns overlapping two adjacent pins.
// Reversal changes only the order in which pins are used.
func PhaseTable(pins [NumPins]int, reversed, half bool) []uint32 {
	order := pins
	if reversed {
		for i := range pins {
			order[i] = pins[NumPins-1-i]
		}
	}
	var seq []uint32
	for i := 0; i < NumPins; i++ {
		b := uint32(1) << uint(order[i])
		if half {
			next := uint32(1) << uint(order[(i+1)%NumPins])
			seq = append(seq, b, b|next)
		} else {
			seq = append(seq, b)
		}
	}
	return seq
}

// ClearMask returns the bits of all the phase pins.
func ClearMask(pins [NumPins]int) uint32 {
	var m uint32
	for _, p := range pins {
		m |= 1 << uint(p)
	}
	return m
}

// NewStepper creates a Stepper from the configuration, and turns off the outputs.
func NewStepper(bank OutputBank, cfg StepperConfig, d Delayer) (*Stepper, error) {
	if err := checkPins(cfg.Pins[:]); err != nil {
		return nil, err
	}
	if cfg.FullStepsPerRev <= 0 {
		return nil, fmt.Errorf("%d: invalid steps per revolution", cfg.FullStepsPerRev)
	}
	if cfg.RapidSecondsPerRev <= 0 {
		return nil, fmt.Errorf("%g: invalid seconds per revolution", cfg.RapidSecondsPerRev)
	}
	s := new(Stepper)
	s.bank = bank
	s.delayer = d
	s.sequence = PhaseTable(cfg.Pins, cfg.Reversed, cfg.HalfStep)
	s.clear = ClearMask(cfg.Pins)
	s.rev = cfg.FullStepsPerRev
	if cfg.HalfStep {
		s.rev *= 2
	}
	// Whole microseconds per step.
	us := int64(cfg.RapidSecondsPerRev*float64(time.Second/time.Microsecond)) / int64(s.rev)
	s.rapid = time.Duration(us) * time.Microsecond
	lg.Debugf("stepper: %d phases, %d steps/rev, rapid delay %s", len(s.sequence), s.rev, s.rapid)
	s.bank.Clear(s.clear)
	return s, nil
}

// Phase returns the current index into the phase sequence.
func (s *Stepper) Phase() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Phases returns the length of the phase sequence (4 or 8).
func (s *Stepper) Phases() int {
	return len(s.sequence)
}

// StepsPerRev returns the steps in a revolution of the output shaft.
func (s *Stepper) StepsPerRev() int {
	return s.rev
}

// RapidDelay returns the per step delay used at fast speed.
func (s *Stepper) RapidDelay() time.Duration {
	return s.rapid
}

// Position returns the signed number of steps moved since the stepper was created.
func (s *Stepper) Position() int64 {
	return atomic.LoadInt64(&s.current)
}

// Off removes the power from the motor.
func (s *Stepper) Off() {
	s.Step(0, Fast)
}

// Step moves the motor the requested number of steps using the speed
// profile selected. Positive values move clockwise, negative counterclockwise.
// A zero step count turns off all the phase outputs.
func (s *Stepper) Step(steps int, speed Speed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if steps == 0 {
		s.bank.Clear(s.clear)
		return
	}
	phases := len(s.sequence)
	// Moving backwards is done by advancing the phase by one less than a full cycle.
	inc, dir := 1, int64(1)
	n := steps
	if steps < 0 {
		inc, dir = phases-1, -1
		n = -steps
	}
	for j := 0; j < n; j++ {
		s.index = (s.index + inc) % phases
		s.bank.Set(s.sequence[s.index])
		s.delayer.Delay(s.rapid * time.Duration(DelayUnits(j, n, speed)))
		s.bank.Clear(s.clear)
		atomic.AddInt64(&s.current, dir)
	}
}

// DelayUnits returns the number of rapid delay periods used for
// step j (from 0) of an n step move.
func DelayUnits(j, n int, speed Speed) int {
	units := 1
	switch speed {
	case Slow:
		units += slowUnits
	case Auto:
		for _, t := range rampThresholds {
			if j < t {
				units++
			}
			if n-j < t {
				units++
			}
		}
	}
	return units
}

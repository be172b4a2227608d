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

package sim

import (
	"sync"
)

// Sensor is a home switch that is active while the motor position,
// taken modulo Cycle, lies within Start to End inclusive.
// If Start is greater than End, the active zone wraps through 0.
// The raw level follows the wiring of the switch: a normally open
// switch reads low when active.
type Sensor struct {
	Motor        *Motor
	Cycle        int64
	Start, End   int64
	NormallyOpen bool
	Disconnected bool // Never activates
	Stuck        bool // Always active
	Reads        int
}

// Active returns true if the switch is closed at the current motor position.
func (s *Sensor) Active() bool {
	if s.Stuck {
		return true
	}
	if s.Disconnected {
		return false
	}
	p := s.Motor.Position() % s.Cycle
	if p < 0 {
		p += s.Cycle
	}
	if s.Start <= s.End {
		return p >= s.Start && p <= s.End
	}
	return p >= s.Start || p <= s.End
}

// Get returns the raw level of the sensor input.
func (s *Sensor) Get() (int, error) {
	s.Reads++
	if s.Active() != s.NormallyOpen {
		return 1, nil
	}
	return 0, nil
}

// Button is an active low pushbutton that is pressed
// after it has been read a set number of times.
type Button struct {
	mu      sync.Mutex
	After   int // Reads before the button is pressed, negative for never
	pressed bool
	reads   int
}

// Press presses the button.
func (b *Button) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = true
}

// Get returns 0 while the button is pressed.
func (b *Button) Get() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.pressed || (b.After >= 0 && b.reads > b.After) {
		return 0, nil
	}
	return 1, nil
}

// Reads returns the number of times the button has been read.
func (b *Button) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

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

// Home sensor and pushbutton inputs.

package clock

import (
	"github.com/aamcrae/geneva/io"
)

// Sensor reports whether the indicator is at the home position.
type Sensor interface {
	IsHome() bool
}

// Aborter reports an operator request to stop a maintenance procedure.
type Aborter interface {
	IsPressed() bool
}

// HomeSensor is a home switch read from a digital input.
// The switch is wired to pull the input low when closed, so with a
// normally open switch the home position reads low, and with a normally
// closed switch it reads high. NormallyOpen inverts the raw level
// so that IsHome always means the switch is active.
type HomeSensor struct {
	Name         string
	Input        io.Input
	NormallyOpen bool
}

// NewHomeSensor creates a HomeSensor.
func NewHomeSensor(name string, in io.Input, normallyOpen bool) *HomeSensor {
	return &HomeSensor{Name: name, Input: in, NormallyOpen: normallyOpen}
}

// IsHome returns true if the home switch is active.
// A read error is logged and treated as inactive, which
// the homing step budgets turn into a homing failure.
func (h *HomeSensor) IsHome() bool {
	v, err := h.Input.Get()
	if err != nil {
		lg.Errorf("%s: home sensor input: %v", h.Name, err)
		return false
	}
	return (v == 1) != h.NormallyOpen
}

// Button is an active low pushbutton.
type Button struct {
	Input io.Input
}

// IsPressed returns true if the button is held down.
func (b *Button) IsPressed() bool {
	if b == nil || b.Input == nil {
		return false
	}
	v, err := b.Input.Get()
	if err != nil {
		lg.Errorf("button input: %v", err)
		return false
	}
	return v == 0
}

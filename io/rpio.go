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

// Memory mapped Raspberry Pi GPIO backend.

package io

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// OpenRpio maps the GPIO registers. CloseRpio must be called on exit.
func OpenRpio() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("rpio: %w", err)
	}
	return nil
}

// CloseRpio unmaps the GPIO registers.
func CloseRpio() {
	rpio.Close()
}

// RpioBank drives a set of Pi GPIO pins as an OutputBank.
type RpioBank struct {
	pins []rpio.Pin
}

// NewRpioBank sets each pin as an output, initially low.
func NewRpioBank(pins []int) (*RpioBank, error) {
	if err := checkPins(pins); err != nil {
		return nil, err
	}
	b := new(RpioBank)
	for _, p := range pins {
		pin := rpio.Pin(p)
		pin.Output()
		pin.Low()
		b.pins = append(b.pins, pin)
	}
	return b, nil
}

// Set drives the pins in mask high.
func (b *RpioBank) Set(mask uint32) {
	for _, p := range b.pins {
		if mask&(1<<uint(p)) != 0 {
			p.High()
		}
	}
}

// Clear drives the pins in mask low.
func (b *RpioBank) Clear(mask uint32) {
	for _, p := range b.pins {
		if mask&(1<<uint(p)) != 0 {
			p.Low()
		}
	}
}

// RpioPin is a single Pi GPIO, usable as an Input or a Setter.
type RpioPin struct {
	pin rpio.Pin
}

// NewRpioInput sets the pin as an input with the pull-up enabled,
// which suits switches wired to ground.
func NewRpioInput(p int) *RpioPin {
	pin := rpio.Pin(p)
	pin.Input()
	pin.PullUp()
	return &RpioPin{pin: pin}
}

// NewRpioOutput sets the pin as an output, initially low.
func NewRpioOutput(p int) *RpioPin {
	pin := rpio.Pin(p)
	pin.Output()
	pin.Low()
	return &RpioPin{pin: pin}
}

// Get returns the level of the pin.
func (r *RpioPin) Get() (int, error) {
	if r.pin.Read() == rpio.High {
		return 1, nil
	}
	return 0, nil
}

// Set drives the pin.
func (r *RpioPin) Set(v int) error {
	if v == 0 {
		r.pin.Low()
	} else {
		r.pin.High()
	}
	return nil
}

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

// sysfs GPIO backend

package io

import (
	"fmt"
	"os"
)

// Mode
const (
	IN  = iota // Default
	OUT = iota
)

const (
	baseDir      = "/sys/class/gpio/"
	exportFile   = baseDir + "export"
	unexportFile = baseDir + "unexport"
	valueFile    = "/value"
)

// Gpio represents one sysfs GPIO pin.
type Gpio struct {
	number    int
	value     *os.File
	buf       []byte
	direction int
}

// OutputPin opens a GPIO pin and sets the direction as OUTPUT.
func OutputPin(gpio int) (*Gpio, error) {
	g, err := Pin(gpio)
	if err != nil {
		return nil, err
	}
	err = g.Direction(OUT)
	if err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Pin opens a GPIO pin as an input (by default)
func Pin(gpio int) (*Gpio, error) {
	g := new(Gpio)
	g.number = gpio
	g.buf = make([]byte, 1)

	val := fmt.Sprintf("%sgpio%d%s", baseDir, gpio, valueFile)
	err := export(val, exportFile, gpio)
	if err != nil {
		return nil, err
	}
	err = g.Direction(IN)
	if err != nil {
		unexport(unexportFile, gpio)
		return nil, err
	}
	g.value, err = os.OpenFile(val, os.O_RDWR, 0600)
	if err != nil {
		unexport(unexportFile, gpio)
		return nil, err
	}
	return g, nil
}

// Direction sets the mode (direction) of the GPIO pin.
func (g *Gpio) Direction(d int) error {
	var s string
	switch d {
	case IN:
		s = "in"
	case OUT:
		s = "out"
	default:
		return fmt.Errorf("gpio%d: unknown direction", g.number)
	}
	err := writeFile(fmt.Sprintf("%sgpio%d/direction", baseDir, g.number), s)
	if err == nil {
		g.direction = d
	}
	return err
}

// Set the output of the GPIO pin (only valid for OUTPUT pins)
func (g *Gpio) Set(v int) error {
	if g.direction != OUT {
		return fmt.Errorf("gpio%d: is not output", g.number)
	}
	switch v {
	case 0:
		g.buf[0] = '0'
	case 1:
		g.buf[0] = '1'
	default:
		return fmt.Errorf("gpio%d: illegal value", g.number)
	}
	_, err := g.value.WriteAt(g.buf, 0)
	return err
}

// Get returns the current value of the GPIO pin.
func (g *Gpio) Get() (int, error) {
	_, err := g.value.ReadAt(g.buf, 0)
	if err != nil {
		return 0, err
	}
	switch g.buf[0] {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, fmt.Errorf("gpio%d: unknown value %s", g.number, g.buf)
}

// Close the GPIO pin and unexport it.
func (g *Gpio) Close() {
	g.value.Close()
	unexport(unexportFile, g.number)
}

// SysfsBank is an OutputBank made from individually exported sysfs pins.
type SysfsBank struct {
	pins map[int]*Gpio
}

// NewSysfsBank exports each pin as an output, initially low.
func NewSysfsBank(pins []int) (*SysfsBank, error) {
	if err := checkPins(pins); err != nil {
		return nil, err
	}
	b := &SysfsBank{pins: make(map[int]*Gpio)}
	for _, p := range pins {
		g, err := OutputPin(p)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("pin %d: %w", p, err)
		}
		b.pins[p] = g
		g.Set(0)
	}
	return b, nil
}

// Set drives the pins in mask high.
func (b *SysfsBank) Set(mask uint32) {
	b.write(mask, 1)
}

// Clear drives the pins in mask low.
func (b *SysfsBank) Clear(mask uint32) {
	b.write(mask, 0)
}

func (b *SysfsBank) write(mask uint32, v int) {
	for p, g := range b.pins {
		if mask&(1<<uint(p)) == 0 {
			continue
		}
		if err := g.Set(v); err != nil {
			lg.Errorf("gpio%d: %v", p, err)
		}
	}
}

// Close unexports all the pins in the bank.
func (b *SysfsBank) Close() {
	for _, g := range b.pins {
		g.Close()
	}
}

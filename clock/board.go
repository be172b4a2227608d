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

// Clock hardware selected by the configured GPIO backend.

package clock

import (
	"fmt"

	"github.com/aamcrae/geneva/io"
	"github.com/aamcrae/geneva/sim"
)

// Board holds the ports of the clock hardware.
type Board struct {
	Bank   io.OutputBank
	Home   io.Input
	Button io.Input  // nil if there is no button
	Led    io.Setter // nil if there is no status LED
	// Simulated hardware, set by the sim backend.
	Motor      *sim.Motor
	HomeSwitch *sim.Sensor
	SimButton  *sim.Button
	closers    []func()
}

// OpenBoard opens the GPIO backend and requests the clock's pins.
func OpenBoard(c *Config) (*Board, error) {
	b := new(Board)
	var err error
	switch c.Backend {
	case "sysfs":
		err = b.openSysfs(c)
	case "rpio":
		err = b.openRpio(c)
	case "cdev":
		err = b.openCdev(c)
	case "sim":
		b.openSim(c)
	default:
		err = fmt.Errorf("%s: unknown GPIO backend", c.Backend)
	}
	if err != nil {
		b.Close()
		return nil, err
	}
	lg.Infof("Opened %s GPIO backend", c.Backend)
	return b, nil
}

func (b *Board) openSysfs(c *Config) error {
	bank, err := io.NewSysfsBank(c.Pins[:])
	if err != nil {
		return err
	}
	b.closers = append(b.closers, bank.Close)
	b.Bank = bank
	home, err := io.Pin(c.HomePin)
	if err != nil {
		return fmt.Errorf("home sensor: %w", err)
	}
	b.closers = append(b.closers, home.Close)
	b.Home = home
	if c.ButtonPin >= 0 {
		bt, err := io.Pin(c.ButtonPin)
		if err != nil {
			return fmt.Errorf("button: %w", err)
		}
		b.closers = append(b.closers, bt.Close)
		b.Button = bt
	}
	if c.LedPin >= 0 {
		led, err := io.OutputPin(c.LedPin)
		if err != nil {
			return fmt.Errorf("LED: %w", err)
		}
		b.closers = append(b.closers, led.Close)
		b.Led = led
	}
	return nil
}

func (b *Board) openRpio(c *Config) error {
	if err := io.OpenRpio(); err != nil {
		return err
	}
	b.closers = append(b.closers, io.CloseRpio)
	bank, err := io.NewRpioBank(c.Pins[:])
	if err != nil {
		return err
	}
	b.Bank = bank
	b.Home = io.NewRpioInput(c.HomePin)
	if c.ButtonPin >= 0 {
		b.Button = io.NewRpioInput(c.ButtonPin)
	}
	if c.LedPin >= 0 {
		b.Led = io.NewRpioOutput(c.LedPin)
	}
	return nil
}

func (b *Board) openCdev(c *Config) error {
	bank, err := io.NewCdevBank(c.Chip, c.Pins[:])
	if err != nil {
		return err
	}
	b.closers = append(b.closers, bank.Close)
	b.Bank = bank
	home, err := io.NewCdevInput(c.Chip, c.HomePin)
	if err != nil {
		return fmt.Errorf("home sensor: %w", err)
	}
	b.closers = append(b.closers, home.Close)
	b.Home = home
	if c.ButtonPin >= 0 {
		bt, err := io.NewCdevInput(c.Chip, c.ButtonPin)
		if err != nil {
			return fmt.Errorf("button: %w", err)
		}
		b.closers = append(b.closers, bt.Close)
		b.Button = bt
	}
	if c.LedPin >= 0 {
		led, err := io.NewCdevOutput(c.Chip, c.LedPin)
		if err != nil {
			return fmt.Errorf("LED: %w", err)
		}
		b.closers = append(b.closers, led.Close)
		b.Led = led
	}
	return nil
}

// openSim builds a simulated motor, with the home sensor active
// for the first half degree of the face after 12:00.
func (b *Board) openSim(c *Config) {
	b.Motor = sim.NewMotor(io.PhaseTable(c.Pins, false, c.HalfStep))
	cycle := int64(c.Geometry().StepsPerCycle())
	b.HomeSwitch = &sim.Sensor{
		Motor:        b.Motor,
		Cycle:        cycle,
		End:          cycle / 720,
		NormallyOpen: c.NormallyOpen,
	}
	b.SimButton = &sim.Button{After: -1}
	b.Bank = b.Motor
	b.Home = b.HomeSwitch
	b.Button = b.SimButton
}

// Mechanics creates the stepper and the clock mechanics on the board.
func (b *Board) Mechanics(c *Config, d io.Delayer, opts ...Option) (*Mechanics, *io.Stepper, error) {
	st, err := io.NewStepper(b.Bank, c.Stepper(), d)
	if err != nil {
		return nil, nil, err
	}
	if b.Button != nil {
		opts = append([]Option{WithButton(&Button{Input: b.Button})}, opts...)
	}
	opts = append(c.Options(), opts...)
	m, err := NewMechanics("clock", st, NewHomeSensor("home", b.Home, c.NormallyOpen), c.Geometry(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return m, st, nil
}

// Close releases the pins, in the reverse order they were requested.
func (b *Board) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

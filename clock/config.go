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

package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aamcrae/config"

	"github.com/aamcrae/geneva/io"
)

// Config is the clock configuration, read from a configuration file.
type Config struct {
	// [stepper]
	Pins     [io.NumPins]int
	Steps    int     // Full steps per motor revolution
	Rapid    float64 // Seconds per motor revolution at fast speed
	Reversed bool
	HalfStep bool
	// [home]
	HomePin      int
	NormallyOpen bool
	ButtonPin    int // -1 if there is no button
	// [clock]
	Gear          int
	HoursPerRev   int
	HoursPerCycle int
	Dwell         time.Duration
	Backoff       time.Duration
	Policy        CalibrationPolicy
	Zone          *time.Location
	Retry         time.Duration
	// [gpio]
	Backend string // sysfs, rpio, cdev or sim
	Chip    string
	// [status]
	Serial string // Serial device for status reports
	Baud   int
	LedPin int // -1 if there is no status LED
	// [http]
	Port int // 0 disables the status server
}

// DefaultConfig returns the configuration of the Generic Clock Board
// driving a 28BYJ-48 motor.
func DefaultConfig() *Config {
	return &Config{
		Pins:          [io.NumPins]int{19, 16, 17, 21},
		Steps:         2048,
		Rapid:         8,
		HalfStep:      true,
		HomePin:       32,
		NormallyOpen:  true,
		ButtonPin:     26,
		Gear:          4,
		HoursPerRev:   3,
		HoursPerCycle: 12,
		Dwell:         10 * time.Second,
		Backoff:       500 * time.Millisecond,
		Policy:        RetryOnFailure,
		Zone:          time.Local,
		Retry:         time.Minute,
		Backend:       "sysfs",
		Chip:          "gpiochip0",
		Baud:          115200,
		LedPin:        -1,
	}
}

// ReadConfig reads and validates a clock config from a config file.
// Sample config:
//
//	[stepper]
//	pins=19,16,17,21       # GPIOs for motor phases 1-4
//	steps=2048             # Full steps per motor revolution
//	rapid=8                # Seconds per motor revolution at fast speed
//	reversed=0             # 1 if positive steps move counterclockwise
//	halfstep=1             # 1 to half step
//	[home]
//	pin=32                 # GPIO for home sensor
//	normallyopen=1         # 1 for normally open switch, 0 for normally closed
//	button=26              # GPIO for pushbutton, -1 if none
//	[clock]
//	gear=4                 # Motor revolutions per main gear revolution
//	hoursperrev=3          # Hours per main gear revolution
//	hourspercycle=12       # Hours on the face
//	dwell=10s              # Calibration pause at home
//	backoff=500ms          # Calibration pause after moving back
//	policy=retry           # Calibration homing failure policy, retry or abort
//	zone=Local             # Time zone for the clock
//	retry=1m               # Delay between failed homing attempts
//	[gpio]
//	backend=sysfs          # sysfs, rpio, cdev or sim
//	chip=gpiochip0         # gpiochip for cdev backend
//	[status]
//	serial=/dev/ttyUSB0,115200 # Serial status output
//	led=13                 # GPIO of status LED
//	[http]
//	port=8080              # Status server port
//
// Only the stepper section is required.
func ReadConfig(file string) (*Config, error) {
	conf, err := config.ParseFile(file)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	s := conf.GetSection("stepper")
	if s == nil {
		return nil, fmt.Errorf("%s: no stepper section", file)
	}
	n, err := s.Parse("pins", "%d,%d,%d,%d", &c.Pins[0], &c.Pins[1], &c.Pins[2], &c.Pins[3])
	if err != nil {
		return nil, fmt.Errorf("pins: %v", err)
	}
	if n != io.NumPins || len(tokens(s.Get("pins")[0])) != io.NumPins {
		return nil, fmt.Errorf("pins: argument count")
	}
	if err := c.intArg(s, "steps", &c.Steps); err != nil {
		return nil, err
	}
	if err := c.floatArg(s, "rapid", &c.Rapid); err != nil {
		return nil, err
	}
	if err := c.boolArg(s, "reversed", &c.Reversed); err != nil {
		return nil, err
	}
	if err := c.boolArg(s, "halfstep", &c.HalfStep); err != nil {
		return nil, err
	}
	if s = conf.GetSection("home"); s != nil {
		if err := c.intArg(s, "pin", &c.HomePin); err != nil {
			return nil, err
		}
		if err := c.boolArg(s, "normallyopen", &c.NormallyOpen); err != nil {
			return nil, err
		}
		if err := c.intArg(s, "button", &c.ButtonPin); err != nil {
			return nil, err
		}
	}
	if s = conf.GetSection("clock"); s != nil {
		if err := c.clockSection(s); err != nil {
			return nil, err
		}
	}
	if s = conf.GetSection("gpio"); s != nil {
		if err := c.stringArg(s, "backend", &c.Backend); err != nil {
			return nil, err
		}
		if err := c.stringArg(s, "chip", &c.Chip); err != nil {
			return nil, err
		}
	}
	if s = conf.GetSection("status"); s != nil {
		if err := c.serialArg(s); err != nil {
			return nil, err
		}
		if err := c.intArg(s, "led", &c.LedPin); err != nil {
			return nil, err
		}
	}
	if s = conf.GetSection("http"); s != nil {
		if err := c.intArg(s, "port", &c.Port); err != nil {
			return nil, err
		}
	}
	if err := c.Geometry().Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) clockSection(s config.Conf) error {
	if err := c.intArg(s, "gear", &c.Gear); err != nil {
		return err
	}
	if err := c.intArg(s, "hoursperrev", &c.HoursPerRev); err != nil {
		return err
	}
	if err := c.intArg(s, "hourspercycle", &c.HoursPerCycle); err != nil {
		return err
	}
	if err := c.durationArg(s, "dwell", &c.Dwell); err != nil {
		return err
	}
	if err := c.durationArg(s, "backoff", &c.Backoff); err != nil {
		return err
	}
	if err := c.durationArg(s, "retry", &c.Retry); err != nil {
		return err
	}
	p, ok, err := arg(s, "policy")
	if err != nil {
		return err
	}
	if ok {
		if c.Policy, err = ParsePolicy(p); err != nil {
			return fmt.Errorf("policy: %v", err)
		}
	}
	z, ok, err := arg(s, "zone")
	if err != nil {
		return err
	}
	if ok {
		if c.Zone, err = time.LoadLocation(z); err != nil {
			return fmt.Errorf("zone: %v", err)
		}
	}
	return nil
}

// arg returns the single value of an optional key, with any trailing
// comment removed. ok is false if the key is absent; a key given more
// than once or with other than one value is an error.
func arg(s config.Conf, key string) (v string, ok bool, err error) {
	if !s.Has(key) {
		return "", false, nil
	}
	e := s.Get(key)
	if len(e) != 1 {
		return "", true, fmt.Errorf("%s: given more than once", key)
	}
	tok := tokens(e[0])
	if len(tok) != 1 {
		return "", true, fmt.Errorf("%s: expected a single value, got %q", key, e[0].Args)
	}
	return tok[0], true, nil
}

func stripComment(v string) string {
	v, _, _ = strings.Cut(v, "#")
	return strings.TrimSpace(v)
}

// tokens returns the values of an entry up to any trailing comment.
func tokens(e *config.Entry) []string {
	var tok []string
	for _, t := range e.Tokens {
		comment := strings.Contains(t, "#")
		if t = stripComment(t); t != "" {
			tok = append(tok, t)
		}
		if comment {
			break
		}
	}
	return tok
}

// intArg parses an optional integer value, leaving the default if the key is absent.
func (c *Config) intArg(s config.Conf, key string, v *int) error {
	a, ok, err := arg(s, key)
	if !ok || err != nil {
		return err
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return fmt.Errorf("%s: invalid value %q", key, a)
	}
	*v = i
	return nil
}

func (c *Config) floatArg(s config.Conf, key string, v *float64) error {
	a, ok, err := arg(s, key)
	if !ok || err != nil {
		return err
	}
	f, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid value %q", key, a)
	}
	*v = f
	return nil
}

func (c *Config) boolArg(s config.Conf, key string, v *bool) error {
	var i int
	if *v {
		i = 1
	}
	if err := c.intArg(s, key, &i); err != nil {
		return err
	}
	*v = i != 0
	return nil
}

func (c *Config) durationArg(s config.Conf, key string, v *time.Duration) error {
	a, ok, err := arg(s, key)
	if !ok || err != nil {
		return err
	}
	d, err := time.ParseDuration(a)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*v = d
	return nil
}

func (c *Config) stringArg(s config.Conf, key string, v *string) error {
	a, ok, err := arg(s, key)
	if ok && err == nil {
		*v = a
	}
	return err
}

// serialArg parses "device" or "device,baud".
func (c *Config) serialArg(s config.Conf) error {
	e := s.Get("serial")
	switch {
	case len(e) == 0:
		return nil
	case len(e) > 1:
		return fmt.Errorf("serial: given more than once")
	}
	tok := tokens(e[0])
	if len(tok) == 0 || len(tok) > 2 {
		return fmt.Errorf("serial: expected device[,baud], got %q", e[0].Args)
	}
	if len(tok) == 2 {
		b, err := strconv.Atoi(tok[1])
		if err != nil || b <= 0 {
			return fmt.Errorf("serial: invalid baud rate %q", tok[1])
		}
		c.Baud = b
	}
	c.Serial = tok[0]
	return nil
}

// Stepper returns the stepper motor configuration.
func (c *Config) Stepper() io.StepperConfig {
	return io.StepperConfig{
		Pins:               c.Pins,
		Reversed:           c.Reversed,
		HalfStep:           c.HalfStep,
		FullStepsPerRev:    c.Steps,
		RapidSecondsPerRev: c.Rapid,
	}
}

// Geometry returns the clock gearing.
func (c *Config) Geometry() Geometry {
	rev := c.Steps
	if c.HalfStep {
		rev *= 2
	}
	return Geometry{
		StepsPerRev:   rev,
		GearRatio:     c.Gear,
		HoursPerRev:   c.HoursPerRev,
		HoursPerCycle: c.HoursPerCycle,
	}
}

// Options returns the Mechanics options set by the configuration.
func (c *Config) Options() []Option {
	return []Option{
		WithDwell(c.Dwell, c.Backoff),
		WithPolicy(c.Policy),
	}
}

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

// Package clock moves the Geneva clock indicator to match the time of day,
// and homes the indicator against a home sensor.
package clock

import (
	"sync"
	"time"

	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/io"
)

var lg = logger.NewPackageLogger("clock", logger.InfoLevel)

// Driver moves the motor; positive steps are clockwise.
type Driver interface {
	Step(steps int, speed io.Speed)
}

// Option configures a Mechanics.
type Option func(*Mechanics)

// WithReporter sends the result of every homing attempt to r.
func WithReporter(r Reporter) Option {
	return func(m *Mechanics) { m.reporter = r }
}

// WithButton sets the pushbutton used to exit calibration.
func WithButton(b Aborter) Option {
	return func(m *Mechanics) { m.button = b }
}

// WithDwell sets the pauses of the calibration loop: after homing,
// and after moving back an hour.
func WithDwell(home, back time.Duration) Option {
	return func(m *Mechanics) {
		m.homeDwell = home
		m.backDwell = back
	}
}

// WithPolicy sets how calibration handles a homing failure.
func WithPolicy(p CalibrationPolicy) Option {
	return func(m *Mechanics) { m.policy = p }
}

// Mechanics tracks the indicator position of a Geneva clock.
// The face is a ring of StepsPerCycle motor steps. Positions are
// relative to the home sensor, so they are only meaningful after
// a successful Home; updating before homing is tolerated.
// Motion requests are serialised, and block until the motor has
// finished moving.
type Mechanics struct {
	Name      string
	driver    Driver
	sensor    Sensor
	button    Aborter
	reporter  Reporter
	geo       Geometry
	perHour   int // Steps per hour
	perCycle  int // Steps per face cycle
	minutes   int // Minutes per face cycle
	homeDwell time.Duration
	backDwell time.Duration
	policy    CalibrationPolicy
	motion    sync.Mutex // Held for the duration of any motor movement
	mu        sync.Mutex // Guards the fields below
	lastPos   int        // Commanded position, 0 to perCycle-1
	lastMin   int        // Minute of cycle of the last update
	homed     bool
	status    Status // Result of the last homing attempt
}

// NewMechanics creates a Mechanics for the geometry.
// The position starts at 0 (12:00) until homed.
func NewMechanics(name string, d Driver, s Sensor, g Geometry, opts ...Option) (*Mechanics, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	m := new(Mechanics)
	m.Name = name
	m.driver = d
	m.sensor = s
	m.geo = g
	m.perHour = g.StepsPerHour()
	m.perCycle = g.StepsPerCycle()
	m.minutes = g.MinutesPerCycle()
	m.homeDwell = 10 * time.Second
	m.backDwell = 500 * time.Millisecond
	m.policy = RetryOnFailure
	m.status = NotHomed
	for _, o := range opts {
		o(m)
	}
	lg.Infof("%s: %d steps per hour, %d steps per %d hour cycle", m.Name, m.perHour, m.perCycle, g.HoursPerCycle)
	return m, nil
}

// Geometry returns the gearing of the clock.
func (m *Mechanics) Geometry() Geometry {
	return m.geo
}

// Position returns the commanded step position and the minute of the cycle it represents.
func (m *Mechanics) Position() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPos, m.lastMin
}

// Homed returns true if the last homing attempt succeeded, along with its status.
func (m *Mechanics) Homed() (bool, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.homed, m.status
}

// Update moves the indicator by the shortest path to the position
// representing the time. Only the hour and minute are used, and
// nothing moves if the minute of the cycle has not changed.
func (m *Mechanics) Update(t time.Time) {
	hour, minute, _ := t.Clock()
	now := (hour%m.geo.HoursPerCycle)*minutesPerHour + minute
	m.motion.Lock()
	defer m.motion.Unlock()
	m.mu.Lock()
	last, pos := m.lastMin, m.lastPos
	m.mu.Unlock()
	if now == last {
		return
	}
	target := m.Target(now)
	delta := Delta(target, pos, m.perCycle)
	lg.Debugf("%s: %02d:%02d minute %d, target %d, current %d, moving %d", m.Name, hour, minute, now, target, pos, delta)
	m.driver.Step(delta, io.Auto)
	m.mu.Lock()
	m.lastPos = mod(pos+delta, m.perCycle)
	m.lastMin = now
	m.mu.Unlock()
}

// Target returns the step position for a minute of the cycle.
// Recomputing from the minute on every update prevents
// rounding errors accumulating.
func (m *Mechanics) Target(minutes int) int {
	return minutes * m.perCycle / m.minutes
}

// Delta returns the signed step count from last to target, normalised so
// that the move is never more than half of the cycle.
func Delta(target, last, cycle int) int {
	d := target - last
	if d > cycle/2 {
		d -= cycle
	} else if d < -cycle/2 {
		d += cycle
	}
	return d
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

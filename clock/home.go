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

// Homing the clock to 12:00.

package clock

import (
	"context"

	"github.com/aamcrae/geneva/io"
)

const (
	cw  = 1
	ccw = -1
)

// Home moves the indicator to the home sensor, which marks 12:00.
// The final approach is always made slowly in the clockwise direction,
// so that gear backlash does not affect the home position:
//   - Move rapidly clockwise until the sensor is active (unless already there).
//     This is allowed a full cycle plus an hour.
//   - Move rapidly counterclockwise until the sensor is inactive.
//   - Move slowly clockwise until the sensor is active again.
//
// The last two phases are each allowed an hour of steps.
// On success the position is reset to 0 (12:00).
// The context is checked between steps; if it is done, HomeCanceled
// is returned with the position unchanged.
func (m *Mechanics) Home(ctx context.Context) Status {
	m.motion.Lock()
	st := m.home(ctx)
	m.motion.Unlock()
	m.mu.Lock()
	m.status = st
	if st == Success {
		m.homed = true
		m.lastPos = 0
		m.lastMin = 0
	} else {
		m.homed = false
	}
	m.mu.Unlock()
	if m.reporter != nil {
		m.reporter.Report(st)
	}
	return st
}

func (m *Mechanics) home(ctx context.Context) Status {
	lg.Infof("%s: homing clock to 12:00", m.Name)
	if !m.seek(ctx, true, cw, io.Fast, m.perCycle+m.perHour) {
		return m.failed(ctx, HomePhase1Error)
	}
	if !m.seek(ctx, false, ccw, io.Fast, m.perHour) {
		return m.failed(ctx, HomePhase2Error)
	}
	if !m.seek(ctx, true, cw, io.Slow, m.perHour) {
		return m.failed(ctx, HomePhase3Error)
	}
	lg.Infof("%s: done homing", m.Name)
	return Success
}

// seek steps one step at a time until the sensor reads want, checking
// the sensor before each step. It returns false if the budget is used up
// or the context is done. The budget is checked after the loop, so
// arriving on the very last step allowed still counts as a failure.
func (m *Mechanics) seek(ctx context.Context, want bool, dir int, speed io.Speed, budget int) bool {
	i := 0
	for ; m.sensor.IsHome() != want && i < budget; i++ {
		if ctx.Err() != nil {
			return false
		}
		m.driver.Step(dir, speed)
	}
	return i < budget
}

func (m *Mechanics) failed(ctx context.Context, st Status) Status {
	if ctx.Err() != nil {
		lg.Infof("%s: homing canceled: %v", m.Name, ctx.Err())
		return HomeCanceled
	}
	lg.Errorf("%s: %v", m.Name, st.Err())
	return st
}

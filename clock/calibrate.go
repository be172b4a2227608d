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

// Home sensor calibration

package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/aamcrae/geneva/io"
)

// CalibrationPolicy selects what calibration does when homing fails.
type CalibrationPolicy int

const (
	// RetryOnFailure ignores the homing result; the next pass homes again,
	// giving the operator a chance to adjust the sensor in between.
	RetryOnFailure CalibrationPolicy = iota
	// AbortOnFailure ends calibration with the homing error.
	AbortOnFailure
)

// ParsePolicy converts "retry" or "abort" to a CalibrationPolicy.
func ParsePolicy(s string) (CalibrationPolicy, error) {
	switch s {
	case "retry":
		return RetryOnFailure, nil
	case "abort":
		return AbortOnFailure, nil
	}
	return RetryOnFailure, fmt.Errorf("%s: unknown calibration policy", s)
}

func (p CalibrationPolicy) String() string {
	if p == AbortOnFailure {
		return "abort"
	}
	return "retry"
}

// Calibrate assists in positioning the home sensor. It repeatedly homes the
// clock, pauses so the indicator can be inspected against 12:00 and the sensor
// adjusted, then moves back an hour and pauses briefly before homing again.
// The loop runs until the button is pressed or the context is done; both
// are checked between each part of the loop, but not during a move.
// A nil error is returned when the loop is exited.
func (m *Mechanics) Calibrate(ctx context.Context) error {
	lg.Infof("%s: calibrating (policy %s)", m.Name, m.policy)
	defer lg.Infof("%s: done calibrating", m.Name)
	for !m.abort(ctx) {
		st := m.Home(ctx)
		if st != Success && st != HomeCanceled && m.policy == AbortOnFailure {
			return st.Err()
		}
		if m.abort(ctx) || !m.dwell(ctx, m.homeDwell) || m.abort(ctx) {
			break
		}
		m.motion.Lock()
		m.driver.Step(-m.perHour, io.Fast)
		m.motion.Unlock()
		if m.abort(ctx) || !m.dwell(ctx, m.backDwell) {
			break
		}
	}
	return nil
}

func (m *Mechanics) abort(ctx context.Context) bool {
	return ctx.Err() != nil || (m.button != nil && m.button.IsPressed())
}

// dwell waits for d, returning false if the context is done first.
func (m *Mechanics) dwell(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

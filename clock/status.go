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
	"errors"
	"fmt"
)

// Status is the result of homing the clock.
type Status int

const (
	NotHomed        Status = -1 // No homing attempt has completed.
	Success         Status = iota - 1
	HomePhase1Error        // Home sensor not found moving clockwise for a cycle and an hour.
	HomePhase2Error        // Could not move off the home sensor counterclockwise.
	HomePhase3Error        // Home sensor not found again after moving off it.
	HomeCanceled           // Homing was interrupted; the position is unknown.
)

var (
	ErrNotHomed   = errors.New("not homed")
	ErrHomePhase1 = errors.New("home phase 1: sensor not found")
	ErrHomePhase2 = errors.New("home phase 2: could not clear sensor")
	ErrHomePhase3 = errors.New("home phase 3: sensor lost")
	ErrCanceled   = errors.New("homing canceled")
)

var statusNames = map[Status]string{
	NotHomed:        "not-homed",
	Success:         "success",
	HomePhase1Error: "home-phase-1-error",
	HomePhase2Error: "home-phase-2-error",
	HomePhase3Error: "home-phase-3-error",
	HomeCanceled:    "home-canceled",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Err returns nil for Success, or the error matching the status.
func (s Status) Err() error {
	switch s {
	case Success:
		return nil
	case NotHomed:
		return ErrNotHomed
	case HomePhase1Error:
		return ErrHomePhase1
	case HomePhase2Error:
		return ErrHomePhase2
	case HomePhase3Error:
		return ErrHomePhase3
	case HomeCanceled:
		return ErrCanceled
	}
	return fmt.Errorf("unknown status %d", int(s))
}

// Reporter receives the status of each homing attempt.
type Reporter interface {
	Report(Status)
}

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
)

const minutesPerHour = 60

// Geometry describes the gearing between the motor and the clock indicator.
type Geometry struct {
	StepsPerRev   int // Motor steps per motor shaft revolution (half steps if half stepping)
	GearRatio     int // Motor revolutions per main gear revolution
	HoursPerRev   int // Hours shown per main gear revolution
	HoursPerCycle int // Hours shown before the face repeats
}

// DefaultGeometry is the Geneva clock gearing: a 32 tooth main gear
// driven by an 8 tooth motor gear, 3 hours per revolution and a 12 hour face.
func DefaultGeometry(stepsPerRev int) Geometry {
	return Geometry{
		StepsPerRev:   stepsPerRev,
		GearRatio:     32 / 8,
		HoursPerRev:   3,
		HoursPerCycle: 12,
	}
}

// Validate checks that positions over a cycle are an exact number of steps.
func (g Geometry) Validate() error {
	if g.StepsPerRev <= 0 || g.GearRatio <= 0 || g.HoursPerRev <= 0 || g.HoursPerCycle <= 0 {
		return fmt.Errorf("invalid geometry %+v", g)
	}
	if g.HoursPerCycle%g.HoursPerRev != 0 {
		return fmt.Errorf("hours per cycle (%d) is not a multiple of hours per revolution (%d)", g.HoursPerCycle, g.HoursPerRev)
	}
	if g.HoursPerCycle > 24 {
		return fmt.Errorf("hours per cycle (%d) exceeds a day", g.HoursPerCycle)
	}
	return nil
}

// StepsPerHour is truncated when a revolution is not a whole number of hours' steps.
func (g Geometry) StepsPerHour() int {
	return g.StepsPerRev * g.GearRatio / g.HoursPerRev
}

// StepsPerCycle is exact, as HoursPerCycle is a multiple of HoursPerRev.
func (g Geometry) StepsPerCycle() int {
	return g.StepsPerRev * g.GearRatio * (g.HoursPerCycle / g.HoursPerRev)
}

func (g Geometry) MinutesPerCycle() int {
	return g.HoursPerCycle * minutesPerHour
}

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

package sim

import (
	"time"
)

// Clock is a time source running Speedup times faster than real time,
// starting at Start.
type Clock struct {
	Start   time.Time
	Speedup float64
	begin   time.Time
	now     func() time.Time
}

// NewClock creates a Clock starting now.
func NewClock(start time.Time, speedup float64) *Clock {
	if speedup <= 0 {
		speedup = 1
	}
	return &Clock{Start: start, Speedup: speedup, begin: time.Now(), now: time.Now}
}

// Now returns the simulated time.
func (c *Clock) Now() time.Time {
	return c.Start.Add(c.elapsed())
}

// Until returns the real time before the next simulated minute.
func (c *Clock) Until() time.Duration {
	e := c.elapsed()
	next := c.Start.Add(e).Truncate(time.Minute).Add(time.Minute)
	return time.Duration(float64(next.Sub(c.Start.Add(e))) / c.Speedup)
}

func (c *Clock) elapsed() time.Duration {
	return time.Duration(float64(c.now().Sub(c.begin)) * c.Speedup)
}

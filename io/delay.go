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

package io

import (
	"time"
)

// Delayer blocks the caller for a precise duration.
type Delayer interface {
	Delay(time.Duration)
}

// Scheduler sleeps are only trusted for this much less than the
// requested delay; the remainder is spun.
const spinMargin = 2 * time.Millisecond

// BusyWait spins on the monotonic clock so that phase
// transitions are not subject to scheduler wakeup jitter.
type BusyWait struct{}

func (BusyWait) Delay(d time.Duration) {
	start := time.Now()
	if d > 2*spinMargin {
		time.Sleep(d - spinMargin)
	}
	for time.Since(start) < d {
	}
}

// NoDelay returns immediately.
type NoDelay struct{}

func (NoDelay) Delay(time.Duration) {}

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
	"context"
	"time"
)

// TimeSource supplies the time shown by the clock.
type TimeSource interface {
	Now() time.Time
	// Until returns the real time to wait before the next minute starts.
	Until() time.Duration
}

// ZoneTime is the wall clock time in a time zone.
type ZoneTime struct {
	Zone *time.Location
}

func (z ZoneTime) Now() time.Time {
	return time.Now().In(z.Zone)
}

// Until aligns updates to the start of each minute.
func (z ZoneTime) Until() time.Duration {
	n := time.Now()
	adj := time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), time.UTC)
	return adj.Truncate(time.Minute).Add(time.Minute).Sub(adj)
}

// Run homes the clock, retrying after each failure, and then
// updates it each minute until the context is done.
func (m *Mechanics) Run(ctx context.Context, ts TimeSource, retry time.Duration) error {
	for {
		st := m.Home(ctx)
		if st == Success {
			break
		}
		if st == HomeCanceled {
			return ctx.Err()
		}
		lg.Errorf("%s: homing failed, retrying in %s", m.Name, retry)
		if !m.dwell(ctx, retry) {
			return ctx.Err()
		}
	}
	for {
		m.Update(ts.Now())
		if !m.dwell(ctx, ts.Until()) {
			return ctx.Err()
		}
	}
}

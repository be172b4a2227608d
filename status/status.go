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

// Package status reports the result of homing the clock.
package status

import (
	logger "github.com/d2r2/go-logger"

	"github.com/aamcrae/geneva/clock"
)

var lg = logger.NewPackageLogger("status", logger.InfoLevel)

// Log logs each status.
type Log struct {
	Name string
}

func (l Log) Report(s clock.Status) {
	if err := s.Err(); err != nil {
		lg.Errorf("%s: homing failed: %v", l.Name, err)
		return
	}
	lg.Infof("%s: homed", l.Name)
}

// Multi sends each status to all of its reporters.
type Multi []clock.Reporter

func (m Multi) Report(s clock.Status) {
	for _, r := range m {
		r.Report(s)
	}
}

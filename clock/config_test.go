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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamcrae/geneva/io"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "clock.conf")
	require.NoError(t, os.WriteFile(f, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return f
}

func TestReadConfigDefaults(t *testing.T) {
	f := writeConfig(t,
		"[stepper]",
		"pins=19,16,17,21",
	)
	c, err := ReadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Pins, c.Pins)
	assert.Equal(t, 2048, c.Steps)
	assert.True(t, c.HalfStep)
	assert.Equal(t, 32, c.HomePin)
	assert.Equal(t, RetryOnFailure, c.Policy)
	assert.Equal(t, -1, c.LedPin)
	assert.Equal(t, "", c.Serial)
	assert.Equal(t, 0, c.Port)

	g := c.Geometry()
	assert.Equal(t, 4096, g.StepsPerRev)
	assert.Equal(t, 65536, g.StepsPerCycle())
	st := c.Stepper()
	assert.Equal(t, 2048, st.FullStepsPerRev)
	assert.Equal(t, 8.0, st.RapidSecondsPerRev)
	assert.Len(t, c.Options(), 2)
}

func TestReadConfig(t *testing.T) {
	f := writeConfig(t,
		"[stepper]",
		"pins=4,17,27,22",
		"steps=200",
		"rapid=2.5",
		"reversed=1",
		"halfstep=0",
		"[home]",
		"pin=5",
		"normallyopen=0",
		"button=-1",
		"[clock]",
		"gear=2",
		"hoursperrev=6",
		"hourspercycle=24",
		"dwell=3s",
		"backoff=250ms",
		"policy=abort",
		"zone=UTC",
		"retry=30s",
		"[gpio]",
		"backend=cdev",
		"chip=gpiochip1",
		"[status]",
		"serial=/dev/ttyUSB1,9600",
		"led=13",
		"[http]",
		"port=8080",
	)
	c, err := ReadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, [io.NumPins]int{4, 17, 27, 22}, c.Pins)
	assert.Equal(t, 200, c.Steps)
	assert.Equal(t, 2.5, c.Rapid)
	assert.True(t, c.Reversed)
	assert.False(t, c.HalfStep)
	assert.Equal(t, 5, c.HomePin)
	assert.False(t, c.NormallyOpen)
	assert.Equal(t, -1, c.ButtonPin)
	assert.Equal(t, 2, c.Gear)
	assert.Equal(t, 6, c.HoursPerRev)
	assert.Equal(t, 24, c.HoursPerCycle)
	assert.Equal(t, 3*time.Second, c.Dwell)
	assert.Equal(t, 250*time.Millisecond, c.Backoff)
	assert.Equal(t, AbortOnFailure, c.Policy)
	assert.Equal(t, time.UTC, c.Zone)
	assert.Equal(t, 30*time.Second, c.Retry)
	assert.Equal(t, "cdev", c.Backend)
	assert.Equal(t, "gpiochip1", c.Chip)
	assert.Equal(t, "/dev/ttyUSB1", c.Serial)
	assert.Equal(t, 9600, c.Baud)
	assert.Equal(t, 13, c.LedPin)
	assert.Equal(t, 8080, c.Port)

	g := c.Geometry()
	assert.Equal(t, 200, g.StepsPerRev)
	assert.Equal(t, 1440, g.MinutesPerCycle())
}

func TestReadConfigErrors(t *testing.T) {
	bad := [][]string{
		{"[home]", "pin=5"},
		{"[stepper]", "pins=1,2,3"},
		{"[stepper]", "pins=1,2,3,4", "steps=many"},
		{"[stepper]", "pins=1,2,3,4", "[clock]", "dwell=soon"},
		{"[stepper]", "pins=1,2,3,4", "[clock]", "policy=halt"},
		{"[stepper]", "pins=1,2,3,4", "[clock]", "zone=Nowhere/Special"},
		{"[stepper]", "pins=1,2,3,4", "[clock]", "hoursperrev=5"},
		{"[stepper]", "pins=1,2,3,4", "[status]", "serial=/dev/ttyS0,fast"},
		{"[stepper]", "pins=1,2,3,4", "[status]", "serial=/dev/ttyS0,9600,8"},
		{"[stepper]", "pins=1,2,3,4,5"},
		{"[stepper]", "pins=1,2,3,4", "steps=100,200"},
		{"[stepper]", "pins=1,2,3,4", "steps=100", "steps=200"},
		{"[stepper]", "pins=1,2,3,4", "rapid=2,5"},
		{"[stepper]", "pins=1,2,3,4", "steps"},
		{"[stepper]", "pins=1,2,3,4", "[clock]", "dwell=1s,2s"},
		{"[stepper]", "pins=1,2,3,4", "[gpio]", "backend=sysfs,rpio"},
		{"[stepper]", "pins=1,2,3,4", "[home]", "button=26,27"},
	}
	for _, lines := range bad {
		_, err := ReadConfig(writeConfig(t, lines...))
		assert.Error(t, err, "%v", lines)
	}
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)
}

func TestReadConfigComments(t *testing.T) {
	f := writeConfig(t,
		"# Generic Clock Board",
		"[stepper]",
		"pins=19,16,17,21       # GPIOs for motor phases 1-4",
		"steps=2048             # Full steps per motor revolution",
		"rapid=6.5              # Seconds per motor revolution at fast speed",
		"[clock]",
		"dwell=5s               # Calibration pause at home",
		"policy=abort           # retry, or abort",
		"[gpio]",
		"backend=rpio           # sysfs, rpio, cdev or sim",
		"[status]",
		"serial=/dev/ttyUSB0,115200 # Serial status output, 8N1",
	)
	c, err := ReadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, [io.NumPins]int{19, 16, 17, 21}, c.Pins)
	assert.Equal(t, 2048, c.Steps)
	assert.Equal(t, 6.5, c.Rapid)
	assert.Equal(t, 5*time.Second, c.Dwell)
	assert.Equal(t, AbortOnFailure, c.Policy)
	assert.Equal(t, "rpio", c.Backend)
	assert.Equal(t, "/dev/ttyUSB0", c.Serial)
	assert.Equal(t, 115200, c.Baud)
}

func TestReadConfigSerialDevice(t *testing.T) {
	f := writeConfig(t,
		"[stepper]",
		"pins=19,16,17,21",
		"[status]",
		"serial=/dev/ttyAMA0",
	)
	c, err := ReadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", c.Serial)
	assert.Equal(t, DefaultConfig().Baud, c.Baud)
}

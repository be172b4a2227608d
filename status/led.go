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

package status

import (
	"time"

	"github.com/aamcrae/geneva/clock"
	"github.com/aamcrae/geneva/io"
)

const (
	slowBlink = 2 * time.Second
	fastBlink = 250 * time.Millisecond
	ledDuty   = 50
)

// LED blinks an LED to show the homing status: slowly after
// a successful home, quickly after a failure.
type LED struct {
	pwm io.PWM
}

// NewLED creates an LED driven by the PWM output.
func NewLED(pwm io.PWM) *LED {
	return &LED{pwm: pwm}
}

// NewPinLED creates an LED on an output pin using a software PWM.
func NewPinLED(pin io.Setter) *LED {
	return NewLED(io.NewSwPWM(pin))
}

func (l *LED) Report(s clock.Status) {
	period := fastBlink
	if s == clock.Success {
		period = slowBlink
	}
	if err := l.pwm.Set(period, ledDuty); err != nil {
		lg.Errorf("status LED: %v", err)
	}
}

// Off turns the LED off.
func (l *LED) Off() {
	if err := l.pwm.Set(slowBlink, 0); err != nil {
		lg.Errorf("status LED: %v", err)
	}
}

// Close turns the LED off and stops the PWM.
func (l *LED) Close() {
	l.pwm.Close()
}

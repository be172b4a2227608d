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
	"fmt"
	"sync"
	"time"
)

// PWM is a pulse width modulated output.
type PWM interface {
	Close()
	Set(time.Duration, int) error
}

// SwPWM is a software PWM on a single output, used for slow
// signals such as blinking a status LED. A 0% duty cycle holds the
// output low, 100% holds it high.
type SwPWM struct {
	pin     Setter
	mu      sync.Mutex
	on, off time.Duration
	level   int
	update  chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// NewSwPWM creates a new s/w PWM controller, initially off.
func NewSwPWM(pin Setter) *SwPWM {
	p := &SwPWM{
		pin:     pin,
		update:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	p.write(0)
	go p.run()
	return p
}

// Set changes the period and duty cycle (as a percentage).
// It does not block; the new setting replaces any that the
// output has not yet picked up, and takes effect immediately.
func (p *SwPWM) Set(period time.Duration, duty int) error {
	if duty < 0 || duty > 100 {
		return fmt.Errorf("%d: invalid duty cycle percentage", duty)
	}
	if period <= 0 {
		return fmt.Errorf("%s: invalid period", period)
	}
	p.mu.Lock()
	p.on = period * time.Duration(duty) / 100
	p.off = period - p.on
	p.mu.Unlock()
	select {
	case p.update <- struct{}{}:
	default:
	}
	return nil
}

// Close stops the PWM and leaves the output low.
func (p *SwPWM) Close() {
	close(p.done)
	<-p.stopped
}

func (p *SwPWM) times() (time.Duration, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on, p.off
}

func (p *SwPWM) write(v int) {
	if err := p.pin.Set(v); err != nil {
		lg.Errorf("pwm: %v", err)
	}
	p.level = v
}

// run toggles the output, holding each level for its part of the period.
// A steady output waits for a new setting rather than a timer.
func (p *SwPWM) run() {
	defer close(p.stopped)
	level := 0
	for {
		on, off := p.times()
		switch {
		case on == 0:
			level = 0
		case off == 0:
			level = 1
		}
		if level != p.level {
			p.write(level)
		}
		var expired <-chan time.Time
		var t *time.Timer
		if on != 0 && off != 0 {
			d := off
			if level == 1 {
				d = on
			}
			t = time.NewTimer(d)
			expired = t.C
		}
		select {
		case <-p.done:
			if t != nil {
				t.Stop()
			}
			p.write(0)
			return
		case <-p.update:
		case <-expired:
			level ^= 1
		}
		if t != nil {
			t.Stop()
		}
	}
}

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

// GPIO character device backend.

package io

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// CdevBank is an OutputBank over lines requested from a gpiochip.
type CdevBank struct {
	mu      sync.Mutex
	lines   *gpiocdev.Lines
	offsets []int
	values  []int
}

// NewCdevBank requests the offsets on chip (e.g. "gpiochip0") as outputs, initially low.
func NewCdevBank(chip string, offsets []int) (*CdevBank, error) {
	if err := checkPins(offsets); err != nil {
		return nil, err
	}
	values := make([]int, len(offsets))
	l, err := gpiocdev.RequestLines(chip, offsets, gpiocdev.AsOutput(values...), gpiocdev.WithConsumer("geneva"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", chip, err)
	}
	return &CdevBank{lines: l, offsets: offsets, values: values}, nil
}

// Set drives the lines in mask high.
func (b *CdevBank) Set(mask uint32) {
	b.write(mask, 1)
}

// Clear drives the lines in mask low.
func (b *CdevBank) Clear(mask uint32) {
	b.write(mask, 0)
}

func (b *CdevBank) write(mask uint32, v int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.offsets {
		if mask&(1<<uint(o)) != 0 {
			b.values[i] = v
		}
	}
	if err := b.lines.SetValues(b.values); err != nil {
		lg.Errorf("cdev: set %v: %v", b.offsets, err)
	}
}

// Close releases the lines.
func (b *CdevBank) Close() {
	b.lines.Close()
}

// CdevLine is a single requested line, usable as an Input or a Setter.
type CdevLine struct {
	line *gpiocdev.Line
}

// NewCdevInput requests the line as an input with the pull-up bias set.
func NewCdevInput(chip string, offset int) (*CdevLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithConsumer("geneva"))
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", chip, offset, err)
	}
	return &CdevLine{line: l}, nil
}

// NewCdevOutput requests the line as an output, initially low.
func NewCdevOutput(chip string, offset int) (*CdevLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("geneva"))
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", chip, offset, err)
	}
	return &CdevLine{line: l}, nil
}

// Get returns the level of the line.
func (c *CdevLine) Get() (int, error) {
	return c.line.Value()
}

// Set drives the line.
func (c *CdevLine) Set(v int) error {
	return c.line.SetValue(v)
}

// Close releases the line.
func (c *CdevLine) Close() {
	c.line.Close()
}

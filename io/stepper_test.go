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
	"math/bits"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPins = [NumPins]int{19, 16, 17, 21}

type bankOp struct {
	set  bool
	mask uint32
}

// recorder captures output bank writes and delays.
type recorder struct {
	ops    []bankOp
	delays []time.Duration
	level  uint32
}

func (r *recorder) Set(mask uint32) {
	r.ops = append(r.ops, bankOp{true, mask})
	r.level |= mask
}

func (r *recorder) Clear(mask uint32) {
	r.ops = append(r.ops, bankOp{false, mask})
	r.level &^= mask
}

func (r *recorder) Delay(d time.Duration) {
	r.delays = append(r.delays, d)
}

func newTestStepper(t *testing.T, half, reversed bool) (*Stepper, *recorder) {
	t.Helper()
	r := new(recorder)
	s, err := NewStepper(r, StepperConfig{
		Pins:               testPins,
		Reversed:           reversed,
		HalfStep:           half,
		FullStepsPerRev:    2048,
		RapidSecondsPerRev: 8,
	}, r)
	require.NoError(t, err)
	r.ops = nil
	return s, r
}

func TestPhaseTableFull(t *testing.T) {
	seq := PhaseTable(testPins, false, false)
	assert.Equal(t, []uint32{1 << 19, 1 << 16, 1 << 17, 1 << 21}, seq)
	for _, p := range seq {
		assert.Equal(t, 1, bits.OnesCount32(p))
	}
}

func TestPhaseTableHalf(t *testing.T) {
	seq := PhaseTable(testPins, false, true)
	require.Len(t, seq, 8)
	for i := range seq {
		next := seq[(i+1)%len(seq)]
		// Adjacent half steps switch exactly one pin.
		assert.Equal(t, 1, bits.OnesCount32(seq[i]^next), "phase %d -> %d", i, (i+1)%len(seq))
		if i%2 == 0 {
			assert.Equal(t, 1, bits.OnesCount32(seq[i]))
		} else {
			assert.Equal(t, 2, bits.OnesCount32(seq[i]))
		}
	}
}

func TestPhaseTableReversed(t *testing.T) {
	for _, half := range []bool{false, true} {
		fwd := PhaseTable(testPins, false, half)
		rev := PhaseTable(testPins, true, half)
		assert.ElementsMatch(t, fwd, rev)
		assert.NotEqual(t, fwd, rev)
	}
	assert.Equal(t, []uint32{1 << 21, 1 << 17, 1 << 16, 1 << 19}, PhaseTable(testPins, true, false))
}

func TestNewStepperErrors(t *testing.T) {
	r := new(recorder)
	cases := []StepperConfig{
		{Pins: [NumPins]int{1, 2, 3, 32}, FullStepsPerRev: 2048, RapidSecondsPerRev: 8},
		{Pins: [NumPins]int{1, 2, 3, -1}, FullStepsPerRev: 2048, RapidSecondsPerRev: 8},
		{Pins: [NumPins]int{1, 2, 2, 4}, FullStepsPerRev: 2048, RapidSecondsPerRev: 8},
		{Pins: testPins, FullStepsPerRev: 0, RapidSecondsPerRev: 8},
		{Pins: testPins, FullStepsPerRev: 2048, RapidSecondsPerRev: 0},
	}
	for i, c := range cases {
		_, err := NewStepper(r, c, r)
		assert.Error(t, err, "case %d", i)
	}
}

func TestRapidDelay(t *testing.T) {
	s, _ := newTestStepper(t, true, false)
	assert.Equal(t, 1953*time.Microsecond, s.RapidDelay())
	assert.Equal(t, 4096, s.StepsPerRev())
	assert.Equal(t, 8, s.Phases())
	s, _ = newTestStepper(t, false, false)
	assert.Equal(t, 3906*time.Microsecond, s.RapidDelay())
	assert.Equal(t, 2048, s.StepsPerRev())
	assert.Equal(t, 4, s.Phases())
}

func TestStepZero(t *testing.T) {
	for _, half := range []bool{false, true} {
		s, r := newTestStepper(t, half, false)
		s.Step(3, Fast)
		phase := s.Phase()
		r.ops = nil
		for _, sp := range []Speed{Slow, Auto, Fast} {
			s.Step(0, sp)
		}
		assert.Equal(t, phase, s.Phase())
		assert.Zero(t, r.level)
		for _, op := range r.ops {
			assert.False(t, op.set)
			assert.Equal(t, ClearMask(testPins), op.mask)
		}
	}
}

func TestStepReversible(t *testing.T) {
	for _, half := range []bool{false, true} {
		for _, n := range []int{1, 3, 7, 8, 9, 100, 4097} {
			t.Run(fmt.Sprintf("half=%v/n=%d", half, n), func(t *testing.T) {
				s, _ := newTestStepper(t, half, false)
				s.Step(5, Fast)
				start := s.Phase()
				s.Step(n, Fast)
				s.Step(-n, Fast)
				assert.Equal(t, start, s.Phase())
				assert.Equal(t, int64(5), s.Position())
			})
		}
	}
}

func TestStepBackwardWraps(t *testing.T) {
	s, r := newTestStepper(t, true, false)
	s.Step(-1, Fast)
	assert.Equal(t, 7, s.Phase())
	require.Len(t, r.ops, 2)
	assert.Equal(t, PhaseTable(testPins, false, true)[7], r.ops[0].mask)
	assert.Equal(t, int64(-1), s.Position())
}

func TestStepPulsed(t *testing.T) {
	s, r := newTestStepper(t, true, false)
	seq := PhaseTable(testPins, false, true)
	s.Step(10, Auto)
	require.Len(t, r.ops, 20)
	for i := 0; i < 10; i++ {
		assert.Equal(t, bankOp{true, seq[(i+1)%8]}, r.ops[2*i])
		assert.Equal(t, bankOp{false, ClearMask(testPins)}, r.ops[2*i+1])
	}
	assert.Zero(t, r.level)
}

func TestStepDelays(t *testing.T) {
	s, r := newTestStepper(t, true, false)
	rapid := s.RapidDelay()

	s.Step(10, Slow)
	require.Len(t, r.delays, 10)
	for _, d := range r.delays {
		assert.Equal(t, 5*rapid, d)
	}

	r.delays = nil
	s.Step(-10, Fast)
	for _, d := range r.delays {
		assert.Equal(t, rapid, d)
	}

	r.delays = nil
	s.Step(100, Auto)
	require.Len(t, r.delays, 100)
	assert.Equal(t, 4*rapid, r.delays[0])
	assert.Equal(t, 3*rapid, r.delays[5])
	assert.Equal(t, 2*rapid, r.delays[10])
	assert.Equal(t, rapid, r.delays[20])
	assert.Equal(t, rapid, r.delays[50])
	assert.Equal(t, rapid, r.delays[80])
	assert.Equal(t, 2*rapid, r.delays[81])
	assert.Equal(t, 4*rapid, r.delays[99])
}

func TestDelayUnits(t *testing.T) {
	tests := []struct {
		j, n  int
		speed Speed
		want  int
	}{
		{0, 1, Slow, 5},
		{0, 1, Fast, 1},
		{0, 1, Auto, 7},
		{2, 3, Auto, 7},
		{7, 15, Auto, 5},
		{19, 1000, Auto, 2},
		{20, 1000, Auto, 1},
		{980, 1000, Auto, 1},
		{981, 1000, Auto, 2},
		{991, 1000, Auto, 3},
		{996, 1000, Auto, 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DelayUnits(tc.j, tc.n, tc.speed), "j=%d n=%d %s", tc.j, tc.n, tc.speed)
	}
}

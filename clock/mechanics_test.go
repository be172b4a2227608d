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
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamcrae/geneva/io"
)

type move struct {
	steps int
	speed io.Speed
}

// fakeDriver records moves and keeps a running position.
type fakeDriver struct {
	moves    []move
	position int
}

func (f *fakeDriver) Step(steps int, speed io.Speed) {
	f.moves = append(f.moves, move{steps, speed})
	f.position += steps
}

type never struct{}

func (never) IsHome() bool { return false }

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 11, hour, minute, 0, 0, time.UTC)
}

func newTestMechanics(t *testing.T, d Driver) *Mechanics {
	t.Helper()
	m, err := NewMechanics("test", d, never{}, DefaultGeometry(4096))
	require.NoError(t, err)
	return m
}

func TestGeometry(t *testing.T) {
	g := DefaultGeometry(2048 * 2)
	assert.NoError(t, g.Validate())
	assert.Equal(t, 4096*4/3, g.StepsPerHour())
	assert.Equal(t, 65536, g.StepsPerCycle())
	assert.Equal(t, 720, g.MinutesPerCycle())
	assert.Equal(t, g.StepsPerRev*g.GearRatio*(g.HoursPerCycle/g.HoursPerRev), g.StepsPerCycle())
	// Four main gear revolutions to a 12 hour face.
	assert.Equal(t, 4*g.StepsPerRev*g.GearRatio, g.StepsPerCycle())

	bad := []Geometry{
		{StepsPerRev: 0, GearRatio: 4, HoursPerRev: 3, HoursPerCycle: 12},
		{StepsPerRev: 4096, GearRatio: 4, HoursPerRev: 5, HoursPerCycle: 12},
		{StepsPerRev: 4096, GearRatio: 4, HoursPerRev: 3, HoursPerCycle: 0},
		{StepsPerRev: 4096, GearRatio: 4, HoursPerRev: 3, HoursPerCycle: 27},
	}
	for _, g := range bad {
		assert.Error(t, g.Validate(), "%+v", g)
		_, err := NewMechanics("bad", &fakeDriver{}, never{}, g)
		assert.Error(t, err)
	}
}

func TestTarget(t *testing.T) {
	m := newTestMechanics(t, &fakeDriver{})
	assert.Equal(t, 0, m.Target(0))
	assert.Equal(t, 65536/2, m.Target(6*60))
	assert.Equal(t, 65536/4, m.Target(3*60))
	assert.Equal(t, 32859, m.Target(6*60+1))
	assert.Equal(t, 65444, m.Target(719))
}

func TestUpdate(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	m.Update(at(0, 0))
	assert.Empty(t, d.moves, "no move when the minute is unchanged")

	m.Update(at(6, 0))
	require.Len(t, d.moves, 1)
	assert.Equal(t, move{32768, io.Auto}, d.moves[0])
	pos, min := m.Position()
	assert.Equal(t, 32768, pos)
	assert.Equal(t, 360, min)
}

func TestUpdateShortestPath(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	m.Update(at(0, 0))
	m.Update(at(6, 1))
	require.Len(t, d.moves, 1)
	assert.Equal(t, move{32859 - 65536, io.Auto}, d.moves[0])
	pos, min := m.Position()
	assert.Equal(t, 32859, pos)
	assert.Equal(t, 361, min)
}

func TestUpdateIdempotent(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	m.Update(at(3, 15))
	pos, min := m.Position()
	m.Update(at(3, 15))
	m.Update(time.Date(2024, 5, 11, 3, 15, 59, 0, time.UTC))
	assert.Len(t, d.moves, 1)
	p2, m2 := m.Position()
	assert.Equal(t, pos, p2)
	assert.Equal(t, min, m2)
}

func TestUpdateWrap(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	m.Update(at(11, 59))
	m.Update(at(0, 0))
	require.Len(t, d.moves, 2)
	assert.Equal(t, -92, d.moves[0].steps)
	assert.Equal(t, 92, d.moves[1].steps)
	pos, _ := m.Position()
	assert.Equal(t, 0, pos)
	assert.Equal(t, 0, d.position)

	// 23:59 to 12:00 is the same wrap on a 12 hour face.
	m.Update(at(23, 59))
	m.Update(at(12, 0))
	assert.Equal(t, -92, d.moves[2].steps)
	assert.Equal(t, 92, d.moves[3].steps)
}

func TestUpdateTwelveHour(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	m.Update(at(13, 30))
	pos, min := m.Position()
	assert.Equal(t, 90, min)
	assert.Equal(t, m.Target(90), pos)
	m.Update(at(1, 30))
	assert.Len(t, d.moves, 1)
}

func TestUpdateTracksTarget(t *testing.T) {
	d := &fakeDriver{}
	m := newTestMechanics(t, d)
	r := rand.New(rand.NewSource(1))
	cycle := m.Geometry().StepsPerCycle()
	for i := 0; i < 1000; i++ {
		m.Update(at(r.Intn(24), r.Intn(60)))
		pos, min := m.Position()
		assert.Equal(t, m.Target(min), pos)
		assert.GreaterOrEqual(t, pos, 0)
		assert.Less(t, pos, cycle)
		assert.Equal(t, pos, mod(d.position, cycle))
	}
	for _, mv := range d.moves {
		assert.LessOrEqual(t, abs(mv.steps), cycle/2)
		assert.NotZero(t, mv.steps)
	}
}

func TestDelta(t *testing.T) {
	const cycle = 1000
	for d := -cycle / 2; d <= cycle/2; d++ {
		assert.Equal(t, d, Delta(500+d, 500, cycle))
	}
	for d := cycle/2 + 1; d < cycle; d++ {
		for _, dd := range []int{d, -d} {
			n := Delta(dd, 0, cycle)
			assert.Less(t, abs(n), abs(dd))
			assert.Equal(t, mod(dd, cycle), mod(n, cycle))
		}
	}
	// Exactly half a cycle is not changed in either direction.
	assert.Equal(t, 500, Delta(500, 0, cycle))
	assert.Equal(t, -500, Delta(0, 500, cycle))
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

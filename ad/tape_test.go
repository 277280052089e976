// Copyright 2026 edgeasm Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeasm/edgeasm/simd"
)

type pair [2]simd.Double

func (p pair) NumElems() int          { return 2 }
func (p pair) Elem(i int) simd.Double { return p[i] }

func TestPassiveRoundTrip(t *testing.T) {
	r := NewRecorder()
	r.Record(3)
	before := r.Statements()

	wasActive := r.BeginPassive()
	r.EndPassive(wasActive)

	assert.Equal(t, before, r.Statements())
	assert.True(t, r.Active())
	assert.Zero(t, r.PassiveDepth())
}

func TestPassiveNestedLIFO(t *testing.T) {
	r := NewRecorder()

	outer := r.BeginPassive()
	require.True(t, outer)
	require.False(t, r.Active())

	inner := r.BeginPassive()
	require.False(t, inner, "inner region must see the suspended state")
	require.Equal(t, 2, r.PassiveDepth())

	r.EndPassive(inner)
	assert.False(t, r.Active(), "closing the inner region must not resume recording")
	r.EndPassive(outer)
	assert.True(t, r.Active())
	assert.Zero(t, r.PassiveDepth())
}

func TestPassiveDropsStatements(t *testing.T) {
	r := NewRecorder()
	r.Record(2)
	Passive(r, func() {
		r.Record(100)
		r.SetPreaccIn(Scalar(simd.Splat(1)), simd.Lanes)
	})
	r.Record(1)

	assert.Equal(t, 3, r.Statements())
	assert.Empty(t, r.Inputs())
	assert.True(t, r.Active())
}

func TestPassiveRestoresOnPanic(t *testing.T) {
	r := NewRecorder()
	assert.Panics(t, func() {
		Passive(r, func() { panic("boom") })
	})
	assert.True(t, r.Active())
	assert.Zero(t, r.PassiveDepth())
}

func TestPassiveOnInactiveTape(t *testing.T) {
	var r Recorder // zero value is not recording
	Passive(&r, func() {})
	assert.False(t, r.Active())
}

func TestEndPassiveUnbalanced(t *testing.T) {
	r := NewRecorder()
	assert.Panics(t, func() { r.EndPassive(true) })
}

func TestSetPreaccInLanes(t *testing.T) {
	r := NewRecorder()
	var x pair
	for k := range simd.Lanes {
		x[0][k] = float64(k)
		x[1][k] = float64(10 + k)
	}

	r.SetPreaccIn(x, simd.Lanes)
	r.SetPreaccIn(x, 1)
	r.SetPreaccIn(Scalar(simd.Splat(7)), simd.Lanes+5)

	in := r.Inputs()
	require.Len(t, in, 3)

	assert.Equal(t, 2, in[0].Elems)
	assert.Equal(t, simd.Lanes, in[0].Lanes)
	assert.Len(t, in[0].Values, 2*simd.Lanes)

	// Only the active lane of each entry is registered.
	assert.Equal(t, []float64{0, 10}, in[1].Values)

	assert.Equal(t, simd.Lanes, in[2].Lanes, "lane count is clamped to simd.Lanes")
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder()
	r.Record(4)
	r.SetPreaccIn(Scalar{}, 1)
	r.BeginPassive()
	r.Reset()

	assert.True(t, r.Active())
	assert.Zero(t, r.Statements())
	assert.Empty(t, r.Inputs())
	assert.Zero(t, r.PassiveDepth())
}

func TestNoTape(t *testing.T) {
	var tape Tape = NoTape{}
	assert.False(t, tape.BeginPassive())
	tape.EndPassive(false)
	tape.Record(1)
	tape.SetPreaccIn(Scalar{}, simd.Lanes)
}

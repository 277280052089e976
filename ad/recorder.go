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

import "github.com/edgeasm/edgeasm/simd"

// Input is one registered pre-accumulation input.
type Input struct {
	// Elems is the number of entries of the operand.
	Elems int
	// Lanes is the number of valid lanes.
	Lanes int
	// Values holds the valid lanes of every entry, entry-major.
	Values []float64
}

// Recorder is a reference Tape. It starts recording, counts the statements
// and inputs registered while recording, and tracks passive nesting.
//
// A Recorder is not safe for concurrent use.
type Recorder struct {
	active     bool
	depth      int
	statements int
	inputs     []Input
}

var _ Tape = (*Recorder)(nil)

// NewRecorder returns a Recorder that is recording.
func NewRecorder() *Recorder {
	return &Recorder{active: true}
}

// SetPreaccIn implements Tape. Calls made while passive are ignored.
func (r *Recorder) SetPreaccIn(x Operand, lanes int) {
	if !r.active {
		return
	}
	lanes = max(0, min(lanes, simd.Lanes))
	in := Input{
		Elems:  x.NumElems(),
		Lanes:  lanes,
		Values: make([]float64, 0, x.NumElems()*lanes),
	}
	for i := 0; i < in.Elems; i++ {
		e := x.Elem(i)
		in.Values = append(in.Values, e[:lanes]...)
	}
	r.inputs = append(r.inputs, in)
}

// BeginPassive implements Tape.
func (r *Recorder) BeginPassive() bool {
	wasActive := r.active
	r.active = false
	r.depth++
	return wasActive
}

// EndPassive implements Tape.
func (r *Recorder) EndPassive(wasActive bool) {
	if r.depth == 0 {
		panic("ad: EndPassive without matching BeginPassive")
	}
	r.depth--
	r.active = wasActive
}

// Record implements Tape. Statements recorded while passive are dropped.
func (r *Recorder) Record(n int) {
	if r.active {
		r.statements += n
	}
}

// Active reports whether the tape is recording.
func (r *Recorder) Active() bool {
	return r.active
}

// PassiveDepth returns the number of open passive regions.
func (r *Recorder) PassiveDepth() int {
	return r.depth
}

// Statements returns the number of recorded statements.
func (r *Recorder) Statements() int {
	return r.statements
}

// Inputs returns the registered pre-accumulation inputs in call order.
func (r *Recorder) Inputs() []Input {
	return r.inputs
}

// Reset clears statements and inputs and resumes recording.
func (r *Recorder) Reset() {
	r.active = true
	r.depth = 0
	r.statements = 0
	r.inputs = r.inputs[:0]
}

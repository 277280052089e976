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

// Package ad defines the contract between the edge assembly kernels and an
// automatic-differentiation tape.
//
// The kernels need three things from a tape:
//
//   - SetPreaccIn marks a gathered operand as an independent input of the
//     current kernel, so that the tape can pre-accumulate the kernel's local
//     derivatives instead of recording every statement.
//   - BeginPassive/EndPassive suspend recording around bookkeeping writes
//     (the Jacobian update) that must not enter the derivative graph.
//   - Record counts statements that write active values into global data.
//
// NoTape is used for primal runs. Recorder is a reference implementation
// that keeps the state these calls manipulate, for tests and debugging.
// A tape belongs to one goroutine; the loop driver hands every worker its own.
package ad

import "github.com/edgeasm/edgeasm/simd"

// Operand is a lane-vectorized value made of NumElems entries.
type Operand interface {
	NumElems() int
	Elem(i int) simd.Double
}

// Tape is the differentiation-tape interface required by the assembly core.
type Tape interface {
	// SetPreaccIn registers x as a pre-accumulation input. Only the first
	// lanes lanes are valid; the rest belong to padding and are ignored.
	SetPreaccIn(x Operand, lanes int)

	// BeginPassive suspends recording and returns whether the tape was
	// recording before the call.
	BeginPassive() bool

	// EndPassive restores the state returned by the matching BeginPassive.
	EndPassive(wasActive bool)

	// Record registers n statements that write active values.
	Record(n int)
}

// Scalar adapts a single lane-vectorized value to Operand.
type Scalar simd.Double

// NumElems returns 1.
func (Scalar) NumElems() int { return 1 }

// Elem returns the value.
func (s Scalar) Elem(int) simd.Double { return simd.Double(s) }

// NoTape is the tape of primal (non-differentiated) runs: every call is a
// no-op and the tape is never recording.
type NoTape struct{}

func (NoTape) SetPreaccIn(Operand, int) {}
func (NoTape) BeginPassive() bool       { return false }
func (NoTape) EndPassive(bool)          {}
func (NoTape) Record(int)               {}

// Passive runs fn with recording suspended on t and restores the previous
// state when fn returns or panics.
//
// Example:
//
//	ad.Passive(tape, func() {
//	    jacobian.UpdateBlocks(iEdge, iPoint, jPoint, jacI, jacJ, 1)
//	})
func Passive(t Tape, fn func()) {
	wasActive := t.BeginPassive()
	defer t.EndPassive(wasActive)
	fn()
}

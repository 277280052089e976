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

// Package tensor provides fixed-size vectors and matrices of lane-vectorized
// scalars for edge kernels.
//
// The size of a Vector is the length of its backing array type, so it is
// fixed by the type and the value lives on the stack:
//
//	var flux tensor.Vec5          // five simd.Double entries
//	var jac tensor.Mat5           // 5x5, row-major
//	flux.Set(0, simd.Splat(1))
//
// Matrices store Rows row vectors of Cols entries each. Both layouts are
// contiguous; there is no resizing and no bounds checking beyond Go's own.
package tensor

import (
	"iter"

	"github.com/edgeasm/edgeasm/simd"
)

// MaxSize is the largest supported vector size and matrix dimension.
const MaxSize = 8

// Backing arrays for vectors of size 1 to MaxSize.
type (
	A1 = [1]simd.Double
	A2 = [2]simd.Double
	A3 = [3]simd.Double
	A4 = [4]simd.Double
	A5 = [5]simd.Double
	A6 = [6]simd.Double
	A7 = [7]simd.Double
	A8 = [8]simd.Double
)

// Array is the set of backing arrays a Vector can use.
type Array interface {
	A1 | A2 | A3 | A4 | A5 | A6 | A7 | A8
}

// Vector is a fixed-size vector of lane-vectorized scalars. The zero value is
// the zero vector.
type Vector[A Array] struct {
	data A
}

// Common vector sizes.
type (
	Vec1 = Vector[A1]
	Vec2 = Vector[A2]
	Vec3 = Vector[A3]
	Vec4 = Vector[A4]
	Vec5 = Vector[A5]
	Vec6 = Vector[A6]
	Vec7 = Vector[A7]
	Vec8 = Vector[A8]
)

// SizeOf returns the number of entries of a Vector[A].
func SizeOf[A Array]() int {
	var a A
	return len(a)
}

// Splat returns a vector whose entry i holds values[i] in every lane.
// Missing values are zero, extra values are ignored.
func Splat[A Array](values ...float64) Vector[A] {
	var v Vector[A]
	n := min(len(v.data), len(values))
	for i := 0; i < n; i++ {
		v.data[i] = simd.Splat(values[i])
	}
	return v
}

// Size returns the number of entries.
func (v Vector[A]) Size() int {
	return len(v.data)
}

// At returns entry i.
func (v Vector[A]) At(i int) simd.Double {
	return v.data[i]
}

// Set stores x as entry i.
func (v *Vector[A]) Set(i int, x simd.Double) {
	v.data[i] = x
}

// Add returns v + o.
func (v Vector[A]) Add(o Vector[A]) Vector[A] {
	for i := 0; i < len(v.data); i++ {
		v.data[i] = v.data[i].Add(o.data[i])
	}
	return v
}

// Sub returns v - o.
func (v Vector[A]) Sub(o Vector[A]) Vector[A] {
	for i := 0; i < len(v.data); i++ {
		v.data[i] = v.data[i].Sub(o.data[i])
	}
	return v
}

// Scale returns v with every entry multiplied lane-wise by s.
func (v Vector[A]) Scale(s simd.Double) Vector[A] {
	for i := 0; i < len(v.data); i++ {
		v.data[i] = v.data[i].Mul(s)
	}
	return v
}

// All returns an iterator over the entries in order.
func (v Vector[A]) All() iter.Seq[simd.Double] {
	return func(yield func(simd.Double) bool) {
		for i := 0; i < len(v.data); i++ {
			if !yield(v.data[i]) {
				return
			}
		}
	}
}

// Lane copies lane k of every entry into dst, which must hold Size values.
func (v Vector[A]) Lane(k int, dst []float64) {
	_ = dst[len(v.data)-1]
	for i := 0; i < len(v.data); i++ {
		dst[i] = v.data[i][k]
	}
}

// NumElems returns the number of lane-vectorized entries.
func (v Vector[A]) NumElems() int {
	return len(v.data)
}

// Elem returns entry i. Together with NumElems it lets a Vector be
// registered with a differentiation tape.
func (v Vector[A]) Elem(i int) simd.Double {
	return v.data[i]
}

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

// Package simd provides the lane-vectorized scalar types used by the edge
// assembly kernels.
//
// A Double batches Lanes independent float64 problem instances; every
// operation acts lane by lane. Lanes is a compile-time constant chosen per
// architecture (see lanes_*.go) so that values stay on the stack and loops
// over lanes have a constant trip count. Building with the edgeasm_scalar tag
// forces a single lane, which behaves exactly like plain float64 arithmetic.
//
// Basic usage:
//
//	a := simd.Splat(2)
//	b := simd.Load(data)
//	c := a.Mul(b).Add(simd.Splat(1))
//	c.Store(out)
package simd

import "math"

// Double holds Lanes float64 values that are operated on together.
type Double [Lanes]float64

// Int holds Lanes integer indices, one per lane.
type Int [Lanes]int

// Splat returns a Double with every lane set to x.
func Splat(x float64) Double {
	var d Double
	for k := range d {
		d[k] = x
	}
	return d
}

// Load reads the first Lanes values of src. Missing values are zero.
func Load(src []float64) Double {
	var d Double
	copy(d[:], src)
	return d
}

// Store writes the lanes of d to dst, truncating to len(dst).
func (d Double) Store(dst []float64) {
	copy(dst, d[:])
}

// Lane returns the value of lane k.
func (d Double) Lane(k int) float64 { return d[k] }

// SetLane sets lane k to x.
func (d *Double) SetLane(k int, x float64) { d[k] = x }

// Add returns d + o.
func (d Double) Add(o Double) Double {
	for k := range d {
		d[k] += o[k]
	}
	return d
}

// Sub returns d - o.
func (d Double) Sub(o Double) Double {
	for k := range d {
		d[k] -= o[k]
	}
	return d
}

// Mul returns d * o.
func (d Double) Mul(o Double) Double {
	for k := range d {
		d[k] *= o[k]
	}
	return d
}

// Div returns d / o.
func (d Double) Div(o Double) Double {
	for k := range d {
		d[k] /= o[k]
	}
	return d
}

// MulAdd returns d*b + c.
func (d Double) MulAdd(b, c Double) Double {
	for k := range d {
		d[k] = d[k]*b[k] + c[k]
	}
	return d
}

// Scale returns d multiplied by the scalar s in every lane.
func (d Double) Scale(s float64) Double {
	for k := range d {
		d[k] *= s
	}
	return d
}

// Neg returns -d.
func (d Double) Neg() Double {
	for k := range d {
		d[k] = -d[k]
	}
	return d
}

// Abs returns |d|.
func (d Double) Abs() Double {
	for k := range d {
		d[k] = math.Abs(d[k])
	}
	return d
}

// Sqrt returns the lane-wise square root. Negative lanes produce NaN.
func (d Double) Sqrt() Double {
	for k := range d {
		d[k] = math.Sqrt(d[k])
	}
	return d
}

// Max returns the lane-wise maximum of d and o.
func (d Double) Max(o Double) Double {
	for k := range d {
		d[k] = math.Max(d[k], o[k])
	}
	return d
}

// Min returns the lane-wise minimum of d and o.
func (d Double) Min(o Double) Double {
	for k := range d {
		d[k] = math.Min(d[k], o[k])
	}
	return d
}

// Sum returns the horizontal sum of all lanes.
func (d Double) Sum() float64 {
	var s float64
	for _, x := range d {
		s += x
	}
	return s
}

// Iota returns an Int whose lane k holds start+k.
func Iota(start int) Int {
	var n Int
	for k := range n {
		n[k] = start + k
	}
	return n
}

// Lane returns the index held by lane k.
func (n Int) Lane(k int) int { return n[k] }

// SplatInt returns an Int with every lane set to i.
func SplatInt(i int) Int {
	var n Int
	for k := range n {
		n[k] = i
	}
	return n
}

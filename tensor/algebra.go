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

package tensor

import (
	"iter"

	"github.com/edgeasm/edgeasm/simd"
)

// DotSeq computes the lane-wise dot product of the first Size values of seq
// with v: Σ seq[i] * v[i]. seq may be any forward iterable source, e.g.
// another vector's All, slices.Values over a []simd.Double, or Broadcast over
// passive data.
// If seq yields fewer than Size values the missing terms are zero.
//
// Example:
//
//	normal := tensor.Broadcast(edgeNormal) // []float64 of length nDim
//	proj := tensor.DotSeq(normal, dist)
func DotSeq[A Array](seq iter.Seq[simd.Double], v Vector[A]) simd.Double {
	var sum simd.Double
	i := 0
	for x := range seq {
		if i == len(v.data) {
			break
		}
		sum = x.MulAdd(v.data[i], sum)
		i++
	}
	return sum
}

// Dot computes the lane-wise dot product of a and b.
func Dot[A Array](a, b Vector[A]) simd.Double {
	return DotSeq(a.All(), b)
}

// SquaredNormSeq computes Σ seq[i]^2 over the first Size values of seq.
func SquaredNormSeq[A Array](seq iter.Seq[simd.Double]) simd.Double {
	var sum simd.Double
	n, i := SizeOf[A](), 0
	for x := range seq {
		if i == n {
			break
		}
		sum = x.MulAdd(x, sum)
		i++
	}
	return sum
}

// SquaredNorm computes the lane-wise squared L2 norm of v.
func SquaredNorm[A Array](v Vector[A]) simd.Double {
	return SquaredNormSeq[A](v.All())
}

// Norm computes the lane-wise L2 norm of v. NaN and Inf propagate.
func Norm[A Array](v Vector[A]) simd.Double {
	return SquaredNorm(v).Sqrt()
}

// Broadcast returns an iterator that yields every element of s splatted
// across all lanes.
func Broadcast(s []float64) iter.Seq[simd.Double] {
	return func(yield func(simd.Double) bool) {
		for _, x := range s {
			if !yield(simd.Splat(x)) {
				return
			}
		}
	}
}

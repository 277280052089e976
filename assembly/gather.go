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

// Package assembly scatters edge contributions into the global linear
// system.
//
// An edge kernel processes simd.Lanes edges at once. It gathers its local
// operands from point fields (GatherScalar, GatherVector, GatherMatrix,
// DistanceVector), computes the edge flux and its Jacobians with the tensor
// types, and hands them to UpdateLinearSystem, which writes them into the
// residual and the Jacobian with one of two strategies:
//
//   - Coloring accumulates directly into point-indexed storage. It is safe
//     only when no two concurrently processed edges share a point, which
//     the edge coloring of the Loop guarantees.
//   - Direct writes into edge-indexed storage that every edge owns. A second
//     phase (ReduceEdgeFluxes, SetDiagonalAsColumnSum) sums the edge values
//     into the points.
//
// Loop and Run drive a kernel over all edges of a mesh with either
// strategy, on a persistent worker pool with one tape per worker.
package assembly

import (
	"fmt"

	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/simd"
	"github.com/edgeasm/edgeasm/tensor"
)

// GatherScalar reads vars at the point of every lane and registers the
// result with t. Only the first active lanes are read; the remaining lanes
// repeat the last active one.
func GatherScalar(t ad.Tape, iPoint simd.Int, active int, vars *container.Array1D) simd.Double {
	var x simd.Double
	active = min(max(active, 0), simd.Lanes)
	for k := 0; k < active; k++ {
		x[k] = vars.At(iPoint[k])
	}
	padLanes(&x, active)
	t.SetPreaccIn(ad.Scalar(x), active)
	return x
}

// GatherVector reads the first Size columns of row iPoint[k] of vars into
// lane k of the result and registers it with t. It panics if vars has fewer
// columns than the vector.
func GatherVector[A tensor.Array](t ad.Tape, iPoint simd.Int, active int, vars *container.Array2D) tensor.Vector[A] {
	var v tensor.Vector[A]
	n := v.Size()
	if vars.Cols() < n {
		panic(fmt.Sprintf("assembly: gathering %d values from rows of %d", n, vars.Cols()))
	}
	active = min(max(active, 0), simd.Lanes)
	for i := 0; i < n; i++ {
		var x simd.Double
		for k := 0; k < active; k++ {
			x[k] = vars.At(iPoint[k], i)
		}
		padLanes(&x, active)
		v.Set(i, x)
	}
	t.SetPreaccIn(v, active)
	return v
}

// GatherMatrix reads the leading Rows x Cols entries of block iPoint[k] of
// vars into lane k of the result and registers it with t. It panics if the
// blocks of vars are smaller than the matrix.
func GatherMatrix[A tensor.Array, R tensor.RowArray[A]](t ad.Tape, iPoint simd.Int, active int, vars *container.Array3D) tensor.Matrix[A, R] {
	var m tensor.Matrix[A, R]
	rows, cols := m.Rows(), m.Cols()
	if bm, bn := vars.BlockShape(); bm < rows || bn < cols {
		panic(fmt.Sprintf("assembly: gathering %dx%d values from blocks of %dx%d", rows, cols, bm, bn))
	}
	active = min(max(active, 0), simd.Lanes)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			var x simd.Double
			for k := 0; k < active; k++ {
				x[k] = vars.At(iPoint[k], i, j)
			}
			padLanes(&x, active)
			m.Set(i, j, x)
		}
	}
	t.SetPreaccIn(m, active)
	return m
}

// padLanes copies the last active lane into the inactive ones, so that
// padding lanes compute on valid data.
func padLanes(x *simd.Double, active int) {
	if active == 0 {
		return
	}
	for k := active; k < simd.Lanes; k++ {
		x[k] = x[active-1]
	}
}

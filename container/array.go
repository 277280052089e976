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

// Package container holds the global data structures the edge kernels read
// from and write to: point-indexed field arrays, the block residual vector
// and the block-sparse Jacobian.
//
// Containers are owned by the caller. Kernels only borrow them for the
// duration of a call and never resize them.
package container

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when data does not match the requested shape.
	ErrShape = errors.New("container: shape mismatch")

	// ErrPattern is returned when a sparsity pattern cannot be built.
	ErrPattern = errors.New("container: invalid sparsity pattern")
)

// Array1D is a point-indexed array of scalars.
type Array1D struct {
	data []float64
}

// NewArray1D allocates a zeroed array of n values.
func NewArray1D(n int) *Array1D {
	return &Array1D{data: make([]float64, n)}
}

// WrapArray1D uses data as the backing store without copying.
func WrapArray1D(data []float64) *Array1D {
	return &Array1D{data: data}
}

// Len returns the number of values.
func (a *Array1D) Len() int { return len(a.data) }

// At returns value i.
func (a *Array1D) At(i int) float64 { return a.data[i] }

// Set stores x at i.
func (a *Array1D) Set(i int, x float64) { a.data[i] = x }

// Data returns the backing slice.
func (a *Array1D) Data() []float64 { return a.data }

// Array2D is a row-major rows x cols array, one row per point (or edge).
type Array2D struct {
	rows, cols int
	data       []float64
}

// NewArray2D allocates a zeroed rows x cols array.
func NewArray2D(rows, cols int) *Array2D {
	return &Array2D{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// WrapArray2D uses data as the backing store of a rows x cols array.
func WrapArray2D(data []float64, rows, cols int) (*Array2D, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShape, len(data), rows, cols)
	}
	return &Array2D{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (a *Array2D) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a *Array2D) Cols() int { return a.cols }

// At returns entry (i, j).
func (a *Array2D) At(i, j int) float64 { return a.data[i*a.cols+j] }

// Set stores x at (i, j).
func (a *Array2D) Set(i, j int, x float64) { a.data[i*a.cols+j] = x }

// Row returns row i as a sub-slice of the backing store.
func (a *Array2D) Row(i int) []float64 {
	return a.data[i*a.cols : (i+1)*a.cols : (i+1)*a.cols]
}

// Data returns the backing slice.
func (a *Array2D) Data() []float64 { return a.data }

// Array3D stores one row-major m x n block per row, e.g. a per-point
// gradient of nVar variables in nDim directions.
type Array3D struct {
	rows, m, n int
	data       []float64
}

// NewArray3D allocates a zeroed array of rows blocks of m x n values.
func NewArray3D(rows, m, n int) *Array3D {
	return &Array3D{rows: rows, m: m, n: n, data: make([]float64, rows*m*n)}
}

// WrapArray3D uses data as the backing store of rows blocks of m x n values.
func WrapArray3D(data []float64, rows, m, n int) (*Array3D, error) {
	if rows < 0 || m < 0 || n < 0 || len(data) != rows*m*n {
		return nil, fmt.Errorf("%w: %d values for %dx%dx%d", ErrShape, len(data), rows, m, n)
	}
	return &Array3D{rows: rows, m: m, n: n, data: data}, nil
}

// Rows returns the number of blocks.
func (a *Array3D) Rows() int { return a.rows }

// BlockShape returns the dimensions of one block.
func (a *Array3D) BlockShape() (m, n int) { return a.m, a.n }

// Block returns block i, row-major, as a sub-slice of the backing store.
func (a *Array3D) Block(i int) []float64 {
	sz := a.m * a.n
	return a.data[i*sz : (i+1)*sz : (i+1)*sz]
}

// At returns entry (j, k) of block i.
func (a *Array3D) At(i, j, k int) float64 { return a.data[(i*a.m+j)*a.n+k] }

// Set stores x at entry (j, k) of block i.
func (a *Array3D) Set(i, j, k int, x float64) { a.data[(i*a.m+j)*a.n+k] = x }

// Data returns the backing slice.
func (a *Array3D) Data() []float64 { return a.data }

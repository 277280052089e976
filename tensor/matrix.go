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

import "github.com/edgeasm/edgeasm/simd"

// RowArray is the set of row storages of a Matrix whose rows are Vector[A].
type RowArray[A Array] interface {
	[1]Vector[A] | [2]Vector[A] | [3]Vector[A] | [4]Vector[A] |
		[5]Vector[A] | [6]Vector[A] | [7]Vector[A] | [8]Vector[A]
}

// Row storages for matrices with 1 to MaxSize rows.
type (
	R1[A Array] = [1]Vector[A]
	R2[A Array] = [2]Vector[A]
	R3[A Array] = [3]Vector[A]
	R4[A Array] = [4]Vector[A]
	R5[A Array] = [5]Vector[A]
	R6[A Array] = [6]Vector[A]
	R7[A Array] = [7]Vector[A]
	R8[A Array] = [8]Vector[A]
)

// Matrix is a fixed-size row-major matrix of lane-vectorized scalars with
// len(R) rows and len(A) columns. The zero value is the zero matrix.
type Matrix[A Array, R RowArray[A]] struct {
	rows R
}

// Square matrices, e.g. the Jacobian blocks of a system with nVar variables.
type (
	Mat1 = Matrix[A1, R1[A1]]
	Mat2 = Matrix[A2, R2[A2]]
	Mat3 = Matrix[A3, R3[A3]]
	Mat4 = Matrix[A4, R4[A4]]
	Mat5 = Matrix[A5, R5[A5]]
	Mat6 = Matrix[A6, R6[A6]]
	Mat7 = Matrix[A7, R7[A7]]
	Mat8 = Matrix[A8, R8[A8]]
)

// Rows returns the number of rows.
func (m Matrix[A, R]) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns.
func (m Matrix[A, R]) Cols() int {
	return SizeOf[A]()
}

// At returns entry (i, j).
func (m Matrix[A, R]) At(i, j int) simd.Double {
	return m.rows[i].data[j]
}

// Set stores x as entry (i, j).
func (m *Matrix[A, R]) Set(i, j int, x simd.Double) {
	m.rows[i].data[j] = x
}

// Row returns row i.
func (m Matrix[A, R]) Row(i int) Vector[A] {
	return m.rows[i]
}

// SetRow replaces row i.
func (m *Matrix[A, R]) SetRow(i int, v Vector[A]) {
	m.rows[i] = v
}

// SetSplat sets entry (i, j) to values[i][j] in every lane. Missing entries
// are left unchanged.
func (m *Matrix[A, R]) SetSplat(values ...[]float64) {
	n := min(len(m.rows), len(values))
	for i := 0; i < n; i++ {
		cols := min(SizeOf[A](), len(values[i]))
		for j := 0; j < cols; j++ {
			m.rows[i].data[j] = simd.Splat(values[i][j])
		}
	}
}

// Add returns m + o.
func (m Matrix[A, R]) Add(o Matrix[A, R]) Matrix[A, R] {
	for i := 0; i < len(m.rows); i++ {
		m.rows[i] = m.rows[i].Add(o.rows[i])
	}
	return m
}

// Scale returns m with every entry multiplied lane-wise by s.
func (m Matrix[A, R]) Scale(s simd.Double) Matrix[A, R] {
	for i := 0; i < len(m.rows); i++ {
		m.rows[i] = m.rows[i].Scale(s)
	}
	return m
}

// Lane copies lane k of every entry into dst in row-major order. dst must
// hold Rows*Cols values.
func (m Matrix[A, R]) Lane(k int, dst []float64) {
	cols := SizeOf[A]()
	_ = dst[len(m.rows)*cols-1]
	for i := 0; i < len(m.rows); i++ {
		m.rows[i].Lane(k, dst[i*cols:(i+1)*cols])
	}
}

// NumElems returns Rows*Cols.
func (m Matrix[A, R]) NumElems() int {
	return len(m.rows) * SizeOf[A]()
}

// Elem returns entry e in row-major order.
func (m Matrix[A, R]) Elem(e int) simd.Double {
	cols := SizeOf[A]()
	return m.rows[e/cols].data[e%cols]
}

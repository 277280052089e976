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

package container

import (
	"fmt"
	"slices"
)

// SysMatrix is a square block-sparse matrix in block compressed sparse row
// format. Every block is a row-major NumVars x NumVars array. The pattern of
// an edge-based discretization holds the diagonal block of every point and
// the two off-diagonal blocks (i, j) and (j, i) of every edge.
//
// Block writes are not synchronized. Concurrent writers must touch disjoint
// blocks: under graph coloring no two concurrent edges share a point, and
// edge-owned blocks are written by their edge only.
type SysMatrix struct {
	nPoint, nVar int

	rowPtr []int // len nPoint+1, block offsets of each row
	colInd []int // column of each block, sorted within a row

	diagPtr   []int    // block index of (i, i)
	edgePtr   [][2]int // block indices of (i, j) and (j, i) per edge
	transpose []int    // block index of the transposed position

	values []float64
}

// NewSysMatrix builds the pattern for nPoint points coupled by edges and
// allocates zeroed blocks of nVar x nVar values. Edges must reference valid
// points, must not be self loops and must be unique (in either orientation),
// so that every edge owns its two off-diagonal blocks.
func NewSysMatrix(nPoint, nVar int, edges [][2]int) (*SysMatrix, error) {
	if nPoint < 0 || nVar <= 0 {
		return nil, fmt.Errorf("%w: %d points of %d variables", ErrPattern, nPoint, nVar)
	}

	neighbors := make([][]int, nPoint)
	for i := range neighbors {
		neighbors[i] = []int{i}
	}
	for e, edge := range edges {
		i, j := edge[0], edge[1]
		if i < 0 || j < 0 || i >= nPoint || j >= nPoint {
			return nil, fmt.Errorf("%w: edge %d (%d, %d) outside [0, %d)", ErrPattern, e, i, j, nPoint)
		}
		if i == j {
			return nil, fmt.Errorf("%w: edge %d is a self loop on point %d", ErrPattern, e, i)
		}
		neighbors[i] = append(neighbors[i], j)
		neighbors[j] = append(neighbors[j], i)
	}

	m := &SysMatrix{
		nPoint:  nPoint,
		nVar:    nVar,
		rowPtr:  make([]int, nPoint+1),
		diagPtr: make([]int, nPoint),
		edgePtr: make([][2]int, len(edges)),
	}
	for i, cols := range neighbors {
		slices.Sort(cols)
		if len(slices.Compact(slices.Clone(cols))) != len(cols) {
			return nil, fmt.Errorf("%w: duplicate edge at point %d", ErrPattern, i)
		}
		m.rowPtr[i+1] = m.rowPtr[i] + len(cols)
		m.colInd = append(m.colInd, cols...)
	}
	for i := range nPoint {
		m.diagPtr[i] = m.BlockIndex(i, i)
	}
	for e, edge := range edges {
		m.edgePtr[e] = [2]int{m.BlockIndex(edge[0], edge[1]), m.BlockIndex(edge[1], edge[0])}
	}
	m.transpose = make([]int, len(m.colInd))
	for i := range nPoint {
		for b := m.rowPtr[i]; b < m.rowPtr[i+1]; b++ {
			m.transpose[b] = m.BlockIndex(m.colInd[b], i)
		}
	}
	m.values = make([]float64, len(m.colInd)*nVar*nVar)
	return m, nil
}

// NumPoints returns the number of block rows.
func (m *SysMatrix) NumPoints() int { return m.nPoint }

// NumVars returns the block dimension.
func (m *SysMatrix) NumVars() int { return m.nVar }

// NNZ returns the number of stored blocks.
func (m *SysMatrix) NNZ() int { return len(m.colInd) }

// NumEdges returns the number of edges the pattern was built from.
func (m *SysMatrix) NumEdges() int { return len(m.edgePtr) }

// Values returns the backing slice of all blocks.
func (m *SysMatrix) Values() []float64 { return m.values }

// BlockIndex returns the storage index of block (i, j), or -1 if the block
// is not part of the pattern.
func (m *SysMatrix) BlockIndex(i, j int) int {
	cols := m.colInd[m.rowPtr[i]:m.rowPtr[i+1]]
	if k, ok := slices.BinarySearch(cols, j); ok {
		return m.rowPtr[i] + k
	}
	return -1
}

// Block returns block (i, j) as a sub-slice of the backing store, or nil if
// it is not part of the pattern.
func (m *SysMatrix) Block(i, j int) []float64 {
	b := m.BlockIndex(i, j)
	if b < 0 {
		return nil
	}
	return m.block(b)
}

// DiagBlock returns block (i, i).
func (m *SysMatrix) DiagBlock(i int) []float64 {
	return m.block(m.diagPtr[i])
}

// EdgeBlocks returns the (i, j) and (j, i) blocks owned by edge e.
func (m *SysMatrix) EdgeBlocks(e int) (ij, ji []float64) {
	return m.block(m.edgePtr[e][0]), m.block(m.edgePtr[e][1])
}

func (m *SysMatrix) block(b int) []float64 {
	sz := m.nVar * m.nVar
	return m.values[b*sz : (b+1)*sz : (b+1)*sz]
}

// checkBlock panics unless blk holds exactly one row-major block.
func (m *SysMatrix) checkBlock(blk []float64) {
	if len(blk) != m.nVar*m.nVar {
		panic(fmt.Sprintf("container: block of %d values, want %dx%d", len(blk), m.nVar, m.nVar))
	}
}

// SetZero clears every block.
func (m *SysMatrix) SetZero() {
	clear(m.values)
}

// AddBlock adds scale*blk to block (i, j). It panics if the block is not
// part of the pattern.
func (m *SysMatrix) AddBlock(i, j int, blk []float64, scale float64) {
	dst := m.Block(i, j)
	if dst == nil {
		panic(fmt.Sprintf("container: block (%d, %d) not in pattern", i, j))
	}
	m.checkBlock(blk)
	for k := range dst {
		dst[k] += scale * blk[k]
	}
}

// UpdateBlocks accumulates the Jacobian contributions of edge e = (i, j)
// whose flux F leaves i and enters j, given blockI = dF/dU_i and
// blockJ = dF/dU_j:
//
//	A_ii += blockI   A_ij += blockJ
//	A_ji -= blockI   A_jj -= blockJ
//
// All four blocks are scaled by scale. The diagonal blocks are shared with
// other edges, so concurrent callers must not share points.
func (m *SysMatrix) UpdateBlocks(e, i, j int, blockI, blockJ []float64, scale float64) {
	bii := m.block(m.diagPtr[i])
	bjj := m.block(m.diagPtr[j])
	bij := m.block(m.edgePtr[e][0])
	bji := m.block(m.edgePtr[e][1])
	m.checkBlock(blockI)
	m.checkBlock(blockJ)
	for k := range bii {
		bi := scale * blockI[k]
		bj := scale * blockJ[k]
		bii[k] += bi
		bij[k] += bj
		bji[k] -= bi
		bjj[k] -= bj
	}
}

// SetBlocks overwrites the two off-diagonal blocks owned by edge e:
//
//	A_ij = scale*blockJ   A_ji = -scale*blockI
//
// Diagonal blocks are left untouched; SetDiagonalAsColumnSum recovers them
// once every edge has been written.
func (m *SysMatrix) SetBlocks(e int, blockI, blockJ []float64, scale float64) {
	bij := m.block(m.edgePtr[e][0])
	bji := m.block(m.edgePtr[e][1])
	m.checkBlock(blockI)
	m.checkBlock(blockJ)
	for k := range bij {
		bij[k] = scale * blockJ[k]
		bji[k] = -scale * blockI[k]
	}
}

// SetDiagonalAsColumnSum sets every diagonal block to minus the sum of the
// off-diagonal blocks in its column, for points in [0, NumPoints).
func (m *SysMatrix) SetDiagonalAsColumnSum() {
	m.SetDiagonalAsColumnSumRange(0, m.nPoint)
}

// SetDiagonalAsColumnSumRange is SetDiagonalAsColumnSum restricted to the
// points in [start, end). Each point only writes its own diagonal block, so
// disjoint ranges may run concurrently.
func (m *SysMatrix) SetDiagonalAsColumnSumRange(start, end int) {
	for i := start; i < end; i++ {
		diag := m.block(m.diagPtr[i])
		clear(diag)
		for b := m.rowPtr[i]; b < m.rowPtr[i+1]; b++ {
			if m.colInd[b] == i {
				continue
			}
			// Row i holds the neighbors of i; column i holds the same
			// neighbors because the pattern is symmetric.
			off := m.block(m.transpose[b])
			for k := range diag {
				diag[k] -= off[k]
			}
		}
	}
}

// MatVec computes y = A*x for block vectors of NumPoints*NumVars values.
func (m *SysMatrix) MatVec(x, y []float64) {
	if m.nPoint == 0 {
		return
	}
	n := m.nVar
	_ = x[m.nPoint*n-1]
	_ = y[m.nPoint*n-1]
	for i := range m.nPoint {
		yi := y[i*n : (i+1)*n]
		clear(yi)
		for b := m.rowPtr[i]; b < m.rowPtr[i+1]; b++ {
			xj := x[m.colInd[b]*n : (m.colInd[b]+1)*n]
			blk := m.block(b)
			for r := range n {
				var sum float64
				for c := range n {
					sum += blk[r*n+c] * xj[c]
				}
				yi[r] += sum
			}
		}
	}
}

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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// path builds the pattern of the chain 0-1-2-...-(n-1).
func path(t *testing.T, n, nVar int) (*SysMatrix, [][2]int) {
	t.Helper()
	var edges [][2]int
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	m, err := NewSysMatrix(n, nVar, edges)
	require.NoError(t, err)
	return m, edges
}

func TestSysMatrixPattern(t *testing.T) {
	m, _ := path(t, 3, 2)
	assert.Equal(t, 3, m.NumPoints())
	assert.Equal(t, 2, m.NumVars())
	assert.Equal(t, 2, m.NumEdges())
	assert.Equal(t, 7, m.NNZ())
	assert.Len(t, m.Values(), 7*4)

	assert.Nil(t, m.Block(0, 2))
	assert.Equal(t, -1, m.BlockIndex(2, 0))
	for _, ij := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 2}} {
		assert.Len(t, m.Block(ij[0], ij[1]), 4, "block %v", ij)
	}

	ij, ji := m.EdgeBlocks(1)
	ij[0] = 1
	ji[0] = 2
	assert.Equal(t, 1.0, m.Block(1, 2)[0])
	assert.Equal(t, 2.0, m.Block(2, 1)[0])
}

func TestSysMatrixInvalidPattern(t *testing.T) {
	for name, edges := range map[string][][2]int{
		"out of range": {{0, 3}},
		"negative":     {{-1, 0}},
		"self loop":    {{1, 1}},
		"duplicate":    {{0, 1}, {0, 1}},
		"reversed":     {{0, 1}, {1, 0}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSysMatrix(3, 1, edges)
			assert.ErrorIs(t, err, ErrPattern)
		})
	}
	_, err := NewSysMatrix(3, 0, nil)
	assert.ErrorIs(t, err, ErrPattern)
}

func TestSysMatrixUpdateBlocks(t *testing.T) {
	m, _ := path(t, 2, 1)
	m.UpdateBlocks(0, 0, 1, []float64{2}, []float64{-3}, 0.5)

	assert.Equal(t, []float64{1}, m.Block(0, 0))
	assert.Equal(t, []float64{-1.5}, m.Block(0, 1))
	assert.Equal(t, []float64{-1}, m.Block(1, 0))
	assert.Equal(t, []float64{1.5}, m.Block(1, 1))
}

func TestSysMatrixSetBlocksLeavesDiagonal(t *testing.T) {
	m, _ := path(t, 2, 1)
	m.DiagBlock(0)[0] = 42
	m.SetBlocks(0, []float64{2}, []float64{-3}, 1)
	m.SetBlocks(0, []float64{2}, []float64{-3}, 1)

	assert.Equal(t, []float64{-3}, m.Block(0, 1))
	assert.Equal(t, []float64{-2}, m.Block(1, 0))
	assert.Equal(t, []float64{42}, m.DiagBlock(0))
}

// Accumulating the four blocks per edge and writing the two edge blocks
// followed by the column-sum diagonal must assemble the same matrix.
func TestSysMatrixColumnSumMatchesAccumulation(t *testing.T) {
	const nVar = 2
	acc, edges := path(t, 5, nVar)
	direct, _ := path(t, 5, nVar)

	for e, edge := range edges {
		jacI := []float64{1 + float64(e), 0.5, -0.25, 2}
		jacJ := []float64{-1, 0.125 * float64(e), 3, -0.5}
		acc.UpdateBlocks(e, edge[0], edge[1], jacI, jacJ, 1)
		direct.SetBlocks(e, jacI, jacJ, 1)
	}
	direct.SetDiagonalAsColumnSumRange(0, 2)
	direct.SetDiagonalAsColumnSumRange(2, direct.NumPoints())

	if diff := cmp.Diff(acc.Values(), direct.Values(), cmpopts.EquateApprox(0, 1e-14)); diff != "" {
		t.Errorf("column-sum assembly differs (-accumulate +direct):\n%s", diff)
	}

	direct.SetZero()
	direct.SetDiagonalAsColumnSum()
	assert.Zero(t, direct.DiagBlock(2)[0])
}

func TestSysMatrixAddBlock(t *testing.T) {
	m, _ := path(t, 3, 1)
	m.AddBlock(1, 2, []float64{4}, 0.25)
	assert.Equal(t, []float64{1}, m.Block(1, 2))
	assert.Panics(t, func() { m.AddBlock(0, 2, []float64{1}, 1) })
}

func TestSysMatrixBlockSizeMismatch(t *testing.T) {
	m, _ := path(t, 2, 1)
	long := []float64{1, 2, 3, 4}
	one := []float64{1}
	assert.Panics(t, func() { m.UpdateBlocks(0, 0, 1, long, one, 1) })
	assert.Panics(t, func() { m.UpdateBlocks(0, 0, 1, one, long, 1) })
	assert.Panics(t, func() { m.SetBlocks(0, long, one, 1) })
	assert.Panics(t, func() { m.SetBlocks(0, one, nil, 1) })
	assert.Panics(t, func() { m.AddBlock(0, 1, long, 1) })
	assert.Equal(t, make([]float64, m.NNZ()), m.Values())
}

func TestSysMatrixMatVec(t *testing.T) {
	// 1D Laplacian on three points.
	m, edges := path(t, 3, 1)
	for e, edge := range edges {
		m.UpdateBlocks(e, edge[0], edge[1], []float64{1}, []float64{-1}, 1)
	}
	y := make([]float64, 3)
	m.MatVec([]float64{1, 2, 4}, y)
	assert.Equal(t, []float64{-1, -1, 2}, y)

	m.MatVec([]float64{1, 1, 1}, y)
	assert.Equal(t, []float64{0, 0, 0}, y)

	empty, err := NewSysMatrix(0, 1, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { empty.MatVec(nil, nil) })
}

func BenchmarkSysMatrixUpdateBlocks(b *testing.B) {
	const n, nVar = 1024, 4
	var edges [][2]int
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	m, err := NewSysMatrix(n, nVar, edges)
	if err != nil {
		b.Fatal(err)
	}
	blk := make([]float64, nVar*nVar)
	for k := range blk {
		blk[k] = float64(k)
	}
	b.ReportAllocs()
	for b.Loop() {
		for e, edge := range edges {
			m.UpdateBlocks(e, edge[0], edge[1], blk, blk, 1)
		}
	}
}

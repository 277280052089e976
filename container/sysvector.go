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
	"math"
)

// SysVector is a block vector: NumBlocks blocks of NumVars values. Indexed
// by point it holds a residual; indexed by edge it holds per-edge fluxes.
//
// Block writes are not synchronized. Concurrent writers must touch disjoint
// blocks.
type SysVector struct {
	nBlk, nVar int
	data       []float64
}

// NewSysVector allocates a zeroed vector of nBlk blocks of nVar values.
func NewSysVector(nBlk, nVar int) *SysVector {
	return &SysVector{nBlk: nBlk, nVar: nVar, data: make([]float64, nBlk*nVar)}
}

// NumBlocks returns the number of blocks.
func (v *SysVector) NumBlocks() int { return v.nBlk }

// NumVars returns the block size.
func (v *SysVector) NumVars() int { return v.nVar }

// Data returns the backing slice, block-major.
func (v *SysVector) Data() []float64 { return v.data }

// Block returns block i as a sub-slice of the backing store.
func (v *SysVector) Block(i int) []float64 {
	return v.data[i*v.nVar : (i+1)*v.nVar : (i+1)*v.nVar]
}

// checkBlock panics unless blk holds exactly one block.
func (v *SysVector) checkBlock(blk []float64) {
	if len(blk) != v.nVar {
		panic(fmt.Sprintf("container: block of %d values, want %d", len(blk), v.nVar))
	}
}

// SetZero clears every block.
func (v *SysVector) SetZero() {
	clear(v.data)
}

// SetBlock overwrites block i with scale*blk. The block writers panic if
// len(blk) is not NumVars.
func (v *SysVector) SetBlock(i int, blk []float64, scale float64) {
	dst := v.Block(i)
	v.checkBlock(blk)
	for k := range dst {
		dst[k] = scale * blk[k]
	}
}

// AddBlock adds scale*blk to block i.
func (v *SysVector) AddBlock(i int, blk []float64, scale float64) {
	dst := v.Block(i)
	v.checkBlock(blk)
	for k := range dst {
		dst[k] += scale * blk[k]
	}
}

// SubtractBlock subtracts scale*blk from block i.
func (v *SysVector) SubtractBlock(i int, blk []float64, scale float64) {
	dst := v.Block(i)
	v.checkBlock(blk)
	for k := range dst {
		dst[k] -= scale * blk[k]
	}
}

// UpdateBlocks adds scale*blk to block i and subtracts it from block j:
// what leaves point i through the edge enters point j.
func (v *SysVector) UpdateBlocks(i, j int, blk []float64, scale float64) {
	v.AddBlock(i, blk, scale)
	v.SubtractBlock(j, blk, scale)
}

// SquaredNorm returns the sum of squares of all values.
func (v *SysVector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.data {
		sum += x * x
	}
	return sum
}

// Norm returns the L2 norm of all values.
func (v *SysVector) Norm() float64 {
	return math.Sqrt(v.SquaredNorm())
}

// RMS returns the root mean square of variable iVar over all blocks, the
// quantity solvers monitor for convergence.
func (v *SysVector) RMS(iVar int) float64 {
	if v.nBlk == 0 {
		return 0
	}
	var sum float64
	for i := range v.nBlk {
		x := v.data[i*v.nVar+iVar]
		sum += x * x
	}
	return math.Sqrt(sum / float64(v.nBlk))
}

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

package assembly

import (
	"fmt"
	"strings"

	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/simd"
	"github.com/edgeasm/edgeasm/tensor"
)

// UpdateType selects how edge contributions reach the linear system. It is
// fixed for a whole pass over the edges.
type UpdateType int

const (
	// Coloring accumulates into point-indexed storage. Concurrent edges must
	// not share a point.
	Coloring UpdateType = iota

	// Direct writes into edge-indexed storage, to be reduced to the points
	// afterwards.
	Direct
)

// String returns the flag spelling of the update type.
func (u UpdateType) String() string {
	switch u {
	case Coloring:
		return "coloring"
	case Direct:
		return "direct"
	default:
		return fmt.Sprintf("UpdateType(%d)", int(u))
	}
}

// Set parses "coloring" or "direct", ignoring case.
func (u *UpdateType) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coloring", "colouring":
		*u = Coloring
	case "direct":
		*u = Direct
	default:
		return fmt.Errorf("%w: unknown update type %q, want coloring or direct", ErrConfig, s)
	}
	return nil
}

// Type returns the flag value type name.
func (u *UpdateType) Type() string {
	return "updateType"
}

// UpdateLinearSystem writes the flux of an edge batch, and its Jacobians if
// implicit, into the linear system. Lane k describes edge iEdge[k] from
// point iPoint[k] to point jPoint[k]; the flux leaves i and enters j.
//
// Lanes whose updateMask is exactly zero are skipped and leave vector and
// matrix untouched. Other lanes are scaled by their mask. With Coloring:
//
//	vector[i] += flux     A_ii += jacI   A_ij += jacJ
//	vector[j] -= flux     A_ji -= jacI   A_jj -= jacJ
//
// With Direct, vector is indexed by edge and the edge blocks of the matrix
// are overwritten:
//
//	vector[e] = flux      A_ij = jacJ    A_ji = -jacI
//
// Residual writes are recorded on t as one statement per value. Jacobian
// writes run with t passive. jacI and jacJ are only read if implicit.
//
// There is no synchronization: Coloring callers running concurrently must
// not share points, Direct callers must not share edges.
func UpdateLinearSystem[A tensor.Array, R tensor.RowArray[A]](
	t ad.Tape, iEdge, iPoint, jPoint simd.Int,
	implicit bool, updateType UpdateType, updateMask simd.Double,
	flux tensor.Vector[A], jacI, jacJ *tensor.Matrix[A, R],
	vector *container.SysVector, matrix *container.SysMatrix,
) {
	nVar := flux.Size()
	var fluxBuf [tensor.MaxSize]float64
	var jacIBuf, jacJBuf [tensor.MaxSize * tensor.MaxSize]float64
	f := fluxBuf[:nVar]

	for k := range simd.Lanes {
		mask := updateMask[k]
		if mask == 0 {
			continue
		}
		flux.Lane(k, f)
		if updateType == Direct {
			vector.SetBlock(iEdge[k], f, mask)
			t.Record(nVar)
		} else {
			vector.UpdateBlocks(iPoint[k], jPoint[k], f, mask)
			t.Record(2 * nVar)
		}

		if implicit {
			ji := jacIBuf[:jacI.NumElems()]
			jj := jacJBuf[:jacJ.NumElems()]
			jacI.Lane(k, ji)
			jacJ.Lane(k, jj)
			updateJacobian(t, updateType, matrix, iEdge[k], iPoint[k], jPoint[k], ji, jj, mask)
		}
	}
}

// updateJacobian writes one lane's Jacobian blocks with recording suspended.
func updateJacobian(t ad.Tape, updateType UpdateType, matrix *container.SysMatrix, iEdge, iPoint, jPoint int, jacI, jacJ []float64, mask float64) {
	wasActive := t.BeginPassive()
	defer t.EndPassive(wasActive)

	if updateType == Direct {
		matrix.SetBlocks(iEdge, jacI, jacJ, mask)
	} else {
		matrix.UpdateBlocks(iEdge, iPoint, jPoint, jacI, jacJ, mask)
	}
}

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
	"github.com/edgeasm/edgeasm/mesh"
	"github.com/edgeasm/edgeasm/simd"
)

// Batch is one SIMD lane group of edges. The first Active lanes hold
// consecutive edges; the remaining lanes repeat the last active edge and
// have a zero Mask, so kernels compute on valid data and
// UpdateLinearSystem skips them.
type Batch struct {
	Edge simd.Int
	I, J simd.Int
	Mask simd.Double

	Active int
}

// NewBatch returns the batch of edges [start, end), which must hold between
// 1 and simd.Lanes edges.
func NewBatch(edges *mesh.Edges, start, end int) Batch {
	b := Batch{Active: end - start, Mask: simd.ActiveMask(end - start)}
	for k := range simd.Lanes {
		e := min(start+k, end-1)
		i, j := edges.Nodes(e)
		b.Edge[k], b.I[k], b.J[k] = e, i, j
	}
	return b
}

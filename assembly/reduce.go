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
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/mesh"
)

// ReduceEdgeFluxes adds the edge fluxes of a Direct pass to the residual:
// every point gains the flux of the edges it is the first node of and loses
// the flux of the edges it is the second node of.
func ReduceEdgeFluxes(adj *mesh.Adjacency, edgeFlux, residual *container.SysVector) {
	ReduceEdgeFluxesRange(adj, edgeFlux, residual, 0, adj.NumPoints())
}

// ReduceEdgeFluxesRange is ReduceEdgeFluxes for the points in [start, end).
// Each point only writes its own residual block, so disjoint ranges may run
// concurrently.
func ReduceEdgeFluxesRange(adj *mesh.Adjacency, edgeFlux, residual *container.SysVector, start, end int) {
	for i := start; i < end; i++ {
		for _, inc := range adj.Incident(i) {
			if inc.First {
				residual.AddBlock(i, edgeFlux.Block(inc.Edge), 1)
			} else {
				residual.SubtractBlock(i, edgeFlux.Block(inc.Edge), 1)
			}
		}
	}
}

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

// Package mesh holds the edge connectivity that the assembly loop iterates
// over: the edge list, the point-to-edge adjacency and a grouped edge
// coloring under which edges of one color can be assembled concurrently.
//
// It also generates structured quadrilateral grids, which tests, examples
// and benchmarks use as input.
package mesh

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	// ErrEdge is returned for an edge list that references invalid points,
	// contains self loops or repeats an edge.
	ErrEdge = errors.New("mesh: invalid edge")

	// ErrColoring is returned when a coloring does not cover the edges or
	// lets two groups of one color share a point.
	ErrColoring = errors.New("mesh: invalid coloring")
)

// Edges is an immutable list of point pairs. Edge e connects Nodes(e).
type Edges struct {
	nPoint int
	pairs  [][2]int
}

// NewEdges validates pairs against nPoint points. An edge and its reverse
// count as duplicates.
func NewEdges(nPoint int, pairs [][2]int) (*Edges, error) {
	if nPoint < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", ErrEdge, nPoint)
	}
	for e, p := range pairs {
		if p[0] < 0 || p[1] < 0 || p[0] >= nPoint || p[1] >= nPoint {
			return nil, fmt.Errorf("%w: edge %d (%d, %d) outside [0, %d)", ErrEdge, e, p[0], p[1], nPoint)
		}
		if p[0] == p[1] {
			return nil, fmt.Errorf("%w: edge %d is a self loop on point %d", ErrEdge, e, p[0])
		}
	}
	dups := lo.FindDuplicatesBy(pairs, func(p [2]int) [2]int {
		return [2]int{min(p[0], p[1]), max(p[0], p[1])}
	})
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w: edge (%d, %d) appears more than once", ErrEdge, dups[0][0], dups[0][1])
	}
	return &Edges{nPoint: nPoint, pairs: pairs}, nil
}

// NumPoints returns the number of points the edges index into.
func (e *Edges) NumPoints() int { return e.nPoint }

// Len returns the number of edges.
func (e *Edges) Len() int { return len(e.pairs) }

// Nodes returns the two points of edge iEdge.
func (e *Edges) Nodes(iEdge int) (i, j int) {
	p := e.pairs[iEdge]
	return p[0], p[1]
}

// Pairs returns the underlying pairs. Callers must not modify them.
func (e *Edges) Pairs() [][2]int { return e.pairs }

// Incidence is one edge seen from one of its points.
type Incidence struct {
	Edge int
	// First is true when the point is the first node of the edge, i.e. the
	// edge flux leaves it.
	First bool
}

// Sign returns +1 for the first node of the edge and -1 for the second.
func (inc Incidence) Sign() float64 {
	if inc.First {
		return 1
	}
	return -1
}

// Adjacency maps every point to its incident edges, in CSR form.
type Adjacency struct {
	ptr []int
	inc []Incidence
}

// NewAdjacency builds the point-to-edge map of edges. Incident edges of a
// point are listed in increasing edge order.
func NewAdjacency(edges *Edges) *Adjacency {
	a := &Adjacency{
		ptr: make([]int, edges.nPoint+1),
		inc: make([]Incidence, 2*len(edges.pairs)),
	}
	for _, p := range edges.pairs {
		a.ptr[p[0]+1]++
		a.ptr[p[1]+1]++
	}
	for i := range edges.nPoint {
		a.ptr[i+1] += a.ptr[i]
	}
	next := make([]int, edges.nPoint)
	copy(next, a.ptr)
	for e, p := range edges.pairs {
		a.inc[next[p[0]]] = Incidence{Edge: e, First: true}
		next[p[0]]++
		a.inc[next[p[1]]] = Incidence{Edge: e, First: false}
		next[p[1]]++
	}
	return a
}

// NumPoints returns the number of points.
func (a *Adjacency) NumPoints() int { return len(a.ptr) - 1 }

// Degree returns the number of edges incident to point i.
func (a *Adjacency) Degree(i int) int { return a.ptr[i+1] - a.ptr[i] }

// Incident returns the edges incident to point i.
func (a *Adjacency) Incident(i int) []Incidence {
	return a.inc[a.ptr[i]:a.ptr[i+1]:a.ptr[i+1]]
}

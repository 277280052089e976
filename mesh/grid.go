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

package mesh

import (
	"fmt"

	"github.com/edgeasm/edgeasm/container"
)

// Grid is a structured nx x ny quadrilateral mesh of the unit square with
// its vertex-centered dual. Point (x, y) has index y*nx + x.
type Grid struct {
	NX, NY int

	Edges *Edges

	// Coords holds the 2D coordinates of every point.
	Coords *container.Array2D

	// Normals holds, for every edge, the area-weighted normal of the dual
	// face between its two points, oriented from the first point to the
	// second. Faces on the boundary are half as long.
	Normals *container.Array2D
}

// NewGrid builds an nx x ny grid. Edges are numbered row by row: first the
// horizontal edges of a row, then the vertical edges to the next row.
func NewGrid(nx, ny int) (*Grid, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("%w: grid needs at least 2x2 points, got %dx%d", ErrEdge, nx, ny)
	}
	dx := 1 / float64(nx-1)
	dy := 1 / float64(ny-1)

	coords := container.NewArray2D(nx*ny, 2)
	for y := range ny {
		for x := range nx {
			coords.Set(y*nx+x, 0, float64(x)*dx)
			coords.Set(y*nx+x, 1, float64(y)*dy)
		}
	}

	// faceLen halves the dual face of edges running along the boundary.
	faceLen := func(h float64, k, n int) float64 {
		if k == 0 || k == n-1 {
			return h / 2
		}
		return h
	}

	nEdge := (nx-1)*ny + nx*(ny-1)
	pairs := make([][2]int, 0, nEdge)
	normals := make([]float64, 0, 2*nEdge)
	for y := range ny {
		for x := range nx - 1 {
			pairs = append(pairs, [2]int{y*nx + x, y*nx + x + 1})
			normals = append(normals, faceLen(dy, y, ny), 0)
		}
		if y == ny-1 {
			break
		}
		for x := range nx {
			pairs = append(pairs, [2]int{y*nx + x, (y+1)*nx + x})
			normals = append(normals, 0, faceLen(dx, x, nx))
		}
	}

	edges, err := NewEdges(nx*ny, pairs)
	if err != nil {
		return nil, err
	}
	n, err := container.WrapArray2D(normals, nEdge, 2)
	if err != nil {
		return nil, err
	}
	return &Grid{NX: nx, NY: ny, Edges: edges, Coords: coords, Normals: n}, nil
}

// NumPoints returns the number of grid points.
func (g *Grid) NumPoints() int { return g.NX * g.NY }

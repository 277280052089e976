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

	"github.com/samber/lo"
)

// DefaultGroupSize is the number of consecutive edges colored as one unit.
// Larger groups keep memory access more local within a worker; smaller
// groups need fewer colors.
const DefaultGroupSize = 512

// Group is a half-open range [Start, End) of consecutive edges that one
// worker processes in order.
type Group struct {
	Start, End int
}

// Len returns the number of edges in the group.
func (g Group) Len() int { return g.End - g.Start }

// Coloring partitions edge groups into colors. Groups of one color share no
// point, so they can be assembled concurrently with accumulating updates.
type Coloring struct {
	groupSize int
	colors    [][]Group
}

// ColorEdges colors edges greedily in groups of groupSize consecutive edges:
// each group takes the lowest color none of whose groups touch its points.
// A groupSize below 1 selects DefaultGroupSize.
func ColorEdges(edges *Edges, groupSize int) *Coloring {
	if groupSize < 1 {
		groupSize = DefaultGroupSize
	}
	c := &Coloring{groupSize: groupSize}

	// used[color][point] marks points already touched by that color.
	var used [][]bool
	var points []int
	for start := 0; start < edges.Len(); start += groupSize {
		g := Group{Start: start, End: min(start+groupSize, edges.Len())}
		points = points[:0]
		for e := g.Start; e < g.End; e++ {
			i, j := edges.Nodes(e)
			points = append(points, i, j)
		}

		color := 0
		for ; color < len(used); color++ {
			if !lo.ContainsBy(points, func(p int) bool { return used[color][p] }) {
				break
			}
		}
		if color == len(used) {
			used = append(used, make([]bool, edges.NumPoints()))
			c.colors = append(c.colors, nil)
		}
		for _, p := range points {
			used[color][p] = true
		}
		c.colors[color] = append(c.colors[color], g)
	}
	return c
}

// NewColoring wraps a precomputed coloring. It is not validated; see
// Validate.
func NewColoring(groupSize int, colors [][]Group) *Coloring {
	return &Coloring{groupSize: groupSize, colors: colors}
}

// GroupSize returns the number of edges per group.
func (c *Coloring) GroupSize() int { return c.groupSize }

// NumColors returns the number of colors.
func (c *Coloring) NumColors() int { return len(c.colors) }

// Groups returns the groups of color i.
func (c *Coloring) Groups(color int) []Group { return c.colors[color] }

// Sizes returns the number of edges of every color.
func (c *Coloring) Sizes() []int {
	return lo.Map(c.colors, func(groups []Group, _ int) int {
		return lo.SumBy(groups, Group.Len)
	})
}

// Efficiency returns the mean color size over the largest color size, in
// (0, 1]. It measures how evenly work is spread across colors: a pass is
// as long as its colors added up, and small colors leave workers idle.
// An empty coloring reports 1.
func (c *Coloring) Efficiency() float64 {
	sizes := c.Sizes()
	if len(sizes) == 0 {
		return 1
	}
	largest := lo.Max(sizes)
	if largest == 0 {
		return 1
	}
	return float64(lo.Sum(sizes)) / float64(len(sizes)*largest)
}

// Validate checks that the coloring covers every edge exactly once and that
// no two groups of one color share a point. The error names the first
// violation found.
func (c *Coloring) Validate(edges *Edges) error {
	covered := make([]int, edges.Len())
	owner := make([]int, edges.NumPoints())
	for color, groups := range c.colors {
		clear(owner)
		for gi, g := range groups {
			if g.Start < 0 || g.End > edges.Len() || g.Start > g.End {
				return fmt.Errorf("%w: color %d group [%d, %d) outside %d edges", ErrColoring, color, g.Start, g.End, edges.Len())
			}
			for e := g.Start; e < g.End; e++ {
				covered[e]++
				i, j := edges.Nodes(e)
				for _, p := range [2]int{i, j} {
					// owner holds group index + 1; zero means untouched.
					if o := owner[p]; o != 0 && o != gi+1 {
						return fmt.Errorf("%w: color %d groups %d and %d share point %d", ErrColoring, color, o-1, gi, p)
					}
					owner[p] = gi + 1
				}
			}
		}
	}
	if n, e, ok := lo.FindIndexOf(covered, func(n int) bool { return n != 1 }); ok {
		return fmt.Errorf("%w: edge %d covered %d times", ErrColoring, e, n)
	}
	return nil
}

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
	"sync/atomic"

	"github.com/edgeasm/edgeasm/mesh"
)

// ConflictError reports two groups of one color that touch the same point,
// which makes their concurrent Coloring updates race.
type ConflictError struct {
	Color  int
	Point  int
	Groups [2]mesh.Group
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("assembly: color %d: groups [%d, %d) and [%d, %d) both update point %d",
		e.Color, e.Groups[0].Start, e.Groups[0].End, e.Groups[1].Start, e.Groups[1].End, e.Point)
}

// conflictDetector assigns every point to the first group of the current
// color that touches it. Ownership is kept for the whole color, so the
// result does not depend on scheduling.
type conflictDetector struct {
	edges  *mesh.Edges
	owner  []atomic.Int32 // group index + 1, zero if untouched
	groups []mesh.Group
	color  int
	first  atomic.Pointer[ConflictError]
}

func newConflictDetector(edges *mesh.Edges) *conflictDetector {
	return &conflictDetector{
		edges: edges,
		owner: make([]atomic.Int32, edges.NumPoints()),
	}
}

// beginColor resets ownership. It must not run concurrently with claim.
func (d *conflictDetector) beginColor(color int, groups []mesh.Group) {
	for i := range d.owner {
		d.owner[i].Store(0)
	}
	d.color = color
	d.groups = groups
	d.first.Store(nil)
}

// claim takes the points of edge e for group g.
func (d *conflictDetector) claim(g, e int) {
	i, j := d.edges.Nodes(e)
	d.claimPoint(g, i)
	d.claimPoint(g, j)
}

func (d *conflictDetector) claimPoint(g, p int) {
	token := int32(g + 1)
	if d.owner[p].CompareAndSwap(0, token) {
		return
	}
	if other := d.owner[p].Load(); other != token {
		d.first.CompareAndSwap(nil, &ConflictError{
			Color:  d.color,
			Point:  p,
			Groups: [2]mesh.Group{d.groups[other-1], d.groups[g]},
		})
	}
}

// err returns the first conflict seen, if any.
func (d *conflictDetector) err() error {
	if c := d.first.Load(); c != nil {
		return c
	}
	return nil
}

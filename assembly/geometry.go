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
	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/simd"
	"github.com/edgeasm/edgeasm/tensor"
)

// DistanceVector returns half the vector from point i to point j,
// 0.5*(coords[j] - coords[i]), i.e. the vector from i to the edge midpoint.
// Both coordinate sets are registered with t.
func DistanceVector[A tensor.Array](t ad.Tape, iPoint, jPoint simd.Int, active int, coords *container.Array2D) tensor.Vector[A] {
	ci := GatherVector[A](t, iPoint, active, coords)
	cj := GatherVector[A](t, jPoint, active, coords)
	return cj.Sub(ci).Scale(simd.Splat(0.5))
}

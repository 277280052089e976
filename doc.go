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

// Package edgeasm is the edge-based assembly core of a finite-volume
// solver. It turns per-edge fluxes and Jacobians, computed lane-wise over
// small fixed-size tensors, into updates of a global residual vector and a
// block-sparse Jacobian, safely under parallel execution and in cooperation
// with an automatic-differentiation tape.
//
// The packages, leaves first:
//
//   - simd: lane-vectorized scalars and runtime SIMD level detection.
//   - tensor: fixed-size vectors and matrices with dot products and norms.
//   - ad: the tape contract and a reference recorder.
//   - container: point fields, the block residual and the block-sparse
//     Jacobian.
//   - mesh: edges, adjacency, grouped edge coloring and structured grids.
//   - assembly: gathers, the distance vector, UpdateLinearSystem and the
//     parallel edge loop.
//   - fluid and numerics: a conductivity closure and a heat-conduction edge
//     kernel built on the above.
//
// This package only holds the logger shared by all of them.
package edgeasm

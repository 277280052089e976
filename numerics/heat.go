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

// Package numerics contains edge kernels for the assembly loop.
package numerics

import (
	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/assembly"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/mesh"
	"github.com/edgeasm/edgeasm/tensor"
)

// HeatFlux is the contribution type of scalar kernels.
type HeatFlux = assembly.Contribution[tensor.A1, tensor.R1[tensor.A1]]

// HeatKernel computes the conductive heat flux through the dual face of
// every edge of a mesh in D dimensions:
//
//	F = -k * (T_j - T_i) * (d·S)/(d·d)
//
// where d is the vector from point i to point j, S the area-weighted face
// normal and k the mean conductivity of the two points. On meshes whose
// edges are aligned with their face normals, (d·S)/(d·d) = |S|/|d|. The
// Jacobians treat k as constant.
type HeatKernel[D tensor.Array] struct {
	Temperature  *container.Array1D // per point
	Conductivity *container.Array1D // per point
	Coords       *container.Array2D // per point, D columns
	Normals      *container.Array2D // per edge, D columns
}

// NewGridHeatKernel returns the heat kernel of a 2D grid.
func NewGridHeatKernel(g *mesh.Grid, temperature, conductivity *container.Array1D) *HeatKernel[tensor.A2] {
	return &HeatKernel[tensor.A2]{
		Temperature:  temperature,
		Conductivity: conductivity,
		Coords:       g.Coords,
		Normals:      g.Normals,
	}
}

// ComputeFlux implements assembly.Kernel.
func (h *HeatKernel[D]) ComputeFlux(t ad.Tape, b assembly.Batch, implicit bool, out *HeatFlux) {
	half := assembly.DistanceVector[D](t, b.I, b.J, b.Active, h.Coords)
	normal := assembly.GatherVector[D](t, b.Edge, b.Active, h.Normals)

	ti := assembly.GatherScalar(t, b.I, b.Active, h.Temperature)
	tj := assembly.GatherScalar(t, b.J, b.Active, h.Temperature)
	ki := assembly.GatherScalar(t, b.I, b.Active, h.Conductivity)
	kj := assembly.GatherScalar(t, b.J, b.Active, h.Conductivity)

	// half is d/2, so (d·S)/(d·d) = (half·S)/(2 half·half).
	proj := tensor.Dot(half, normal).Div(tensor.SquaredNorm(half).Scale(2))
	coef := ki.Add(kj).Scale(0.5).Mul(proj)

	out.Flux.Set(0, ti.Sub(tj).Mul(coef))
	if implicit {
		out.JacI.Set(0, 0, coef)
		out.JacJ.Set(0, 0, coef.Neg())
	}
}

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
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/mesh"
	"github.com/edgeasm/edgeasm/simd"
	"github.com/edgeasm/edgeasm/tensor"
)

// diffusion is a two-variable linear diffusion kernel with a weight per
// edge: flux = w*(u_i - u_j).
type diffusion struct {
	u      *container.Array2D
	weight []float64
}

func (d diffusion) ComputeFlux(t ad.Tape, b Batch, implicit bool, out *Contribution[tensor.A2, tensor.R2[tensor.A2]]) {
	ui := GatherVector[tensor.A2](t, b.I, b.Active, d.u)
	uj := GatherVector[tensor.A2](t, b.J, b.Active, d.u)
	var w simd.Double
	for k := range simd.Lanes {
		w[k] = d.weight[b.Edge[k]]
	}
	out.Flux = ui.Sub(uj).Scale(w)
	if implicit {
		for v := range 2 {
			out.JacI.Set(v, v, w)
			out.JacJ.Set(v, v, w.Neg())
		}
	}
}

type problem struct {
	grid   *mesh.Grid
	kernel diffusion
}

func newProblem(t *testing.T, nx, ny int) problem {
	t.Helper()
	g, err := mesh.NewGrid(nx, ny)
	require.NoError(t, err)
	u := container.NewArray2D(g.NumPoints(), 2)
	for i := range g.NumPoints() {
		x, y := g.Coords.At(i, 0), g.Coords.At(i, 1)
		u.Set(i, 0, x*x+0.5*y)
		u.Set(i, 1, 1-x*y)
	}
	weight := make([]float64, g.Edges.Len())
	for e := range weight {
		weight[e] = 1 + float64(e%7)/8
	}
	return problem{grid: g, kernel: diffusion{u: u, weight: weight}}
}

func (p problem) system(t *testing.T, withEdgeFlux bool) System {
	t.Helper()
	jac, err := container.NewSysMatrix(p.grid.NumPoints(), 2, p.grid.Edges.Pairs())
	require.NoError(t, err)
	sys := System{
		Residual: container.NewSysVector(p.grid.NumPoints(), 2),
		Jacobian: jac,
	}
	if withEdgeFlux {
		sys.EdgeFlux = container.NewSysVector(p.grid.Edges.Len(), 2)
	}
	return sys
}

func (p problem) run(t *testing.T, cfg Config) System {
	t.Helper()
	loop, err := NewLoop(p.grid.Edges, cfg)
	require.NoError(t, err)
	defer loop.Close()
	sys := p.system(t, cfg.UpdateType == Direct)
	require.NoError(t, Run(context.Background(), loop, p.kernel, sys))
	return sys
}

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestRunColoringMatchesDirect(t *testing.T) {
	p := newProblem(t, 9, 7)
	coloring := p.run(t, Config{Workers: 4, UpdateType: Coloring, Implicit: true, GroupSize: 5})
	direct := p.run(t, Config{Workers: 4, UpdateType: Direct, Implicit: true, GroupSize: 5})

	if diff := cmp.Diff(coloring.Residual.Data(), direct.Residual.Data(), approx); diff != "" {
		t.Errorf("residual (-coloring +direct):\n%s", diff)
	}
	if diff := cmp.Diff(coloring.Jacobian.Values(), direct.Jacobian.Values(), approx); diff != "" {
		t.Errorf("Jacobian (-coloring +direct):\n%s", diff)
	}
}

func TestRunWorkerCountInvariant(t *testing.T) {
	p := newProblem(t, 11, 6)
	for _, updateType := range []UpdateType{Coloring, Direct} {
		t.Run(updateType.String(), func(t *testing.T) {
			seq := p.run(t, Config{Workers: 1, UpdateType: updateType, Implicit: true, GroupSize: 3})
			par := p.run(t, Config{Workers: 8, UpdateType: updateType, Implicit: true, GroupSize: 3})
			if diff := cmp.Diff(seq.Residual.Data(), par.Residual.Data(), approx); diff != "" {
				t.Errorf("residual (-1 worker +8 workers):\n%s", diff)
			}
			if diff := cmp.Diff(seq.Jacobian.Values(), par.Jacobian.Values(), approx); diff != "" {
				t.Errorf("Jacobian (-1 worker +8 workers):\n%s", diff)
			}
		})
	}
}

// The residual is conservative and the Jacobian matches the residual of a
// linear kernel: A*u == residual.
func TestRunResidualConsistency(t *testing.T) {
	p := newProblem(t, 6, 5)
	sys := p.run(t, Config{Workers: 3, UpdateType: Coloring, Implicit: true, GroupSize: 4})

	var sum [2]float64
	for i := range p.grid.NumPoints() {
		blk := sys.Residual.Block(i)
		sum[0] += blk[0]
		sum[1] += blk[1]
	}
	assert.InDelta(t, 0, sum[0], 1e-12)
	assert.InDelta(t, 0, sum[1], 1e-12)

	au := make([]float64, len(sys.Residual.Data()))
	sys.Jacobian.MatVec(p.kernel.u.Data(), au)
	if diff := cmp.Diff(sys.Residual.Data(), au, approx); diff != "" {
		t.Errorf("A*u differs from the residual (-residual +A*u):\n%s", diff)
	}
}

func TestRunTapes(t *testing.T) {
	p := newProblem(t, 7, 7)
	for _, updateType := range []UpdateType{Coloring, Direct} {
		t.Run(updateType.String(), func(t *testing.T) {
			cfg := Config{Workers: 3, UpdateType: updateType, Implicit: true, GroupSize: 6}
			loop, err := NewLoop(p.grid.Edges, cfg)
			require.NoError(t, err)
			defer loop.Close()

			recs := make([]*ad.Recorder, loop.NumWorkers())
			tapes := make([]ad.Tape, loop.NumWorkers())
			for i := range recs {
				recs[i] = ad.NewRecorder()
				tapes[i] = recs[i]
			}
			require.NoError(t, loop.SetTapes(tapes))
			assert.Same(t, recs[1], loop.Tape(1))
			require.ErrorIs(t, loop.SetTapes(tapes[:1]), ErrConfig)

			require.NoError(t, Run(context.Background(), loop, p.kernel, p.system(t, true)))

			perEdge := 2 * 2
			if updateType == Direct {
				perEdge = 2
			}
			var statements, lanes int
			for _, r := range recs {
				assert.True(t, r.Active())
				assert.Zero(t, r.PassiveDepth())
				statements += r.Statements()
				for _, in := range r.Inputs() {
					assert.Equal(t, 2, in.Elems)
					lanes += in.Lanes
				}
			}
			assert.Equal(t, perEdge*p.grid.Edges.Len(), statements)
			assert.Equal(t, 2*p.grid.Edges.Len(), lanes, "two gathers per edge, active lanes only")
		})
	}
}

func TestRunDetectsConflicts(t *testing.T) {
	edges, err := mesh.NewEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, err)
	bad := mesh.NewColoring(1, [][]mesh.Group{{{Start: 0, End: 1}, {Start: 1, End: 2}, {Start: 2, End: 3}}})
	good := mesh.NewColoring(1, [][]mesh.Group{{{Start: 0, End: 1}, {Start: 2, End: 3}}, {{Start: 1, End: 2}}})

	u := container.NewArray2D(4, 2)
	kernel := diffusion{u: u, weight: []float64{1, 1, 1}}
	newSystem := func() System {
		jac, err := container.NewSysMatrix(4, 2, edges.Pairs())
		require.NoError(t, err)
		return System{Residual: container.NewSysVector(4, 2), Jacobian: jac}
	}
	// One worker keeps the racy bad coloring sequential; the detector does
	// not depend on timing.
	cfg := Config{Workers: 1, UpdateType: Coloring, Implicit: true, CheckConflicts: true}

	loop, err := NewLoopWithColoring(edges, bad, cfg)
	require.NoError(t, err)
	defer loop.Close()
	err = Run(context.Background(), loop, kernel, newSystem())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Zero(t, conflict.Color)
	assert.Equal(t, 1, conflict.Point)
	assert.Equal(t, [2]mesh.Group{{Start: 0, End: 1}, {Start: 1, End: 2}}, conflict.Groups)
	assert.Contains(t, err.Error(), "both update point")

	loop2, err := NewLoopWithColoring(edges, good, cfg)
	require.NoError(t, err)
	defer loop2.Close()
	assert.NoError(t, Run(context.Background(), loop2, kernel, newSystem()))

	// Without the check the same bad coloring runs through unnoticed.
	cfg.CheckConflicts = false
	loop3, err := NewLoopWithColoring(edges, bad, cfg)
	require.NoError(t, err)
	defer loop3.Close()
	assert.NoError(t, Run(context.Background(), loop3, kernel, newSystem()))
}

func TestRunErrors(t *testing.T) {
	p := newProblem(t, 3, 3)

	loop, err := NewLoop(p.grid.Edges, Config{UpdateType: Direct})
	require.NoError(t, err)
	assert.Nil(t, loop.Coloring())
	assert.ErrorIs(t, Run(context.Background(), loop, p.kernel, p.system(t, false)), ErrNoEdgeFlux)
	assert.ErrorIs(t, Run(context.Background(), loop, p.kernel, System{EdgeFlux: container.NewSysVector(1, 2)}), ErrConfig)

	loop.Close()
	loop.Close()
	assert.ErrorIs(t, Run(context.Background(), loop, p.kernel, p.system(t, true)), ErrClosed)

	loop, err = NewLoop(p.grid.Edges, DefaultConfig())
	require.NoError(t, err)
	defer loop.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Run(ctx, loop, p.kernel, p.system(t, false))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	_, err = NewLoop(p.grid.Edges, Config{Workers: -1})
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewLoopWithColoring(p.grid.Edges, nil, Config{UpdateType: Coloring})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRunShapeMismatch(t *testing.T) {
	edges, err := mesh.NewEdges(2, [][2]int{{0, 1}})
	require.NoError(t, err)
	kernel := KernelFunc[tensor.A3, tensor.R3[tensor.A3]](func(_ ad.Tape, _ Batch, _ bool, out *Contribution[tensor.A3, tensor.R3[tensor.A3]]) {
		out.Flux = tensor.Splat[tensor.A3](1, 2, 3)
	})
	matrix := func(nVar int) *container.SysMatrix {
		m, err := container.NewSysMatrix(2, nVar, edges.Pairs())
		require.NoError(t, err)
		return m
	}

	tests := []struct {
		name string
		cfg  Config
		sys  System
	}{
		{"residual vars", Config{}, System{Residual: container.NewSysVector(2, 1)}},
		{"residual blocks", Config{}, System{Residual: container.NewSysVector(3, 3)}},
		{"edge flux vars", Config{UpdateType: Direct}, System{
			Residual: container.NewSysVector(2, 3),
			EdgeFlux: container.NewSysVector(1, 1),
		}},
		{"edge flux blocks", Config{UpdateType: Direct}, System{
			Residual: container.NewSysVector(2, 3),
			EdgeFlux: container.NewSysVector(2, 3),
		}},
		{"jacobian vars", Config{Implicit: true}, System{
			Residual: container.NewSysVector(2, 3),
			Jacobian: matrix(1),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Workers = 1
			loop, err := NewLoop(edges, tt.cfg)
			require.NoError(t, err)
			defer loop.Close()

			err = Run(context.Background(), loop, kernel, tt.sys)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Zero(t, tt.sys.Residual.SquaredNorm(), "nothing written on error")
		})
	}

	// Matching shapes assemble every component.
	loop, err := NewLoop(edges, Config{Workers: 1, Implicit: true})
	require.NoError(t, err)
	defer loop.Close()
	sys := System{Residual: container.NewSysVector(2, 3), Jacobian: matrix(3)}
	require.NoError(t, Run(context.Background(), loop, kernel, sys))
	assert.Equal(t, []float64{1, 2, 3, -1, -2, -3}, sys.Residual.Data())
}

func TestKernelFunc(t *testing.T) {
	edges, err := mesh.NewEdges(2, [][2]int{{0, 1}})
	require.NoError(t, err)
	loop, err := NewLoop(edges, Config{Workers: 1})
	require.NoError(t, err)
	defer loop.Close()

	kernel := KernelFunc[tensor.A1, tensor.R1[tensor.A1]](func(_ ad.Tape, b Batch, _ bool, out *Contribution[tensor.A1, tensor.R1[tensor.A1]]) {
		out.Flux.Set(0, simd.Splat(3))
	})
	sys := System{Residual: container.NewSysVector(2, 1)}
	require.NoError(t, Run(context.Background(), loop, kernel, sys))
	assert.Equal(t, []float64{3, -3}, sys.Residual.Data())
}

func BenchmarkRun(b *testing.B) {
	g, err := mesh.NewGrid(128, 128)
	if err != nil {
		b.Fatal(err)
	}
	u := container.NewArray2D(g.NumPoints(), 2)
	weight := make([]float64, g.Edges.Len())
	for e := range weight {
		weight[e] = 1
	}
	kernel := diffusion{u: u, weight: weight}

	for _, updateType := range []UpdateType{Coloring, Direct} {
		b.Run(updateType.String(), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.UpdateType = updateType
			cfg.Implicit = true
			loop, err := NewLoop(g.Edges, cfg)
			if err != nil {
				b.Fatal(err)
			}
			defer loop.Close()
			jac, err := container.NewSysMatrix(g.NumPoints(), 2, g.Edges.Pairs())
			if err != nil {
				b.Fatal(err)
			}
			sys := System{
				Residual: container.NewSysVector(g.NumPoints(), 2),
				Jacobian: jac,
				EdgeFlux: container.NewSysVector(g.Edges.Len(), 2),
			}
			b.ReportAllocs()
			for b.Loop() {
				if err := Run(context.Background(), loop, kernel, sys); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

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

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/edgeasm/edgeasm"
	"github.com/edgeasm/edgeasm/assembly"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/fluid"
	"github.com/edgeasm/edgeasm/mesh"
	"github.com/edgeasm/edgeasm/numerics"
	"github.com/edgeasm/edgeasm/tensor"
)

type runOptions struct {
	nx, ny  int
	passes  int
	compare bool
	cfg     assembly.Config
}

func newRunCmd() *cobra.Command {
	opts := runOptions{nx: 256, ny: 256, passes: 5, cfg: assembly.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assemble the heat-conduction system of an nx x ny grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyEnv(cmd.Flags(), &opts.cfg); err != nil {
				return err
			}
			return runBench(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&opts.nx, "nx", opts.nx, "grid points in x")
	fs.IntVar(&opts.ny, "ny", opts.ny, "grid points in y")
	fs.IntVar(&opts.passes, "passes", opts.passes, "number of timed assembly passes")
	fs.BoolVar(&opts.compare, "compare", false, "run coloring and direct side by side and compare the results")
	addLoopFlags(fs, &opts.cfg)
	return cmd
}

// addLoopFlags binds the assembly loop configuration to fs.
func addLoopFlags(fs *pflag.FlagSet, cfg *assembly.Config) {
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker goroutines, 0 for GOMAXPROCS")
	fs.Var(&cfg.UpdateType, "update", "update strategy: coloring or direct")
	fs.BoolVar(&cfg.Implicit, "implicit", cfg.Implicit, "assemble the Jacobian too")
	fs.IntVar(&cfg.GroupSize, "group-size", cfg.GroupSize, "consecutive edges per work unit")
	fs.BoolVar(&cfg.CheckConflicts, "check-conflicts", cfg.CheckConflicts, "verify the coloring while assembling")
}

// applyEnv fills the loop settings that were not given as flags from the
// environment.
func applyEnv(fs *pflag.FlagSet, cfg *assembly.Config) error {
	env := *cfg
	if err := env.FromEnv(); err != nil {
		return err
	}
	if !fs.Changed("workers") {
		cfg.Workers = env.Workers
	}
	if !fs.Changed("update") {
		cfg.UpdateType = env.UpdateType
	}
	if !fs.Changed("check-conflicts") {
		cfg.CheckConflicts = env.CheckConflicts
	}
	return cfg.Validate()
}

// heatCase is the benchmark problem: a grid with a smooth temperature and
// a RANS conductivity that varies across the domain.
type heatCase struct {
	grid   *mesh.Grid
	kernel *numerics.HeatKernel[tensor.A2]
}

func newHeatCase(nx, ny int) (*heatCase, error) {
	g, err := mesh.NewGrid(nx, ny)
	if err != nil {
		return nil, err
	}
	n := g.NumPoints()
	state := fluid.State{
		Temperature: container.NewArray1D(n),
		Density:     container.NewArray1D(n),
		MuLam:       container.NewArray1D(n),
		MuTurb:      container.NewArray1D(n),
		Cp:          1005,
	}
	for i := range n {
		x, y := g.Coords.At(i, 0), g.Coords.At(i, 1)
		state.Temperature.Set(i, 300+50*math.Sin(math.Pi*x)*math.Cos(math.Pi*y))
		state.Density.Set(i, 1.2)
		state.MuLam.Set(i, 1.8e-5)
		state.MuTurb.Set(i, 1e-4*(1+x*y))
	}
	kt := container.NewArray1D(n)
	if err := fluid.FillConductivity(fluid.NewConstantConductivityRANS(0.0257, 0.9), state, kt); err != nil {
		return nil, err
	}
	return &heatCase{grid: g, kernel: numerics.NewGridHeatKernel(g, state.Temperature, kt)}, nil
}

func (h *heatCase) system(cfg assembly.Config) (assembly.System, error) {
	sys := assembly.System{Residual: container.NewSysVector(h.grid.NumPoints(), 1)}
	if cfg.Implicit {
		jac, err := container.NewSysMatrix(h.grid.NumPoints(), 1, h.grid.Edges.Pairs())
		if err != nil {
			return sys, err
		}
		sys.Jacobian = jac
	}
	if cfg.UpdateType == assembly.Direct {
		sys.EdgeFlux = container.NewSysVector(h.grid.Edges.Len(), 1)
	}
	return sys, nil
}

// result is the outcome of one timed run.
type result struct {
	cfg     assembly.Config
	sys     assembly.System
	colors  int
	perPass time.Duration
}

// assemble runs passes timed passes of cfg and returns the last system.
func (h *heatCase) assemble(ctx context.Context, cfg assembly.Config, passes int) (*result, error) {
	loop, err := assembly.NewLoop(h.grid.Edges, cfg)
	if err != nil {
		return nil, err
	}
	defer loop.Close()

	sys, err := h.system(cfg)
	if err != nil {
		return nil, err
	}
	res := &result{cfg: cfg, sys: sys}
	if c := loop.Coloring(); c != nil {
		res.colors = c.NumColors()
	}

	start := time.Now()
	for range passes {
		sys.Residual.SetZero()
		if sys.Jacobian != nil {
			sys.Jacobian.SetZero()
		}
		if err := assembly.Run(ctx, loop, h.kernel, sys); err != nil {
			return nil, err
		}
	}
	res.perPass = time.Since(start) / time.Duration(max(passes, 1))
	return res, nil
}

func runBench(ctx context.Context, w io.Writer, opts runOptions) error {
	h, err := newHeatCase(opts.nx, opts.ny)
	if err != nil {
		return err
	}
	edgeasm.Logger().Debug("edgebench: grid ready",
		"points", h.grid.NumPoints(), "edges", h.grid.Edges.Len())
	fmt.Fprintf(w, "grid %dx%d: %d points, %d edges\n", opts.nx, opts.ny, h.grid.NumPoints(), h.grid.Edges.Len())

	if !opts.compare {
		r, err := h.assemble(ctx, opts.cfg, opts.passes)
		if err != nil {
			return err
		}
		report(w, r)
		return nil
	}

	// Both strategies use independent loops and systems, so they can run
	// at the same time.
	var results [2]*result
	g, gctx := errgroup.WithContext(ctx)
	for i, updateType := range []assembly.UpdateType{assembly.Coloring, assembly.Direct} {
		cfg := opts.cfg
		cfg.UpdateType = updateType
		g.Go(func() error {
			r, err := h.assemble(gctx, cfg, opts.passes)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range results {
		report(w, r)
	}
	fmt.Fprintf(w, "max |coloring - direct|: residual %.3e", maxAbsDiff(results[0].sys.Residual.Data(), results[1].sys.Residual.Data()))
	if opts.cfg.Implicit {
		fmt.Fprintf(w, ", jacobian %.3e", maxAbsDiff(results[0].sys.Jacobian.Values(), results[1].sys.Jacobian.Values()))
	}
	fmt.Fprintln(w)
	return nil
}

func report(w io.Writer, r *result) {
	fmt.Fprintf(w, "%-8s implicit=%-5v per pass %-12v residual rms %.6e", r.cfg.UpdateType, r.cfg.Implicit, r.perPass, r.sys.Residual.RMS(0))
	if r.colors > 0 {
		fmt.Fprintf(w, " colors %d", r.colors)
	}
	fmt.Fprintln(w)
}

func maxAbsDiff(a, b []float64) float64 {
	var d float64
	for i := range a {
		d = max(d, math.Abs(a[i]-b[i]))
	}
	return d
}

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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/edgeasm/edgeasm"
	"github.com/edgeasm/edgeasm/ad"
	"github.com/edgeasm/edgeasm/container"
	"github.com/edgeasm/edgeasm/internal/workerpool"
	"github.com/edgeasm/edgeasm/mesh"
	"github.com/edgeasm/edgeasm/simd"
	"github.com/edgeasm/edgeasm/tensor"
)

// Contribution is what a kernel computes for one batch: the flux leaving
// point i through each edge and, for implicit passes, its derivatives with
// respect to the variables of point i and point j.
type Contribution[A tensor.Array, R tensor.RowArray[A]] struct {
	Flux       tensor.Vector[A]
	JacI, JacJ tensor.Matrix[A, R]
}

// Kernel computes the contribution of a batch of edges. It runs on a worker
// goroutine with that worker's tape and may be called concurrently for
// different batches. out is zeroed before every call; JacI and JacJ only
// need to be set if implicit.
type Kernel[A tensor.Array, R tensor.RowArray[A]] interface {
	ComputeFlux(t ad.Tape, b Batch, implicit bool, out *Contribution[A, R])
}

// KernelFunc adapts a function to Kernel.
type KernelFunc[A tensor.Array, R tensor.RowArray[A]] func(t ad.Tape, b Batch, implicit bool, out *Contribution[A, R])

// ComputeFlux calls f.
func (f KernelFunc[A, R]) ComputeFlux(t ad.Tape, b Batch, implicit bool, out *Contribution[A, R]) {
	f(t, b, implicit, out)
}

// System is the linear system a pass writes into.
type System struct {
	// Residual is indexed by point. Passes add to it.
	Residual *container.SysVector

	// Jacobian is updated by implicit passes. Coloring passes add to every
	// block; Direct passes overwrite the edge blocks and the diagonal.
	Jacobian *container.SysMatrix

	// EdgeFlux is indexed by edge and holds the fluxes of a Direct pass
	// before they are reduced into Residual. Coloring passes ignore it.
	EdgeFlux *container.SysVector
}

// Loop runs edge kernels over a fixed mesh. It owns a worker pool and one
// tape per worker, and is reused for any number of passes. Run calls on one
// Loop must not overlap.
type Loop struct {
	cfg      Config
	edges    *mesh.Edges
	adj      *mesh.Adjacency
	coloring *mesh.Coloring
	pool     *workerpool.Pool
	tapes    []ad.Tape
	detector *conflictDetector
	closed   atomic.Bool
}

// NewLoop validates cfg and prepares a loop over edges. Coloring loops color
// the edges in groups of cfg.GroupSize.
func NewLoop(edges *mesh.Edges, cfg Config) (*Loop, error) {
	var coloring *mesh.Coloring
	if cfg.UpdateType == Coloring {
		coloring = mesh.ColorEdges(edges, cfg.groupSize())
	}
	return NewLoopWithColoring(edges, coloring, cfg)
}

// NewLoopWithColoring is NewLoop with a precomputed coloring, which is not
// validated; enable cfg.CheckConflicts to verify it during passes. Direct
// loops ignore coloring.
func NewLoopWithColoring(edges *mesh.Edges, coloring *mesh.Coloring, cfg Config) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UpdateType == Coloring && coloring == nil {
		return nil, fmt.Errorf("%w: coloring update without a coloring", ErrConfig)
	}

	l := &Loop{
		cfg:      cfg,
		edges:    edges,
		adj:      mesh.NewAdjacency(edges),
		coloring: coloring,
		pool:     workerpool.New(cfg.Workers),
	}
	l.tapes = make([]ad.Tape, l.pool.NumWorkers())
	for i := range l.tapes {
		l.tapes[i] = ad.NoTape{}
	}
	if cfg.CheckConflicts && cfg.UpdateType == Coloring {
		l.detector = newConflictDetector(edges)
	}

	log := edgeasm.Logger()
	if coloring != nil {
		log.Debug("assembly: edges colored",
			"edges", edges.Len(),
			"colors", coloring.NumColors(),
			"groupSize", coloring.GroupSize(),
			"efficiency", coloring.Efficiency())
	}
	log.Debug("assembly: loop ready",
		"update", cfg.UpdateType,
		"implicit", cfg.Implicit,
		"workers", l.pool.NumWorkers(),
		"lanes", simd.Lanes)
	return l, nil
}

// Config returns the loop configuration.
func (l *Loop) Config() Config { return l.cfg }

// Edges returns the edges the loop runs over.
func (l *Loop) Edges() *mesh.Edges { return l.edges }

// Coloring returns the edge coloring, nil for Direct loops.
func (l *Loop) Coloring() *mesh.Coloring { return l.coloring }

// NumWorkers returns the number of workers, and so of tapes.
func (l *Loop) NumWorkers() int { return len(l.tapes) }

// SetTapes gives every worker its own tape. len(tapes) must equal
// NumWorkers.
func (l *Loop) SetTapes(tapes []ad.Tape) error {
	if len(tapes) != len(l.tapes) {
		return fmt.Errorf("%w: %d tapes for %d workers", ErrConfig, len(tapes), len(l.tapes))
	}
	copy(l.tapes, tapes)
	return nil
}

// Tape returns the tape of worker i.
func (l *Loop) Tape(i int) ad.Tape { return l.tapes[i] }

// Close stops the worker pool. It is safe to call more than once.
func (l *Loop) Close() {
	l.closed.Store(true)
	l.pool.Close()
}

// Run computes every edge contribution with kernel and writes it into sys
// using the loop's update strategy.
//
// Coloring passes process one color at a time with a barrier in between;
// the groups of one color run in parallel. Direct passes process all edges
// in parallel into sys.EdgeFlux and the edge blocks of sys.Jacobian, then
// reduce the edge fluxes into sys.Residual and set every diagonal Jacobian
// block to the negated sum of its column.
//
// Run returns an ErrConfig error if the containers of sys do not match the
// mesh of l or the contribution size of kernel.
//
// ctx is checked between colors and between Direct phases. When the loop
// checks conflicts, a coloring conflict stops the pass with a
// *ConflictError after the offending color.
func Run[A tensor.Array, R tensor.RowArray[A]](ctx context.Context, l *Loop, kernel Kernel[A, R], sys System) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if l.cfg.UpdateType == Direct && sys.EdgeFlux == nil {
		return ErrNoEdgeFlux
	}
	if sys.Residual == nil || (l.cfg.Implicit && sys.Jacobian == nil) {
		return fmt.Errorf("%w: system without residual or, for implicit passes, Jacobian", ErrConfig)
	}
	if err := checkSystem[A, R](l, sys); err != nil {
		return err
	}

	start := time.Now()
	var err error
	if l.cfg.UpdateType == Direct {
		err = runDirect(ctx, l, kernel, sys)
	} else {
		err = runColoring(ctx, l, kernel, sys)
	}
	if err != nil {
		return err
	}
	edgeasm.Logger().Debug("assembly: pass done",
		"update", l.cfg.UpdateType,
		"edges", l.edges.Len(),
		"elapsed", time.Since(start))
	return nil
}

// checkSystem verifies that the containers of sys fit the mesh of l and the
// contribution size of the kernel.
func checkSystem[A tensor.Array, R tensor.RowArray[A]](l *Loop, sys System) error {
	var c Contribution[A, R]
	nVar := c.Flux.Size()
	nPoint, nEdge := l.edges.NumPoints(), l.edges.Len()

	if r := sys.Residual; r.NumBlocks() != nPoint || r.NumVars() != nVar {
		return fmt.Errorf("%w: residual of %d blocks of %d values, want %d of %d",
			ErrConfig, r.NumBlocks(), r.NumVars(), nPoint, nVar)
	}
	if l.cfg.UpdateType == Direct {
		if f := sys.EdgeFlux; f.NumBlocks() != nEdge || f.NumVars() != nVar {
			return fmt.Errorf("%w: edge flux of %d blocks of %d values, want %d of %d",
				ErrConfig, f.NumBlocks(), f.NumVars(), nEdge, nVar)
		}
	}
	if !l.cfg.Implicit {
		return nil
	}
	if rows, cols := c.JacI.Rows(), c.JacI.Cols(); rows != nVar || cols != nVar {
		return fmt.Errorf("%w: kernel Jacobian blocks are %dx%d, want %dx%d", ErrConfig, rows, cols, nVar, nVar)
	}
	if m := sys.Jacobian; m.NumPoints() != nPoint || m.NumEdges() != nEdge || m.NumVars() != nVar {
		return fmt.Errorf("%w: Jacobian with %d points, %d edges and %dx%d blocks, want %d, %d and %dx%d",
			ErrConfig, m.NumPoints(), m.NumEdges(), m.NumVars(), m.NumVars(), nPoint, nEdge, nVar, nVar)
	}
	return nil
}

func runColoring[A tensor.Array, R tensor.RowArray[A]](ctx context.Context, l *Loop, kernel Kernel[A, R], sys System) error {
	for color := range l.coloring.NumColors() {
		if err := ctx.Err(); err != nil {
			return err
		}
		groups := l.coloring.Groups(color)
		if l.detector != nil {
			l.detector.beginColor(color, groups)
		}
		l.pool.ParallelForAtomic(len(groups), func(worker, g int) {
			if l.detector != nil {
				for e := groups[g].Start; e < groups[g].End; e++ {
					l.detector.claim(g, e)
				}
			}
			runEdges(l, l.tapes[worker], kernel, groups[g].Start, groups[g].End, sys.Residual, sys.Jacobian)
		})
		if l.detector != nil {
			if err := l.detector.err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func runDirect[A tensor.Array, R tensor.RowArray[A]](ctx context.Context, l *Loop, kernel Kernel[A, R], sys System) error {
	l.pool.ParallelForAtomicBatched(l.edges.Len(), l.cfg.groupSize(), func(worker, start, end int) {
		runEdges(l, l.tapes[worker], kernel, start, end, sys.EdgeFlux, sys.Jacobian)
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	l.pool.ParallelFor(l.adj.NumPoints(), func(_, start, end int) {
		ReduceEdgeFluxesRange(l.adj, sys.EdgeFlux, sys.Residual, start, end)
		if l.cfg.Implicit {
			sys.Jacobian.SetDiagonalAsColumnSumRange(start, end)
		}
	})
	return nil
}

// runEdges processes edges [start, end) in batches of simd.Lanes.
func runEdges[A tensor.Array, R tensor.RowArray[A]](l *Loop, t ad.Tape, kernel Kernel[A, R], start, end int, vector *container.SysVector, matrix *container.SysMatrix) {
	var c Contribution[A, R]
	for off := start; off < end; off += simd.Lanes {
		b := NewBatch(l.edges, off, min(off+simd.Lanes, end))
		c = Contribution[A, R]{}
		kernel.ComputeFlux(t, b, l.cfg.Implicit, &c)
		UpdateLinearSystem(t, b.Edge, b.I, b.J, l.cfg.Implicit, l.cfg.UpdateType, b.Mask,
			c.Flux, &c.JacI, &c.JacJ, vector, matrix)
	}
}

// Copyright 2026 The edgeasm Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the persistent worker pool the assembly loop
// runs edge groups and point ranges on. A Pool is created once per loop and
// reused across every color of every pass, so no goroutines are spawned per
// color.
//
// Every callback receives a worker slot in [0, NumWorkers()). Slots are
// unique among the callbacks of one call that may run at the same time, so
// callers can index per-worker state (such as one AD tape per worker) with
// them without locking.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	for _, groups := range colors {
//	    pool.ParallelForAtomic(len(groups), func(worker, g int) {
//	        assembleGroup(tapes[worker], groups[g])
//	    })
//	}
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is one slot's share of a parallel call.
type workItem struct {
	fn   func()
	call *call
}

// call tracks the completion of one parallel operation and the first panic
// raised by any of its work items.
type call struct {
	wg       sync.WaitGroup
	once     sync.Once
	panicked any
	failed   bool
}

func (c *call) run(fn func()) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.once.Do(func() {
				c.panicked = r
				c.failed = true
			})
		}
	}()
	fn()
}

// wait blocks until every work item finished and re-raises the first panic
// in the calling goroutine.
func (c *call) wait() {
	c.wg.Wait()
	if c.failed {
		panic(c.panicked)
	}
}

// New creates a pool with numWorkers workers. If numWorkers <= 0, it uses
// GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.call.run(item.fn)
	}
}

// NumWorkers returns the number of workers, which bounds every worker slot.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool once pending work completes. Calling Close more
// than once is safe; a closed pool runs every call sequentially on slot 0.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// ParallelFor splits [0, n) into one contiguous range per worker and calls
// fn(worker, start, end) for each. It blocks until all ranges are done. A
// panic in fn is re-raised in the caller after the other ranges finish.
func (p *Pool) ParallelFor(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	c := &call{}
	for w := range workers {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			break
		}
		c.wg.Add(1)
		p.workC <- workItem{fn: func() { fn(w, start, end) }, call: c}
	}
	c.wait()
}

// ParallelForAtomic calls fn(worker, i) for every i in [0, n), handing out
// indices one at a time. This balances load when the cost per index varies,
// as it does between edge groups of different sizes.
func (p *Pool) ParallelForAtomic(n int, fn func(worker, i int)) {
	p.ParallelForAtomicBatched(n, 1, func(worker, start, end int) {
		for i := start; i < end; i++ {
			fn(worker, i)
		}
	})
}

// ParallelForAtomicBatched hands out [0, n) in batches of batchSize indices
// and calls fn(worker, start, end) for each batch. A batchSize below 1 is
// treated as 1.
func (p *Pool) ParallelForAtomicBatched(n int, batchSize int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	numBatches := (n + batchSize - 1) / batchSize
	workers := min(p.numWorkers, numBatches)
	if workers == 1 || p.closed.Load() {
		for start := 0; start < n; start += batchSize {
			fn(0, start, min(start+batchSize, n))
		}
		return
	}

	var nextBatch atomic.Int64
	c := &call{}
	c.wg.Add(workers)
	for w := range workers {
		p.workC <- workItem{
			fn: func() {
				for {
					start := int(nextBatch.Add(1)-1) * batchSize
					if start >= n {
						return
					}
					fn(w, start, min(start+batchSize, n))
				}
			},
			call: c,
		}
	}
	c.wait()
}

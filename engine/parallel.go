// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"runtime"
	"sync"
)

// integrateParallel advances every sphere by dt using a bounded worker
// pool. Each job reads the frozen sphere array and writes only its own
// slot of the scratch buffer, so workers need no synchronization beyond
// the job distribution itself.
func (o *Engine) integrateParallel(dt float64) int {
	n := o.Spheres.Count()
	if n == 0 {
		return 0
	}

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	results := make(chan int, n)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- o.Integrator.Step(o.Kernel, o.Spheres, i, dt)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	for r := range results {
		total += r
	}
	return total
}

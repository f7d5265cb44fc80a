package sim

import (
	"context"
	"runtime"
	"sync"
)

// Factory builds an independent simulator for one ensemble member.
type Factory func(seed int64) (*Simulator, error)

// Ensemble runs independent worlds with consecutive seeds. Each world stays
// single-threaded; only whole runs execute concurrently.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	ParallelFor(e.numRuns, 1, func(start, end int) {
		for idx := start; idx < end; idx++ {
			s, err := e.factory(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				continue
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// ParallelFor executes fn over [0, n) split into contiguous chunks.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

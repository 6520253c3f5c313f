package genetic_screen

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
)

// FitFunc scores one candidate mask. Higher is better. An error marks the
// candidate as unusable; it does not abort the batch.
type FitFunc func(mask []bool) (float64, error)

// evaluator wraps the user fitness function for whole-generation batches.
type evaluator struct {
	fitFunc FitFunc
	workers int
}

func newEvaluator(fitFunc FitFunc, workers int) *evaluator {
	if workers < 1 {
		workers = 1
	}
	return &evaluator{fitFunc: fitFunc, workers: workers}
}

// Evaluate scores every candidate and returns a fitness slice aligned by
// index with the input. A candidate whose evaluation fails is assigned -Inf
// and deprioritized rather than crashing the search. If every candidate in
// the batch fails, the batch is unrecoverable and an error is returned.
func (e *evaluator) Evaluate(candidates []Candidate) ([]float64, error) {
	fitness := make([]float64, len(candidates))

	var failed int64
	score := func(i int) {
		fit, err := e.fitFunc(candidates[i])
		if err != nil {
			if DEBUG {
				log.Printf("Fitness function failed for candidate %d: %v. Assigning -Inf.", i, err)
			}
			fitness[i] = math.Inf(-1)
			atomic.AddInt64(&failed, 1)
			return
		}
		fitness[i] = fit
	}

	if e.workers == 1 || len(candidates) < 2 {
		for i := range candidates {
			score(i)
		}
	} else {
		// Fitness is a pure function of a single candidate, so chunks can
		// run concurrently. Each index writes only its own slot, which
		// keeps the result aligned regardless of completion order.
		workers := e.workers
		if workers > len(candidates) {
			workers = len(candidates)
		}
		split := len(candidates) / workers
		odds := len(candidates) % workers

		var wg sync.WaitGroup
		start := 0
		for w := 0; w < workers; w++ {
			count := split
			if w < odds {
				count++
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					score(i)
				}
			}(start, start+count)
			start += count
		}
		wg.Wait()
	}

	if n := atomic.LoadInt64(&failed); n > 0 {
		log.Printf("The fitness function failed for %d of %d candidates. Assigned -Inf.", n, len(candidates))
		if int(n) == len(candidates) {
			return nil, fmt.Errorf("fitness function failed for every candidate in the batch")
		}
	}

	return fitness, nil
}

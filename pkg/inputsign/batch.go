package inputsign

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// BatchConfig configures parallel signing of many inputs.
type BatchConfig struct {
	// NumWorkers controls parallelization (0 = one worker per CPU)
	NumWorkers int
}

// DefaultBatchConfig returns a sensible default configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		NumWorkers: 0, // Auto-detect
	}
}

// workers returns the number of workers to start for n jobs.
func (c BatchConfig) workers(n int) int {
	w := c.NumWorkers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	return w
}

// BatchResult is the outcome of one job of a batch.
type BatchResult struct {
	// Index is the position of the job in the batch.
	Index int

	// Signature is the endorsement, or the bare DER signature when the
	// batch was signed raw. It is nil when Err is set.
	Signature []byte

	// Err is the reason the job failed.
	Err error
}

// signBatch signs every job with a pool of workers. Results are returned in
// job order. Jobs not started before ctx is done fail with ctx.Err().
func signBatch(ctx context.Context, signer *Signer, jobs []*Request,
	config BatchConfig, raw bool) []BatchResult {

	results := make([]BatchResult, len(jobs))
	finished := make([]bool, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	numWorkers := config.workers(len(jobs))
	workChan := make(chan int, numWorkers*4)
	signed := int64(0)

	// Generate work
	go func() {
		defer close(workChan)
		for i := range jobs {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-workChan:
					if !ok {
						return
					}

					sig, err := signer.signInput(jobs[i], raw)
					results[i] = BatchResult{
						Index:     i,
						Signature: sig,
						Err:       err,
					}
					finished[i] = true

					n := atomic.AddInt64(&signed, 1)
					log.Tracef("Signed %d of %d jobs", n, len(jobs))
				}
			}
		}()
	}
	wg.Wait()

	for i := range results {
		if !finished[i] {
			results[i] = BatchResult{Index: i, Err: ctx.Err()}
		}
	}

	log.Debugf("Batch of %d jobs done with %d workers", len(jobs),
		numWorkers)
	return results
}

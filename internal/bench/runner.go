package bench

import (
	"context"
	"sync"
)

// WorkerFunc performs one benchmark operation. The index identifies the slot
// within the batch for operations bound to pre-provisioned targets.
type WorkerFunc func(ctx context.Context, i int) Outcome

// RunBatch launches n invocations of op concurrently — full fan-out, no
// throttling, so the batch size is also the peak in-flight concurrency —
// and waits for every one to complete, success or failure.
func RunBatch(ctx context.Context, n int, op WorkerFunc) []Outcome {
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = op(ctx, i)
		}(i)
	}
	wg.Wait()
	return outcomes
}

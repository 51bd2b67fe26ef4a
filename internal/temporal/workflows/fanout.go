package workflows

import (
	"go.temporal.io/sdk/workflow"

	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/temporal/resilience"
)

// stageBatch tracks an in-flight fan-out of stage executions. Results land
// at the dispatch index, so collection order matches dispatch order
// regardless of completion order.
type stageBatch struct {
	wg      workflow.WaitGroup
	results []resilience.StageResult
}

// stageDispatch launches n concurrent executions of fn, each wrapped in the
// stage's bounded retry loop, without blocking. Temporal coroutines are
// cooperatively scheduled, so the shared progress pointer needs no locking.
func stageDispatch(ctx workflow.Context, cfg resilience.StageConfig, progress *resilience.Progress, n int, fn func(workflow.Context, int) error) *stageBatch {
	batch := &stageBatch{
		wg:      workflow.NewWaitGroup(ctx),
		results: make([]resilience.StageResult, n),
	}

	for i := 0; i < n; i++ {
		i := i
		batch.wg.Add(1)
		workflow.Go(ctx, func(gCtx workflow.Context) {
			defer batch.wg.Done()
			batch.results[i] = resilience.ExecuteStage(gCtx, cfg, progress, func() error {
				return fn(gCtx, i)
			})
		})
	}

	return batch
}

// collectStage waits for every execution in the batch and returns the
// results in dispatch order. One item's failure never raises; the caller
// partitions the results and decides what failure means for each item.
func collectStage(ctx workflow.Context, batch *stageBatch) []resilience.StageResult {
	batch.wg.Wait(ctx)
	return batch.results
}

// succeededIndexes returns the dispatch indexes whose executions succeeded.
func succeededIndexes(results []resilience.StageResult) []int {
	var ok []int
	for i, r := range results {
		if !r.Failed && !r.Degraded && !r.Skipped {
			ok = append(ok, i)
		}
	}
	return ok
}

package cli

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/flowctl/flowctl/pkg/console"
	"github.com/flowctl/flowctl/pkg/ratelimit"
)

// bulkMinConcurrency and bulkMaxConcurrency bound the fixed concurrency
// ceiling spec §5 recommends (4-8) for bulk commands.
const (
	bulkMinConcurrency = 4
	bulkMaxConcurrency = 8
)

// BulkOutcome is one item's result from RunBulk, tagged with its original
// position so callers can report outcomes in input order (spec §5
// "aggregate results preserving input order").
type BulkOutcome[T any] struct {
	Index  int
	ID     string
	Result T
	Err    error
}

// RunBulk dispatches fn over ids with a small fixed concurrency ceiling
// (spec §5 "small fixed concurrency ceiling (recommended 4-8)"). One item's
// failure never aborts its siblings: fn's error is captured per-item in
// the returned outcome, not propagated out of RunBulk. Results are always
// returned sorted by input index, regardless of completion order.
//
// label names the operation ("deleting", "activating", ...) for the
// progress spinner shown on stderr while items are in flight; the spinner
// is a no-op outside a TTY, so piped/--json invocations are unaffected.
func RunBulk[T any](ctx context.Context, label string, ids []string, fn func(ctx context.Context, id string) (T, error)) []BulkOutcome[T] {
	concurrency := bulkMaxConcurrency
	if len(ids) < concurrency {
		concurrency = len(ids)
	}
	if concurrency < bulkMinConcurrency && len(ids) >= bulkMinConcurrency {
		concurrency = bulkMinConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}

	sp := console.NewSpinner(console.BulkProgressMessage(label, 0, len(ids)))
	sp.Start()
	defer sp.Stop()

	var completed int64
	p := pool.NewWithResults[BulkOutcome[T]]().WithMaxGoroutines(concurrency)
	for i, id := range ids {
		i, id := i, id
		p.Go(func() BulkOutcome[T] {
			if err := ratelimit.Wait(ctx, ratelimit.OperationBulkDispatch); err != nil {
				return BulkOutcome[T]{Index: i, ID: id, Err: err}
			}
			result, err := fn(ctx, id)
			done := atomic.AddInt64(&completed, 1)
			sp.UpdateMessage(console.BulkProgressMessage(label, int(done), len(ids)))
			return BulkOutcome[T]{Index: i, ID: id, Result: result, Err: err}
		})
	}

	outcomes := p.Wait()
	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].Index < outcomes[b].Index })
	return outcomes
}

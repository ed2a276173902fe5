// Package worker provides a generic, thread-safe worker pool for concurrent task processing.
//
// # Overview
//
// The worker package implements a worker pool pattern with:
//   - Generic type support for type-safe work processing
//   - Bounded queues with backpressure (non-blocking Submit, blocking SubmitWait)
//   - Context-aware cancellation and graceful shutdown
//   - Always-on statistics plus optional Prometheus metrics
//   - Configurable worker count and queue sizing
//
// The primary consumer is the schema prefetch phase of a graph build, where
// schema definitions for hundreds of entity types are fetched concurrently
// before being applied to the graph in a deterministic order.
//
// # Usage
//
// Basic pool:
//
//	pool := worker.NewPool[string](
//	    8,    // workers
//	    256,  // queue size
//	    func(ctx context.Context, doctype string) error {
//	        _, err := client.GetSchema(ctx, doctype)
//	        return err
//	    },
//	)
//
//	ctx := context.Background()
//	if err := pool.Start(ctx); err != nil {
//	    return err
//	}
//
//	for _, doctype := range doctypes {
//	    if err := pool.SubmitWait(ctx, doctype); err != nil {
//	        break
//	    }
//	}
//
//	// Stop drains the queue and waits for workers, so all submitted
//	// work is complete once it returns.
//	if err := pool.Stop(30 * time.Second); err != nil {
//	    return err
//	}
//
// Submit is the non-blocking variant: when the queue is full it drops the
// work and returns ErrQueueFull, which callers can treat as a backpressure
// signal. SubmitWait blocks for queue space instead and never drops, which
// is what batch-style callers want.
//
// With Prometheus metrics:
//
//	registry := metric.NewMetricsRegistry()
//
//	pool := worker.NewPool[string](
//	    8, 256, fetchSchema,
//	    worker.WithMetricsRegistry[string](registry, "schema_prefetch"),
//	)
//
//	// Metrics exposed:
//	// - schema_prefetch_queue_depth
//	// - schema_prefetch_utilization
//	// - schema_prefetch_submitted_total
//	// - schema_prefetch_processed_total
//	// - schema_prefetch_failed_total
//	// - schema_prefetch_dropped_total
//	// - schema_prefetch_processing_duration_seconds (histogram by status)
//
// # Lifecycle
//
// Stop(timeout) provides best-effort graceful shutdown:
//  1. Close work channel (no new submissions)
//  2. Workers drain remaining queue items
//  3. Wait for all workers with timeout
//  4. Return ErrStopTimeout if workers don't finish
//
// A stopped pool cannot be restarted; create a new pool per batch. Workers
// also exit when the context passed to Start is cancelled, in which case
// queued items may be abandoned.
//
// # Thread Safety
//
// All public methods are safe for concurrent use:
//
//   - Submit()/SubmitWait(): channel semantics plus atomic counters
//   - Start()/Stop(): protected by lifecycle mutex
//   - Stats(): atomic loads, no locks required
//
// The one constraint: SubmitWait must not race with Stop, since Stop closes
// the work channel. The submit-everything-then-Stop pattern satisfies this.
//
// # Error Handling
//
// The worker package uses plain sentinel errors rather than classified
// errors because pool failures are programming errors or resource
// exhaustion:
//
//   - ErrPoolNotStarted: Submit before Start
//   - ErrPoolAlreadyStarted: Start called twice
//   - ErrPoolStopped: submit after Stop
//   - ErrQueueFull: backpressure signal from Submit
//   - ErrNilProcessor: validation failure at construction
//   - ErrStopTimeout: workers stuck past the Stop deadline
//
// Processor functions can return classified errors and the pool will count
// them in the failed counter without interpreting them.
package worker

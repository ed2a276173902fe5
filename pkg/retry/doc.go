// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff,
// used by the data-source client for HTTP fetches against the business
// backend.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 2 attempts, 50ms-500ms delay (port discovery probes)
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.ping(ctx)
//	})
//
// Retry with result:
//
//	schema, err := retry.DoWithResult(ctx, cfg, func() (*datasource.Schema, error) {
//	    return client.fetchSchema(ctx, name)
//	})
//
// Failures that should not be retried (e.g. HTTP 4xx responses) are wrapped
// with NonRetryable so Do fails immediately:
//
//	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
//	    return retry.NonRetryable(errs.ErrBadStatus)
//	}
//
// # Design Philosophy
//
// This package is intentionally minimal:
//
//   - No circuit breakers
//   - No metrics collection (use instrumentation at call site)
//   - No complex error classification (caller decides what to retry)
//   - Just exponential backoff with jitter
//
// # Context Cancellation
//
// All retry operations respect context cancellation and will immediately stop
// retrying when the context is cancelled, either during operation execution
// or during backoff delay.
package retry

// Package errors provides standardized error handling patterns for docgraph components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// Classification lets the build pipeline make informed decisions about
// retries and per-item accumulation without hardcoded error string matching:
// the data-source client retries transient failures, the discovery engine
// collects invalid per-item results and keeps going, and fatal conditions
// stop the current phase.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	// Connectivity is the single hard-fail condition of a build
//	if !status.Connected {
//	    return errors.ErrNotConnected
//	}
//
// Wrap errors with component context:
//
//	if err := source.GetSchema(ctx, name); err != nil {
//	    return errors.WrapTransient(err, "frappeClient", "GetSchema", "schema fetch")
//	}
//
// Check classification when deciding how to proceed:
//
//	if errors.IsTransient(err) {
//	    // retry with backoff
//	} else if errors.IsInvalid(err) {
//	    // record as a per-item failure and continue the batch
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// The Wrap family of functions applies this pattern while preserving error
// classification through the chain. WrapTransient, WrapInvalid, and WrapFatal
// additionally pin the class; plain Wrap preserves the original class.
//
// # Build Pipeline Sentinels
//
// The pipeline distinguishes three outcomes that all produce an empty graph:
// ErrNotConnected (the backend was unreachable; the whole build aborts),
// ErrNoTypes (connected, but the type listing was empty), and ErrNoRecords
// (a key type had no sampled documents). Callers separate them with
// errors.Is, never by message.
//
// # Retry Configuration
//
// RetryConfig bridges classification into the pkg/retry executor:
//
//	cfg := errors.DefaultRetryConfig()
//	err := retry.Do(ctx, cfg.ToRetryConfig(), func(ctx context.Context) error {
//	    return client.ping(ctx)
//	})
//
// # Thread Safety
//
// All functions are safe for concurrent use. Error variables are immutable
// after package initialization.
package errors

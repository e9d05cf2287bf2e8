// Package retry wraps fallible operations with a bounded, single-retry
// policy: transient infrastructure failures get exactly one more attempt
// after a constant backoff, permanent failures surface immediately, and
// idempotent duplicates count as success.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultBackoff is the pause before the single retry attempt when the
// caller does not configure one.
const DefaultBackoff = 100 * time.Millisecond

// Context carries the operation identity for logging plus the backoff
// override. It is not a cancellation context; pass that separately.
type Context struct {
	// Operation names the wrapped operation for log entries.
	Operation string

	// AggregateID identifies the entity the operation acts on. May be nil.
	AggregateID any

	// Backoff is the pause before the retry attempt. Zero means DefaultBackoff.
	Backoff time.Duration

	// Logger receives retry/duplicate log entries. Nil means slog.Default.
	Logger *slog.Logger
}

// Do runs op under the single-retry policy and returns its error, if any.
//
//   - success: returned unchanged, one invocation.
//   - duplicate-resource: treated as success on either attempt; the effect
//     already happened, so surfacing a failure would be wrong.
//   - retryable: one backoff sleep, one more invocation; the second error
//     (if any) is returned verbatim.
//   - permanent or unknown: returned immediately, no retry.
func Do(ctx context.Context, op func() error, rc Context) error {
	_, err := DoValue(ctx, func() (struct{}, error) { return struct{}{}, op() }, rc)

	return err
}

// DoValue is Do for operations that produce a value. A duplicate-resource
// outcome returns the zero value with a nil error.
func DoValue[T any](ctx context.Context, op func() (T, error), rc Context) (T, error) {
	interval := rc.Backoff
	if interval <= 0 {
		interval = DefaultBackoff
	}

	log := rc.Logger
	if log == nil {
		log = slog.Default()
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), 1),
		ctx,
	)

	return backoff.RetryWithData(func() (T, error) {
		var zero T

		v, err := op()
		switch {
		case err == nil:
			return v, nil
		case Duplicate(err):
			log.InfoContext(ctx, "duplicate resource, treating as success",
				"operation", rc.Operation, "aggregate_id", rc.AggregateID)

			return zero, nil
		case Retryable(err):
			log.WarnContext(ctx, "transient failure, will retry once",
				"operation", rc.Operation, "aggregate_id", rc.AggregateID,
				"backoff", interval, "error", err)

			return zero, err
		default:
			// Permanent and unknown reasons both fail closed: no retry.
			return zero, backoff.Permanent(err)
		}
	}, policy)
}

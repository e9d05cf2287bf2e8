package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/retry"
)

func TestDo_SuccessFirstTry(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		return nil
	}, retry.Context{Operation: "noop"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDo_DuplicateIsSuccess(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		return serr.ErrDuplicateResource
	}, retry.Context{Operation: "create", AggregateID: "u-1"})
	if err != nil {
		t.Fatalf("duplicate must be success, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDo_PermanentShortCircuits(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		return serr.ErrResourceNotFound
	}, retry.Context{Operation: "load"})
	if !errors.Is(err, serr.ErrResourceNotFound) {
		t.Fatalf("want resource_not_found, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("permanent error must not be retried, calls=%d", calls)
	}
}

func TestDo_UnknownErrorNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	err := retry.Do(context.Background(), func() error {
		calls++
		return boom
	}, retry.Context{Operation: "op"})
	if !errors.Is(err, boom) {
		t.Fatalf("want verbatim unknown error, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("unknown errors fail closed, calls=%d", calls)
	}
}

func TestDo_TransientThenSuccess_SleepsBackoff(t *testing.T) {
	const backoff = 30 * time.Millisecond

	calls := 0
	start := time.Now()

	err := retry.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return serr.ErrDatabaseConnection
		}
		return nil
	}, retry.Context{Operation: "save", Backoff: backoff})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}

	if elapsed := time.Since(start); elapsed < backoff {
		t.Fatalf("expected >= %v between attempts, took %v", backoff, elapsed)
	}
}

func TestDo_TransientTwice_ReturnsSecondErrorVerbatim(t *testing.T) {
	calls := 0
	second := fmt.Errorf("attempt two: %w", serr.ErrConnection)

	err := retry.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return serr.ErrConnection
		}
		return second
	}, retry.Context{Operation: "send", Backoff: time.Millisecond})

	if calls != 2 {
		t.Fatalf("calls=%d want exactly 2 (single retry)", calls)
	}

	if !errors.Is(err, serr.ErrConnection) || err.Error() != second.Error() {
		t.Fatalf("second attempt error must surface verbatim, got %v", err)
	}
}

func TestDo_TransientThenPermanent_ReturnsSecondError(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return serr.ErrDatabaseConnection
		}
		return serr.ErrDatabaseQuery
	}, retry.Context{Operation: "query", Backoff: time.Millisecond})

	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}

	if !errors.Is(err, serr.ErrDatabaseQuery) {
		t.Fatalf("want database_query_error, got %v", err)
	}
}

func TestDo_TransientThenDuplicate_IsSuccess(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return serr.ErrConnection
		}
		return serr.Step("persist", serr.ErrDuplicateResource)
	}, retry.Context{Operation: "persist", Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("duplicate on retry must be success, got %v", err)
	}

	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func TestDo_StepTaggedTransientRetries(t *testing.T) {
	calls := 0

	err := retry.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return serr.Step("some_step", serr.ErrDatabaseConnection)
		}
		return nil
	}, retry.Context{Operation: "pipeline", Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if calls != 2 {
		t.Fatalf("tagged transient failure must retry, calls=%d", calls)
	}
}

func TestDoValue_ReturnsValue(t *testing.T) {
	calls := 0

	got, err := retry.DoValue(context.Background(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", serr.ErrConnection
		}
		return "value", nil
	}, retry.Context{Operation: "fetch", Backoff: time.Millisecond})
	if err != nil || got != "value" {
		t.Fatalf("got %q err %v", got, err)
	}

	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func TestDoValue_DuplicateReturnsZeroValueSuccess(t *testing.T) {
	got, err := retry.DoValue(context.Background(), func() (int, error) {
		return 99, serr.ErrDuplicateResource
	}, retry.Context{Operation: "insert"})
	if err != nil {
		t.Fatalf("duplicate must be success, got %v", err)
	}

	if got != 0 {
		t.Fatalf("duplicate returns bare success (zero value), got %d", got)
	}
}

package eventbus

import (
	"fmt"

	"github.com/next-trace/scg-domain-events/contract/event"
)

// HandlerFailure is one handler's failure within a dispatch.
type HandlerFailure struct {
	Priority int
	Order    uint64
	Err      error
}

// DispatchError aggregates every handler failure from one Dispatch call.
// Callers decide whether any failure is fatal to their own flow; errors.Is
// and errors.As see through to the individual failures.
type DispatchError struct {
	EventType event.Type
	Failures  []HandlerFailure
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %d handler(s) failed", e.EventType, len(e.Failures))
}

// Unwrap exposes the individual failures to errors.Is/errors.As.
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}

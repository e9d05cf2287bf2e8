package retry

import (
	"errors"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
)

// Classification is pure and closed: an error is retryable only if it matches
// one of the known transient infrastructure reasons, permanent only if it
// matches one of the known non-retryable reasons. Anything else is neither,
// and the executor fails closed (no retry) for it.
//
// Step-tagged errors (serr.StepError) unwrap transparently through errors.Is,
// so the step label never affects the verdict.

// Retryable reports whether err is a transient infrastructure failure worth
// one more attempt.
func Retryable(err error) bool {
	return errors.Is(err, serr.ErrConnection) ||
		errors.Is(err, serr.ErrDatabaseConnection)
}

// Permanent reports whether err is a known non-retryable failure.
// Duplicate-resource is permanent for the classifier; the executor treats it
// as success (see Do).
func Permanent(err error) bool {
	if errors.Is(err, serr.ErrDuplicateResource) ||
		errors.Is(err, serr.ErrResourceNotFound) ||
		errors.Is(err, serr.ErrDatabaseQuery) ||
		errors.Is(err, serr.ErrBackendUnavailable) {
		return true
	}

	var ve *serr.ValidationError

	return errors.As(err, &ve)
}

// Duplicate reports whether err means the intended effect already happened.
func Duplicate(err error) bool {
	return errors.Is(err, serr.ErrDuplicateResource)
}

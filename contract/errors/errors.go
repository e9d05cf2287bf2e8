package errors

// Error codes for the event contracts. Keep stable; used across adapters,
// the context bus, and the retry classifier.
const (
	// Transient infrastructure reasons. The retry executor attempts these
	// exactly once more after a backoff.
	ErrCodeConnection         = "events.connection_error"
	ErrCodeDatabaseConnection = "events.database_connection_error"

	// Permanent reasons. Never retried.
	ErrCodeDuplicateResource  = "events.duplicate_resource"
	ErrCodeResourceNotFound   = "events.resource_not_found"
	ErrCodeDatabaseQuery      = "events.database_query_error"
	ErrCodeBackendUnavailable = "events.backend_unavailable"

	// Bus/transport failure codes.
	ErrCodePublishFailed       = "events.publish_failed"
	ErrCodeSerializationFailed = "events.serialization_failed"
	ErrCodeSubscribeFailed     = "events.subscribe_failed"
	ErrCodeHandlerPanicked     = "events.handler_panicked"
	ErrCodeHandlerFailed       = "events.handler_failed"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrConnection         = Code(ErrCodeConnection)
	ErrDatabaseConnection = Code(ErrCodeDatabaseConnection)

	ErrDuplicateResource  = Code(ErrCodeDuplicateResource)
	ErrResourceNotFound   = Code(ErrCodeResourceNotFound)
	ErrDatabaseQuery      = Code(ErrCodeDatabaseQuery)
	ErrBackendUnavailable = Code(ErrCodeBackendUnavailable)

	ErrPublishFailed       = Code(ErrCodePublishFailed)
	ErrSerializationFailed = Code(ErrCodeSerializationFailed)
	ErrSubscribeFailed     = Code(ErrCodeSubscribeFailed)
	ErrHandlerPanicked     = Code(ErrCodeHandlerPanicked)
	ErrHandlerFailed       = Code(ErrCodeHandlerFailed)
)

// StepError tags an underlying failure with the pipeline step it came from.
// The step label is informational only: classification (errors.Is against the
// coded sentinels) recurses through Unwrap and must never be affected by it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return e.Step
	}

	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// Step wraps err with the given step label. A nil err returns nil.
func Step(step string, err error) error {
	if err == nil {
		return nil
	}

	return &StepError{Step: step, Err: err}
}

// ValidationError is a structured validation failure. It is always classified
// as permanent: retrying cannot make invalid input valid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}

	return "validation failed on " + e.Field + ": " + e.Reason
}

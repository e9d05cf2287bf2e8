package retry_test

import (
	"errors"
	"testing"

	serr "github.com/next-trace/scg-domain-events/contract/errors"
	"github.com/next-trace/scg-domain-events/retry"
)

func TestRetryable_ClosedSet(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection", serr.ErrConnection, true},
		{"database connection", serr.ErrDatabaseConnection, true},
		{"duplicate", serr.ErrDuplicateResource, false},
		{"not found", serr.ErrResourceNotFound, false},
		{"query", serr.ErrDatabaseQuery, false},
		{"backend unavailable", serr.ErrBackendUnavailable, false},
		{"unknown", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := retry.Retryable(tc.err); got != tc.want {
				t.Fatalf("Retryable(%v)=%v want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestPermanent_ClosedSet(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate", serr.ErrDuplicateResource, true},
		{"not found", serr.ErrResourceNotFound, true},
		{"query", serr.ErrDatabaseQuery, true},
		{"backend unavailable", serr.ErrBackendUnavailable, true},
		{"validation", &serr.ValidationError{Field: "name", Reason: "required"}, true},
		{"connection", serr.ErrConnection, false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := retry.Permanent(tc.err); got != tc.want {
				t.Fatalf("Permanent(%v)=%v want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassification_StepTagNeverMatters(t *testing.T) {
	// the step label is informational only: classification follows the inner reason
	if !retry.Retryable(serr.Step("some_step", serr.ErrDatabaseConnection)) {
		t.Fatalf("tagged transient reason must stay retryable")
	}

	if !retry.Permanent(serr.Step("some_step", serr.ErrDatabaseQuery)) {
		t.Fatalf("tagged permanent reason must stay permanent")
	}

	if retry.Retryable(serr.Step("some_step", serr.ErrDatabaseQuery)) {
		t.Fatalf("tag must not make a permanent reason retryable")
	}

	if !retry.Duplicate(serr.Step("save", serr.ErrDuplicateResource)) {
		t.Fatalf("tagged duplicate must classify as duplicate")
	}
}

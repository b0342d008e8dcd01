package stage

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"

	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/bland"
)

// ErrorKind classifies stage failures.
type ErrorKind string

const (
	// KindTransport is a network or connection failure reaching a collaborator.
	KindTransport ErrorKind = "transport"
	// KindRemoteRejected is a non-success status with a body.
	KindRemoteRejected ErrorKind = "remote_rejected"
	// KindEmptyResponse is an empty body on an otherwise successful status.
	KindEmptyResponse ErrorKind = "empty_response"
	// KindTimeout is a bounded wait for an asynchronous outcome exceeded.
	KindTimeout ErrorKind = "timeout"
	// KindPreconditionNotMet is a stage invoked before its inputs exist.
	KindPreconditionNotMet ErrorKind = "precondition_not_met"
)

// Error is a classified stage failure. Detail carries the remote body for
// RemoteRejected; Retryable hints whether a user re-submission is likely
// to help.
type Error struct {
	Kind      ErrorKind
	Op        string
	Detail    string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("stage %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("stage %s: %s: %s", e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.cause }

// newError builds an Error without a remote cause.
func newError(kind ErrorKind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// classify maps a collaborator error onto the stage taxonomy: a rejected
// request (any client's APIError) becomes RemoteRejected with the body
// retained; anything else is a transport failure.
func classify(op string, err error) *Error {
	var blandErr *bland.APIError
	if errors.As(err, &blandErr) {
		return &Error{
			Kind:      KindRemoteRejected,
			Op:        op,
			Detail:    blandErr.Body,
			Retryable: resilience.IsTransientHTTPStatus(blandErr.StatusCode),
			cause:     err,
		}
	}

	var llmErr *anthropic.APIError
	if errors.As(err, &llmErr) {
		return &Error{
			Kind:      KindRemoteRejected,
			Op:        op,
			Detail:    llmErr.Body,
			Retryable: resilience.IsTransientHTTPStatus(llmErr.StatusCode),
			cause:     err,
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &Error{
			Kind:      KindRemoteRejected,
			Op:        op,
			Detail:    gErr.Message,
			Retryable: resilience.IsTransientHTTPStatus(gErr.Code),
			cause:     err,
		}
	}

	return &Error{
		Kind:      KindTransport,
		Op:        op,
		Detail:    err.Error(),
		Retryable: resilience.IsTransient(err),
		cause:     err,
	}
}
